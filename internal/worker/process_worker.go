package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/polyvox/api/internal/client"
	"github.com/polyvox/api/internal/config"
	"github.com/polyvox/api/internal/model"
	"github.com/polyvox/api/internal/service"
	"github.com/polyvox/api/internal/timestamp"
	"github.com/polyvox/api/internal/websocket"
)

const maxErrorChars = 500

// ProcessWorker runs the document pipeline: text acquisition, optional
// summarization, translation, speech synthesis and timestamp alignment.
type ProcessWorker struct {
	jobService     *service.JobService
	extractService *service.ExtractService
	summarizer     client.Summarizer
	translator     client.Translator
	speech         client.SpeechSynthesizer
	silence        client.SilenceDetector
	storage        client.StorageClient
	hub            *websocket.Hub
	cfg            *config.PipelineConfig
	audioDir       string
}

// NewProcessWorker creates a new document processing worker
func NewProcessWorker(
	jobService *service.JobService,
	extractService *service.ExtractService,
	summarizer client.Summarizer,
	translator client.Translator,
	speech client.SpeechSynthesizer,
	silence client.SilenceDetector,
	storage client.StorageClient,
	hub *websocket.Hub,
	cfg *config.PipelineConfig,
	audioDir string,
) *ProcessWorker {
	return &ProcessWorker{
		jobService:     jobService,
		extractService: extractService,
		summarizer:     summarizer,
		translator:     translator,
		speech:         speech,
		silence:        silence,
		storage:        storage,
		hub:            hub,
		cfg:            cfg,
		audioDir:       audioDir,
	}
}

// ProcessTask handles a queued document job
func (w *ProcessWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting process job: %s", jobID)

	var payload model.ProcessJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, fmt.Errorf("invalid payload"))
		return fmt.Errorf("failed to unmarshal process payload: %w", err)
	}

	if err := w.jobService.MarkRunning(ctx, jobID); err != nil {
		log.Printf("Failed to mark job %s running: %v", jobID, err)
	}

	// Step 1: text acquisition
	w.broadcastStage(jobID, "extracting")
	extracted, err := w.extractService.Extract(ctx, payload.DocumentPath)
	if err != nil {
		w.failJob(ctx, jobID, err)
		return err
	}
	log.Printf("Job %s: extracted %d chars (%s)", jobID, len(extracted.Text), extracted.Provenance)

	// Step 2: optional summarization
	var summary string
	workingText := extracted.Text
	if payload.Summarize {
		w.broadcastStage(jobID, "summarizing")
		input := truncateRunes(workingText, w.cfg.SummaryInputChars)
		summary, err = w.summarizer.Summarize(ctx, input, w.cfg.SummaryMaxTokens, w.cfg.SummaryMinTokens)
		if err != nil {
			w.failJob(ctx, jobID, err)
			return err
		}
		workingText = summary
	}

	// Step 3: translation
	w.broadcastStage(jobID, "translating")
	translated, err := w.translator.Translate(ctx, workingText, payload.TargetLang)
	if err != nil {
		w.failJob(ctx, jobID, err)
		return err
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		w.failJob(ctx, jobID, service.ErrTranslationFailed)
		return service.ErrTranslationFailed
	}

	// Step 4: speech synthesis
	w.broadcastStage(jobID, "synthesizing")
	audioFilename := audioName(payload.SourceFilename, payload.TargetLang)
	audioPath := filepath.Join(w.audioDir, audioFilename)
	if err := w.speech.Synthesize(ctx, translated, payload.TargetLang, audioPath); err != nil {
		w.failJob(ctx, jobID, err)
		return err
	}

	// Step 5: timestamp alignment, best effort
	w.broadcastStage(jobID, "aligning")
	timestampsJSON := w.alignTimestamps(ctx, audioPath, translated)

	// Step 6: optional storage mirror, best effort
	audioURL := w.mirrorAudio(ctx, jobID, audioFilename, audioPath)

	resultText := summary
	if resultText == "" {
		resultText = translated
	}
	resultText = truncateRunes(resultText, w.cfg.ExcerptChars)

	result := &service.JobCompletion{
		AudioFilename:  audioFilename,
		AudioURL:       audioURL,
		ResultText:     resultText,
		TimestampsJSON: timestampsJSON,
	}

	if err := w.jobService.CompleteJob(ctx, jobID, result); err != nil {
		w.failJob(ctx, jobID, fmt.Errorf("failed to save result"))
		return err
	}

	if w.hub != nil {
		w.hub.BroadcastComplete(jobID, result)
	}
	log.Printf("Process job %s completed", jobID)
	return nil
}

// alignTimestamps analyzes the synthesized audio and estimates per-word
// timing. Any failure here degrades to a job without timestamps.
func (w *ProcessWorker) alignTimestamps(ctx context.Context, audioPath, text string) *string {
	if w.silence == nil || !w.silence.IsConfigured() {
		return nil
	}

	env, err := w.silence.Analyze(ctx, audioPath, w.cfg.MinSilenceMS, w.cfg.SilenceThresholdDB)
	if err != nil {
		log.Printf("Audio analysis failed for %s: %v", audioPath, err)
		return nil
	}

	words := timestamp.Align(env.Intervals, env.DurationMS, text)
	if len(words) == 0 {
		return nil
	}

	chunks := timestamp.ChunkWords(words, w.cfg.ChunkSize)
	data, err := json.Marshal(chunks)
	if err != nil {
		log.Printf("Failed to marshal timestamps: %v", err)
		return nil
	}

	s := string(data)
	return &s
}

func (w *ProcessWorker) mirrorAudio(ctx context.Context, jobID, audioFilename, audioPath string) *string {
	if w.storage == nil {
		return nil
	}

	f, err := os.Open(audioPath)
	if err != nil {
		log.Printf("Failed to open audio for upload: %v", err)
		return nil
	}
	defer f.Close()

	key := fmt.Sprintf("audio/%s/%s", jobID, audioFilename)
	url, err := w.storage.Upload(ctx, key, f, "audio/mpeg")
	if err != nil {
		log.Printf("Failed to mirror audio %s: %v", key, err)
		return nil
	}

	return &url
}

func (w *ProcessWorker) broadcastStage(jobID, stage string) {
	if w.hub != nil {
		w.hub.BroadcastProgress(jobID, model.JobStatusRunning, stage)
	}
}

func (w *ProcessWorker) failJob(ctx context.Context, jobID string, cause error) {
	msg := truncateRunes("Error: "+cause.Error(), maxErrorChars)
	if err := w.jobService.FailJob(ctx, jobID, msg); err != nil {
		log.Printf("Failed to mark job %s as failed: %v", jobID, err)
	}
	if w.hub != nil {
		w.hub.BroadcastError(jobID, "PROCESS_FAILED", msg)
	}
}

func audioName(sourceFilename, lang string) string {
	base := strings.TrimSuffix(filepath.Base(sourceFilename), filepath.Ext(sourceFilename))
	return fmt.Sprintf("%s_%s.mp3", base, lang)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

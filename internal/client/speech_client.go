package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/polyvox/api/internal/config"
)

// SpeechSynthesizer defines the interface for the speech synthesis engine
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang, outputPath string) error
	IsConfigured() bool
}

// SpeechClient calls an external HTTP speech synthesis service
type SpeechClient struct {
	httpClient *http.Client
	serviceURL string
}

type synthesizeRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// NewSpeechClient creates a new speech synthesis client
func NewSpeechClient(cfg *config.SpeechConfig) *SpeechClient {
	return &SpeechClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		serviceURL: cfg.ServiceURL,
	}
}

// Synthesize renders text as spoken MP3 audio at outputPath. The file is
// written to a temp path in the same directory and renamed into place, so a
// partially written file is never visible under the final name.
func (c *SpeechClient) Synthesize(ctx context.Context, text, lang, outputPath string) error {
	bodyBytes, err := json.Marshal(synthesizeRequest{Text: text, Lang: lang})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/synthesize", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speech service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("speech service error (status %d): %s", resp.StatusCode, string(msg))
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".synth-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close audio file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize audio file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *SpeechClient) IsConfigured() bool {
	return c.serviceURL != ""
}

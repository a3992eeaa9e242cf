package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/polyvox/api/internal/timestamp"
	"github.com/polyvox/api/pkg/executor"
)

// Envelope describes the speech structure of an audio file: total duration
// and the non-silent intervals, all in milliseconds.
type Envelope struct {
	DurationMS float64
	Intervals  []timestamp.Interval
}

// SilenceDetector defines the interface for the audio analysis engine
type SilenceDetector interface {
	Analyze(ctx context.Context, audioPath string, minSilenceMS int, thresholdDB float64) (*Envelope, error)
	IsConfigured() bool
}

// FFmpegClient analyzes audio files with ffprobe and ffmpeg
type FFmpegClient struct {
	exec executor.Executor
}

// NewFFmpegClient creates an ffmpeg-backed silence detector
func NewFFmpegClient(exec executor.Executor) *FFmpegClient {
	return &FFmpegClient{exec: exec}
}

// Analyze measures the audio duration and locates silent gaps at least
// minSilenceMS long below thresholdDB, returning the complementary speech
// intervals.
func (c *FFmpegClient) Analyze(ctx context.Context, audioPath string, minSilenceMS int, thresholdDB float64) (*Envelope, error) {
	durationMS, err := c.duration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	silences, err := c.detectSilences(ctx, audioPath, minSilenceMS, thresholdDB, durationMS)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		DurationMS: durationMS,
		Intervals:  complementIntervals(silences, durationMS),
	}, nil
}

func (c *FFmpegClient) duration(ctx context.Context, audioPath string) (float64, error) {
	out, err := c.exec.Execute(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", strings.TrimSpace(out), err)
	}

	return seconds * 1000, nil
}

func (c *FFmpegClient) detectSilences(ctx context.Context, audioPath string, minSilenceMS int, thresholdDB, durationMS float64) ([]timestamp.Interval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", thresholdDB, float64(minSilenceMS)/1000)

	// silencedetect reports on stderr, not stdout
	out, err := c.exec.ExecuteStderr(ctx, "ffmpeg",
		"-hide_banner", "-nostats",
		"-i", audioPath,
		"-af", filter,
		"-f", "null", "-",
	)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg silencedetect failed: %w", err)
	}

	return parseSilences(out, durationMS), nil
}

// parseSilences extracts silence intervals from silencedetect log output.
// A trailing silence_start with no matching silence_end runs to the end of
// the file.
func parseSilences(out string, durationMS float64) []timestamp.Interval {
	var silences []timestamp.Interval
	var openStart float64
	open := false

	for _, line := range strings.Split(out, "\n") {
		if idx := strings.Index(line, "silence_start:"); idx >= 0 {
			v, err := parseLeadingFloat(line[idx+len("silence_start:"):])
			if err == nil {
				openStart = v * 1000
				open = true
			}
			continue
		}
		if idx := strings.Index(line, "silence_end:"); idx >= 0 && open {
			v, err := parseLeadingFloat(line[idx+len("silence_end:"):])
			if err == nil {
				silences = append(silences, timestamp.Interval{Start: openStart, End: v * 1000})
				open = false
			}
		}
	}

	if open {
		silences = append(silences, timestamp.Interval{Start: openStart, End: durationMS})
	}

	return silences
}

func parseLeadingFloat(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value")
	}
	return strconv.ParseFloat(fields[0], 64)
}

// complementIntervals converts silence spans into the speech spans between
// them, clamped to [0, durationMS]. Zero-length spans are dropped.
func complementIntervals(silences []timestamp.Interval, durationMS float64) []timestamp.Interval {
	var speech []timestamp.Interval
	cursor := 0.0

	for _, s := range silences {
		if s.Start > cursor {
			speech = append(speech, timestamp.Interval{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}

	if cursor < durationMS {
		speech = append(speech, timestamp.Interval{Start: cursor, End: durationMS})
	}

	return speech
}

// IsConfigured returns true if ffmpeg and ffprobe are installed
func (c *FFmpegClient) IsConfigured() bool {
	if _, err := c.exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	_, err := c.exec.LookPath("ffprobe")
	return err == nil
}

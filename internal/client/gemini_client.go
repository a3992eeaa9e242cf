package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/polyvox/api/internal/config"
)

// Translator defines the interface for the translation engine
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
	IsConfigured() bool
}

// GeminiClient translates text via the Gemini API
type GeminiClient struct {
	apiKey string
	model  string
}

// NewGeminiClient creates a new Gemini translation client
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

// Translate renders text into targetLang. The source language is detected by
// the model. An empty result with a nil error means the model produced no
// usable translation; callers decide how to treat that.
func (c *GeminiClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt := fmt.Sprintf(`Translate the following text to %s.
Detect the source language automatically.
Output only the translation, with no preamble, notes, or commentary.

%s`, targetLang, text)

	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return strings.TrimSpace(sb.String()), nil
}

// IsConfigured returns true if the client has valid configuration
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

package client

import (
	"context"
	"fmt"

	"github.com/polyvox/api/pkg/executor"
)

// OCREngine defines the interface for optical character recognition. The
// engine may be absent at runtime; callers must check Available before the
// first invocation.
type OCREngine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
	Available() bool
}

// TesseractClient implements OCREngine using the tesseract CLI
type TesseractClient struct {
	exec executor.Executor
}

// NewTesseractClient creates a new tesseract-backed OCR engine
func NewTesseractClient(exec executor.Executor) *TesseractClient {
	return &TesseractClient{exec: exec}
}

// Recognize runs OCR over a page image and returns the recognized text
func (c *TesseractClient) Recognize(ctx context.Context, imagePath string) (string, error) {
	out, err := c.exec.Execute(ctx, "tesseract", imagePath, "stdout")
	if err != nil {
		return "", fmt.Errorf("ocr failed for %s: %w", imagePath, err)
	}
	return out, nil
}

// Available reports whether the tesseract binary resolves on PATH
func (c *TesseractClient) Available() bool {
	_, err := c.exec.LookPath("tesseract")
	return err == nil
}

package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/polyvox/api/pkg/executor"
)

// DocumentEngine defines the interface for reading paginated documents
type DocumentEngine interface {
	PageCount(ctx context.Context, path string) (int, error)
	ExtractText(ctx context.Context, path string, page int) (string, error)
	// Rasterize renders one page to a PNG image at the given DPI and
	// returns the image path. The caller removes the file when done.
	Rasterize(ctx context.Context, path string, page, dpi int) (string, error)
}

// PopplerClient implements DocumentEngine on top of the Poppler CLI tools
// (pdfinfo, pdftotext, pdftoppm).
type PopplerClient struct {
	exec executor.Executor
}

// NewPopplerClient creates a new Poppler-backed document engine
func NewPopplerClient(exec executor.Executor) *PopplerClient {
	return &PopplerClient{exec: exec}
}

// PageCount returns the number of pages in the document
func (c *PopplerClient) PageCount(ctx context.Context, path string) (int, error) {
	out, err := c.exec.Execute(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open document: %w", err)
	}

	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("failed to parse page count: %w", err)
		}
		return n, nil
	}

	return 0, fmt.Errorf("page count not reported for %s", path)
}

// ExtractText returns the embedded text of a single page
func (c *PopplerClient) ExtractText(ctx context.Context, path string, page int) (string, error) {
	p := strconv.Itoa(page)
	out, err := c.exec.Execute(ctx, "pdftotext", "-f", p, "-l", p, path, "-")
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", page, err)
	}
	return out, nil
}

// Rasterize renders a page to a temporary PNG file
func (c *PopplerClient) Rasterize(ctx context.Context, path string, page, dpi int) (string, error) {
	dir, err := os.MkdirTemp("", "polyvox-page-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	p := strconv.Itoa(page)
	prefix := filepath.Join(dir, "page")
	_, err = c.exec.Execute(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", p, "-l", p,
		"-singlefile",
		path, prefix,
	)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to rasterize page %d: %w", page, err)
	}

	return prefix + ".png", nil
}

// IsConfigured returns true if the Poppler tools resolve on PATH
func (c *PopplerClient) IsConfigured() bool {
	_, err := c.exec.LookPath("pdftotext")
	return err == nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/polyvox/api/internal/config"
	"github.com/polyvox/api/internal/model"
)

type fakeDocument struct {
	pages       []string // embedded text per page
	rasterErr   map[int]error
	rasterCalls int
}

func (d *fakeDocument) PageCount(ctx context.Context, path string) (int, error) {
	return len(d.pages), nil
}

func (d *fakeDocument) ExtractText(ctx context.Context, path string, page int) (string, error) {
	return d.pages[page-1], nil
}

func (d *fakeDocument) Rasterize(ctx context.Context, path string, page, dpi int) (string, error) {
	d.rasterCalls++
	if err := d.rasterErr[page]; err != nil {
		return "", err
	}
	return fmt.Sprintf("/tmp/fake-page-%d.png", page), nil
}

type fakeOCR struct {
	available bool
	texts     map[string]string // image path -> recognized text
	errs      map[string]error
	calls     int
}

func (o *fakeOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	o.calls++
	if err := o.errs[imagePath]; err != nil {
		return "", err
	}
	return o.texts[imagePath], nil
}

func (o *fakeOCR) Available() bool {
	return o.available
}

func pipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		MinEmbeddedChars: 100,
		OCRDPI:           300,
	}
}

func TestExtractUsesEmbeddedTextWhenSufficient(t *testing.T) {
	longPage := strings.Repeat("embedded text ", 20) // well over the threshold
	doc := &fakeDocument{pages: []string{longPage, "second page"}}
	ocr := &fakeOCR{available: true}

	svc := NewExtractService(doc, ocr, pipelineConfig())
	result, err := svc.Extract(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Provenance != model.ProvenanceEmbedded {
		t.Errorf("provenance = %q, want %q", result.Provenance, model.ProvenanceEmbedded)
	}
	if !strings.Contains(result.Text, "second page") {
		t.Errorf("expected concatenated pages, got %q", result.Text)
	}
	if ocr.calls != 0 {
		t.Errorf("OCR engine was invoked %d times for a document with embedded text", ocr.calls)
	}
	if doc.rasterCalls != 0 {
		t.Errorf("rasterizer was invoked %d times for a document with embedded text", doc.rasterCalls)
	}
}

func TestExtractFallsBackToOCRWhenTextTooThin(t *testing.T) {
	// whitespace-padded text must not count toward the threshold
	doc := &fakeDocument{pages: []string{"   short   ", "\n\n\n"}}
	ocr := &fakeOCR{
		available: true,
		texts: map[string]string{
			"/tmp/fake-page-1.png": "recognized page one",
			"/tmp/fake-page-2.png": "recognized page two",
		},
	}

	svc := NewExtractService(doc, ocr, pipelineConfig())
	result, err := svc.Extract(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Provenance != model.ProvenanceOCR {
		t.Errorf("provenance = %q, want %q", result.Provenance, model.ProvenanceOCR)
	}
	want := "recognized page one\nrecognized page two"
	if result.Text != want {
		t.Errorf("text = %q, want %q", result.Text, want)
	}
}

func TestExtractOCRPartialSuccess(t *testing.T) {
	doc := &fakeDocument{
		pages:     []string{"", "", ""},
		rasterErr: map[int]error{2: errors.New("corrupt page")},
	}
	ocr := &fakeOCR{
		available: true,
		texts: map[string]string{
			"/tmp/fake-page-1.png": "page one",
			"/tmp/fake-page-3.png": "page three",
		},
	}

	svc := NewExtractService(doc, ocr, pipelineConfig())
	result, err := svc.Extract(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Text != "page one\npage three" {
		t.Errorf("text = %q, want surviving pages joined", result.Text)
	}

	var failed int
	for _, page := range result.Pages {
		if page.Err != "" {
			failed++
			if page.Page != 2 {
				t.Errorf("failed page = %d, want 2", page.Page)
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed pages = %d, want 1", failed)
	}
}

func TestExtractOCRAllPagesFail(t *testing.T) {
	doc := &fakeDocument{pages: []string{"", ""}}
	ocr := &fakeOCR{
		available: true,
		errs: map[string]error{
			"/tmp/fake-page-1.png": errors.New("unreadable"),
			"/tmp/fake-page-2.png": errors.New("unreadable"),
		},
	}

	svc := NewExtractService(doc, ocr, pipelineConfig())
	_, err := svc.Extract(context.Background(), "doc.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractOCREngineWhitespaceOnly(t *testing.T) {
	doc := &fakeDocument{pages: []string{""}}
	ocr := &fakeOCR{
		available: true,
		texts:     map[string]string{"/tmp/fake-page-1.png": "   \n\t  "},
	}

	svc := NewExtractService(doc, ocr, pipelineConfig())
	_, err := svc.Extract(context.Background(), "doc.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestExtractOCREngineMissing(t *testing.T) {
	doc := &fakeDocument{pages: []string{"thin"}}
	ocr := &fakeOCR{available: false}

	svc := NewExtractService(doc, ocr, pipelineConfig())
	_, err := svc.Extract(context.Background(), "doc.pdf")
	if !errors.Is(err, ErrEngineMissing) {
		t.Fatalf("err = %v, want ErrEngineMissing", err)
	}
	if ocr.calls != 0 {
		t.Errorf("Recognize called %d times on an unavailable engine", ocr.calls)
	}
}

func TestExtractThresholdBoundary(t *testing.T) {
	// exactly at the threshold is not enough; strictly greater is required
	cfg := pipelineConfig()
	exact := strings.Repeat("a", cfg.MinEmbeddedChars)

	doc := &fakeDocument{pages: []string{exact}}
	ocr := &fakeOCR{
		available: true,
		texts:     map[string]string{"/tmp/fake-page-1.png": "ocr text"},
	}

	svc := NewExtractService(doc, ocr, cfg)
	result, err := svc.Extract(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Provenance != model.ProvenanceOCR {
		t.Errorf("provenance = %q at exact threshold, want %q", result.Provenance, model.ProvenanceOCR)
	}

	doc2 := &fakeDocument{pages: []string{exact + "a"}}
	svc2 := NewExtractService(doc2, ocr, cfg)
	result2, err := svc2.Extract(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result2.Provenance != model.ProvenanceEmbedded {
		t.Errorf("provenance = %q above threshold, want %q", result2.Provenance, model.ProvenanceEmbedded)
	}
}

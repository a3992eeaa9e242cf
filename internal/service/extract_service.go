package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/polyvox/api/internal/client"
	"github.com/polyvox/api/internal/config"
	"github.com/polyvox/api/internal/model"
)

// ExtractService acquires text from PDF documents, preferring the embedded
// text layer and falling back to page-by-page OCR when the layer is missing
// or too thin to be real content.
type ExtractService struct {
	document client.DocumentEngine
	ocr      client.OCREngine
	cfg      *config.PipelineConfig
}

func NewExtractService(document client.DocumentEngine, ocr client.OCREngine, cfg *config.PipelineConfig) *ExtractService {
	return &ExtractService{
		document: document,
		ocr:      ocr,
		cfg:      cfg,
	}
}

// Extract returns the document's text along with its provenance. The OCR
// engine is never touched when the embedded layer is sufficient.
func (s *ExtractService) Extract(ctx context.Context, documentPath string) (*model.ExtractedText, error) {
	pageCount, err := s.document.PageCount(ctx, documentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	embedded, err := s.extractEmbedded(ctx, documentPath, pageCount)
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(embedded)) > s.cfg.MinEmbeddedChars {
		return &model.ExtractedText{
			Text:       embedded,
			Provenance: model.ProvenanceEmbedded,
		}, nil
	}

	log.Printf("Embedded text layer too thin (%d usable chars), falling back to OCR", len(strings.TrimSpace(embedded)))
	return s.extractOCR(ctx, documentPath, pageCount)
}

func (s *ExtractService) extractEmbedded(ctx context.Context, documentPath string, pageCount int) (string, error) {
	var sb strings.Builder
	for page := 1; page <= pageCount; page++ {
		text, err := s.document.ExtractText(ctx, documentPath, page)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", page, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func (s *ExtractService) extractOCR(ctx context.Context, documentPath string, pageCount int) (*model.ExtractedText, error) {
	if !s.ocr.Available() {
		return nil, ErrEngineMissing
	}

	pages := make([]model.PageResult, 0, pageCount)
	texts := make([]string, 0, pageCount)

	for page := 1; page <= pageCount; page++ {
		text, err := s.recognizePage(ctx, documentPath, page)
		if err != nil {
			// a bad page must not sink the rest of the document
			log.Printf("OCR failed on page %d: %v", page, err)
			pages = append(pages, model.PageResult{Page: page, Err: err.Error()})
			continue
		}
		pages = append(pages, model.PageResult{Page: page, Text: text})
		texts = append(texts, text)
	}

	joined := strings.Join(texts, "\n")
	if strings.TrimSpace(joined) == "" {
		return nil, ErrExtractionFailed
	}

	return &model.ExtractedText{
		Text:       joined,
		Provenance: model.ProvenanceOCR,
		Pages:      pages,
	}, nil
}

func (s *ExtractService) recognizePage(ctx context.Context, documentPath string, page int) (string, error) {
	imagePath, err := s.document.Rasterize(ctx, documentPath, page, s.cfg.OCRDPI)
	if err != nil {
		return "", err
	}
	defer os.Remove(imagePath)

	return s.ocr.Recognize(ctx, imagePath)
}

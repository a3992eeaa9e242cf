package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/polyvox/api/internal/middleware"
	"github.com/polyvox/api/internal/model"
	"github.com/polyvox/api/internal/service"
	"github.com/polyvox/api/pkg/response"
)

const maxUploadSize = 50 * 1024 * 1024 // 50MB

const defaultTargetLang = "es"

type ProcessHandler struct {
	service    *service.JobService
	validator  *validator.Validate
	uploadsDir string
}

func NewProcessHandler(svc *service.JobService, v *validator.Validate, uploadsDir string) *ProcessHandler {
	return &ProcessHandler{
		service:    svc,
		validator:  v,
		uploadsDir: uploadsDir,
	}
}

// Process handles POST /api/process
// @Summary      Process document
// @Description  Upload a PDF and queue it for translation and narration
// @Tags         Process
// @Accept       multipart/form-data
// @Produce      json
// @Param        targetLang formData string false "Target language code (default: es)"
// @Param        summarize  formData bool   false "Summarize before translating"
// @Param        file       formData file   true  "PDF document (max 50MB)"
// @Success      202 {object} model.ProcessStartResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/process [post]
func (h *ProcessHandler) Process(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	req := model.ProcessRequest{
		TargetLang: c.FormValue("targetLang", defaultTargetLang),
		Summarize:  c.FormValue("summarize") == "true",
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	if file.Size > maxUploadSize {
		return response.ValidationError(c, "File size exceeds 50MB limit", map[string]interface{}{
			"maxSize":  maxUploadSize,
			"fileSize": file.Size,
		})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "application/pdf" && !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		return response.ValidationError(c, "Only PDF documents are supported", map[string]interface{}{
			"contentType": contentType,
		})
	}

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return response.ServiceError(c, "Failed to prepare upload directory")
	}

	safeName := sanitizeFilename(file.Filename)
	destPath := h.uniquePath(safeName)

	if err := c.SaveFile(file, destPath); err != nil {
		return response.ServiceError(c, "Failed to save file")
	}

	result, err := h.service.StartProcess(c.Context(), userID, destPath, filepath.Base(destPath), req.TargetLang, req.Summarize)
	if err != nil {
		os.Remove(destPath)
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// sanitizeFilename keeps letters, digits, dots and hyphens; everything else
// becomes an underscore so the name is safe on disk and in URLs.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "document.pdf"
	}
	return sb.String()
}

// uniquePath appends _N before the extension until the name is free
func (h *ProcessHandler) uniquePath(name string) string {
	path := filepath.Join(h.uploadsDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(h.uploadsDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

package handler

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/polyvox/api/pkg/response"
)

type AudioHandler struct {
	audioDir string
}

func NewAudioHandler(audioDir string) *AudioHandler {
	return &AudioHandler{audioDir: audioDir}
}

// Serve handles GET /audio/:filename
// @Summary      Download audio
// @Description  Stream a synthesized audio file
// @Tags         Audio
// @Produce      audio/mpeg
// @Param        filename path string true "Audio filename"
// @Success      200 {file} binary
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /audio/{filename} [get]
func (h *AudioHandler) Serve(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if filename == "" {
		return response.ValidationError(c, "Filename is required", nil)
	}

	// reject anything that could escape the audio directory
	if strings.Contains(filename, "..") || strings.HasPrefix(filename, "/") || strings.ContainsRune(filename, os.PathSeparator) {
		return response.ValidationError(c, "Invalid filename", nil)
	}

	path := filepath.Join(h.audioDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return response.NotFound(c, "Audio file not found")
	}

	c.Set("Content-Type", "audio/mpeg")
	return c.SendFile(path)
}

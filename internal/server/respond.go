package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"fetcharr/internal/command/execute"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/downloads"
	"fetcharr/internal/file"
	"fetcharr/internal/models"
	"fetcharr/internal/ratelimit"
)

type response struct {
	Success bool                   `json:"success"`
	Info    *models.VideoMetadata  `json:"info,omitempty"`
	File    *models.Artifact       `json:"file,omitempty"`
	Formats []models.FormatProfile `json:"formats,omitempty"`
	Message string                 `json:"message,omitempty"`
}

type healthResponse struct {
	Success bool                  `json:"success"`
	YTDLP   *downloads.ToolStatus `json:"ytdlp"`
	FFmpeg  *downloads.ToolStatus `json:"ffmpeg"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Pl.W("Failed to write JSON response: %v", err)
	}
}

// writeError maps err to a status code and client-facing message.
func writeError(w http.ResponseWriter, p models.PlatformTag, err error) {
	status, msg := statusFor(p, err)
	writeJSON(w, status, response{Message: msg})
}

func statusFor(p models.PlatformTag, err error) (int, string) {
	switch {
	case errors.Is(err, downloads.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, downloads.ErrUnsupportedDomain):
		return http.StatusBadRequest, "This site is not supported."
	case errors.Is(err, file.ErrPathViolation):
		return http.StatusForbidden, "Invalid file path."
	case errors.Is(err, file.ErrNotFound):
		return http.StatusNotFound, "File not found. It may have expired or already been downloaded."
	case errors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests. Please try again later."
	case errors.Is(err, downloads.ErrPlatformBlocked):
		return http.StatusServiceUnavailable, downloads.UserMessage(p, err)
	case errors.Is(err, execute.ErrTimeout):
		return http.StatusGatewayTimeout, downloads.UserMessage(p, err)
	case p == "":
		return http.StatusInternalServerError, "Internal server error."
	default:
		return http.StatusBadGateway, downloads.UserMessage(p, err)
	}
}

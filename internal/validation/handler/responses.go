package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"securedeal/internal/validation/models"
	"securedeal/pkg/requestcontext"
)

type rulesResponse struct {
	SnapshotHash string        `json:"rulesSnapshotHash"`
	Rules        []models.Rule `json:"rules"`
}

type reloadResponse struct {
	SnapshotHash string `json:"rulesSnapshotHash"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, msg string, err error) {
	if err != nil {
		level := slog.LevelWarn
		if status >= 500 {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, msg,
			"status", status,
			"path", r.URL.Path,
			"error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: requestcontext.RequestID(r.Context()),
	})
}

package api

import (
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"
)

// writeJSON serializes payload and writes it with the given status code.
// Encoding failures are logged; headers are already committed at that point.
func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// errorResponse is the uniform error body for the admin API.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, errorResponse{Error: message}, logger)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrorResponse is the uniform failure body
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Sport   string `json:"sport,omitempty"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, logger zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondRaw writes an already encoded JSON body
func respondRaw(w http.ResponseWriter, logger zerolog.Logger, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		logger.Debug().Err(err).Msg("failed to write response body")
	}
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, logger zerolog.Logger, status int, message string) {
	respondJSON(w, logger, status, ErrorResponse{Success: false, Message: message})
}

// Package response writes the versioned JSON envelope for responses produced
// outside huma, such as unmatched routes.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
)

// Version is the envelope format version. It matches the huma responses.
const Version = 1

// Envelope is the error envelope shape.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		Version: Version,
		Error:   message,
		Code:    string(code),
	}

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode error response", "error", err)
		}
	}
}

// NotFound returns a handler for unmatched routes.
func NotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		Error(w, http.StatusNotFound, domainerrors.CodeNotFound, "route not found", logger)
	}
}

// MethodNotAllowed returns a handler for routes hit with the wrong method.
func MethodNotAllowed(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusMethodNotAllowed, domainerrors.CodeValidation, r.Method+" not allowed on this route", logger)
	}
}

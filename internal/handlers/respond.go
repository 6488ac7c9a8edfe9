// Package handlers implements the JSON REST handlers for the DocShelf API:
// the public catalog surface, authentication, and user administration.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"docshelf/internal/workflow"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// respondError writes a JSON error body with the given status.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondWorkflowError maps workflow errors onto status codes. Caller-fault
// errors carry their message through; infrastructure failures become a
// generic 500 with the detail logged only.
func respondWorkflowError(w http.ResponseWriter, err error) {
	var ve *workflow.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, workflow.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, workflow.ErrInvalidOrExpiredToken):
		respondError(w, http.StatusBadRequest, "invalid or expired token")
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "server error")
	}
}

// decodeJSON parses the request body into v. Returns false after writing a
// 400 when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

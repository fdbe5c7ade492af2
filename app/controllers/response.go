package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"notebook/app/logger"
	"notebook/app/models"
	"notebook/app/services"
)

// maxBodyBytes bounds request bodies; the largest valid post is well below it.
const maxBodyBytes = 1 << 20

// Helper functions for consistent response handling

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// sendRaw writes an already encoded JSON payload.
func sendRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}

// sendServiceError maps service errors onto HTTP responses. Store failures
// are logged and reported without internals.
func sendServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		sendJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"errors": verrs,
		})
	case errors.Is(err, services.ErrInvalidID):
		sendError(w, "Invalid post ID", http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		sendError(w, "Post not found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidCredentials):
		sendError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrUnauthorized):
		sendError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, services.ErrUsernameTaken):
		sendError(w, err.Error(), http.StatusConflict)
	default:
		log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", logger.RequestID(r.Context()),
			"error", err,
		)
		sendError(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

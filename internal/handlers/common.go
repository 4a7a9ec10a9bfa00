package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"artshowcase-backend/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON payload
func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// statusForError maps a domain error to an HTTP status code
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidHandle),
		errors.Is(err, models.ErrWeakPassword),
		errors.Is(err, models.ErrDuplicateHandle),
		errors.Is(err, models.ErrMissingFile),
		errors.Is(err, models.ErrInvalidFileType):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, models.ErrProfileNotFound),
		errors.Is(err, models.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateAccount):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError sends the domain error's message for client errors and
// a generic message for everything else.
func respondDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	respondError(w, message, status)
}

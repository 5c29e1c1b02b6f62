// Package handler contains the HTTP layer: decode the request, call the
// service, encode the response. No business rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkarim/marketplace/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status. Headers must be set
// before the first body write, hence the ordering below.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone out; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a domain error into a status code and the standard
// error body. The service layer stays HTTP-free; this switch is the single
// place that mapping lives.
//
// Conflicts return 400, not 409. The frontend predates this server and
// treats every business rejection as a 400 with a message; keeping that
// contract matters more than REST purity here.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errType = "validation_error"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
			errType = "conflict"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			errType = "unauthenticated"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errType = "not_found"
		}

		writeJSON(w, status, ErrorResponse{Error: errType, Message: appErr.Message})
		return
	}

	// Unknown error: generic 500, never leak internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON parses the request body into dst, rejecting malformed JSON with
// a validation error the client can show.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return false
	}
	return true
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bug-createdme/2share/internal/apperror"
)

// maxJSONBody bounds request bodies decoded by decodeJSON.
const maxJSONBody = 1 << 20

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps each sentinel to its HTTP status and wire name. Order matters:
// the first match wins.
var errorStatus = []struct {
	err    error
	status int
	name   string
}{
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrDuplicateLink, http.StatusConflict, "duplicate_link"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
	{apperror.ErrQuotaExceeded, http.StatusPaymentRequired, "quota_exceeded"},
	{apperror.ErrPlanUnavailable, http.StatusServiceUnavailable, "plan_unavailable"},
}

// writeError maps a domain error to a status code. Errors without an AppError in their
// chain are internal and their text is never sent to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, m := range errorStatus {
			if errors.Is(err, m.err) {
				writeJSON(w, m.status, ErrorResponse{
					Error:   m.name,
					Message: appErr.Message,
					Field:   appErr.Field,
				})
				return
			}
		}
	}

	slog.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body", fmt.Sprintf("request body must be %d bytes or less", maxJSONBody))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is empty")
		default:
			return apperror.ValidationFailed("body", "invalid JSON: "+err.Error())
		}
	}
	return nil
}

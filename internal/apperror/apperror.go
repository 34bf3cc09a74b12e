// Package apperror defines the error kinds shared by the engine and the server.
//
// Every constructor returns an *AppError wrapping one sentinel, so callers can match with
// errors.Is(err, apperror.ErrQuotaExceeded) no matter how many fmt.Errorf("...: %w") layers
// sit on top. HTTP handlers map the sentinels to status codes; the editing engine maps them to
// recoverable warnings.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrPlanUnavailable   = errors.New("plan unavailable")
	ErrDuplicateLink     = errors.New("duplicate link")
	ErrRemoteWriteFailed = errors.New("remote write failed")
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable
	Field   string // optional: field causing the error
	Cause   error  // optional: underlying failure
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// PortfolioNotFound is the recoverable "nothing persisted yet" state of the store.
func PortfolioNotFound(id string, cause error) *AppError {
	msg := "portfolio not found"
	if id != "" {
		msg = fmt.Sprintf("portfolio not found with id %s", id)
	}
	return &AppError{Err: ErrNotFound, Message: msg, Cause: cause}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// QuotaExceeded reports that resource would go over the plan limit.
func QuotaExceeded(resource string, limit int) *AppError {
	return &AppError{
		Err:     ErrQuotaExceeded,
		Message: fmt.Sprintf("%s limit of %d reached for the current plan", resource, limit),
		Field:   resource,
	}
}

func PlanUnavailable(cause error) *AppError {
	return &AppError{
		Err:     ErrPlanUnavailable,
		Message: "plan is unavailable or inactive",
		Cause:   cause,
	}
}

func DuplicateLink(name string) *AppError {
	return &AppError{
		Err:     ErrDuplicateLink,
		Message: fmt.Sprintf("a %s link already exists", name),
		Field:   "name",
	}
}

func RemoteWriteFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrRemoteWriteFailed,
		Message: "saving portfolio failed",
		Cause:   cause,
	}
}

// Recoverable reports whether err is one of the conditions the editor surfaces as a warning
// while keeping its in-memory state.
func Recoverable(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrPlanUnavailable) ||
		errors.Is(err, ErrDuplicateLink) ||
		errors.Is(err, ErrRemoteWriteFailed)
}

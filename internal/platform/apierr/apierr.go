package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromAggregate maps aggregate error codes onto HTTP status + API codes.
// Unknown failures collapse into a generic 500 with a safe message.
func FromAggregate(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return New(http.StatusBadRequest, "validation", err)
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, "not_found", err)
	case domainagg.CodeForbidden:
		return New(http.StatusForbidden, "forbidden", err)
	case domainagg.CodeInvariantViolation, domainagg.CodePreconditionFailed:
		return New(http.StatusBadRequest, "invalid_state", err)
	case domainagg.CodeConflict:
		return New(http.StatusConflict, "conflict", err)
	case domainagg.CodeRetryable:
		return New(http.StatusServiceUnavailable, "retryable", err)
	default:
		return New(http.StatusInternalServerError, "internal", errors.New("internal server error"))
	}
}

package apierr

import (
	"errors"
	"net/http"
)

const (
	CodeValidation   = "validation"
	CodeTenantExists = "tenant_exists"
)

// Error is a service-level failure that already knows its HTTP status and body code.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	case e.Status != 0:
		return http.StatusText(e.Status)
	default:
		return "service error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(err error) *Error { return New(http.StatusBadRequest, CodeValidation, err) }

func Conflict(code string, err error) *Error { return New(http.StatusConflict, code, err) }

// From returns the first status-carrying error in err's chain.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil && ae.Status != 0 {
		return ae, true
	}
	return nil, false
}

// StatusCode is From(err).Status, or 0 when err carries no status.
func StatusCode(err error) int {
	if ae, ok := From(err); ok {
		return ae.Status
	}
	return 0
}

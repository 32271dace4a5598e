package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes. The HTTP layer maps these to responses; services never
// write status codes themselves.
const (
	CodeInvalidInput    = "invalid_input"
	CodeUnauthenticated = "unauthenticated"
	CodeAccessDenied    = "access_denied"
	CodeNotFound        = "not_found"
	CodeDuplicate       = "duplicate"
	CodeInvalidRelation = "invalid_relation"
	CodeProviderError   = "provider_error"
	CodeInternal        = "internal"
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

func InvalidInput(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, err)
}

func Unauthenticated(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, err)
}

func AccessDenied(err error) *Error {
	return New(http.StatusForbidden, CodeAccessDenied, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Duplicate(err error) *Error {
	return New(http.StatusConflict, CodeDuplicate, err)
}

func InvalidRelation(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidRelation, err)
}

// ProviderError covers upstream identity/storage failures. Identity exchange
// failures surface as 401 per the API contract.
func ProviderError(err error) *Error {
	return New(http.StatusUnauthorized, CodeProviderError, err)
}

// From extracts the *Error from an error chain, falling back to a generic
// internal error so handlers never leak raw detail.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}

func HasCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

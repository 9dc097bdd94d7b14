// Package apierror provides the error taxonomy shared by services and handlers.
// Services return *Error values; handlers turn them into the JSON envelope below
// without leaking storage details (SQL errors, stack traces, file paths).
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies a failure. Callers switch on it instead of matching messages.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindValidation Kind = "validation"
	KindInternal   Kind = "internal"
)

// Error is the single error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(msg string) *Error  { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error  { return &Error{Kind: KindConflict, Message: msg} }
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// Validation builds a validation error; fields may be nil.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Internal wraps a collaborator failure that has no domain meaning.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From classifies any error. Errors that already are *Error pass through;
// well-known GORM sentinels are translated, everything else is internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: "record not found", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "duplicate value", Err: err}
	default:
		return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
	}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return From(err).Kind == kind
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail   string            `json:"detail"`
	Category Kind              `json:"category,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Envelope renders e for the wire. Internal errors never expose their cause.
func (e *Error) Envelope() *APIError {
	if e.Kind == KindInternal {
		return &APIError{Detail: "internal server error", Category: KindInternal}
	}
	return &APIError{Detail: e.Message, Category: e.Kind, Fields: e.Fields}
}

// NewValidation wraps multiple field errors coming from request binding.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{Detail: "validation failed", Category: KindValidation, Fields: fields}
}

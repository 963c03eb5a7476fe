// Package apperr carries a failure kind, an HTTP status and a client-facing
// message from the point where an error is detected up to the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidationFailed  Kind = "validation_failed"
	KindDuplicateResource Kind = "duplicate_resource"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindInvalidToken      Kind = "invalid_token"
	KindNotAuthenticated  Kind = "not_authenticated"
	KindInternal          Kind = "internal"
)

const (
	MsgValidationFailed = "validation failed, entered data is incorrect."
	MsgInvalidToken     = "Invalid token."
	MsgNotAuthenticated = "Not authenticated."
	MsgInternal         = "Internal server error"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Data    any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can compare against the sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidationFailed, Status: http.StatusUnprocessableEntity, Message: MsgValidationFailed, Data: fields}
}

// ValidationMessage is a 422 whose message is specific to the failing check.
func ValidationMessage(message string) *Error {
	return &Error{Kind: KindValidationFailed, Status: http.StatusUnprocessableEntity, Message: message}
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, http.StatusUnauthorized, message)
}

func InvalidToken() *Error {
	return New(KindInvalidToken, http.StatusUnauthorized, MsgInvalidToken)
}

func NotAuthenticated() *Error {
	return New(KindNotAuthenticated, http.StatusUnauthorized, MsgNotAuthenticated)
}

func Duplicate(message string) *Error {
	return New(KindDuplicateResource, http.StatusConflict, message)
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: MsgInternal, Err: err}
}

// From returns err as an *Error, mapping anything untyped to Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Status == 0 {
			cp := *e
			cp.Status = http.StatusInternalServerError
			return &cp
		}
		return e
	}
	return Internal(err)
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

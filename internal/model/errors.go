package model

import "errors"

// Error kinds. Every client-facing failure wraps exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("unauthenticated")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// FieldError describes a problem with a single input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a handled failure that is reported to the client as-is
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NewValidationError(msg string, fields ...FieldError) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Fields: fields}
}

func NewAuthError(msg string) *Error {
	return &Error{Kind: ErrAuth, Message: msg}
}

func NewForbiddenError(msg string) *Error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NewConflictError(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a user-facing error.
type Kind string

const (
	KindInternal   Kind = "internal"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	// KindDomainRule covers actions that are well formed but not allowed,
	// like following yourself.
	KindDomainRule Kind = "domain_rule"
)

// Error is the error returned by service operations. Message is safe to show
// to clients; Err is kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Auth(message string) *Error {
	return New(KindAuth, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func DomainRule(message string) *Error {
	return New(KindDomainRule, message)
}

// Validation builds a validation error carrying per-field messages. The first
// field message doubles as the error message when message is empty.
func Validation(message string, fields map[string]string) *Error {
	if message == "" {
		message = "Errors"
		for _, v := range fields {
			message = v
			break
		}
	}
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// FieldError is a validation error on a single field.
func FieldError(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

// Internal wraps a storage or collaborator failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf walks the wrap chain and returns the kind of the first *Error found,
// or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

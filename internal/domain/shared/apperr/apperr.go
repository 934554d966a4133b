// Package apperr classifies failures of the marketplace workflows so that the
// transport layer can map them to status codes without knowing every sentinel.
package apperr

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindUnauthenticated  Kind = "unauthenticated"
	KindAuthorization    Kind = "authorization"
	KindPriceMismatch    Kind = "price_mismatch"
	KindState            Kind = "state"
	KindConflict         Kind = "conflict"
	KindExternalProvider Kind = "external_provider"
	KindDataIntegrity    Kind = "data_integrity"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Err != nil && e.Err.Error() != e.Message {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and, when set, by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithCode returns a copy tagged with a machine readable code.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string, fields ...FieldError) *Error {
	e := newError(KindValidation, message, nil)
	e.Fields = append([]FieldError(nil), fields...)
	return e
}

func NotFound(message string, cause error) *Error {
	return newError(KindNotFound, message, cause)
}

func Unauthenticated(message string) *Error {
	return newError(KindUnauthenticated, message, nil)
}

func Authorization(message string) *Error {
	return newError(KindAuthorization, message, nil)
}

func PriceMismatch(message string) *Error {
	return newError(KindPriceMismatch, message, nil)
}

func State(message string, cause error) *Error {
	return newError(KindState, message, cause)
}

func Conflict(message string, cause error) *Error {
	return newError(KindConflict, message, cause)
}

func ExternalProvider(message string, cause error) *Error {
	return newError(KindExternalProvider, message, cause)
}

func DataIntegrity(message string, cause error) *Error {
	return newError(KindDataIntegrity, message, cause)
}

// KindOf reports the kind of the first *Error in the chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

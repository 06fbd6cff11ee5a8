// Package apperr defines the error taxonomy shared by every service in the API.
//
// Each error carries a Kind with a stable machine label and an HTTP status, a
// human-readable message and, for validation and conflict errors, per-field
// messages. Callers match kinds with errors.Is against the exported sentinels.
package apperr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an application error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuthentication
	KindNotFound
	KindBusinessRule
)

var (
	ErrValidation     = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrConflict       = &Error{Kind: KindConflict, Message: "resource already exists"}
	ErrAuthentication = &Error{Kind: KindAuthentication, Message: "authentication required"}
	ErrNotFound       = &Error{Kind: KindNotFound, Message: "not found"}
	ErrBusinessRule   = &Error{Kind: KindBusinessRule, Message: "operation not allowed"}
)

// Label is the stable machine-usable identifier of the kind.
func (k Kind) Label() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication_failed"
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule_violation"
	default:
		return "internal_error"
	}
}

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error of a known kind.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is reports kind equality so that errors.Is(err, ErrNotFound) matches any
// not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Label returns the stable label of the error kind.
func (e *Error) Label() string { return e.Kind.Label() }

// Status returns the HTTP status of the error kind.
func (e *Error) Status() int { return e.Kind.Status() }

func NotFound(message string) *Error {
	if message == "" {
		message = "Not found."
	}
	return &Error{Kind: KindNotFound, Message: message}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func BusinessRule(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

// Conflict builds a uniqueness violation tied to a field.
func Conflict(field, message string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// Invalid builds a single-field validation error.
func Invalid(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "invalid input",
		Fields:  map[string][]string{field: {message}},
	}
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

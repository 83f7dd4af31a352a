package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("record not found")

	ErrAuthRequired = NewAuthenticationError("Authentication required. Please log in.")
	ErrInvalidToken = NewAuthenticationError("Invalid or expired token. Please log in again.")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fld := range err.Fields {
		msgs = append(msgs, fld.Error)
	}
	return strings.Join(msgs, ", ")
}

// AuthenticationError means the request carries no usable credentials.
type AuthenticationError struct {
	message string
}

func NewAuthenticationError(msg string) error {
	return &AuthenticationError{message: msg}
}

func (err AuthenticationError) Error() string {
	return err.message
}

// AuthorizationError means the caller is known but not allowed to act on the resource.
type AuthorizationError struct {
	message string
}

func NewAuthorizationError(msg string) error {
	return &AuthorizationError{message: msg}
}

// NewRoleError names the roles permitted on the resource.
func NewRoleError(allowed ...Role) error {
	names := make([]string, 0, len(allowed))
	for _, r := range allowed {
		names = append(names, string(r))
	}
	return NewAuthorizationError(fmt.Sprintf("Access denied. This resource requires one of: %s", strings.Join(names, ", ")))
}

func (err AuthorizationError) Error() string {
	return err.message
}

type StoreErrorKind int

const (
	StoreFailure StoreErrorKind = iota
	StoreUniqueViolation
	StoreForeignKeyViolation
)

// StoreError wraps a failure reported by the backing store.
type StoreError struct {
	Kind StoreErrorKind
	Err  error
}

func NewStoreError(kind StoreErrorKind, err error) error {
	return &StoreError{Kind: kind, Err: err}
}

func (err StoreError) Error() string {
	if err.Err == nil {
		return err.UserMessage()
	}
	return err.Err.Error()
}

func (err StoreError) Unwrap() error { return err.Err }

// IsConstraint reports whether the store rejected the write because of the caller's input.
func (err StoreError) IsConstraint() bool {
	return err.Kind == StoreUniqueViolation || err.Kind == StoreForeignKeyViolation
}

// UserMessage is the text safe to show to API clients.
func (err StoreError) UserMessage() string {
	switch err.Kind {
	case StoreUniqueViolation:
		return "A record with this information already exists."
	case StoreForeignKeyViolation:
		return "Referenced record not found. Please check your inputs."
	}
	if err.Err != nil {
		return err.Err.Error()
	}
	return "unknown store error"
}

func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("sign in required")
	ErrForbidden         = errors.New("you are not a participant of this session")
	ErrPermissionDenied  = errors.New("permission denied reading data")
	ErrSessionNotActive  = errors.New("session is not active")
	ErrNoMatch           = errors.New("no suitable tutor found, please try again")
	ErrInFlight          = errors.New("a request for this game is already in progress")
	ErrInvalidTransition = errors.New("action not allowed in the current state")
)

// ValidationError maps request fields to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ExternalError is a failed call to an outside service.
type ExternalError struct {
	Service string
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrParse is matched by every *ParseError via errors.Is.
var ErrParse = errors.New("parse model response")

// ParseKind says which stage of response parsing failed.
type ParseKind int

const (
	// ParseKindDecode means the text was not valid JSON.
	ParseKindDecode ParseKind = iota + 1
	// ParseKindValidation means the JSON did not match the result schema.
	ParseKindValidation
)

func (k ParseKind) String() string {
	switch k {
	case ParseKindDecode:
		return "decode"
	case ParseKindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ParseError reports a model response that could not be turned into a
// ClassificationResult.
type ParseError struct {
	Kind  ParseKind
	Field string // offending field for validation errors, empty otherwise
	Raw   string // response text as received
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s error on field %q: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// APIError wraps a failed call to a model provider so callers can tell auth
// failures from other API failures.
type APIError struct {
	Provider   string
	StatusCode int // zero when no HTTP response was received
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the provider rejected the credentials.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

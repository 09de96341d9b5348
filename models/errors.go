package models

import (
	"fmt"
	"sort"
	"strings"
)

// MalformedDescriptionError reports an agent description without a quoted
// segment. It is fatal for that one listing only.
type MalformedDescriptionError struct {
	Text string
}

func (e *MalformedDescriptionError) Error() string {
	return fmt.Sprintf("malformed agent description: expected a quoted segment in %q", e.Text)
}

// LookupUnavailableError wraps a failed geocode, distance or nearby lookup.
// The enricher degrades the dependent feature to missing when it sees one.
type LookupUnavailableError struct {
	Lookup string
	Err    error
}

func (e *LookupUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s lookup unavailable: %v", e.Lookup, e.Err)
	}
	return fmt.Sprintf("%s lookup unavailable", e.Lookup)
}

func (e *LookupUnavailableError) Unwrap() error {
	return e.Err
}

// ValidationError lists the submitted fields that are missing or invalid,
// keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a problem with field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

// HasErrors reports whether any field failed validation.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UnknownBedroomsError reports a bedrooms value outside BedroomChoices.
type UnknownBedroomsError struct {
	Value string
}

func (e *UnknownBedroomsError) Error() string {
	return fmt.Sprintf("unknown bedrooms value %q", e.Value)
}

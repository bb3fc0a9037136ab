package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoProducts = errors.New("no products could be extracted from page")

// NetworkError is returned when every retrieval route failed.
type NetworkError struct {
	Routes []string
	Errs   []error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("all %d routes failed [%s]: %v", len(e.Routes), strings.Join(e.Routes, ", "), errors.Join(e.Errs...))
}

func (e *NetworkError) Unwrap() []error {
	return e.Errs
}

// ParseError covers malformed or undersized markup.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse markup: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractionError is local to one candidate and never aborts a batch.
type ExtractionError struct {
	Index int
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("candidate #%d: %v", e.Index+1, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ValidationError marks a record that fails the minimum name/price constraints.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

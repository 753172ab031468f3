package services

import "fmt"

// MissingFieldError means a CSV header or row lacks a column the loader needs.
type MissingFieldError struct {
	Field string
	Line  int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q on line %d", e.Field, e.Line)
}

// StructureError means a product container is missing a sub-element or
// holds a value that cannot be parsed.
type StructureError struct {
	Index  int
	Field  string
	Reason string
	Err    error
}

func (e *StructureError) Error() string {
	msg := fmt.Sprintf("product container %d: %s: %s", e.Index, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructureError) Unwrap() error { return e.Err }

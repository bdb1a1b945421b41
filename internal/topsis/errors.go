package topsis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for an empty, non-rectangular, negative,
	// non-finite or degenerate decision matrix, and for non-positive or
	// non-finite weights.
	ErrInvalidInput = errors.New("topsis: invalid input")

	// ErrDimensionMismatch is returned when the weight or polarity vector
	// length differs from the number of criteria.
	ErrDimensionMismatch = errors.New("topsis: dimension mismatch")
)

// InputError describes a single validation failure. It unwraps to one of the
// package sentinels so callers can use errors.Is, or errors.As for the detail.
type InputError struct {
	Kind   error  // ErrInvalidInput or ErrDimensionMismatch
	Field  string // "matrix", "weights" or "benefit"
	Row    int    // -1 when not tied to a row
	Col    int    // -1 when not tied to a column
	Want   int    // expected length (dimension mismatches only)
	Got    int    // actual length (dimension mismatches only)
	Reason string
}

func (e *InputError) Error() string {
	if e.Kind == ErrDimensionMismatch {
		return fmt.Sprintf("%v: %s has length %d, want %d (one per criterion)", e.Kind, e.Field, e.Got, e.Want)
	}
	loc := e.Field
	switch {
	case e.Row >= 0 && e.Col >= 0:
		loc = fmt.Sprintf("%s[%d][%d]", e.Field, e.Row, e.Col)
	case e.Row >= 0:
		loc = fmt.Sprintf("%s row %d", e.Field, e.Row)
	case e.Col >= 0 && e.Field == "matrix":
		loc = fmt.Sprintf("%s column %d", e.Field, e.Col)
	case e.Col >= 0:
		loc = fmt.Sprintf("%s[%d]", e.Field, e.Col)
	}
	return fmt.Sprintf("%v: %s %s", e.Kind, loc, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Kind }

func invalid(field string, row, col int, format string, args ...interface{}) error {
	return &InputError{
		Kind:   ErrInvalidInput,
		Field:  field,
		Row:    row,
		Col:    col,
		Reason: fmt.Sprintf(format, args...),
	}
}

func mismatch(field string, want, got int) error {
	return &InputError{
		Kind:  ErrDimensionMismatch,
		Field: field,
		Row:   -1,
		Col:   -1,
		Want:  want,
		Got:   got,
	}
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. A *DataError matches exactly one of these with errors.Is.
var (
	ErrParse  = errors.New("parse error")
	ErrType   = errors.New("type error")
	ErrRange  = errors.New("range error")
	ErrSchema = errors.New("schema error")
)

// DataError reports a malformed input value with enough context to find it:
// the file, the 1-based line (header is line 1) and the column.
type DataError struct {
	Kind   error
	File   string
	Row    int // 0 when the error is not tied to a row
	Column string
	Value  string
	Detail string
	Err    error
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		if e.Row > 0 {
			b.WriteString(",")
		} else {
			b.WriteString(":")
		}
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *DataError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewParseError reports a malformed timestamp or an unreadable row.
func NewParseError(file string, row int, column, value string, err error) *DataError {
	return &DataError{Kind: ErrParse, File: file, Row: row, Column: column, Value: value, Err: err}
}

// NewTypeError reports a non-numeric value where a number was expected.
func NewTypeError(file string, row int, column, value string) *DataError {
	return &DataError{Kind: ErrType, File: file, Row: row, Column: column, Value: value, Detail: "expected a number"}
}

// NewRangeError reports a numeric value outside its allowed interval.
func NewRangeError(file string, row int, column, value, detail string) *DataError {
	return &DataError{Kind: ErrRange, File: file, Row: row, Column: column, Value: value, Detail: detail}
}

// NewSchemaError reports a missing or unusable column.
func NewSchemaError(file, column, detail string) *DataError {
	return &DataError{Kind: ErrSchema, File: file, Column: column, Detail: detail}
}

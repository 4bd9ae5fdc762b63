package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable is returned when the dataset cannot be fetched.
	ErrSourceUnavailable = errors.New("dataset source unavailable")
	// ErrSchema is returned when the dataset does not have the expected shape.
	ErrSchema = errors.New("dataset schema error")
	// ErrEmptyYear is returned when statistics are requested for a year without rows.
	ErrEmptyYear = errors.New("no transactions for year")
	// ErrInvalidFilter is returned for malformed filter parameters.
	ErrInvalidFilter = errors.New("invalid filter")
)

// SchemaError describes why a dataset could not be decoded.
type SchemaError struct {
	Missing []string // required columns absent from the header
	Line    int      // 1-based line of the offending row, 0 for header problems
	Column  string
	Value   string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing columns %s", ErrSchema, strings.Join(e.Missing, ", "))
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: invalid %s %q", ErrSchema, e.Line, e.Column, e.Value)
	}
	return ErrSchema.Error()
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// EmptyYearError reports a statistics request for a year with zero rows.
type EmptyYearError struct {
	Year int
}

func (e *EmptyYearError) Error() string {
	return fmt.Sprintf("%s %d", ErrEmptyYear, e.Year)
}

func (e *EmptyYearError) Is(target error) bool { return target == ErrEmptyYear }

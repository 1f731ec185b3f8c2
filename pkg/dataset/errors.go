package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStop can be returned by a scan callback to end the scan early
	// without reporting an error.
	ErrStop = errors.New("dataset: stop scan")

	// ErrFieldCount indicates a row whose field count differs from the header.
	ErrFieldCount = errors.New("field count does not match header")

	// ErrMissingValue indicates a missing value in a required column.
	ErrMissingValue = errors.New("missing value in required column")
)

// AcquisitionError reports a dataset that could not be opened. It is fatal
// for a run: nothing is written to the graph after it.
type AcquisitionError struct {
	Dataset Table
	Path    string
	Err     error
}

func (e *AcquisitionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dataset %s unavailable: %v", e.Dataset, e.Err)
	}
	return fmt.Sprintf("dataset %s unavailable at %s: %v", e.Dataset, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *AcquisitionError) Unwrap() error { return e.Err }

// Is implements errors.Is support for AcquisitionError.
func (e *AcquisitionError) Is(target error) bool {
	_, ok := target.(*AcquisitionError)
	return ok
}

// SchemaError reports a header that lacks required columns.
type SchemaError struct {
	Dataset Table
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s: header missing columns %s", e.Dataset, strings.Join(e.Missing, ", "))
}

// Is implements errors.Is support for SchemaError.
func (e *SchemaError) Is(target error) bool {
	_, ok := target.(*SchemaError)
	return ok
}

// RowError reports a malformed row. Line is 1-based and counts the header.
type RowError struct {
	Dataset Table
	Line    int
	Column  string
	Err     error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("dataset %s line %d: %v", e.Dataset, e.Line, e.Err)
	}
	return fmt.Sprintf("dataset %s line %d column %s: %v", e.Dataset, e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *RowError) Unwrap() error { return e.Err }

// Is implements errors.Is support for RowError.
func (e *RowError) Is(target error) bool {
	_, ok := target.(*RowError)
	return ok
}

package orderimport

import (
	"errors"
	"fmt"
)

// Structural errors abort the entire run before any row is processed.
var (
	// ErrEmptyFile is returned when the uploaded file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when a CSV file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrTooFewRows is returned when the file lacks a header or data rows
	ErrTooFewRows = errors.New("file must contain at least a header row and one data row")

	// ErrUnsupportedFormat is returned for file types outside csv/xls/xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoSheets is returned when a spreadsheet container has no sheets
	ErrNoSheets = errors.New("no sheets found in spreadsheet")
)

// HeaderError reports a header cell that does not match the column contract.
type HeaderError struct {
	Index    int
	Expected string
	Actual   string
}

// Error implements the error interface
func (e *HeaderError) Error() string {
	return fmt.Sprintf("header column %d mismatch: expected %q, got %q", e.Index+1, e.Expected, e.Actual)
}

// HeaderCountError reports a header with too few columns.
type HeaderCountError struct {
	Expected int
	Actual   int
}

// Error implements the error interface
func (e *HeaderCountError) Error() string {
	return fmt.Sprintf("header has %d columns, expected at least %d", e.Actual, e.Expected)
}

package orderimport

import "strings"

// ValidateHeader compares the header row against the fixed column contract.
// Matching is case-insensitive and order-sensitive; there is no partial
// acceptance since downstream field offsets are positional. Trailing extra
// columns are tolerated so a previously exported corrected file, which
// carries appended status columns, can be re-imported as is.
func ValidateHeader(header []string) error {
	if len(header) < NumColumns {
		return &HeaderCountError{Expected: NumColumns, Actual: len(header)}
	}

	for i, expected := range ExpectedColumns {
		actual := strings.TrimSpace(header[i])
		if !strings.EqualFold(actual, expected) {
			return &HeaderError{Index: i, Expected: expected, Actual: actual}
		}
	}

	return nil
}

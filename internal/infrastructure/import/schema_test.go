package orderimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractColumns() []string {
	return append([]string{}, ExpectedColumns[:]...)
}

func TestValidateHeader(t *testing.T) {
	t.Run("accepts the exact contract header", func(t *testing.T) {
		assert.NoError(t, ValidateHeader(contractColumns()))
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		header := contractColumns()
		for i, c := range header {
			header[i] = strings.ToLower(c)
		}
		assert.NoError(t, ValidateHeader(header))
	})

	t.Run("cells are trimmed before comparison", func(t *testing.T) {
		header := contractColumns()
		header[0] = "  ORDER ID  "
		assert.NoError(t, ValidateHeader(header))
	})

	t.Run("renamed column reports position and expectation", func(t *testing.T) {
		header := contractColumns()
		header[colDate] = "ORDER DATE"

		err := ValidateHeader(header)

		require.Error(t, err)
		var headerErr *HeaderError
		require.ErrorAs(t, err, &headerErr)
		assert.Equal(t, colDate, headerErr.Index)
		assert.Equal(t, "DATE", headerErr.Expected)
		assert.Equal(t, "ORDER DATE", headerErr.Actual)
		assert.Contains(t, err.Error(), "column 3")
	})

	t.Run("swapped columns fail at the first mismatch", func(t *testing.T) {
		header := contractColumns()
		header[colOrderID], header[colProductID] = header[colProductID], header[colOrderID]

		err := ValidateHeader(header)

		var headerErr *HeaderError
		require.ErrorAs(t, err, &headerErr)
		assert.Equal(t, colOrderID, headerErr.Index)
	})

	t.Run("too few columns", func(t *testing.T) {
		header := contractColumns()[:NumColumns-1]

		err := ValidateHeader(header)

		var countErr *HeaderCountError
		require.ErrorAs(t, err, &countErr)
		assert.Equal(t, NumColumns, countErr.Expected)
		assert.Equal(t, NumColumns-1, countErr.Actual)
	})

	t.Run("extra trailing columns are tolerated", func(t *testing.T) {
		// The corrected export carries STATUS and ERRORS appended
		assert.NoError(t, ValidateHeader(ExportColumns))
	})
}

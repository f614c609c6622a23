package orderimport

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/orders"
)

func exportFixture() []*orders.ParsedOrder {
	return []*orders.ParsedOrder{
		{
			OrderID: "ORD001",
			Lines: []orders.ProductLine{
				{ProductKey: "PROD001", Name: "Product 1", Quantity: 2, UnitPrice: decimal.RequireFromString("29.99")},
				{ProductKey: "PROD002", Name: "Product 2", Quantity: 1, UnitPrice: decimal.RequireFromString("45.00")},
			},
			Date:      "2024-01-15",
			Customer:  orders.Customer{Name: "John Doe", Phone: "+1234567890", Address: "123 Main St"},
			StoreName: "My Store",
			RowIndex:  2,
			Errors:    []string{},
			Warnings:  []string{"insufficient stock for PROD002: available 0, requested 1"},
		},
		{
			OrderID: "ORD002",
			Lines: []orders.ProductLine{
				{ProductKey: "MISSING", Name: "Nope", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
			},
			Date:      "2024-01-16",
			Customer:  orders.Customer{Name: "Jane Doe", Phone: "+1987654321", Address: "456 Oak Ave"},
			StoreName: "My Store",
			RowIndex:  3,
			Errors:    []string{"MISSING does not exist in selected warehouse"},
			Warnings:  []string{},
		},
	}
}

func TestReportExporter_Export(t *testing.T) {
	exporter := NewReportExporter()

	data, err := exporter.Export(exportFixture())
	require.NoError(t, err)

	t.Run("starts with a UTF-8 byte-order mark", func(t *testing.T) {
		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	})

	t.Run("uses CRLF line endings", func(t *testing.T) {
		assert.Contains(t, string(data), "\r\n")
	})

	reader := csv.NewReader(bytes.NewReader(data[3:]))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	t.Run("header is the contract plus status and errors", func(t *testing.T) {
		assert.Equal(t, ExportColumns, rows[0])
	})

	t.Run("multi-product fields are re-joined positionally", func(t *testing.T) {
		row := rows[1]
		assert.Equal(t, "ORD001", row[colOrderID])
		assert.Equal(t, "PROD001|PROD002", row[colProductID])
		assert.Equal(t, "Product 1|Product 2", row[colProductName])
		assert.Equal(t, "29.99|45", row[colPrice])
		assert.Equal(t, "2|1", row[colQuantity])
	})

	t.Run("valid rows carry status Valid and warnings stay out of ERRORS", func(t *testing.T) {
		row := rows[1]
		assert.Equal(t, StatusValid, row[NumColumns])
		assert.Equal(t, "", row[NumColumns+1])
	})

	t.Run("error rows carry status Error and the joined messages", func(t *testing.T) {
		row := rows[2]
		assert.Equal(t, StatusError, row[NumColumns])
		assert.Equal(t, "MISSING does not exist in selected warehouse", row[NumColumns+1])
	})
}

func TestReportExporter_RoundTrip(t *testing.T) {
	// An export must re-validate to the identical per-row outcome
	exporter := NewReportExporter()
	data, err := exporter.Export(exportFixture())
	require.NoError(t, err)

	catalog := decoderCatalog()
	result := NewFileProcessor().Process(data, FormatCSV, catalog)

	require.True(t, result.Success)
	require.Len(t, result.Orders, 2)
	assert.True(t, result.Orders[0].IsValid())
	assert.False(t, result.Orders[1].IsValid())
	assert.Contains(t, result.Orders[1].Errors, "MISSING does not exist in selected warehouse")
	assert.Equal(t, 3, result.Orders[1].RowIndex)
}

func TestReportExporter_FileName(t *testing.T) {
	exporter := NewReportExporter()
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	name := exporter.FileName(now)

	assert.Equal(t, "corrected_orders_2024-01-15.csv", name)
	assert.True(t, strings.HasSuffix(name, ".csv"))
}

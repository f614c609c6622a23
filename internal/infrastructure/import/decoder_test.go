package orderimport

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/catalog"
)

// decoderCatalog has PROD001 in stock and PROD002 out of stock, both with
// approved expeditions, plus PROD003 with a pending expedition only
func decoderCatalog() []catalog.WarehouseProduct {
	return []catalog.WarehouseProduct{
		{
			ID: "id-1", Code: "PROD001", Name: "Product 1", Status: "active", Stock: 5,
			Expeditions: []catalog.Expedition{
				{ID: "e-1", Status: catalog.ExpeditionStatusApproved, UnitPrice: decimal.RequireFromString("29.99")},
			},
		},
		{
			ID: "id-2", Code: "PROD002", Name: "Product 2", Status: "active", Stock: 0,
			Expeditions: []catalog.Expedition{
				{ID: "e-2", Status: catalog.ExpeditionStatusApproved, UnitPrice: decimal.RequireFromString("45.00")},
			},
		},
		{
			ID: "id-3", Code: "PROD003", Name: "Product 3", Status: "active", Stock: 9,
			Expeditions: []catalog.Expedition{
				{ID: "e-3", Status: catalog.ExpeditionStatusPending, UnitPrice: decimal.RequireFromString("12.00")},
			},
		},
	}
}

// row builds a full contract row with sensible defaults, then applies overrides
func row(overrides map[int]string) []string {
	cells := []string{
		"ORD001", "PROD001", "2024-01-15", "Product 1", "",
		"John Doe", "+1234567890", "123 Main St", "29.99", "2", "My Store",
	}
	for col, v := range overrides {
		cells[col] = v
	}
	return cells
}

func newTestDecoder() *RowDecoder {
	return NewRowDecoder(NewCatalogIndex(decoderCatalog()))
}

func TestRowDecoder_Decode(t *testing.T) {
	t.Run("decodes a clean single-product row", func(t *testing.T) {
		order := newTestDecoder().Decode(row(nil), 2)

		assert.True(t, order.IsValid())
		assert.Empty(t, order.Warnings)
		assert.Equal(t, "ORD001", order.OrderID)
		assert.Equal(t, "2024-01-15", order.Date)
		assert.Equal(t, "John Doe", order.Customer.Name)
		assert.Equal(t, 2, order.RowIndex)
		require.Len(t, order.Lines, 1)
		assert.Equal(t, "PROD001", order.Lines[0].ProductKey)
		assert.Equal(t, 2, order.Lines[0].Quantity)
		assert.True(t, decimal.RequireFromString("29.99").Equal(order.Lines[0].UnitPrice))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colOrderID:      "  ORD001  ",
			colCustomerName: " John Doe ",
		}), 2)

		assert.Equal(t, "ORD001", order.OrderID)
		assert.Equal(t, "John Doe", order.Customer.Name)
	})

	t.Run("product link is optional", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{colProductLink: ""}), 2)
		assert.True(t, order.IsValid())
	})

	t.Run("reports every missing required field", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colOrderID:      "",
			colDate:         "",
			colCustomerName: "",
		}), 2)

		assert.False(t, order.IsValid())
		assert.Contains(t, order.Errors, "Order ID is required")
		assert.Contains(t, order.Errors, "Date is required")
		assert.Contains(t, order.Errors, "Customer Name is required")
	})

	t.Run("resolves products by internal id as well as code", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{colProductID: "id-1"}), 2)
		assert.True(t, order.IsValid())
	})

	t.Run("unknown product is a hard error but the line is kept", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{colProductID: "MISSING"}), 2)

		assert.False(t, order.IsValid())
		assert.Contains(t, order.Errors, "MISSING does not exist in selected warehouse")
		// The line survives so the corrected export can reproduce the row
		require.Len(t, order.Lines, 1)
		assert.Equal(t, "MISSING", order.Lines[0].ProductKey)
	})

	t.Run("product without approved expedition is a hard error", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colProductID:   "PROD003",
			colProductName: "Product 3",
			colPrice:       "12.00",
		}), 2)

		assert.False(t, order.IsValid())
		assert.Contains(t, order.Errors, "PROD003 has no approved expeditions in selected warehouse")
	})

	t.Run("insufficient stock is only a warning", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colProductID:   "PROD002",
			colProductName: "Product 2",
			colPrice:       "45.00",
			colQuantity:    "3",
		}), 2)

		assert.True(t, order.IsValid())
		require.Len(t, order.Warnings, 1)
		assert.Equal(t, "insufficient stock for PROD002: available 0, requested 3", order.Warnings[0])
	})

	t.Run("decodes a multi-product row positionally", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colProductID:   "PROD001|PROD002",
			colProductName: "Product 1|Product 2",
			colPrice:       "29.99|45.00",
			colQuantity:    "2|1",
		}), 2)

		assert.True(t, order.IsValid())
		require.Len(t, order.Lines, 2)
		assert.Equal(t, "PROD002", order.Lines[1].ProductKey)
		assert.Equal(t, 1, order.Lines[1].Quantity)
		require.Len(t, order.Warnings, 1)
		assert.Contains(t, order.Warnings[0], "insufficient stock for PROD002")
	})

	t.Run("mismatched multi-product field counts is a single error", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colProductID:   "PROD001|PROD002",
			colProductName: "Product 1",
			colPrice:       "29.99|45.00",
			colQuantity:    "2|1",
		}), 2)

		assert.False(t, order.IsValid())
		require.Len(t, order.Errors, 1)
		assert.Equal(t, "mismatched product field counts: 2 ids, 1 names, 2 prices, 2 quantities", order.Errors[0])
		assert.Empty(t, order.Lines)
	})

	t.Run("blank product id inside a multi-value field reports its position", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colProductID:   "PROD001| ",
			colProductName: "Product 1|Product 2",
			colPrice:       "29.99|45.00",
			colQuantity:    "2|1",
		}), 2)

		assert.False(t, order.IsValid())
		assert.Contains(t, order.Errors, "product id is missing at position 2")
		// Only the first line was decoded
		require.Len(t, order.Lines, 1)
	})

	t.Run("unparseable price drops the line", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{colPrice: "abc"}), 2)

		assert.False(t, order.IsValid())
		assert.Contains(t, order.Errors, `invalid price "abc" for product PROD001`)
		assert.Empty(t, order.Lines)
	})

	t.Run("zero and negative values are invalid", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{
			colPrice:    "0",
			colQuantity: "-1",
		}), 2)

		assert.Contains(t, order.Errors, `invalid price "0" for product PROD001`)
		assert.Contains(t, order.Errors, `invalid quantity "-1" for product PROD001`)
		assert.Empty(t, order.Lines)
	})

	t.Run("date is opaque pass-through text", func(t *testing.T) {
		order := newTestDecoder().Decode(row(map[int]string{colDate: "not-a-date"}), 2)
		assert.True(t, order.IsValid())
		assert.Equal(t, "not-a-date", order.Date)
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Order ID", displayName("ORDER ID"))
	assert.Equal(t, "Customer Name", displayName("CUSTOMER NAME"))
	assert.Equal(t, "Price", displayName("PRICE"))
}

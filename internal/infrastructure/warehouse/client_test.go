package warehouse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/orders"
	infraconfig "github.com/sellerops/backend/internal/infrastructure/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&infraconfig.WarehouseConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := NewClient(&infraconfig.WarehouseConfig{})
		assert.Error(t, err)
	})

	t.Run("requires configuration", func(t *testing.T) {
		_, err := NewClient(nil)
		assert.Error(t, err)
	})
}

func TestClient_ProductsForWarehouse(t *testing.T) {
	t.Run("fetches and decodes products in order", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/v1/warehouses/WH-1/products", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"products": []map[string]any{
					{
						"id": "p-1", "code": "SKU-A", "name": "Widget", "status": "active", "stock": 12,
						"expeditions": []map[string]any{
							{"id": "e-1", "status": "approved", "unit_price": "4.50"},
						},
					},
					{
						"id": "p-2", "code": "SKU-B", "name": "Gadget", "status": "active", "stock": 0,
						"expeditions": []map[string]any{},
					},
				},
			})
		}))

		products, err := client.ProductsForWarehouse(context.Background(), "WH-1")
		require.NoError(t, err)
		require.Len(t, products, 2)

		assert.Equal(t, "SKU-A", products[0].Code)
		assert.Equal(t, 12, products[0].Stock)
		require.Len(t, products[0].Expeditions, 1)
		assert.Equal(t, catalog.ExpeditionStatusApproved, products[0].Expeditions[0].Status)
		assert.True(t, products[0].Expeditions[0].UnitPrice.Equal(decimal.RequireFromString("4.50")))

		assert.Equal(t, "SKU-B", products[1].Code)
		assert.Empty(t, products[1].Expeditions)
	})

	t.Run("propagates HTTP errors", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "warehouse not found", http.StatusNotFound)
		}))

		_, err := client.ProductsForWarehouse(context.Background(), "WH-404")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 404")
	})

	t.Run("rejects empty warehouse ID", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		}))

		_, err := client.ProductsForWarehouse(context.Background(), "")
		assert.Error(t, err)
	})
}

func TestClient_CreateBulk(t *testing.T) {
	t.Run("submits orders and decodes result", func(t *testing.T) {
		var received bulkCreateRequest
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/warehouses/WH-1/orders/bulk", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			json.NewEncoder(w).Encode(map[string]any{
				"success_count": 2,
				"error_count":   0,
				"total_count":   2,
			})
		}))

		parsed := []*orders.ParsedOrder{
			{
				OrderID:   "ORD-1",
				Date:      "2024-01-15",
				StoreName: "Main Store",
				Customer:  orders.Customer{Name: "Alice", Phone: "123", Address: "1 Main St"},
				Lines: []orders.ProductLine{
					{ProductKey: "SKU-A", Name: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("4.50")},
				},
			},
			{
				OrderID:  "ORD-2",
				Customer: orders.Customer{Name: "Bob"},
			},
		}

		result, err := client.CreateBulk(context.Background(), parsed, "WH-1")
		require.NoError(t, err)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, 0, result.ErrorCount)

		require.Len(t, received.Orders, 2)
		assert.Equal(t, "ORD-1", received.Orders[0].OrderID)
		assert.Equal(t, "Alice", received.Orders[0].CustomerName)
		require.Len(t, received.Orders[0].Lines, 1)
		assert.Equal(t, "SKU-A", received.Orders[0].Lines[0].ProductKey)
	})

	t.Run("propagates service failures", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}))

		_, err := client.CreateBulk(context.Background(), nil, "WH-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 500")
	})
}

// Package warehouse provides the HTTP client for the warehouse service, which
// owns the product catalog and accepts bulk order creation.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/orders"
	infraconfig "github.com/sellerops/backend/internal/infrastructure/config"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Client calls the warehouse service over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client, useful for testing
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientLogger sets a custom logger
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a warehouse service client from configuration
func NewClient(cfg *infraconfig.WarehouseConfig, opts ...ClientOption) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("warehouse base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid warehouse base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// expeditionDTO mirrors the warehouse service expedition payload
type expeditionDTO struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// productDTO mirrors the warehouse service product payload
type productDTO struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Status      string          `json:"status"`
	Stock       int             `json:"stock"`
	Expeditions []expeditionDTO `json:"expeditions"`
}

type productsResponse struct {
	Products []productDTO `json:"products"`
}

// ProductsForWarehouse fetches the catalog snapshot for one warehouse.
// The returned slice preserves the service's ordering, which downstream
// validation relies on for first-match key resolution.
func (c *Client) ProductsForWarehouse(ctx context.Context, warehouseID string) ([]catalog.WarehouseProduct, error) {
	if warehouseID == "" {
		return nil, fmt.Errorf("warehouse ID is required")
	}

	path := fmt.Sprintf("/api/v1/warehouses/%s/products", url.PathEscape(warehouseID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp productsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("warehouse: failed to decode products response: %w", err)
	}

	products := make([]catalog.WarehouseProduct, len(resp.Products))
	for i, dto := range resp.Products {
		expeditions := make([]catalog.Expedition, len(dto.Expeditions))
		for j, e := range dto.Expeditions {
			expeditions[j] = catalog.Expedition{
				ID:        e.ID,
				Status:    catalog.ExpeditionStatus(e.Status),
				UnitPrice: e.UnitPrice,
			}
		}
		products[i] = catalog.WarehouseProduct{
			ID:          dto.ID,
			Code:        dto.Code,
			Name:        dto.Name,
			Status:      dto.Status,
			Stock:       dto.Stock,
			Expeditions: expeditions,
		}
	}

	c.logger.Debug("Fetched warehouse products",
		zap.String("warehouse_id", warehouseID),
		zap.Int("count", len(products)),
	)

	return products, nil
}

// bulkOrderLineDTO is one product line of a bulk order request
type bulkOrderLineDTO struct {
	ProductKey string          `json:"product_key"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// bulkOrderDTO is one order of a bulk creation request
type bulkOrderDTO struct {
	OrderID      string             `json:"order_id"`
	Date         string             `json:"date"`
	CustomerName string             `json:"customer_name"`
	PhoneNumber  string             `json:"phone_number"`
	Address      string             `json:"address"`
	StoreName    string             `json:"store_name"`
	Lines        []bulkOrderLineDTO `json:"lines"`
}

type bulkCreateRequest struct {
	WarehouseID string         `json:"warehouse_id"`
	Orders      []bulkOrderDTO `json:"orders"`
}

type bulkCreateResponse struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
	TotalCount   int `json:"total_count"`
}

// CreateBulk submits validated orders for creation in the warehouse service
func (c *Client) CreateBulk(ctx context.Context, parsed []*orders.ParsedOrder, warehouseID string) (orders.BulkCreateResult, error) {
	if warehouseID == "" {
		return orders.BulkCreateResult{}, fmt.Errorf("warehouse ID is required")
	}

	req := bulkCreateRequest{
		WarehouseID: warehouseID,
		Orders:      make([]bulkOrderDTO, len(parsed)),
	}
	for i, order := range parsed {
		lines := make([]bulkOrderLineDTO, len(order.Lines))
		for j, line := range order.Lines {
			lines[j] = bulkOrderLineDTO{
				ProductKey: line.ProductKey,
				Name:       line.Name,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
			}
		}
		req.Orders[i] = bulkOrderDTO{
			OrderID:      order.OrderID,
			Date:         order.Date,
			CustomerName: order.Customer.Name,
			PhoneNumber:  order.Customer.Phone,
			Address:      order.Customer.Address,
			StoreName:    order.StoreName,
			Lines:        lines,
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return orders.BulkCreateResult{}, fmt.Errorf("warehouse: failed to marshal bulk request: %w", err)
	}

	path := fmt.Sprintf("/api/v1/warehouses/%s/orders/bulk", url.PathEscape(warehouseID))
	body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return orders.BulkCreateResult{}, err
	}

	var resp bulkCreateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return orders.BulkCreateResult{}, fmt.Errorf("warehouse: failed to decode bulk response: %w", err)
	}

	c.logger.Info("Bulk order creation completed",
		zap.String("warehouse_id", warehouseID),
		zap.Int("success_count", resp.SuccessCount),
		zap.Int("error_count", resp.ErrorCount),
	)

	return orders.BulkCreateResult{
		SuccessCount: resp.SuccessCount,
		ErrorCount:   resp.ErrorCount,
		TotalCount:   resp.TotalCount,
	}, nil
}

// doRequest performs an HTTP request against the warehouse service
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("warehouse: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("warehouse: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("warehouse: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("warehouse: HTTP %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Compile-time interface compliance checks
var (
	_ catalog.Provider   = (*Client)(nil)
	_ orders.BulkCreator = (*Client)(nil)
)

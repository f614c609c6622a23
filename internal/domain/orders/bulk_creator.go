package orders

import "context"

// BulkCreateResult reports the per-order outcome of a bulk creation call.
type BulkCreateResult struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
	TotalCount   int `json:"total_count"`
}

// BulkCreator is the external write API that turns admitted rows into real
// orders. Callers must pass only orders whose error list is empty.
type BulkCreator interface {
	CreateBulk(ctx context.Context, orders []*ParsedOrder, warehouseID string) (BulkCreateResult, error)
}

package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImportHistoryFilter holds optional filters for history queries
type ImportHistoryFilter struct {
	WarehouseID *string
	Status      *ImportStatus
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// ImportHistoryListResult is a page of history records
type ImportHistoryListResult struct {
	Items      []*ImportHistory
	TotalCount int64
	Page       int
	PageSize   int
}

// ImportHistoryRepository persists import history records
type ImportHistoryRepository interface {
	FindByID(ctx context.Context, sellerID, id uuid.UUID) (*ImportHistory, error)
	FindAll(ctx context.Context, sellerID uuid.UUID, filter ImportHistoryFilter, page, pageSize int) (*ImportHistoryListResult, error)
	// FindStaleProcessing returns processing records, across all sellers,
	// whose run started before the cutoff. Used by the expiry sweep for runs
	// whose session lapsed without a confirm.
	FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*ImportHistory, error)
	Save(ctx context.Context, history *ImportHistory) error
	Delete(ctx context.Context, sellerID, id uuid.UUID) error
}

package importapp

import (
	"context"

	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/orders"
)

// ImportHistoryService exposes read access to past import runs
type ImportHistoryService struct {
	histories orders.ImportHistoryRepository
}

// NewImportHistoryService creates a new ImportHistoryService
func NewImportHistoryService(histories orders.ImportHistoryRepository) *ImportHistoryService {
	return &ImportHistoryService{histories: histories}
}

// Get returns one import history record scoped to the seller
func (s *ImportHistoryService) Get(ctx context.Context, sellerID, id uuid.UUID) (*orders.ImportHistory, error) {
	return s.histories.FindByID(ctx, sellerID, id)
}

// List returns a page of a seller's import history, most recent first
func (s *ImportHistoryService) List(
	ctx context.Context,
	sellerID uuid.UUID,
	filter orders.ImportHistoryFilter,
	page, pageSize int,
) (*orders.ImportHistoryListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.histories.FindAll(ctx, sellerID, filter, page, pageSize)
}

// Delete removes one import history record scoped to the seller
func (s *ImportHistoryService) Delete(ctx context.Context, sellerID, id uuid.UUID) error {
	return s.histories.Delete(ctx, sellerID, id)
}

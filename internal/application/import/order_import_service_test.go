package importapp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/orders"
	"github.com/sellerops/backend/internal/domain/shared"
	orderimport "github.com/sellerops/backend/internal/infrastructure/import"
	"github.com/sellerops/backend/internal/infrastructure/storage"
)

const contractHeader = "ORDER ID,PRODUCT ID,DATE,PRODUCT NAME,PRODUCT LINK,CUSTOMER NAME,PHONE NUMBER,ADDRESS,PRICE,QUANTITY,STORE NAME"

// stubProvider serves a fixed catalog snapshot or a fixed error
type stubProvider struct {
	products []catalog.WarehouseProduct
	err      error
}

func (p *stubProvider) ProductsForWarehouse(ctx context.Context, warehouseID string) ([]catalog.WarehouseProduct, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.products, nil
}

// stubCreator records what was submitted for bulk creation
type stubCreator struct {
	received []*orders.ParsedOrder
	result   orders.BulkCreateResult
	err      error
}

func (c *stubCreator) CreateBulk(ctx context.Context, parsed []*orders.ParsedOrder, warehouseID string) (orders.BulkCreateResult, error) {
	c.received = parsed
	if c.err != nil {
		return orders.BulkCreateResult{}, c.err
	}
	if c.result.TotalCount == 0 {
		c.result = orders.BulkCreateResult{
			SuccessCount: len(parsed),
			TotalCount:   len(parsed),
		}
	}
	return c.result, nil
}

// memoryHistoryRepository is an in-memory ImportHistoryRepository for tests
type memoryHistoryRepository struct {
	mu        sync.Mutex
	histories map[uuid.UUID]*orders.ImportHistory
}

func newMemoryHistoryRepository() *memoryHistoryRepository {
	return &memoryHistoryRepository{histories: make(map[uuid.UUID]*orders.ImportHistory)}
}

func (r *memoryHistoryRepository) FindByID(ctx context.Context, sellerID, id uuid.UUID) (*orders.ImportHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	history, ok := r.histories[id]
	if !ok || history.SellerID != sellerID {
		return nil, shared.ErrNotFound
	}
	return history, nil
}

func (r *memoryHistoryRepository) FindAll(ctx context.Context, sellerID uuid.UUID, filter orders.ImportHistoryFilter, page, pageSize int) (*orders.ImportHistoryListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*orders.ImportHistory, 0)
	for _, h := range r.histories {
		if h.SellerID == sellerID {
			items = append(items, h)
		}
	}
	return &orders.ImportHistoryListResult{
		Items:      items,
		TotalCount: int64(len(items)),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (r *memoryHistoryRepository) FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]*orders.ImportHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stale := make([]*orders.ImportHistory, 0)
	for _, h := range r.histories {
		if h.Status == orders.ImportStatusProcessing && h.StartedAt != nil && h.StartedAt.Before(olderThan) {
			stale = append(stale, h)
		}
		if limit > 0 && len(stale) == limit {
			break
		}
	}
	return stale, nil
}

func (r *memoryHistoryRepository) Save(ctx context.Context, history *orders.ImportHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories[history.ID] = history
	return nil
}

func (r *memoryHistoryRepository) Delete(ctx context.Context, sellerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	history, ok := r.histories[id]
	if !ok || history.SellerID != sellerID {
		return shared.ErrNotFound
	}
	delete(r.histories, id)
	return nil
}

// testCatalog returns a snapshot with PROD001 in stock and PROD002 out of
// stock, both backed by approved expeditions
func testCatalog() []catalog.WarehouseProduct {
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
	}
}

type serviceFixture struct {
	service   *OrderImportService
	provider  *stubProvider
	creator   *stubCreator
	sessions  *orderimport.InMemorySessionStore
	histories *memoryHistoryRepository
	archive   *storage.MemoryArchive
	sellerID  uuid.UUID
	userID    uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	sessions := orderimport.NewInMemorySessionStore(time.Hour)
	t.Cleanup(sessions.Stop)

	provider := &stubProvider{products: testCatalog()}
	creator := &stubCreator{}
	histories := newMemoryHistoryRepository()
	archive := storage.NewMemoryArchive()

	return &serviceFixture{
		service:   NewOrderImportService(provider, creator, sessions, histories, archive),
		provider:  provider,
		creator:   creator,
		sessions:  sessions,
		histories: histories,
		archive:   archive,
		sellerID:  uuid.New(),
		userID:    uuid.New(),
	}
}

func (f *serviceFixture) validate(t *testing.T, fileName, content string) *ValidateFileResult {
	result, err := f.service.ValidateFile(context.Background(), ValidateFileCommand{
		SellerID:    f.sellerID,
		ImportedBy:  f.userID,
		WarehouseID: "WH-1",
		FileName:    fileName,
		Data:        []byte(content),
	})
	require.NoError(t, err)
	return result
}

func TestOrderImportService_ValidateFile(t *testing.T) {
	multiProductRow := "ORD001,PROD001|PROD002,2024-01-15,Product 1|Product 2,,John Doe,+1234567890,123 Main St,29.99|45.00,2|1,My Store"

	t.Run("accepts a multi-product row with a stock warning", func(t *testing.T) {
		f := newServiceFixture(t)

		result := f.validate(t, "orders.csv", contractHeader+"\n"+multiProductRow+"\n")

		require.True(t, result.Result.Success)
		require.NotNil(t, result.Session)
		assert.Equal(t, 1, result.Result.TotalRows)
		assert.Equal(t, 1, result.Result.ValidRows)
		assert.Equal(t, 0, result.Result.ErrorRows)

		order := result.Result.Orders[0]
		assert.Empty(t, order.Errors)
		require.Len(t, order.Warnings, 1)
		assert.Contains(t, order.Warnings[0], "insufficient stock for PROD002")
		assert.Len(t, order.Lines, 2)

		history, err := f.histories.FindByID(context.Background(), f.sellerID, result.Session.HistoryID)
		require.NoError(t, err)
		assert.Equal(t, orders.ImportStatusProcessing, history.Status)
		assert.Equal(t, 1, history.ValidRows)
	})

	t.Run("flags a missing catalog product as a row error", func(t *testing.T) {
		f := newServiceFixture(t)
		f.provider.products = testCatalog()[:1] // PROD002 absent

		result := f.validate(t, "orders.csv", contractHeader+"\n"+multiProductRow+"\n")

		require.True(t, result.Result.Success)
		assert.Equal(t, 0, result.Result.ValidRows)
		assert.Equal(t, 1, result.Result.ErrorRows)

		order := result.Result.Orders[0]
		require.Len(t, order.Errors, 1)
		assert.Equal(t, "PROD002 does not exist in selected warehouse", order.Errors[0])
		assert.Equal(t, 2, order.RowIndex)
	})

	t.Run("rejects a renamed header column structurally", func(t *testing.T) {
		f := newServiceFixture(t)
		badHeader := "ORDER ID,PRODUCT ID,ORDER DATE,PRODUCT NAME,PRODUCT LINK,CUSTOMER NAME,PHONE NUMBER,ADDRESS,PRICE,QUANTITY,STORE NAME"

		result := f.validate(t, "orders.csv", badHeader+"\n"+multiProductRow+"\n")

		assert.False(t, result.Result.Success)
		assert.Nil(t, result.Session)
		assert.Empty(t, result.Result.Orders)
		assert.Contains(t, result.Result.Message, "column 3")
	})

	t.Run("rejects a header-only file structurally", func(t *testing.T) {
		f := newServiceFixture(t)

		result := f.validate(t, "orders.csv", contractHeader+"\n")

		assert.False(t, result.Result.Success)
		assert.Equal(t, "file must contain at least a header row and one data row", result.Result.Message)
	})

	t.Run("reports catalog fetch failure structurally", func(t *testing.T) {
		f := newServiceFixture(t)
		f.provider.err = errors.New("connection refused")

		result := f.validate(t, "orders.csv", contractHeader+"\n"+multiProductRow+"\n")

		assert.False(t, result.Result.Success)
		assert.Equal(t, "failed to fetch available products for validation", result.Result.Message)
		assert.Nil(t, result.Session)
	})

	t.Run("rejects unsupported file extensions", func(t *testing.T) {
		f := newServiceFixture(t)

		result := f.validate(t, "orders.pdf", "whatever")

		assert.False(t, result.Result.Success)
		assert.Contains(t, result.Result.Message, "unsupported file format")
	})

	t.Run("enforces the upload size limit", func(t *testing.T) {
		f := newServiceFixture(t)
		small := NewOrderImportService(f.provider, f.creator, f.sessions, f.histories, f.archive,
			WithMaxFileSize(8))

		result, err := small.ValidateFile(context.Background(), ValidateFileCommand{
			SellerID:    f.sellerID,
			ImportedBy:  f.userID,
			WarehouseID: "WH-1",
			FileName:    "orders.csv",
			Data:        []byte(contractHeader),
		})
		require.NoError(t, err)
		assert.False(t, result.Result.Success)
		assert.Contains(t, result.Result.Message, "maximum allowed size")
	})

	t.Run("archives the uploaded file under the session prefix", func(t *testing.T) {
		f := newServiceFixture(t)
		content := contractHeader + "\n" + multiProductRow + "\n"

		result := f.validate(t, "orders.csv", content)

		key := fmt.Sprintf("imports/%s/%s/original_orders.csv", f.sellerID, result.Session.ID)
		stored, ok := f.archive.Get(key)
		require.True(t, ok)
		assert.Equal(t, []byte(content), stored)

		ct, ok := f.archive.ContentType(key)
		require.True(t, ok)
		assert.Equal(t, "text/csv", ct)
	})
}

func TestOrderImportService_ConfirmImport(t *testing.T) {
	validRow := "ORD001,PROD001,2024-01-15,Product 1,,John Doe,+1234567890,123 Main St,29.99,2,My Store"
	errorRow := "ORD002,MISSING,2024-01-16,Ghost,,Jane Doe,+1987654321,9 Oak Ave,10.00,1,My Store"

	t.Run("submits only error-free rows", func(t *testing.T) {
		f := newServiceFixture(t)
		result := f.validate(t, "orders.csv", contractHeader+"\n"+validRow+"\n"+errorRow+"\n")
		require.NotNil(t, result.Session)
		assert.Equal(t, 1, result.Result.ValidRows)

		confirmed, err := f.service.ConfirmImport(context.Background(), f.sellerID, result.Session.ID)
		require.NoError(t, err)

		require.Len(t, f.creator.received, 1)
		assert.Equal(t, "ORD001", f.creator.received[0].OrderID)
		assert.Equal(t, 1, confirmed.Created.SuccessCount)
		assert.Equal(t, orderimport.StateCompleted, confirmed.Session.State)

		history, err := f.histories.FindByID(context.Background(), f.sellerID, result.Session.HistoryID)
		require.NoError(t, err)
		assert.Equal(t, orders.ImportStatusCompleted, history.Status)
		assert.Equal(t, 1, history.Created)
		require.NotEmpty(t, history.RowIssues)
		assert.Equal(t, 3, history.RowIssues[0].Row)
	})

	t.Run("rejects unknown sessions", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.ConfirmImport(context.Background(), f.sellerID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrSessionExpired)
	})

	t.Run("rejects sessions of another seller", func(t *testing.T) {
		f := newServiceFixture(t)
		result := f.validate(t, "orders.csv", contractHeader+"\n"+validRow+"\n")

		_, err := f.service.ConfirmImport(context.Background(), uuid.New(), result.Session.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("rejects sessions with no valid rows", func(t *testing.T) {
		f := newServiceFixture(t)
		result := f.validate(t, "orders.csv", contractHeader+"\n"+errorRow+"\n")
		require.NotNil(t, result.Session)

		_, err := f.service.ConfirmImport(context.Background(), f.sellerID, result.Session.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("marks session and history failed when bulk creation fails", func(t *testing.T) {
		f := newServiceFixture(t)
		f.creator.err = errors.New("warehouse unavailable")
		result := f.validate(t, "orders.csv", contractHeader+"\n"+validRow+"\n")

		_, err := f.service.ConfirmImport(context.Background(), f.sellerID, result.Session.ID)
		require.Error(t, err)

		session, getErr := f.service.GetSession(context.Background(), f.sellerID, result.Session.ID)
		require.NoError(t, getErr)
		assert.Equal(t, orderimport.StateFailed, session.State)

		history, histErr := f.histories.FindByID(context.Background(), f.sellerID, result.Session.HistoryID)
		require.NoError(t, histErr)
		assert.Equal(t, orders.ImportStatusFailed, history.Status)
	})

	t.Run("cannot confirm twice", func(t *testing.T) {
		f := newServiceFixture(t)
		result := f.validate(t, "orders.csv", contractHeader+"\n"+validRow+"\n")

		_, err := f.service.ConfirmImport(context.Background(), f.sellerID, result.Session.ID)
		require.NoError(t, err)

		_, err = f.service.ConfirmImport(context.Background(), f.sellerID, result.Session.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestOrderImportService_ExportCorrected(t *testing.T) {
	multiProductRow := "ORD001,PROD001|PROD002,2024-01-15,Product 1|Product 2,,John Doe,+1234567890,123 Main St,29.99|45.00,2|1,My Store"

	t.Run("re-imported export reproduces the same error on the same row", func(t *testing.T) {
		f := newServiceFixture(t)
		f.provider.products = testCatalog()[:1] // PROD002 absent

		first := f.validate(t, "orders.csv", contractHeader+"\n"+multiProductRow+"\n")
		require.NotNil(t, first.Session)
		require.Equal(t, 1, first.Result.ErrorRows)

		fileName, data, err := f.service.ExportCorrected(context.Background(), f.sellerID, first.Session.ID)
		require.NoError(t, err)
		assert.Contains(t, fileName, "corrected_orders_")

		second := f.validate(t, "corrected.csv", string(data))
		require.True(t, second.Result.Success)
		require.Len(t, second.Result.Orders, 1)

		reimported := second.Result.Orders[0]
		require.Len(t, reimported.Errors, 1)
		assert.Equal(t, "PROD002 does not exist in selected warehouse", reimported.Errors[0])
		assert.Equal(t, 2, reimported.RowIndex)
	})

	t.Run("archives the corrected file under the session prefix", func(t *testing.T) {
		f := newServiceFixture(t)
		f.provider.products = testCatalog()[:1] // PROD002 absent

		result := f.validate(t, "orders.csv", contractHeader+"\n"+multiProductRow+"\n")
		require.NotNil(t, result.Session)

		fileName, data, err := f.service.ExportCorrected(context.Background(), f.sellerID, result.Session.ID)
		require.NoError(t, err)

		key := fmt.Sprintf("imports/%s/%s/corrected_%s", f.sellerID, result.Session.ID, fileName)
		stored, ok := f.archive.Get(key)
		require.True(t, ok)
		assert.Equal(t, data, stored)
	})

	t.Run("rejects unknown sessions", func(t *testing.T) {
		f := newServiceFixture(t)

		_, _, err := f.service.ExportCorrected(context.Background(), f.sellerID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrSessionExpired)
	})
}

func TestUploadContentType(t *testing.T) {
	assert.Equal(t, "text/csv", uploadContentType(orderimport.FormatCSV))
	assert.Equal(t, "application/vnd.ms-excel", uploadContentType(orderimport.FormatXLS))
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		uploadContentType(orderimport.FormatXLSX))
}

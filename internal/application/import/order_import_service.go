// Package importapp contains the application services for the bulk order
// import flow: validate an uploaded file against a warehouse catalog, keep the
// result in a session, and either confirm the import or export a corrected
// file.
package importapp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/orders"
	"github.com/sellerops/backend/internal/domain/shared"
	orderimport "github.com/sellerops/backend/internal/infrastructure/import"
	"github.com/sellerops/backend/internal/infrastructure/storage"
)

// catalogFetchFailureMessage is surfaced as a structural failure when the
// warehouse service cannot supply the validation snapshot.
const catalogFetchFailureMessage = "failed to fetch available products for validation"

// ValidateFileCommand carries one uploaded file into validation
type ValidateFileCommand struct {
	SellerID    uuid.UUID
	ImportedBy  uuid.UUID
	WarehouseID string
	FileName    string
	Data        []byte
}

// ValidateFileResult is the outcome of a validation run. The session is nil
// when the file failed structurally and there is nothing to confirm.
type ValidateFileResult struct {
	Session *orderimport.ImportSession
	Result  *orders.FileProcessingResult
}

// ConfirmImportResult is the outcome of confirming a validated session
type ConfirmImportResult struct {
	Session *orderimport.ImportSession
	Created orders.BulkCreateResult
}

// OrderImportService orchestrates the validate-then-confirm import flow
type OrderImportService struct {
	processor   *orderimport.FileProcessor
	exporter    *orderimport.ReportExporter
	provider    catalog.Provider
	creator     orders.BulkCreator
	sessions    orderimport.SessionStore
	histories   orders.ImportHistoryRepository
	archive     storage.FileArchive
	maxFileSize int64
	logger      *zap.Logger
}

// OrderImportServiceOption is a functional option for the service
type OrderImportServiceOption func(*OrderImportService)

// WithMaxFileSize overrides the default upload size limit
func WithMaxFileSize(size int64) OrderImportServiceOption {
	return func(s *OrderImportService) {
		s.maxFileSize = size
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) OrderImportServiceOption {
	return func(s *OrderImportService) {
		s.logger = logger
	}
}

// NewOrderImportService creates a new OrderImportService
func NewOrderImportService(
	provider catalog.Provider,
	creator orders.BulkCreator,
	sessions orderimport.SessionStore,
	histories orders.ImportHistoryRepository,
	archive storage.FileArchive,
	opts ...OrderImportServiceOption,
) *OrderImportService {
	s := &OrderImportService{
		processor:   orderimport.NewFileProcessor(),
		exporter:    orderimport.NewReportExporter(),
		provider:    provider,
		creator:     creator,
		sessions:    sessions,
		histories:   histories,
		archive:     archive,
		maxFileSize: 10 << 20,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ValidateFile runs the full validation pipeline over one uploaded file and
// opens an import session holding the result. Structural failures are
// reported through the result, not as errors; errors are reserved for
// infrastructure faults (history persistence, session store).
func (s *OrderImportService) ValidateFile(ctx context.Context, cmd ValidateFileCommand) (*ValidateFileResult, error) {
	log := s.logger.With(
		zap.String("seller_id", cmd.SellerID.String()),
		zap.String("warehouse_id", cmd.WarehouseID),
		zap.String("file_name", cmd.FileName),
	)

	history, err := orders.NewImportHistory(cmd.SellerID, cmd.WarehouseID, cmd.FileName, int64(len(cmd.Data)), cmd.ImportedBy)
	if err != nil {
		return nil, err
	}

	if int64(len(cmd.Data)) > s.maxFileSize {
		return s.failValidation(ctx, history,
			fmt.Sprintf("file exceeds maximum allowed size of %d bytes", s.maxFileSize))
	}

	format, err := orderimport.DetectFormat(cmd.FileName)
	if err != nil {
		return s.failValidation(ctx, history, err.Error())
	}

	products, err := s.provider.ProductsForWarehouse(ctx, cmd.WarehouseID)
	if err != nil {
		log.Error("Catalog fetch failed", zap.Error(err))
		return s.failValidation(ctx, history, catalogFetchFailureMessage)
	}

	result := s.processor.Process(cmd.Data, format, products)

	if !result.Success {
		log.Warn("Import file rejected", zap.String("reason", result.Message))
		return s.failValidation(ctx, history, result.Message)
	}

	if err := history.StartProcessing(result.TotalRows, result.ValidRows, result.ErrorRows); err != nil {
		return nil, err
	}
	if err := s.histories.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	session := orderimport.NewImportSession(cmd.SellerID, cmd.WarehouseID, cmd.FileName, int64(len(cmd.Data)))
	session.HistoryID = history.ID
	session.SetResult(result)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save import session: %w", err)
	}

	s.archiveUpload(ctx, cmd, format, session.ID)

	log.Info("Import file validated",
		zap.String("session_id", session.ID.String()),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("valid_rows", result.ValidRows),
		zap.Int("error_rows", result.ErrorRows),
	)

	return &ValidateFileResult{Session: session, Result: result}, nil
}

// failValidation records a structural failure on the history and returns it as
// a failed result with no session.
func (s *OrderImportService) failValidation(ctx context.Context, history *orders.ImportHistory, message string) (*ValidateFileResult, error) {
	if err := history.Fail(message); err != nil {
		return nil, err
	}
	if err := s.histories.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}
	return &ValidateFileResult{Result: orders.NewStructuralFailure(message)}, nil
}

// archiveUpload stores the raw upload under the session's archive prefix for
// audit. Archive failures are logged and never block the import.
func (s *OrderImportService) archiveUpload(ctx context.Context, cmd ValidateFileCommand, format orderimport.FileFormat, sessionID uuid.UUID) {
	key := fmt.Sprintf("imports/%s/%s/original_%s", cmd.SellerID, sessionID, cmd.FileName)
	if err := s.archive.Archive(ctx, key, cmd.Data, uploadContentType(format)); err != nil {
		s.logger.Warn("Failed to archive import file",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// uploadContentType maps a detected file format to its archive content type
func uploadContentType(format orderimport.FileFormat) string {
	switch format {
	case orderimport.FormatXLS:
		return "application/vnd.ms-excel"
	case orderimport.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// GetSession returns a seller's import session by ID.
// Returns ErrSessionExpired when the session is unknown or lapsed.
func (s *OrderImportService) GetSession(ctx context.Context, sellerID, sessionID uuid.UUID) (*orderimport.ImportSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load import session: %w", err)
	}
	if session == nil {
		return nil, shared.ErrSessionExpired
	}
	if session.SellerID != sellerID {
		return nil, shared.ErrForbidden
	}
	return session, nil
}

// ConfirmImport submits the error-free rows of a validated session for bulk
// creation. Rows with errors are never submitted; warnings do not block.
func (s *OrderImportService) ConfirmImport(ctx context.Context, sellerID, sessionID uuid.UUID) (*ConfirmImportResult, error) {
	session, err := s.GetSession(ctx, sellerID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.CanConfirm() {
		return nil, shared.ErrInvalidState
	}

	session.UpdateState(orderimport.StateImporting)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save import session: %w", err)
	}

	validOrders := session.Result.ValidOrders()
	created, err := s.creator.CreateBulk(ctx, validOrders, session.WarehouseID)
	if err != nil {
		s.logger.Error("Bulk order creation failed",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
		s.finishHistory(ctx, session, func(h *orders.ImportHistory) error {
			return h.Fail(fmt.Sprintf("bulk order creation failed: %v", err))
		})
		session.UpdateState(orderimport.StateFailed)
		_ = s.sessions.Save(ctx, session)
		return nil, fmt.Errorf("bulk order creation failed: %w", err)
	}

	s.finishHistory(ctx, session, func(h *orders.ImportHistory) error {
		return h.Complete(created.SuccessCount, collectRowIssues(session.Result))
	})

	session.UpdateState(orderimport.StateCompleted)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save import session: %w", err)
	}

	s.logger.Info("Import confirmed",
		zap.String("session_id", session.ID.String()),
		zap.Int("created", created.SuccessCount),
		zap.Int("failed", created.ErrorCount),
	)

	return &ConfirmImportResult{Session: session, Created: created}, nil
}

// finishHistory applies a terminal transition to the session's history record.
// History faults are logged; the import outcome stands regardless.
func (s *OrderImportService) finishHistory(ctx context.Context, session *orderimport.ImportSession, transition func(*orders.ImportHistory) error) {
	history, err := s.histories.FindByID(ctx, session.SellerID, session.HistoryID)
	if err != nil {
		s.logger.Warn("Failed to load import history",
			zap.String("history_id", session.HistoryID.String()),
			zap.Error(err),
		)
		return
	}
	if err := transition(history); err != nil {
		s.logger.Warn("Invalid import history transition", zap.Error(err))
		return
	}
	if err := s.histories.Save(ctx, history); err != nil {
		s.logger.Warn("Failed to save import history", zap.Error(err))
	}
}

// ExportCorrected renders the session's full row set as a downloadable CSV
// with status and error columns appended.
func (s *OrderImportService) ExportCorrected(ctx context.Context, sellerID, sessionID uuid.UUID) (string, []byte, error) {
	session, err := s.GetSession(ctx, sellerID, sessionID)
	if err != nil {
		return "", nil, err
	}
	if session.Result == nil {
		return "", nil, shared.ErrInvalidState
	}

	data, err := s.exporter.Export(session.Result.Orders)
	if err != nil {
		return "", nil, fmt.Errorf("failed to export corrected file: %w", err)
	}

	fileName := s.exporter.FileName(time.Now())

	// Archive the corrected file alongside the original; failures never block
	// the download.
	key := fmt.Sprintf("imports/%s/%s/corrected_%s", session.SellerID, session.ID, fileName)
	if err := s.archive.Archive(ctx, key, data, "text/csv"); err != nil {
		s.logger.Warn("Failed to archive corrected file",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return fileName, data, nil
}

// collectRowIssues flattens per-row errors and warnings for persistence
func collectRowIssues(result *orders.FileProcessingResult) []orders.RowIssue {
	issues := make([]orders.RowIssue, 0)
	for _, order := range result.Orders {
		for _, msg := range order.Errors {
			issues = append(issues, orders.RowIssue{Row: order.RowIndex, Message: msg})
		}
		for _, msg := range order.Warnings {
			issues = append(issues, orders.RowIssue{Row: order.RowIndex, Message: msg, Warning: true})
		}
	}
	return issues
}

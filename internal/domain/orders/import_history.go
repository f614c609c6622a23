package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sellerops/backend/internal/domain/shared"
)

// ImportStatus represents the status of a bulk order import run
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
	ImportStatusExpired    ImportStatus = "expired"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusProcessing, ImportStatusCompleted,
		ImportStatusFailed, ImportStatusExpired:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed || s == ImportStatusExpired
}

// RowIssue records one error or warning message attached to a source row,
// persisted with the history record for later inspection.
type RowIssue struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
}

// ImportHistory tracks one bulk order import run from upload to completion.
type ImportHistory struct {
	shared.SellerAggregateRoot
	WarehouseID string       `json:"warehouse_id"`
	FileName    string       `json:"file_name"`
	FileSize    int64        `json:"file_size"`
	TotalRows   int          `json:"total_rows"`
	ValidRows   int          `json:"valid_rows"`
	ErrorRows   int          `json:"error_rows"`
	Created     int          `json:"created_orders"`
	Status      ImportStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	RowIssues   []RowIssue   `json:"row_issues,omitempty"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewImportHistory creates a new pending import history record
func NewImportHistory(sellerID uuid.UUID, warehouseID, fileName string, fileSize int64, importedBy uuid.UUID) (*ImportHistory, error) {
	if warehouseID == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	return &ImportHistory{
		SellerAggregateRoot: shared.NewSellerAggregateRootWithCreator(sellerID, importedBy),
		WarehouseID:         warehouseID,
		FileName:            fileName,
		FileSize:            fileSize,
		Status:              ImportStatusPending,
		RowIssues:           make([]RowIssue, 0),
	}, nil
}

// StartProcessing marks the run as started with the file's row counts
func (h *ImportHistory) StartProcessing(totalRows, validRows, errorRows int) error {
	if h.Status != ImportStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", h.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}

	h.Status = ImportStatusProcessing
	h.TotalRows = totalRows
	h.ValidRows = validRows
	h.ErrorRows = errorRows
	now := time.Now()
	h.StartedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Complete marks the run as finished with the bulk creation outcome
func (h *ImportHistory) Complete(createdOrders int, issues []RowIssue) error {
	if h.Status != ImportStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", h.Status))
	}

	status := ImportStatusCompleted
	if createdOrders == 0 && h.ErrorRows > 0 {
		status = ImportStatusFailed
	}

	h.Status = status
	h.Created = createdOrders
	h.RowIssues = issues
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Fail marks the run as failed with a structural failure message
func (h *ImportHistory) Fail(message string) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", h.Status))
	}

	h.Status = ImportStatusFailed
	h.Message = message
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Expire marks an unconfirmed run whose session lapsed
func (h *ImportHistory) Expire() error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire from terminal state: %s", h.Status))
	}

	h.Status = ImportStatusExpired
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// HasIssues returns true if any row issues were recorded
func (h *ImportHistory) HasIssues() bool {
	return len(h.RowIssues) > 0
}

// RowIssuesJSON returns the row issues as a JSON string
func (h *ImportHistory) RowIssuesJSON() (string, error) {
	if len(h.RowIssues) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(h.RowIssues)
	if err != nil {
		return "", fmt.Errorf("failed to marshal row issues: %w", err)
	}
	return string(data), nil
}

// SetRowIssuesFromJSON parses row issues from a JSON string
func (h *ImportHistory) SetRowIssuesFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		h.RowIssues = make([]RowIssue, 0)
		return nil
	}
	var issues []RowIssue
	if err := json.Unmarshal([]byte(jsonStr), &issues); err != nil {
		return fmt.Errorf("failed to unmarshal row issues: %w", err)
	}
	h.RowIssues = issues
	return nil
}

// Duration returns the duration of the import run
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(*h.StartedAt)
}

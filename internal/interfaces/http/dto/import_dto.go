package dto

import (
	"time"

	"github.com/sellerops/backend/internal/domain/orders"
	orderimport "github.com/sellerops/backend/internal/infrastructure/import"
)

// ValidationResponse is returned from the validate endpoint. SessionID is
// empty when the file failed structurally and there is nothing to confirm.
type ValidationResponse struct {
	SessionID string                `json:"session_id,omitempty"`
	Success   bool                  `json:"success"`
	TotalRows int                   `json:"total_rows"`
	ValidRows int                   `json:"valid_rows"`
	ErrorRows int                   `json:"error_rows"`
	Message   string                `json:"message,omitempty"`
	Orders    []*orders.ParsedOrder `json:"orders,omitempty"`
}

// NewValidationResponse builds a validation response from the session and
// per-row results
func NewValidationResponse(session *orderimport.ImportSession, result *orders.FileProcessingResult) ValidationResponse {
	resp := ValidationResponse{
		Success:   result.Success,
		TotalRows: result.TotalRows,
		ValidRows: result.ValidRows,
		ErrorRows: result.ErrorRows,
		Message:   result.Message,
		Orders:    result.Orders,
	}
	if session != nil {
		resp.SessionID = session.ID.String()
	}
	return resp
}

// SessionResponse describes one import session
type SessionResponse struct {
	ID          string                       `json:"id"`
	WarehouseID string                       `json:"warehouse_id"`
	FileName    string                       `json:"file_name"`
	FileSize    int64                        `json:"file_size"`
	State       string                       `json:"state"`
	Result      *orders.FileProcessingResult `json:"result,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
	CompletedAt *time.Time                   `json:"completed_at,omitempty"`
}

// NewSessionResponse converts a session to its response representation
func NewSessionResponse(s *orderimport.ImportSession) SessionResponse {
	return SessionResponse{
		ID:          s.ID.String(),
		WarehouseID: s.WarehouseID,
		FileName:    s.FileName,
		FileSize:    s.FileSize,
		State:       string(s.State),
		Result:      s.Result,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		CompletedAt: s.CompletedAt,
	}
}

// ConfirmResponse is returned after a session's rows were submitted for
// bulk creation
type ConfirmResponse struct {
	SessionID     string `json:"session_id"`
	State         string `json:"state"`
	CreatedOrders int    `json:"created_orders"`
	FailedOrders  int    `json:"failed_orders"`
	TotalOrders   int    `json:"total_orders"`
}

// NewConfirmResponse builds a confirm response from the creation outcome
func NewConfirmResponse(session *orderimport.ImportSession, created orders.BulkCreateResult) ConfirmResponse {
	return ConfirmResponse{
		SessionID:     session.ID.String(),
		State:         string(session.State),
		CreatedOrders: created.SuccessCount,
		FailedOrders:  created.ErrorCount,
		TotalOrders:   created.TotalCount,
	}
}

// ImportHistoryResponse describes one past import run
type ImportHistoryResponse struct {
	ID          string            `json:"id"`
	WarehouseID string            `json:"warehouse_id"`
	FileName    string            `json:"file_name"`
	FileSize    int64             `json:"file_size"`
	TotalRows   int               `json:"total_rows"`
	ValidRows   int               `json:"valid_rows"`
	ErrorRows   int               `json:"error_rows"`
	Created     int               `json:"created_orders"`
	Status      string            `json:"status"`
	Message     string            `json:"message,omitempty"`
	RowIssues   []orders.RowIssue `json:"row_issues,omitempty"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewImportHistoryResponse converts a history record to its response
// representation
func NewImportHistoryResponse(h *orders.ImportHistory) ImportHistoryResponse {
	return ImportHistoryResponse{
		ID:          h.ID.String(),
		WarehouseID: h.WarehouseID,
		FileName:    h.FileName,
		FileSize:    h.FileSize,
		TotalRows:   h.TotalRows,
		ValidRows:   h.ValidRows,
		ErrorRows:   h.ErrorRows,
		Created:     h.Created,
		Status:      string(h.Status),
		Message:     h.Message,
		RowIssues:   h.RowIssues,
		StartedAt:   h.StartedAt,
		CompletedAt: h.CompletedAt,
		CreatedAt:   h.CreatedAt,
	}
}

// NewImportHistoryListResponse converts a page of history records
func NewImportHistoryListResponse(items []*orders.ImportHistory) []ImportHistoryResponse {
	out := make([]ImportHistoryResponse, 0, len(items))
	for _, h := range items {
		out = append(out, NewImportHistoryResponse(h))
	}
	return out
}

// HistoryListRequest holds the query parameters of the history list endpoint
type HistoryListRequest struct {
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
	WarehouseID string `form:"warehouse_id"`
	Status      string `form:"status" binding:"omitempty,oneof=pending processing completed failed expired"`
}

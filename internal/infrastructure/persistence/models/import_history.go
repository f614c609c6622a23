package models

import (
	"time"

	"github.com/sellerops/backend/internal/domain/orders"
	"github.com/sellerops/backend/internal/domain/shared"
)

// ImportHistoryModel is the persistence model for the ImportHistory domain entity.
type ImportHistoryModel struct {
	SellerAggregateModel
	WarehouseID string              `gorm:"type:varchar(64);not null;index"`
	FileName    string              `gorm:"type:varchar(255);not null"`
	FileSize    int64               `gorm:"not null;default:0"`
	TotalRows   int                 `gorm:"not null;default:0"`
	ValidRows   int                 `gorm:"not null;default:0"`
	ErrorRows   int                 `gorm:"not null;default:0"`
	Created     int                 `gorm:"column:created_orders;not null;default:0"`
	Status      orders.ImportStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Message     string              `gorm:"type:text"`
	RowIssues   string              `gorm:"type:jsonb;default:'[]'"`
	StartedAt   *time.Time          `gorm:"type:timestamptz"`
	CompletedAt *time.Time          `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain converts the persistence model to a domain ImportHistory entity.
func (m *ImportHistoryModel) ToDomain() *orders.ImportHistory {
	history := &orders.ImportHistory{
		SellerAggregateRoot: shared.SellerAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			SellerID:  m.SellerID,
			CreatedBy: m.CreatedBy,
		},
		WarehouseID: m.WarehouseID,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		TotalRows:   m.TotalRows,
		ValidRows:   m.ValidRows,
		ErrorRows:   m.ErrorRows,
		Created:     m.Created,
		Status:      m.Status,
		Message:     m.Message,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
	}

	if m.RowIssues != "" {
		_ = history.SetRowIssuesFromJSON(m.RowIssues)
	}

	return history
}

// FromDomain populates the persistence model from a domain ImportHistory entity.
func (m *ImportHistoryModel) FromDomain(h *orders.ImportHistory) {
	m.FromDomainSellerAggregateRoot(h.SellerAggregateRoot)
	m.WarehouseID = h.WarehouseID
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.TotalRows = h.TotalRows
	m.ValidRows = h.ValidRows
	m.ErrorRows = h.ErrorRows
	m.Created = h.Created
	m.Status = h.Status
	m.Message = h.Message
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt

	if issuesJSON, err := h.RowIssuesJSON(); err == nil {
		m.RowIssues = issuesJSON
	} else {
		m.RowIssues = "[]"
	}
}

// ImportHistoryModelFromDomain creates a new persistence model from a domain ImportHistory entity.
func ImportHistoryModelFromDomain(h *orders.ImportHistory) *ImportHistoryModel {
	m := &ImportHistoryModel{}
	m.FromDomain(h)
	return m
}

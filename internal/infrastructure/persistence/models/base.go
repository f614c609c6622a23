package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellerops/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// SellerAggregateModel provides common persistence fields for seller-scoped
// aggregate roots. It extends AggregateModel with seller ID and creator info.
type SellerAggregateModel struct {
	AggregateModel
	SellerID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainSellerAggregateRoot populates SellerAggregateModel from domain SellerAggregateRoot
func (m *SellerAggregateModel) FromDomainSellerAggregateRoot(s shared.SellerAggregateRoot) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SellerID = s.SellerID
	m.CreatedBy = s.CreatedBy
}

// PopulateSellerAggregateRoot populates a domain SellerAggregateRoot from persistence model
func (m *SellerAggregateModel) PopulateSellerAggregateRoot(s *shared.SellerAggregateRoot) {
	s.BaseAggregateRoot.BaseEntity.ID = m.ID
	s.BaseAggregateRoot.BaseEntity.CreatedAt = m.CreatedAt
	s.BaseAggregateRoot.BaseEntity.UpdatedAt = m.UpdatedAt
	s.BaseAggregateRoot.Version = m.Version
	s.SellerID = m.SellerID
	s.CreatedBy = m.CreatedBy
}

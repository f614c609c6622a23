package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// SellerAggregateRoot extends BaseAggregateRoot with seller scoping.
// Every record in the operations console belongs to exactly one seller.
type SellerAggregateRoot struct {
	BaseAggregateRoot
	SellerID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewSellerAggregateRoot creates a new seller-scoped aggregate root
func NewSellerAggregateRoot(sellerID uuid.UUID) SellerAggregateRoot {
	return SellerAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		SellerID:          sellerID,
	}
}

// NewSellerAggregateRootWithCreator creates a new seller-scoped aggregate root with creator info
func NewSellerAggregateRootWithCreator(sellerID, createdBy uuid.UUID) SellerAggregateRoot {
	return SellerAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		SellerID:          sellerID,
		CreatedBy:         &createdBy,
	}
}

// SetCreatedBy sets the creator user ID
func (s *SellerAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	s.CreatedBy = &userID
}

package catalog

import (
	"github.com/shopspring/decimal"
)

// ExpeditionStatus is the lifecycle state of a supply expedition.
type ExpeditionStatus string

const (
	ExpeditionStatusPending  ExpeditionStatus = "pending"
	ExpeditionStatusApproved ExpeditionStatus = "approved"
	ExpeditionStatusRejected ExpeditionStatus = "rejected"
)

// Expedition is an approved supply/shipment batch backing a product's ability
// to be fulfilled from a warehouse.
type Expedition struct {
	ID        string           `json:"id"`
	Status    ExpeditionStatus `json:"status"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
}

// IsApproved returns true if the expedition can back order fulfillment
func (e Expedition) IsApproved() bool {
	return e.Status == ExpeditionStatusApproved
}

// WarehouseProduct is one sellable product scoped to a warehouse: the catalog
// snapshot entry bulk imports are validated against. A product with stock but
// no approved expedition is considered unfulfillable.
type WarehouseProduct struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	Stock       int          `json:"stock"`
	Expeditions []Expedition `json:"expeditions"`
}

// ApprovedExpeditions returns the subset of expeditions in approved state
func (p WarehouseProduct) ApprovedExpeditions() []Expedition {
	var approved []Expedition
	for _, e := range p.Expeditions {
		if e.IsApproved() {
			approved = append(approved, e)
		}
	}
	return approved
}

// HasApprovedExpedition returns true if at least one expedition is approved
func (p WarehouseProduct) HasApprovedExpedition() bool {
	for _, e := range p.Expeditions {
		if e.IsApproved() {
			return true
		}
	}
	return false
}

// Matches reports whether key identifies this product. Matching is exact
// string equality on either the short code or the internal id, with no
// normalization: callers must supply keys exactly as stored.
func (p WarehouseProduct) Matches(key string) bool {
	return p.Code == key || p.ID == key
}

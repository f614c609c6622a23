package catalog

import "context"

// Provider is the external read API for warehouse catalog snapshots.
// A snapshot is fetched once per import run and treated as immutable for the
// duration of that run; a catalog changing mid-run is an accepted staleness
// window, not a correctness concern.
type Provider interface {
	// ProductsForWarehouse returns the current catalog snapshot for a warehouse.
	ProductsForWarehouse(ctx context.Context, warehouseID string) ([]WarehouseProduct, error)
}

package orderimport

import (
	"github.com/sellerops/backend/internal/domain/catalog"
)

// CatalogIndex is a per-file lookup structure over a warehouse catalog
// snapshot, keyed by both product code and internal id. Entries are inserted
// in snapshot order and never overwritten, so a key resolves to the earliest
// product carrying it, the same outcome as a linear first-match scan.
type CatalogIndex struct {
	entries map[string]*catalog.WarehouseProduct
	size    int
}

// NewCatalogIndex builds an index over a catalog snapshot. Built once per
// file, read-only afterward.
func NewCatalogIndex(products []catalog.WarehouseProduct) *CatalogIndex {
	idx := &CatalogIndex{
		entries: make(map[string]*catalog.WarehouseProduct, 2*len(products)),
		size:    len(products),
	}
	for i := range products {
		p := &products[i]
		if p.Code != "" {
			if _, exists := idx.entries[p.Code]; !exists {
				idx.entries[p.Code] = p
			}
		}
		if p.ID != "" {
			if _, exists := idx.entries[p.ID]; !exists {
				idx.entries[p.ID] = p
			}
		}
	}
	return idx
}

// Lookup finds a product by exact match on code or internal id. No
// normalization or case-folding is applied: keys must be supplied exactly as
// stored.
func (idx *CatalogIndex) Lookup(key string) (*catalog.WarehouseProduct, bool) {
	p, ok := idx.entries[key]
	return p, ok
}

// Size returns the number of products the index was built from
func (idx *CatalogIndex) Size() int {
	return idx.size
}

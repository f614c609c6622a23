package orderimport

import (
	"github.com/sellerops/backend/internal/domain/catalog"
	"github.com/sellerops/backend/internal/domain/orders"
)

// FileProcessor runs the full pipeline over one uploaded file: tabular read,
// header validation, per-row decoding against a catalog snapshot, and
// aggregation into a FileProcessingResult.
//
// Rows are processed strictly in source order: the 1-based row index and the
// aggregate counts depend on positional order. Each row's validation is a
// pure function of (row, snapshot); there is no shared mutable state between
// rows.
type FileProcessor struct {
	reader *TabularReader
}

// NewFileProcessor creates a file processor
func NewFileProcessor(opts ...ReaderOption) *FileProcessor {
	return &FileProcessor{reader: NewTabularReader(opts...)}
}

// Process decodes and validates a whole file against the given catalog
// snapshot. Structural failures (unreadable file, bad header, too few rows)
// are reported through the result's Success flag and Message with zero parsed
// orders; row-level failures accumulate per row and never abort the run.
func (p *FileProcessor) Process(data []byte, format FileFormat, products []catalog.WarehouseProduct) *orders.FileProcessingResult {
	grid, err := p.reader.ReadGrid(data, format)
	if err != nil {
		return orders.NewStructuralFailure(err.Error())
	}

	if err := ValidateHeader(grid[0]); err != nil {
		return orders.NewStructuralFailure(err.Error())
	}

	decoder := NewRowDecoder(NewCatalogIndex(products))

	result := &orders.FileProcessingResult{
		Success: true,
		Orders:  make([]*orders.ParsedOrder, 0, len(grid)-1),
	}

	for i, cells := range grid[1:] {
		// First data row is source row 2
		order := decoder.Decode(cells, i+2)
		result.Orders = append(result.Orders, order)
		result.TotalRows++
		if order.IsValid() {
			result.ValidRows++
		} else {
			result.ErrorRows++
		}
	}

	return result
}

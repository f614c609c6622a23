package orders

import (
	"github.com/shopspring/decimal"
)

// ProductLine is one decoded order item. It is created during row decoding
// and immutable afterward. Quantity and UnitPrice hold the parsed values even
// when downstream catalog checks failed, so a preview can show what was
// attempted.
type ProductLine struct {
	ProductKey string          `json:"product_key"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// Customer holds the buyer fields of an imported order row.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ParsedOrder is the unit of admission for bulk order creation: one data row
// of the uploaded file, decoded and cross-validated. Errors block import;
// warnings are informational and never block.
type ParsedOrder struct {
	OrderID string        `json:"order_id"`
	Lines   []ProductLine `json:"lines"`

	// Date and ProductLink are opaque pass-through text: no format is
	// inferred or enforced.
	Date        string `json:"date"`
	ProductLink string `json:"product_link,omitempty"`

	Customer  Customer `json:"customer"`
	StoreName string   `json:"store_name"`

	// RowIndex is the 1-based source row including the header, so the first
	// data row is row 2.
	RowIndex int `json:"row_index"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddError appends a hard error to the order
func (o *ParsedOrder) AddError(msg string) {
	o.Errors = append(o.Errors, msg)
}

// AddWarning appends a soft warning to the order
func (o *ParsedOrder) AddWarning(msg string) {
	o.Warnings = append(o.Warnings, msg)
}

// IsValid returns true if the order carries no hard errors. This is the sole
// admission criterion for bulk creation; warnings never block.
func (o *ParsedOrder) IsValid() bool {
	return len(o.Errors) == 0
}

// FileProcessingResult is the overall outcome of processing one uploaded file.
// A structural failure (bad header, empty file, catalog fetch failure) yields
// Success=false with a message and no per-row results.
type FileProcessingResult struct {
	Success   bool           `json:"success"`
	Orders    []*ParsedOrder `json:"orders"`
	TotalRows int            `json:"total_rows"`
	ValidRows int            `json:"valid_rows"`
	ErrorRows int            `json:"error_rows"`
	Message   string         `json:"message,omitempty"`
}

// NewStructuralFailure builds a result for a file-level problem that aborted
// processing before any row-level result existed.
func NewStructuralFailure(message string) *FileProcessingResult {
	return &FileProcessingResult{
		Success: false,
		Orders:  []*ParsedOrder{},
		Message: message,
	}
}

// ValidOrders returns the orders admissible for bulk creation, in source-row
// order.
func (r *FileProcessingResult) ValidOrders() []*ParsedOrder {
	valid := make([]*ParsedOrder, 0, r.ValidRows)
	for _, o := range r.Orders {
		if o.IsValid() {
			valid = append(valid, o)
		}
	}
	return valid
}

package orderimport

// Column positions of the fixed import contract. Field offsets downstream are
// positional, not name-keyed, so the reader, validator and exporter all share
// this one definition.
const (
	colOrderID = iota
	colProductID
	colDate
	colProductName
	colProductLink
	colCustomerName
	colPhoneNumber
	colAddress
	colPrice
	colQuantity
	colStoreName

	// NumColumns is the exact column count of the import contract
	NumColumns
)

// ExpectedColumns is the ordered header contract. Header matching is
// case-insensitive but order-sensitive.
var ExpectedColumns = [NumColumns]string{
	"ORDER ID",
	"PRODUCT ID",
	"DATE",
	"PRODUCT NAME",
	"PRODUCT LINK",
	"CUSTOMER NAME",
	"PHONE NUMBER",
	"ADDRESS",
	"PRICE",
	"QUANTITY",
	"STORE NAME",
}

// ExportColumns is the corrected-file header: the import contract plus the
// appended status and error columns.
var ExportColumns = append(ExpectedColumns[:], "STATUS", "ERRORS")

// MultiValueSeparator joins the parallel per-product sub-fields of a row.
const MultiValueSeparator = "|"

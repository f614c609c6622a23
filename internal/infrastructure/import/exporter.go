package orderimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sellerops/backend/internal/domain/orders"
)

// Row status values written to the corrected file
const (
	StatusValid = "Valid"
	StatusError = "Error"
)

// utf8BOM is prepended to exports for spreadsheet-application compatibility
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReportExporter serializes parsed orders back into a CSV the operator can
// correct and re-upload. The output keeps the original 11 columns, appends
// STATUS and ERRORS, and uses the same quoting convention the reader accepts,
// so an export is always re-importable.
type ReportExporter struct{}

// NewReportExporter creates a report exporter
func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// Export renders the full ordered list of parsed orders as a CSV blob with a
// UTF-8 byte-order mark and CRLF line endings.
func (e *ReportExporter) Export(parsed []*orders.ParsedOrder) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(ExportColumns); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	for _, order := range parsed {
		if err := w.Write(exportRow(order)); err != nil {
			return nil, fmt.Errorf("failed to write export row %d: %w", order.RowIndex, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush export: %w", err)
	}

	return buf.Bytes(), nil
}

// FileName returns the download name for a corrected export, e.g.
// corrected_orders_2024-01-15.csv
func (e *ReportExporter) FileName(now time.Time) string {
	return fmt.Sprintf("corrected_orders_%s.csv", now.Format("2006-01-02"))
}

// exportRow rebuilds the 11 contract columns from a parsed order, re-joining
// the multi-product fields in the positional order they were exploded, and
// appends the status and error columns.
func exportRow(order *orders.ParsedOrder) []string {
	ids := make([]string, len(order.Lines))
	names := make([]string, len(order.Lines))
	prices := make([]string, len(order.Lines))
	quantities := make([]string, len(order.Lines))
	for i, line := range order.Lines {
		ids[i] = line.ProductKey
		names[i] = line.Name
		prices[i] = line.UnitPrice.String()
		quantities[i] = strconv.Itoa(line.Quantity)
	}

	row := make([]string, len(ExportColumns))
	row[colOrderID] = order.OrderID
	row[colProductID] = strings.Join(ids, MultiValueSeparator)
	row[colDate] = order.Date
	row[colProductName] = strings.Join(names, MultiValueSeparator)
	row[colProductLink] = order.ProductLink
	row[colCustomerName] = order.Customer.Name
	row[colPhoneNumber] = order.Customer.Phone
	row[colAddress] = order.Customer.Address
	row[colPrice] = strings.Join(prices, MultiValueSeparator)
	row[colQuantity] = strings.Join(quantities, MultiValueSeparator)
	row[colStoreName] = order.StoreName

	status := StatusValid
	if !order.IsValid() {
		status = StatusError
	}
	row[NumColumns] = status
	row[NumColumns+1] = strings.Join(order.Errors, "; ")

	return row
}

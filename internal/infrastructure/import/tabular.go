package orderimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// FileFormat identifies the container format of an uploaded file
type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatXLS  FileFormat = "xls"
	FormatXLSX FileFormat = "xlsx"
)

// DetectFormat maps a file name to its tabular format
func DetectFormat(fileName string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xls":
		return FormatXLS, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}

// TabularReader converts an uploaded file into a uniform grid of string
// cells, one row per order line. Empty rows are dropped; every remaining row
// carries at least NumColumns cells so a short row still reaches validation
// and fails there with a specific message instead of silently vanishing.
type TabularReader struct {
	delimiter rune
}

// ReaderOption is a functional option for TabularReader configuration
type ReaderOption func(*TabularReader)

// WithDelimiter sets the CSV field delimiter (default is comma)
func WithDelimiter(d rune) ReaderOption {
	return func(r *TabularReader) {
		r.delimiter = d
	}
}

// NewTabularReader creates a new tabular reader
func NewTabularReader(opts ...ReaderOption) *TabularReader {
	r := &TabularReader{delimiter: ','}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadGrid parses the raw file content into rows of cells. It returns
// ErrTooFewRows when the file has no header or no data rows.
func (r *TabularReader) ReadGrid(data []byte, format FileFormat) ([][]string, error) {
	var (
		rows [][]string
		err  error
	)

	switch format {
	case FormatCSV:
		rows, err = r.readCSV(data)
	case FormatXLS, FormatXLSX:
		rows, err = r.readSpreadsheet(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, ErrTooFewRows
	}
	return rows, nil
}

// readCSV reads UTF-8 CSV content. A leading byte-order mark is stripped,
// quoted fields follow the doubled-quote escaping convention, and both CRLF
// and LF line endings are accepted.
func (r *TabularReader) readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if err := validateUTF8(data); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = r.delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // Column count is enforced by the schema validator

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, padRow(record, NumColumns))
	}

	return rows, nil
}

// readSpreadsheet reads the first sheet of an Excel workbook. Cells are
// returned as strings with blank strings for empty cells; every row is
// normalized to exactly NumColumns cells.
func (r *TabularReader) readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	var rows [][]string
	for _, cells := range sheetRows {
		if isBlankRow(cells) {
			continue
		}
		row := padRow(cells, NumColumns)
		if len(row) > NumColumns {
			row = row[:NumColumns]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// validateUTF8 checks the whole payload, so malformed bytes past the first
// block are still rejected
func validateUTF8(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(data) {
		return ErrInvalidEncoding
	}
	return nil
}

// isBlankRow returns true if every cell is empty after trimming
func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// padRow extends a row with empty strings up to width cells
func padRow(cells []string, width int) []string {
	if len(cells) >= width {
		return cells
	}
	padded := make([]string, width)
	copy(padded, cells)
	return padded
}

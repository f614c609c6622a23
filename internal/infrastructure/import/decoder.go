package orderimport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sellerops/backend/internal/domain/orders"
)

// requiredFields lists the columns that must be non-blank, by position.
// Product Link is the only optional column.
var requiredFields = []int{
	colOrderID,
	colProductID,
	colDate,
	colProductName,
	colCustomerName,
	colPhoneNumber,
	colAddress,
	colPrice,
	colQuantity,
	colStoreName,
}

// RowDecoder turns one raw row into a ParsedOrder, accumulating errors and
// warnings instead of failing. It never returns an error: every failure mode
// becomes a message on the row.
type RowDecoder struct {
	catalog *CatalogIndex
}

// NewRowDecoder creates a decoder validating against the given catalog snapshot
func NewRowDecoder(catalog *CatalogIndex) *RowDecoder {
	return &RowDecoder{catalog: catalog}
}

// Decode decodes one raw row. rowIndex is the 1-based source row including
// the header, so the first data row is 2.
func (d *RowDecoder) Decode(cells []string, rowIndex int) *orders.ParsedOrder {
	order := &orders.ParsedOrder{
		OrderID:     strings.TrimSpace(cells[colOrderID]),
		Date:        strings.TrimSpace(cells[colDate]),
		ProductLink: strings.TrimSpace(cells[colProductLink]),
		StoreName:   strings.TrimSpace(cells[colStoreName]),
		Customer: orders.Customer{
			Name:    strings.TrimSpace(cells[colCustomerName]),
			Phone:   strings.TrimSpace(cells[colPhoneNumber]),
			Address: strings.TrimSpace(cells[colAddress]),
		},
		RowIndex: rowIndex,
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, col := range requiredFields {
		if strings.TrimSpace(cells[col]) == "" {
			order.AddError(fmt.Sprintf("%s is required", displayName(ExpectedColumns[col])))
		}
	}

	d.decodeProducts(order, cells)

	return order
}

// decodeProducts explodes the pipe-delimited multi-product fields and
// validates each product line against the catalog snapshot.
func (d *RowDecoder) decodeProducts(order *orders.ParsedOrder, cells []string) {
	if strings.TrimSpace(cells[colProductID]) == "" {
		// Missing product id already reported by the required-field check;
		// there is nothing to explode.
		return
	}

	ids := strings.Split(cells[colProductID], MultiValueSeparator)
	names := strings.Split(cells[colProductName], MultiValueSeparator)
	prices := strings.Split(cells[colPrice], MultiValueSeparator)
	quantities := strings.Split(cells[colQuantity], MultiValueSeparator)

	if len(ids) != len(names) || len(ids) != len(prices) || len(ids) != len(quantities) {
		order.AddError(fmt.Sprintf(
			"mismatched product field counts: %d ids, %d names, %d prices, %d quantities",
			len(ids), len(names), len(prices), len(quantities)))
		return
	}

	for i := range ids {
		d.decodeProductLine(order, i,
			strings.TrimSpace(ids[i]),
			strings.TrimSpace(names[i]),
			strings.TrimSpace(prices[i]),
			strings.TrimSpace(quantities[i]))
	}
}

// decodeProductLine validates one exploded product position. The line is
// appended to the order unless price or quantity fail to parse, so a preview
// can still show what was attempted when only catalog checks failed.
func (d *RowDecoder) decodeProductLine(order *orders.ParsedOrder, pos int, id, name, priceStr, qtyStr string) {
	if id == "" {
		order.AddError(fmt.Sprintf("product id is missing at position %d", pos+1))
		return
	}

	fatal := false

	price, err := decimal.NewFromString(priceStr)
	if err != nil || !price.IsPositive() {
		order.AddError(fmt.Sprintf("invalid price %q for product %s", priceStr, id))
		fatal = true
	}

	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		order.AddError(fmt.Sprintf("invalid quantity %q for product %s", qtyStr, id))
		fatal = true
	}

	if fatal {
		return
	}

	order.Lines = append(order.Lines, orders.ProductLine{
		ProductKey: id,
		Name:       name,
		Quantity:   qty,
		UnitPrice:  price,
	})

	product, found := d.catalog.Lookup(id)
	if !found {
		order.AddError(fmt.Sprintf("%s does not exist in selected warehouse", id))
		return
	}

	// An order cannot be fulfilled without an approved supply source, so a
	// missing expedition is a hard error while a stock shortfall is only a
	// warning for the operator.
	if !product.HasApprovedExpedition() {
		order.AddError(fmt.Sprintf("%s has no approved expeditions in selected warehouse", id))
		return
	}

	if product.Stock < qty {
		order.AddWarning(fmt.Sprintf(
			"insufficient stock for %s: available %d, requested %d",
			id, product.Stock, qty))
	}
}

// displayName converts an upper-case contract column name to its
// human-readable form, e.g. "CUSTOMER NAME" -> "Customer Name".
func displayName(column string) string {
	words := strings.Split(strings.ToLower(column), " ")
	for i, w := range words {
		if w == "id" {
			words[i] = "ID"
			continue
		}
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

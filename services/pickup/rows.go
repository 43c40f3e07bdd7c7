package pickup

import (
	"context"
	"log/slog"
	"strings"

	"vivapickup/lib/scrapers/viva"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/pickup")

// ColumnCount is fixed by the pickup form the sheet is pasted into, blank
// columns included.
const ColumnCount = 13

// Row is one sheet row: an order header, a line item or a blank separator.
type Row [ColumnCount]string

// column positions within a Row, the rest stay blank
const (
	colSalesperson  = 1
	colOrderNumber  = 2
	colProductCode  = 4
	colVendorName   = 5
	colQuantity     = 6
	colCustomerName = 7
	colPhone        = 8
	colStockStatus  = 12
)

const (
	StockInStock       = "现货"
	StockNeedsOrdering = "需要订货"
)

// DetailSource yields the detail document for one order.
type DetailSource interface {
	FetchOrderDetail(ctx context.Context, originalID string) (viva.OrderDetail, error)
}

type Options struct {
	// compute the 订货 column, blank otherwise
	IncludeStockStatus bool
	// drop line items with a negative quantity, suppressing the whole
	// order when nothing is left
	SkipNegativeQty bool
}

// Diagnostic records one skipped order. Skips never abort the run.
type Diagnostic struct {
	OriginalID string
	Number     string
	Err        error
}

type BuildResult struct {
	Rows        []Row
	Diagnostics []Diagnostic
	// orders that produced rows
	Emitted int
	// orders dropped by the negative-quantity rule
	Suppressed int
}

// CombinePhones joins the non-empty contact numbers with "/", cell first,
// then home, then office.
func CombinePhones(d viva.OrderDetail) string {
	var parts []string
	for _, phone := range []string{d.PhoneCell, d.PhoneHome, d.PhoneOffice} {
		if phone != "" {
			parts = append(parts, phone)
		}
	}
	return strings.Join(parts, "/")
}

// StockStatus labels whether the on-hand quantity covers the ordered
// quantity with at least one unit to spare.
func StockStatus(item viva.LineItem) string {
	if item.QtyOnHandValue()-item.QtyValue() >= 1 {
		return StockInStock
	}
	return StockNeedsOrdering
}

// BuildRows fetches each entry's detail and flattens it into sheet rows:
// one header row, one row per retained line item, one blank separator.
// A fetch or decode failure skips that entry only.
func BuildRows(ctx context.Context, src DetailSource, entries []viva.ListingEntry, opts Options) BuildResult {
	ctx, span := tracer.Start(ctx, "BuildRows", trace.WithAttributes(
		attribute.Int("entries", len(entries)),
	))
	defer span.End()

	var result BuildResult
	for _, entry := range entries {
		detail, err := src.FetchOrderDetail(ctx, entry.OriginalID)
		if err != nil {
			slog.WarnContext(ctx, "skipping order",
				"original_id", entry.OriginalID,
				"number", entry.Number,
				"err", err,
			)
			span.RecordError(err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				OriginalID: entry.OriginalID,
				Number:     entry.Number,
				Err:        err,
			})
			continue
		}

		items := detail.Items
		if opts.SkipNegativeQty {
			items = retainNonNegative(items)
			if len(items) == 0 {
				slog.DebugContext(ctx, "order suppressed, nothing worth ordering",
					"original_id", entry.OriginalID,
					"number", entry.Number,
				)
				result.Suppressed++
				continue
			}
		}

		var header Row
		header[colSalesperson] = entry.UserName
		header[colOrderNumber] = entry.Number
		header[colCustomerName] = entry.FirstName + " " + entry.LastName
		header[colPhone] = CombinePhones(detail)
		result.Rows = append(result.Rows, header)

		for _, item := range items {
			var row Row
			row[colProductCode] = item.VendorPLU
			row[colVendorName] = item.VendorName
			row[colQuantity] = item.Qty
			if opts.IncludeStockStatus {
				row[colStockStatus] = StockStatus(item)
			}
			result.Rows = append(result.Rows, row)
		}

		result.Rows = append(result.Rows, Row{})
		result.Emitted++
	}

	return result
}

func retainNonNegative(items []viva.LineItem) []viva.LineItem {
	var out []viva.LineItem
	for _, item := range items {
		if item.QtyValue() < 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

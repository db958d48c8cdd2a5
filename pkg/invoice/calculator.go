// pkg/invoice/calculator.go

package invoice

import (
	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Line is a LineItem with its total. Total is computed once by Calculate.
type Line struct {
	LineItem
	Total decimal.Decimal
}

type Totals struct {
	Lines      []Line
	GrandTotal decimal.Decimal
}

// Calculate multiplies every item exactly and sums the results. Nothing is
// rounded here; rounding belongs to display formatting. Lines keep the
// order of items.
func Calculate(items []LineItem) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ierr.NewError("no line items to bill").
			WithHint("the items source contains no rows").
			Mark(ierr.ErrEmptyInvoice)
	}

	lines := lo.Map(items, func(item LineItem, _ int) Line {
		return Line{LineItem: item, Total: item.Quantity.Mul(item.UnitPrice)}
	})

	grand := lo.Reduce(lines, func(sum decimal.Decimal, l Line, _ int) decimal.Decimal {
		return sum.Add(l.Total)
	}, decimal.Zero)

	return Totals{Lines: lines, GrandTotal: grand}, nil
}

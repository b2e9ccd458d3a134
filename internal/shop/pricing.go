package shop

import "github.com/shopspring/decimal"

// PricedItem is one order line with the product price resolved at order time.
type PricedItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// AggregatePrice returns the sum of unit price times quantity across all
// lines. The result is the order's snapshot total; historical orders are
// never recomputed when product prices change.
func AggregatePrice(items []PricedItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

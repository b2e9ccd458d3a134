package shop

import (
	"context"
	"sort"
	"time"
)

// ItemRecord is one historical order-item row as fed to the statistics
// engine, in insertion order.
type ItemRecord struct {
	ProductID   string
	ProductName string
}

// ItemSource streams order-item rows whose parent order falls inside the
// inclusive [start, end] range.
type ItemSource interface {
	ItemsInRange(ctx context.Context, start, end time.Time) ([]ItemRecord, error)
}

type ProductCount struct {
	ProductName string `json:"product_name"`
	TotalOrders int    `json:"total_orders"`
}

type StatsEngine struct {
	Items ItemSource
}

// TopProducts ranks products by how many order-item rows reference them in
// the range, descending. Each row counts once regardless of its quantity.
// Ties keep first-appearance order; fewer than n products returns them all.
func (s *StatsEngine) TopProducts(ctx context.Context, start, end time.Time, n int) ([]ProductCount, error) {
	if n <= 0 {
		return []ProductCount{}, nil
	}
	rows, err := s.Items.ItemsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	order := make([]string, 0, len(rows))
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		if _, seen := counts[row.ProductID]; !seen {
			order = append(order, row.ProductID)
			names[row.ProductID] = row.ProductName
		}
		counts[row.ProductID]++
	}

	out := make([]ProductCount, 0, len(order))
	for _, id := range order {
		out = append(out, ProductCount{ProductName: names[id], TotalOrders: counts[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalOrders > out[j].TotalOrders })

	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

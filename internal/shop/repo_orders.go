package shop

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct{ DB *pgxpool.Pool }

// CreateOrder writes the order row, every line item, and the snapshot price
// in one transaction. Any failure rolls the whole sequence back.
func (r *OrderRepo) CreateOrder(ctx context.Context, o Order, items []OrderItem) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, delivery_address, order_date, payment_due_date, aggregate_price)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.CustomerID, o.DeliveryAddress, o.OrderDate, o.PaymentDueDate, o.AggregatePrice,
	)
	if err != nil {
		return err
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity)
			VALUES ($1, $2, $3)`,
			o.ID, it.ProductID, it.Quantity,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, customer_id, delivery_address, order_date, payment_due_date, aggregate_price
		FROM orders ORDER BY order_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	byID := map[string]int{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.DeliveryAddress, &o.OrderDate, &o.PaymentDueDate, &o.AggregatePrice); err != nil {
			return nil, err
		}
		byID[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, quantity FROM order_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		if i, ok := byID[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, itemRows.Err()
}

// ItemsInRange feeds the statistics engine: one row per order item whose
// parent order was created inside [start, end], in insertion order.
func (r *OrderRepo) ItemsInRange(ctx context.Context, start, end time.Time) ([]ItemRecord, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT oi.product_id, p.name
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.order_date >= $1 AND o.order_date <= $2
		ORDER BY oi.id`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemRecord
	for rows.Next() {
		var rec ItemRecord
		if err := rows.Scan(&rec.ProductID, &rec.ProductName); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

package shop

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PaymentDueOffset is how long after creation an order's payment is due.
const PaymentDueOffset = 5 * 24 * time.Hour

type LineInput struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderInput struct {
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	DeliveryAddress string      `json:"delivery_address"`
	Items           []LineInput `json:"products"`
}

type PlaceOrderResult struct {
	OrderID        string          `json:"-"`
	Status         string          `json:"status"`
	AggregatePrice decimal.Decimal `json:"aggregate_price"`
	PaymentDueDate time.Time       `json:"payment_due_date"`
}

// ProductFinder resolves product ids to live catalog records.
type ProductFinder interface {
	ProductsByIDs(ctx context.Context, ids []string) (map[string]Product, error)
}

// OrderStore persists an order together with its line items and snapshot
// price in a single transaction; a failure must leave no rows behind.
type OrderStore interface {
	CreateOrder(ctx context.Context, o Order, items []OrderItem) error
}

// Scheduler enqueues notification jobs. Both calls are fire-and-forget:
// enqueue failures are logged inside the scheduler, never surfaced here.
type Scheduler interface {
	ScheduleConfirmation(ctx context.Context, o Order, u User)
	ScheduleReminder(ctx context.Context, o Order, u User)
}

type OrderWorkflow struct {
	Products ProductFinder
	Orders   OrderStore
	Notify   Scheduler
	Now      func() time.Time
	Log      zerolog.Logger
}

// Place runs the order-placement sequence: name check, product resolution,
// transactional persistence, price snapshot, notification scheduling.
// Nothing is written when validation or resolution fails.
func (w *OrderWorkflow) Place(ctx context.Context, requester User, in PlaceOrderInput) (PlaceOrderResult, error) {
	if len(in.Items) == 0 {
		return PlaceOrderResult{}, Invalid("products", "at least one product is required")
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return PlaceOrderResult{}, Invalid("quantity", "quantity must be a positive integer")
		}
	}
	if in.FirstName != requester.FirstName || in.LastName != requester.LastName {
		return PlaceOrderResult{}, Invalid("first_name", "incorrect first name or last name")
	}

	ids := make([]string, 0, len(in.Items))
	for _, line := range in.Items {
		ids = append(ids, line.ProductID)
	}
	products, err := w.Products.ProductsByIDs(ctx, ids)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	now := w.now()
	order := Order{
		ID:              uuid.NewString(),
		CustomerID:      requester.ID,
		DeliveryAddress: in.DeliveryAddress,
		OrderDate:       now,
		PaymentDueDate:  now.Add(PaymentDueOffset),
	}

	// Duplicate product ids are allowed and produce independent rows.
	items := make([]OrderItem, 0, len(in.Items))
	priced := make([]PricedItem, 0, len(in.Items))
	for _, line := range in.Items {
		p, ok := products[line.ProductID]
		if !ok {
			return PlaceOrderResult{}, NotFoundf("product %s", line.ProductID)
		}
		items = append(items, OrderItem{
			OrderID:   order.ID,
			ProductID: p.ID,
			Quantity:  line.Quantity,
		})
		priced = append(priced, PricedItem{UnitPrice: p.Price, Quantity: line.Quantity})
	}
	order.AggregatePrice = AggregatePrice(priced)

	if err := w.Orders.CreateOrder(ctx, order, items); err != nil {
		return PlaceOrderResult{}, err
	}

	w.Notify.ScheduleConfirmation(ctx, order, requester)
	w.Notify.ScheduleReminder(ctx, order, requester)

	w.Log.Info().
		Str("order_id", order.ID).
		Str("customer_id", requester.ID).
		Int("items", len(items)).
		Str("aggregate_price", order.AggregatePrice.StringFixed(2)).
		Msg("order created")

	return PlaceOrderResult{
		OrderID:        order.ID,
		Status:         "Order created successfully",
		AggregatePrice: order.AggregatePrice,
		PaymentDueDate: order.PaymentDueDate,
	}, nil
}

func (w *OrderWorkflow) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now().UTC()
}

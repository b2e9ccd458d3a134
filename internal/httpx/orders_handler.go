package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mlorenc/go-shop-api/internal/auth"
	"github.com/mlorenc/go-shop-api/internal/redisx"
	"github.com/mlorenc/go-shop-api/internal/shop"
)

type OrderPlacer interface {
	Place(ctx context.Context, requester shop.User, in shop.PlaceOrderInput) (shop.PlaceOrderResult, error)
}

type OrderLister interface {
	List(ctx context.Context) ([]shop.Order, error)
}

type StatsProvider interface {
	TopProducts(ctx context.Context, start, end time.Time, n int) ([]shop.ProductCount, error)
}

type UserSource interface {
	ByID(ctx context.Context, id string) (shop.User, error)
}

type OrdersHandler struct {
	Workflow OrderPlacer
	Orders   OrderLister
	Stats    StatsProvider
	Users    UserSource
	Tokens   *auth.TokenIssuer
	Redis    *redis.Client
	Validate *validator.Validate
	Log      zerolog.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(gr chi.Router) {
		gr.Use(auth.Authenticate(h.Tokens))
		gr.Post("/order/create/", h.create)

		gr.Group(func(sr chi.Router) {
			sr.Use(auth.RequireRole(shop.RoleSeller, shop.RoleAdmin))
			sr.Get("/order/list/", h.list)
			sr.Post("/order/statistics/", h.statistics)
		})
	})
}

type createOrderReq struct {
	FirstName       string           `json:"first_name" validate:"required"`
	LastName        string           `json:"last_name" validate:"required"`
	DeliveryAddress string           `json:"delivery_address" validate:"required"`
	Products        []shop.LineInput `json:"products" validate:"required,min=1"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, shop.Invalid("", "invalid json"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Log, validationError(err))
		return
	}

	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, h.Log, fmt.Errorf("%w", shop.ErrAuthentication))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	requester, err := h.Users.ByID(ctx, claims.UserID)
	if err != nil {
		writeError(w, h.Log, fmt.Errorf("%w: unknown requester", shop.ErrAuthentication))
		return
	}

	res, err := h.Workflow.Place(ctx, requester, shop.PlaceOrderInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		DeliveryAddress: req.DeliveryAddress,
		Items:           req.Products,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	// Cache the response body so a follow-up read does not hit Postgres.
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderResp, res.OrderID)
		if body, err := json.Marshal(res); err == nil {
			_ = h.Redis.Set(ctx, key, body, redisx.TTLOrderResp).Err()
		}
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.List(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if orders == nil {
		orders = []shop.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

type statsReq struct {
	StartDate        string `json:"start_date" validate:"required"`
	EndDate          string `json:"end_date" validate:"required"`
	NumberOfProducts int    `json:"number_of_products"`
}

func (h *OrdersHandler) statistics(w http.ResponseWriter, r *http.Request) {
	var req statsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, shop.Invalid("", "invalid json"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Log, validationError(err))
		return
	}

	start, err := parseDate(req.StartDate, false)
	if err != nil {
		writeError(w, h.Log, shop.Invalid("start_date", "expected YYYY-MM-DD or RFC3339"))
		return
	}
	end, err := parseDate(req.EndDate, true)
	if err != nil {
		writeError(w, h.Log, shop.Invalid("end_date", "expected YYYY-MM-DD or RFC3339"))
		return
	}
	if end.Before(start) {
		writeError(w, h.Log, shop.Invalid("end_date", "end_date precedes start_date"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	out, err := h.Stats.TopProducts(ctx, start, end, req.NumberOfProducts)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// parseDate accepts a bare date or a full timestamp. A bare end date is
// pushed to the end of that day so the range stays inclusive.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

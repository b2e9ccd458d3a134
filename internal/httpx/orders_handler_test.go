package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlorenc/go-shop-api/internal/auth"
	"github.com/mlorenc/go-shop-api/internal/shop"
)

type fakePlacer struct {
	gotRequester shop.User
	gotInput     shop.PlaceOrderInput
	res          shop.PlaceOrderResult
	err          error
}

func (f *fakePlacer) Place(ctx context.Context, requester shop.User, in shop.PlaceOrderInput) (shop.PlaceOrderResult, error) {
	f.gotRequester = requester
	f.gotInput = in
	return f.res, f.err
}

type fakeLister struct {
	orders []shop.Order
	err    error
}

func (f *fakeLister) List(ctx context.Context) ([]shop.Order, error) { return f.orders, f.err }

type fakeStats struct {
	gotStart, gotEnd time.Time
	gotN             int
	res              []shop.ProductCount
	err              error
}

func (f *fakeStats) TopProducts(ctx context.Context, start, end time.Time, n int) ([]shop.ProductCount, error) {
	f.gotStart, f.gotEnd, f.gotN = start, end, n
	return f.res, f.err
}

type fakeUserSource struct {
	users map[string]shop.User
}

func (f *fakeUserSource) ByID(ctx context.Context, id string) (shop.User, error) {
	u, ok := f.users[id]
	if !ok {
		return shop.User{}, shop.NotFoundf("user")
	}
	return u, nil
}

type ordersFixture struct {
	handler *OrdersHandler
	router  http.Handler
	issuer  *auth.TokenIssuer
	placer  *fakePlacer
	lister  *fakeLister
	stats   *fakeStats
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()
	issuer := &auth.TokenIssuer{Secret: []byte("test-secret")}
	placer := &fakePlacer{}
	lister := &fakeLister{}
	stats := &fakeStats{}
	users := &fakeUserSource{users: map[string]shop.User{
		"u1": {ID: "u1", FirstName: "test", LastName: "test", Email: "t@example.com", Role: shop.RoleCustomer},
	}}
	h := &OrdersHandler{
		Workflow: placer,
		Orders:   lister,
		Stats:    stats,
		Users:    users,
		Tokens:   issuer,
		Validate: NewValidator(),
		Log:      zerolog.Nop(),
	}
	r := NewRouter()
	h.Register(r)
	return &ordersFixture{handler: h, router: r, issuer: issuer, placer: placer, lister: lister, stats: stats}
}

func (f *ordersFixture) token(t *testing.T, role shop.Role) string {
	t.Helper()
	tok, err := f.issuer.Issue(shop.User{ID: "u1", Role: role})
	require.NoError(t, err)
	return tok
}

func (f *ordersFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

const validOrderBody = `{
	"first_name": "test",
	"last_name": "test",
	"delivery_address": "test delivery address",
	"products": [{"product": "a", "quantity": 1}, {"product": "b", "quantity": 1}]
}`

func TestOrderCreate(t *testing.T) {
	due := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("unauthenticated", func(t *testing.T) {
		f := newOrdersFixture(t)
		rec := f.do(t, http.MethodPost, "/order/create/", "", validOrderBody)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("created", func(t *testing.T) {
		f := newOrdersFixture(t)
		f.placer.res = shop.PlaceOrderResult{
			OrderID:        "ord-1",
			Status:         "Order created successfully",
			AggregatePrice: decimal.RequireFromString("126.41"),
			PaymentDueDate: due,
		}
		rec := f.do(t, http.MethodPost, "/order/create/", f.token(t, shop.RoleCustomer), validOrderBody)
		require.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Order created successfully", body["status"])
		assert.Equal(t, "126.41", body["aggregate_price"])
		assert.NotEmpty(t, body["payment_due_date"])

		// requester was resolved from token claims, not the body
		assert.Equal(t, "u1", f.placer.gotRequester.ID)
		assert.Len(t, f.placer.gotInput.Items, 2)
	})

	t.Run("name mismatch maps to 400", func(t *testing.T) {
		f := newOrdersFixture(t)
		f.placer.err = shop.Invalid("first_name", "incorrect first name or last name")
		rec := f.do(t, http.MethodPost, "/order/create/", f.token(t, shop.RoleCustomer), validOrderBody)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "first_name")
	})

	t.Run("unknown product maps to 404", func(t *testing.T) {
		f := newOrdersFixture(t)
		f.placer.err = shop.NotFoundf("product 999")
		rec := f.do(t, http.MethodPost, "/order/create/", f.token(t, shop.RoleCustomer), validOrderBody)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing products rejected before workflow", func(t *testing.T) {
		f := newOrdersFixture(t)
		body := `{"first_name":"test","last_name":"test","delivery_address":"x","products":[]}`
		rec := f.do(t, http.MethodPost, "/order/create/", f.token(t, shop.RoleCustomer), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.placer.gotInput.Items)
	})

	t.Run("invalid json", func(t *testing.T) {
		f := newOrdersFixture(t)
		rec := f.do(t, http.MethodPost, "/order/create/", f.token(t, shop.RoleCustomer), "{oops")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOrderList(t *testing.T) {
	tests := []struct {
		name  string
		role  shop.Role
		token bool
		want  int
	}{
		{"customer forbidden", shop.RoleCustomer, true, http.StatusForbidden},
		{"seller allowed", shop.RoleSeller, true, http.StatusOK},
		{"admin allowed", shop.RoleAdmin, true, http.StatusOK},
		{"unauthenticated", "", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrdersFixture(t)
			f.lister.orders = []shop.Order{{ID: "ord-1"}}
			token := ""
			if tt.token {
				token = f.token(t, tt.role)
			}
			rec := f.do(t, http.MethodGet, "/order/list/", token, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestOrderStatistics(t *testing.T) {
	body := `{"start_date":"2020-01-01","end_date":"2024-01-21","number_of_products":2}`

	t.Run("role matrix", func(t *testing.T) {
		tests := []struct {
			role shop.Role
			want int
		}{
			{shop.RoleCustomer, http.StatusForbidden},
			{shop.RoleSeller, http.StatusOK},
			{shop.RoleAdmin, http.StatusOK},
		}
		for _, tt := range tests {
			f := newOrdersFixture(t)
			rec := f.do(t, http.MethodPost, "/order/statistics/", f.token(t, tt.role), body)
			assert.Equal(t, tt.want, rec.Code, string(tt.role))
		}
	})

	t.Run("returns ranked products and inclusive range", func(t *testing.T) {
		f := newOrdersFixture(t)
		f.stats.res = []shop.ProductCount{{ProductName: "X", TotalOrders: 3}, {ProductName: "Y", TotalOrders: 1}}
		rec := f.do(t, http.MethodPost, "/order/statistics/", f.token(t, shop.RoleSeller), body)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []shop.ProductCount
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, f.stats.res, got)

		assert.Equal(t, 2, f.stats.gotN)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), f.stats.gotStart)
		// bare end date covers the whole day
		assert.Equal(t, 21, f.stats.gotEnd.Day())
		assert.Equal(t, 23, f.stats.gotEnd.Hour())
	})

	t.Run("zero products flows through as empty", func(t *testing.T) {
		f := newOrdersFixture(t)
		f.stats.res = []shop.ProductCount{}
		zero := `{"start_date":"2020-01-01","end_date":"2024-01-21","number_of_products":0}`
		rec := f.do(t, http.MethodPost, "/order/statistics/", f.token(t, shop.RoleSeller), zero)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, f.stats.gotN)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("bad date", func(t *testing.T) {
		f := newOrdersFixture(t)
		bad := `{"start_date":"01/02/2020","end_date":"2024-01-21","number_of_products":2}`
		rec := f.do(t, http.MethodPost, "/order/statistics/", f.token(t, shop.RoleSeller), bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reversed range", func(t *testing.T) {
		f := newOrdersFixture(t)
		bad := `{"start_date":"2024-01-21","end_date":"2020-01-01","number_of_products":2}`
		rec := f.do(t, http.MethodPost, "/order/statistics/", f.token(t, shop.RoleSeller), bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

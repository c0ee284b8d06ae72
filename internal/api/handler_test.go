package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nordmart/storefront/internal/domain/auth"
	"github.com/nordmart/storefront/internal/domain/cart"
	"github.com/nordmart/storefront/internal/domain/checkout"
	"github.com/nordmart/storefront/internal/domain/order"
	"github.com/nordmart/storefront/internal/domain/product"
	"github.com/nordmart/storefront/internal/domain/promo"
	"github.com/nordmart/storefront/internal/domain/review"
	"github.com/nordmart/storefront/internal/domain/wishlist"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type memStore[T any] struct {
	values map[string]T
	empty  func() T
}

func newMemStore[T any](empty func() T) *memStore[T] {
	return &memStore[T]{values: make(map[string]T), empty: empty}
}

func (s *memStore[T]) Load(_ context.Context, userID string) (T, error) {
	if v, ok := s.values[userID]; ok {
		return v, nil
	}
	return s.empty(), nil
}

func (s *memStore[T]) Save(_ context.Context, userID string, state T) error {
	s.values[userID] = state
	return nil
}

func (s *memStore[T]) Delete(_ context.Context, userID string) error {
	delete(s.values, userID)
	return nil
}

type productRepoMock struct {
	products map[int64]product.Product
}

func (m *productRepoMock) List(context.Context, product.ListParams) (*product.ListResult, error) {
	out := make([]product.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &product.ListResult{Products: out, Total: len(out)}, nil
}

func (m *productRepoMock) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *productRepoMock) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *productRepoMock) LowStock(context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.products {
		if p.LowOnStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

type orderRepoMock struct {
	orders []order.Order
}

func (m *orderRepoMock) Create(_ context.Context, o *order.Order) error {
	m.orders = append(m.orders, *o)
	return nil
}

func (m *orderRepoMock) GetByID(_ context.Context, id string) (*order.Order, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			o := m.orders[i]
			return &o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *orderRepoMock) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *orderRepoMock) List(context.Context) ([]order.Order, error) {
	return append([]order.Order(nil), m.orders...), nil
}

func (m *orderRepoMock) UpdateStatus(_ context.Context, id string, status order.Status) error {
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			return nil
		}
	}
	return order.ErrNotFound
}

type promoRepoMock struct {
	rules map[string]promo.Rule
}

func (m *promoRepoMock) FindByCode(_ context.Context, code string) (*promo.Rule, error) {
	r, ok := m.rules[code]
	if !ok || !r.Active {
		return nil, promo.ErrInvalidCode
	}
	return &r, nil
}

func (m *promoRepoMock) ListCodes(context.Context) ([]string, error) {
	codes := make([]string, 0, len(m.rules))
	for code := range m.rules {
		codes = append(codes, code)
	}
	return codes, nil
}

type reviewRepoMock struct {
	reviews []review.Review
}

func (m *reviewRepoMock) ListByProduct(_ context.Context, productID int64) ([]review.Review, error) {
	var out []review.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *reviewRepoMock) Create(_ context.Context, r *review.Review) error {
	m.reviews = append(m.reviews, *r)
	return nil
}

type userRepoMock struct {
	users map[string]*auth.User
}

func (m *userRepoMock) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, auth.ErrInvalidCredentials
}

func (m *userRepoMock) FindByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, auth.ErrInvalidCredentials
}

type testEnv struct {
	handler  http.Handler
	orders   *orderRepoMock
	reviews  *reviewRepoMock
	customer string
	admin    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		require.NoError(t, err)
		return string(h)
	}

	users := &userRepoMock{users: map[string]*auth.User{
		"u1": {ID: "u1", Email: "alice@example.com", PasswordHash: hash("password1"), Name: "Alice", Role: auth.RoleCustomer},
		"u2": {ID: "u2", Email: "admin@example.com", PasswordHash: hash("sekret"), Name: "Root", Role: auth.RoleAdmin},
	}}
	authSvc := auth.NewService(users, []byte("test-secret"), time.Hour, 24*time.Hour)

	products := &productRepoMock{products: map[int64]product.Product{
		1: {ID: 1, Name: "Waffle with Berries", Price: d("2.50"), Stock: 10, LowStockThreshold: 2, Category: "waffles"},
		2: {ID: 2, Name: "Vanilla Bean Creme Brulee", Price: d("3.90"), Stock: 5, LowStockThreshold: 2, Category: "desserts"},
		3: {ID: 3, Name: "Macaron Mix", Price: d("8.00"), Stock: 1, LowStockThreshold: 3, Category: "desserts"},
	}}

	promos := promo.NewRepoValidator(&promoRepoMock{rules: map[string]promo.Rule{
		"WELCOME10": {Code: "WELCOME10", Amount: d("10"), Description: "welcome discount", Active: true},
		"EXPIRED":   {Code: "EXPIRED", Amount: d("5"), Active: false},
	}})

	orders := &orderRepoMock{}
	reviews := &reviewRepoMock{}

	env := &testEnv{orders: orders, reviews: reviews}
	h := NewHandler(
		products,
		reviews,
		orders,
		order.NewService(orders),
		promos,
		authSvc,
		newMemStore(cart.Empty),
		newMemStore(wishlist.Empty),
		newMemStore(checkout.Empty),
	)
	env.handler = h.Routes()

	login := func(email, password string) string {
		tokens, _, err := authSvc.Login(context.Background(), email, password)
		require.NoError(t, err)
		return tokens.Access
	}
	env.customer = login("alice@example.com", "password1")
	env.admin = login("admin@example.com", "sekret")
	return env
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.Equal(t, "Alice", body["user"].(map[string]any)["name"])

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{
		"productId": 1, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Adding the same product merges into one line.
	rec = env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{
		"productId": 1, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	require.Len(t, body["items"], 1)
	assert.EqualValues(t, 3, body["count"])
	assert.InDelta(t, 7.5, body["subtotal"], 1e-9)

	// Unknown product is a 404.
	rec = env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{
		"productId": 999,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Setting quantity to zero removes the line.
	rec = env.do(t, http.MethodPatch, "/api/cart/items/1", env.customer, map[string]any{
		"quantity": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeMap(t, rec)["count"])
}

func TestCartPromo(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{
		"productId": 1, "quantity": 2,
	})

	rec := env.do(t, http.MethodPost, "/api/cart/promo", env.customer, map[string]string{"code": "BOGUS"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart/promo", env.customer, map[string]string{"code": "EXPIRED"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Codes match case-insensitively; the discount never pushes the total
	// below zero.
	rec = env.do(t, http.MethodPost, "/api/cart/promo", env.customer, map[string]string{"code": "welcome10"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "WELCOME10", body["promoCode"])
	assert.InDelta(t, 10, body["discount"], 1e-9)
	assert.InDelta(t, 0, body["total"], 1e-9)
}

func TestCartValidate(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{
		"productId": 3, "quantity": 5,
	})

	rec := env.do(t, http.MethodPost, "/api/cart/validate", env.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, false, body["valid"])
	issues := body["issues"].([]any)
	require.Len(t, issues, 1)
	issue := issues[0].(map[string]any)
	assert.Equal(t, "insufficient stock", issue["reason"])
	assert.EqualValues(t, 1, issue["available"])
}

func TestWishlistToggle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/wishlist/2", env.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeMap(t, rec)["count"])

	// Toggling again removes it.
	rec = env.do(t, http.MethodPut, "/api/wishlist/2", env.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeMap(t, rec)["count"])

	rec = env.do(t, http.MethodPut, "/api/wishlist/999", env.customer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutGating(t *testing.T) {
	env := newTestEnv(t)

	// Empty cart resolves every step back to the summary.
	rec := env.do(t, http.MethodGet, "/api/checkout?step=confirm", env.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "summary", decodeMap(t, rec)["step"])

	rec = env.do(t, http.MethodPost, "/api/checkout/confirm", env.customer, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "summary", decodeMap(t, rec)["step"])

	// With items but no address, confirm resolves to the address step.
	env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{"productId": 1})
	rec = env.do(t, http.MethodPost, "/api/checkout/confirm", env.customer, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "address", decodeMap(t, rec)["step"])

	// An address without street and city is rejected.
	rec = env.do(t, http.MethodPut, "/api/checkout/address", env.customer, map[string]string{
		"fullName": "Alice",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckoutConfirm(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{"productId": 1, "quantity": 2})
	env.do(t, http.MethodPost, "/api/cart/items", env.customer, map[string]any{"productId": 2, "quantity": 1})

	rec := env.do(t, http.MethodPut, "/api/checkout/address", env.customer, map[string]string{
		"fullName": "Alice", "street": "1 Main St", "city": "Springfield", "zip": "12345", "country": "US",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/checkout/confirm", env.customer, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "Processing", body["status"])
	assert.InDelta(t, 8.9, body["total"], 1e-9)
	assert.Contains(t, body["number"], "ORD-")
	require.Len(t, body["items"], 2)

	// The cart and session are reset after placement.
	rec = env.do(t, http.MethodGet, "/api/cart", env.customer, nil)
	assert.EqualValues(t, 0, decodeMap(t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/api/orders", env.customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	// The order is fetchable by its human-readable number.
	rec = env.do(t, http.MethodGet, "/api/orders/"+orders[0]["number"].(string), env.customer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/nope", env.customer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/stats", env.customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/stats", env.admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOrderStatus(t *testing.T) {
	env := newTestEnv(t)

	env.orders.orders = append(env.orders.orders, order.Order{
		ID: "o1", Number: "ORD-20260901-AAAA1111", UserID: "u1",
		Status: order.StatusProcessing, Total: d("8.90"), PlacedAt: time.Now(),
	})

	rec := env.do(t, http.MethodPatch, "/api/admin/orders/o1/status", env.admin, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shipped", decodeMap(t, rec)["status"])

	// Shipped cannot go back to Processing.
	rec = env.do(t, http.MethodPatch, "/api/admin/orders/o1/status", env.admin, map[string]string{"status": "Processing"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/orders/o1/status", env.admin, map[string]string{"status": "Teleported"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/admin/orders/missing/status", env.admin, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now()
	env.orders.orders = []order.Order{
		{ID: "o1", Status: order.StatusDelivered, Total: d("10.00"), PlacedAt: now.Add(-2 * time.Hour)},
		{ID: "o2", Status: order.StatusCancelled, Total: d("99.00"), PlacedAt: now.Add(-time.Hour)},
		{ID: "o3", Status: order.StatusProcessing, Total: d("5.50"), PlacedAt: now},
	}

	rec := env.do(t, http.MethodGet, "/api/admin/stats", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 3, body["totalOrders"])
	assert.InDelta(t, 15.5, body["revenue"], 1e-9, "cancelled orders do not count toward revenue")
	byStatus := body["byStatus"].(map[string]any)
	assert.EqualValues(t, 1, byStatus["Cancelled"])
	recent := body["recent"].([]any)
	require.Len(t, recent, 3)
	assert.Equal(t, "o3", recent[0].(map[string]any)["id"])
}

func TestAdminLowStock(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/products/low-stock", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 1, body["count"])
}

func TestProductDetailAndReviews(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/products/1/reviews", env.customer, map[string]any{
		"rating": 5, "comment": "crispy",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/products/1/reviews", env.admin, map[string]any{
		"rating": 2, "comment": "soggy",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/products/1/reviews", env.customer, map[string]any{
		"rating": 6,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/products/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.InDelta(t, 3.5, body["avgRating"], 1e-9)
	assert.EqualValues(t, 2, body["reviewCount"])

	rec = env.do(t, http.MethodGet, "/api/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.EqualValues(t, 3, body["total"])
	assert.Len(t, body["products"], 3)
}

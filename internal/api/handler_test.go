package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cartease/internal/broker"
	"cartease/internal/cache"
	"cartease/internal/models"
	"cartease/internal/service"
	"cartease/internal/store"
	"cartease/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	router  *gin.Engine
	handler *Handler
	store   *store.Store
	cart    *store.CartStore
}

func newTestServer(t *testing.T, gateway service.PaymentGateway) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.SetLogger(zaptest.NewLogger(t))

	repo := store.NewSeededStore()
	cartStore := store.NewCartStore(context.Background(), cache.NewMemory(), "cart")
	publisher := broker.NopPublisher{}

	handler := NewHandler(
		service.NewCatalogService(repo, publisher),
		service.NewCartService(cartStore, repo),
		service.NewOrderService(repo, publisher),
		service.NewCheckoutService(cartStore, repo, gateway, publisher, service.CheckoutOptions{
			Currency:     "INR",
			MerchantName: "CartEase",
		}),
	)

	router := gin.New()
	handler.SetupRoutes(router)
	return &testServer{router: router, handler: handler, store: repo, cart: cartStore}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthAndReadiness(t *testing.T) {
	ts := newTestServer(t, service.NewMockGateway(1, 0))

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/ready", nil).Code)

	ts.handler.WithReadinessCheck("redis", func(context.Context) error {
		return errors.New("connection refused")
	})
	w := ts.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestStorefrontBrowsing(t *testing.T) {
	ts := newTestServer(t, service.NewMockGateway(1, 0))

	var home struct {
		Featured   []models.Product `json:"featured"`
		Products   []models.Product `json:"products"`
		Categories []string         `json:"categories"`
	}
	w := ts.do(t, http.MethodGet, "/api/v1/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &home)
	assert.Len(t, home.Featured, 3)
	require.Len(t, home.Products, 3)
	assert.Equal(t, "1", home.Products[0].ID)
	assert.Equal(t, "3", home.Products[2].ID)
	assert.Equal(t, []string{"Electronics", "Wearables", "Furniture", "Appliances"}, home.Categories)

	var list struct {
		Products []models.Product `json:"products"`
		Count    int              `json:"count"`
	}
	w = ts.do(t, http.MethodGet, "/api/v1/products?q=perfect+for&category=Electronics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, 2, list.Count)

	w = ts.do(t, http.MethodGet, "/api/v1/products/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Product
	decode(t, w, &p)
	assert.Equal(t, "Ergonomic Office Chair", p.Name)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/v1/products/99", nil).Code)
}

func TestCartRoutes(t *testing.T) {
	ts := newTestServer(t, service.NewMockGateway(1, 0))

	w := ts.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"productId": "1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	decode(t, w, &cart)
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, "399.98", cart.TotalPrice.String())

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"productId": "99"}).Code)
	assert.Equal(t, http.StatusConflict,
		ts.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"productId": "4"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"quantity": 1}).Code)

	w = ts.do(t, http.MethodPut, "/api/v1/cart/items/1", gin.H{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, 5, cart.TotalItems)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPut, "/api/v1/cart/items/1", gin.H{}).Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/cart/items/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)

	ts.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"productId": "5"})
	w = ts.do(t, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, 0, cart.TotalItems)
}

func checkoutBody() gin.H {
	return gin.H{
		"name":       "Ada Lovelace",
		"email":      "ada@example.com",
		"address":    "12 Analytical St",
		"city":       "London",
		"postalCode": "N1 9GU",
		"country":    "UK",
	}
}

func TestCheckoutRoutes(t *testing.T) {
	ts := newTestServer(t, service.NewMockGateway(1, 0))

	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody()).Code)

	ts.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"productId": "2", "quantity": 1})

	bad := checkoutBody()
	bad["email"] = "not-an-email"
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/v1/checkout", bad).Code)

	w := ts.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var result service.CheckoutResult
	decode(t, w, &result)
	assert.Equal(t, models.CheckoutStatusCompleted, result.Session.Status)
	assert.Equal(t, int64(14999), result.Payment.Amount)

	w = ts.do(t, http.MethodGet, "/api/v1/checkout/"+result.Session.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/orders/"+result.Session.OrderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var order models.Order
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	assert.Empty(t, ts.cart.Items())
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/v1/checkout/missing", nil).Code)
}

func TestPaymentCallback(t *testing.T) {
	gateway := service.NewHostedGateway()
	ts := newTestServer(t, gateway)
	ts.handler.WithPaymentCallbacks(gateway)

	ts.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"productId": "5"})
	w := ts.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var result service.CheckoutResult
	decode(t, w, &result)
	require.Equal(t, models.CheckoutStatusAwaitingPayment, result.Session.Status)

	w = ts.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody())
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/v1/payments/callback", gin.H{
		"reference": result.Session.ID,
		"status":    "succeeded",
	}).Code)

	w = ts.do(t, http.MethodPost, "/api/v1/payments/callback", gin.H{
		"reference": result.Session.ID,
		"status":    "succeeded",
		"paymentId": "pay_hosted123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var session models.CheckoutSession
	decode(t, ts.do(t, http.MethodGet, "/api/v1/checkout/"+result.Session.ID, nil), &session)
	assert.Equal(t, models.CheckoutStatusCompleted, session.Status)
	assert.Equal(t, "pay_hosted123", session.PaymentID)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/v1/payments/callback", gin.H{
		"reference": result.Session.ID,
		"status":    "failed",
	}).Code)
}

func TestPaymentCallbackDisabled(t *testing.T) {
	ts := newTestServer(t, service.NewMockGateway(1, 0))

	w := ts.do(t, http.MethodPost, "/api/v1/payments/callback", gin.H{"reference": "x", "status": "failed"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func productBody() gin.H {
	return gin.H{
		"name":        "Desk Lamp",
		"description": "Warm light for late nights",
		"price":       39.5,
		"image":       "https://images.example.com/lamp.jpg",
		"category":    "Furniture",
	}
}

func TestAdminProducts(t *testing.T) {
	ts := newTestServer(t, service.NewMockGateway(1, 0))

	w := ts.do(t, http.MethodPost, "/api/v1/admin/products", productBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Product
	decode(t, w, &created)
	assert.Equal(t, "7", created.ID)
	assert.True(t, created.InStock)

	invalid := productBody()
	invalid["image"] = "lamp"
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/v1/admin/products", invalid).Code)

	negative := productBody()
	negative["price"] = "-3"
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/v1/admin/products", negative).Code)

	update := productBody()
	update["price"] = "42.00"
	update["inStock"] = false
	w = ts.do(t, http.MethodPut, "/api/v1/admin/products/7", update)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Product
	decode(t, w, &updated)
	assert.False(t, updated.InStock)
	assert.Equal(t, "42", updated.Price.String())

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPut, "/api/v1/admin/products/404", update).Code)

	var list struct {
		Count int `json:"count"`
	}
	decode(t, ts.do(t, http.MethodGet, "/api/v1/admin/products?q=lamp", nil), &list)
	assert.Equal(t, 1, list.Count)
	decode(t, ts.do(t, http.MethodGet, "/api/v1/admin/products", nil), &list)
	assert.Equal(t, 7, list.Count)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/v1/admin/products/7", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/v1/admin/products/7", nil).Code)
}

func TestAdminOrders(t *testing.T) {
	ts := newTestServer(t, service.NewMockGateway(1, 0))

	var dash service.Dashboard
	w := ts.do(t, http.MethodGet, "/api/v1/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &dash)
	assert.Equal(t, 6, dash.TotalProducts)
	assert.Equal(t, 1, dash.OutOfStock)
	assert.Equal(t, "509.96", dash.TotalSales.String())

	var list struct {
		Orders []models.Order `json:"orders"`
	}
	decode(t, ts.do(t, http.MethodGet, "/api/v1/admin/orders", nil), &list)
	assert.Len(t, list.Orders, 2)

	w = ts.do(t, http.MethodPatch, "/api/v1/admin/orders/2/status", gin.H{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code)
	var order models.Order
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)

	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPatch, "/api/v1/admin/orders/2/status", gin.H{"status": "lost"}).Code)
	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPatch, "/api/v1/admin/orders/404/status", gin.H{"status": "paid"}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/v1/admin/orders/404", nil).Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusConflict, statusFor(service.ErrEmptyCart))
}

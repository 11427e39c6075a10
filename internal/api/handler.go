package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cartease/internal/models"
	"cartease/internal/service"
	"cartease/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PaymentCallbacks settles hosted payments. service.HostedGateway implements it.
type PaymentCallbacks interface {
	Complete(ctx context.Context, reference, paymentID string) error
	Fail(ctx context.Context, reference, reason string) error
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	catalog  *service.CatalogService
	cart     *service.CartService
	orders   *service.OrderService
	checkout *service.CheckoutService
	payments PaymentCallbacks
	checks   map[string]ReadinessCheck
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	orders *service.OrderService,
	checkout *service.CheckoutService,
) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		checkout: checkout,
		checks:   make(map[string]ReadinessCheck),
		logger:   util.GetLogger(),
	}
}

// WithPaymentCallbacks enables the hosted payment webhook
func (h *Handler) WithPaymentCallbacks(p PaymentCallbacks) *Handler {
	h.payments = p
	return h
}

// WithReadinessCheck adds a dependency to /ready
func (h *Handler) WithReadinessCheck(name string, check ReadinessCheck) *Handler {
	h.checks[name] = check
	return h
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/home", h.home)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.GET("/cart", h.viewCart)
		v1.POST("/cart/items", h.addToCart)
		v1.PUT("/cart/items/:id", h.updateCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.POST("/checkout", h.startCheckout)
		v1.GET("/checkout/:id", h.getCheckout)
		v1.POST("/payments/callback", h.paymentCallback)
	}

	admin := v1.Group("/admin")
	{
		admin.GET("/dashboard", h.dashboard)
		admin.GET("/products", h.adminListProducts)
		admin.POST("/products", h.createProduct)
		admin.GET("/products/:id", h.getProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.GET("/orders", h.listOrders)
		admin.GET("/orders/:id", h.getOrder)
		admin.PATCH("/orders/:id/status", h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck runs every registered dependency check
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failures := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"details": failures,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

const homeProductsLimit = 3

// home serves the landing page: featured products, the start of the catalog
// and the category list
func (h *Handler) home(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"featured":   h.catalog.Featured(ctx),
		"products":   h.catalog.FirstProducts(ctx, homeProductsLimit),
		"categories": h.catalog.Categories(ctx),
	})
}

// listProducts serves the storefront listing, filtered by ?q= and ?category=
func (h *Handler) listProducts(c *gin.Context) {
	products := h.catalog.ListProducts(c.Request.Context(), c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Product not found", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) viewCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.View(c.Request.Context()))
}

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=0"`
}

func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cart.Add(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, "Failed to add to cart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.cart.Update(c.Request.Context(), c.Param("id"), *req.Quantity))
}

func (h *Handler) removeCartItem(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.Remove(c.Request.Context(), c.Param("id")))
}

func (h *Handler) clearCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.Clear(c.Request.Context()))
}

// startCheckout validates the shipping form and opens a payment for the cart
func (h *Handler) startCheckout(c *gin.Context) {
	var req service.CustomerDetails
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.checkout.StartCheckout(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to start checkout", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getCheckout(c *gin.Context) {
	session, err := h.checkout.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Checkout not found", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type paymentCallbackRequest struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status" binding:"required,oneof=succeeded failed"`
	PaymentID string `json:"paymentId" binding:"required_if=Status succeeded"`
	Reason    string `json:"reason"`
}

// paymentCallback receives the hosted provider's verdict for a checkout
func (h *Handler) paymentCallback(c *gin.Context) {
	if h.payments == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Hosted payments are not enabled",
		})
		return
	}

	var req paymentCallbackRequest
	if !bindJSON(c, &req) {
		return
	}

	var err error
	if req.Status == "succeeded" {
		err = h.payments.Complete(c.Request.Context(), req.Reference, req.PaymentID)
	} else {
		err = h.payments.Fail(c.Request.Context(), req.Reference, req.Reason)
	}
	if err != nil {
		h.respondError(c, "Failed to settle payment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *Handler) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.Dashboard(c.Request.Context()))
}

func (h *Handler) adminListProducts(c *gin.Context) {
	products := h.catalog.AdminSearch(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req service.ProductInput
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, "Failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders := h.orders.ListOrders(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Order not found", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, "Failed to update order status", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUnknownReference):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrCheckoutPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

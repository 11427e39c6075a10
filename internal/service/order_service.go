package service

import (
	"context"
	"fmt"

	"cartease/internal/models"
	"cartease/internal/store"
	"cartease/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentOrdersLimit = 5

// OrderService handles the admin side of orders
type OrderService struct {
	store          *store.Store
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// Dashboard summarizes the catalog and order book for the admin home page
type Dashboard struct {
	TotalProducts int             `json:"totalProducts"`
	OutOfStock    int             `json:"outOfStock"`
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	RecentOrders  []models.Order  `json:"recentOrders"`
}

// ListOrders retrieves all orders
func (s *OrderService) ListOrders(ctx context.Context) []models.Order {
	return s.store.GetOrders()
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (models.Order, error) {
	order, ok := s.store.GetOrderByID(id)
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return order, nil
}

// UpdateStatus moves an order to any known status
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !status.IsValid() {
		return models.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	updated, previous, ok := s.store.UpdateOrderStatus(id, status)
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	util.OrderStatusChangesTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   id,
		From:      previous,
		To:        status,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		publishFailed(s.logger, event.EventType, err)
	}

	return updated, nil
}

// Dashboard computes the admin summary from the current catalog and orders
func (s *OrderService) Dashboard(ctx context.Context) Dashboard {
	_, span := util.StartSpan(ctx, "OrderService.Dashboard")
	defer span.End()

	products := s.store.GetProducts()
	orders := s.store.GetOrders()

	d := Dashboard{
		TotalProducts: len(products),
		TotalOrders:   len(orders),
		TotalSales:    decimal.Zero,
	}
	for _, p := range products {
		if !p.InStock {
			d.OutOfStock++
		}
	}
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			d.PendingOrders++
		}
		d.TotalSales = d.TotalSales.Add(o.Total)
	}

	if len(orders) > recentOrdersLimit {
		orders = orders[:recentOrdersLimit]
	}
	d.RecentOrders = orders
	return d
}

package store

import (
	"fmt"
	"strconv"

	"cartease/internal/models"

	"github.com/shopspring/decimal"
)

// NewOrder carries what is needed to record a paid checkout
type NewOrder struct {
	Items     []models.CartItem
	Customer  models.Customer
	PaymentID string
	Status    models.OrderStatus
}

// GetOrders retrieves all orders in creation order
func (s *Store) GetOrders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, copyOrder(o))
	}
	return orders
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(id string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.orderIndex(id); i >= 0 {
		return copyOrder(s.orders[i]), true
	}
	return models.Order{}, false
}

// CreateOrder records a new order. The cart lines are copied into OrderItems
// and the total is computed from that copy, so later catalog edits do not
// reach the order.
func (s *Store) CreateOrder(in NewOrder) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrderID++
	orderID := strconv.Itoa(s.nextOrderID)

	items := make([]models.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for i, line := range in.Items {
		items = append(items, models.OrderItem{
			ID:           fmt.Sprintf("%s-%d", orderID, i+1),
			ProductID:    line.Product.ID,
			ProductName:  line.Product.Name,
			ProductPrice: line.Product.Price,
			Quantity:     line.Quantity,
		})
		total = total.Add(line.LineTotal())
	}

	order := models.Order{
		ID:              orderID,
		Items:           items,
		Total:           total,
		Status:          in.Status,
		CustomerName:    in.Customer.Name,
		CustomerEmail:   in.Customer.Email,
		CustomerAddress: in.Customer.Address,
		PaymentID:       in.PaymentID,
		CreatedAt:       s.now(),
	}

	s.orders = append(s.orders, order)
	return copyOrder(order)
}

// UpdateOrderStatus sets the status of an order and returns it along with the
// status it had before. No transition rules are applied. Returns false if the
// ID is unknown.
func (s *Store) UpdateOrderStatus(id string, status models.OrderStatus) (models.Order, models.OrderStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return models.Order{}, "", false
	}

	previous := s.orders[i].Status
	s.orders[i].Status = status
	return copyOrder(s.orders[i]), previous, true
}

// orderIndex must be called with s.mu held
func (s *Store) orderIndex(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func copyOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

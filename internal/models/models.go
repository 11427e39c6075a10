package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
	Featured    bool            `json:"featured,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CartItem is one line of the cart. ID mirrors Product.ID and Product is the
// snapshot taken when the line was first added.
type CartItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price × quantity for the line.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Order represents a completed purchase
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerAddress string          `json:"customerAddress"`
	PaymentID       string          `json:"paymentId"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem is a denormalized copy of a cart line taken at order time. It does
// not follow later catalog changes.
type OrderItem struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
}

// OrderStatus is the lifecycle state of an order. Any status may follow any other.
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Customer holds the shipping details captured at checkout
type Customer struct {
	Name    string
	Email   string
	Address string
}

// CheckoutStatus tracks a single payment attempt
type CheckoutStatus string

// Checkout statuses
const (
	CheckoutStatusAwaitingPayment CheckoutStatus = "awaiting_payment"
	CheckoutStatusCompleted       CheckoutStatus = "completed"
	CheckoutStatusFailed          CheckoutStatus = "failed"
)

// CheckoutSession is one payment attempt for a snapshot of the cart. Its ID is
// also the reference handed to the payment gateway.
type CheckoutSession struct {
	ID            string          `json:"id"`
	Status        CheckoutStatus  `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OrderID       string          `json:"orderId,omitempty"`
	PaymentID     string          `json:"paymentId,omitempty"`
	FailureReason string          `json:"failureReason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Cart is a read-only view of the cart with its derived totals.
type Cart struct {
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

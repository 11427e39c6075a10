package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeProductCreated     = "PRODUCT_CREATED"
	EventTypeProductUpdated     = "PRODUCT_UPDATED"
	EventTypeProductDeleted     = "PRODUCT_DELETED"
	EventTypePaymentSucceeded   = "PAYMENT_SUCCEEDED"
	EventTypePaymentFailed      = "PAYMENT_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after a paid checkout becomes an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       string          `json:"orderId"`
	PaymentID     string          `json:"paymentId"`
	CustomerEmail string          `json:"customerEmail"`
	Total         decimal.Decimal `json:"total"`
	Items         []OrderItem     `json:"items"`
}

// OrderStatusChangedEvent published when an admin moves an order
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string      `json:"orderId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

// ProductChangedEvent published for catalog create/update/delete
type ProductChangedEvent struct {
	BaseEvent
	ProductID string   `json:"productId"`
	Product   *Product `json:"product,omitempty"`
}

// PaymentSucceededEvent is delivered by the hosted payment provider
type PaymentSucceededEvent struct {
	BaseEvent
	Reference string `json:"reference"`
	PaymentID string `json:"paymentId"`
}

// PaymentFailedEvent is delivered by the hosted payment provider, including
// when the customer dismisses the payment dialog
type PaymentFailedEvent struct {
	BaseEvent
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

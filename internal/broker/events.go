package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cartease/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes catalog and order events to the order topic
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishProductChanged publishes ProductCreated/Updated/Deleted events
func (ep *EventPublisher) PublishProductChanged(ctx context.Context, event *models.ProductChangedEvent) error {
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("product-%s", event.ProductID), event)
}

func orderKey(orderID string) string {
	return fmt.Sprintf("order-%s", orderID)
}

// NopPublisher drops every event. Used when no kafka broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *models.OrderCreatedEvent) error {
	return nil
}

func (NopPublisher) PublishOrderStatusChanged(context.Context, *models.OrderStatusChangedEvent) error {
	return nil
}

func (NopPublisher) PublishProductChanged(context.Context, *models.ProductChangedEvent) error {
	return nil
}

// EventHandler routes payment provider events to registered handlers
type EventHandler struct {
	onPaymentSucceeded func(context.Context, *models.PaymentSucceededEvent) error
	onPaymentFailed    func(context.Context, *models.PaymentFailedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPaymentSucceeded registers a handler for PaymentSucceeded events
func (eh *EventHandler) OnPaymentSucceeded(handler func(context.Context, *models.PaymentSucceededEvent) error) {
	eh.onPaymentSucceeded = handler
}

// OnPaymentFailed registers a handler for PaymentFailed events
func (eh *EventHandler) OnPaymentFailed(handler func(context.Context, *models.PaymentFailedEvent) error) {
	eh.onPaymentFailed = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePaymentSucceeded:
		if eh.onPaymentSucceeded != nil {
			var event models.PaymentSucceededEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentSucceeded event: %w", err)
			}
			return eh.onPaymentSucceeded(ctx, &event)
		}

	case models.EventTypePaymentFailed:
		if eh.onPaymentFailed != nil {
			var event models.PaymentFailedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentFailed event: %w", err)
			}
			return eh.onPaymentFailed(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}

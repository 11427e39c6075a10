package service

import (
	"context"
	"time"

	"cartease/internal/models"
	"cartease/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is satisfied by broker.EventPublisher and broker.NopPublisher
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishProductChanged(ctx context.Context, event *models.ProductChangedEvent) error
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// publishFailed records an event that could not be delivered. Publishing is
// best effort and never fails the operation that produced the event.
func publishFailed(logger *zap.Logger, eventType string, err error) {
	util.EventsPublishFailedTotal.WithLabelValues(eventType).Inc()
	logger.Error("Failed to publish event", zap.String("event_type", eventType), zap.Error(err))
}

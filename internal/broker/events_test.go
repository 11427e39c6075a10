package broker

import (
	"context"
	"encoding/json"
	"testing"

	"cartease/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestHandleMessageRoutesPaymentEvents(t *testing.T) {
	var succeeded *models.PaymentSucceededEvent
	var failed *models.PaymentFailedEvent

	eh := NewEventHandler()
	eh.OnPaymentSucceeded(func(_ context.Context, e *models.PaymentSucceededEvent) error {
		succeeded = e
		return nil
	})
	eh.OnPaymentFailed(func(_ context.Context, e *models.PaymentFailedEvent) error {
		failed = e
		return nil
	})

	ctx := context.Background()
	require.NoError(t, eh.HandleMessage(ctx, message(t, models.PaymentSucceededEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypePaymentSucceeded},
		Reference: "ref-1",
		PaymentID: "pay_1",
	})))
	require.NoError(t, eh.HandleMessage(ctx, message(t, models.PaymentFailedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypePaymentFailed},
		Reference: "ref-2",
		Reason:    "Payment cancelled",
	})))

	require.NotNil(t, succeeded)
	assert.Equal(t, "ref-1", succeeded.Reference)
	assert.Equal(t, "pay_1", succeeded.PaymentID)
	require.NotNil(t, failed)
	assert.Equal(t, "Payment cancelled", failed.Reason)
}

func TestHandleMessageIgnoresOtherEvents(t *testing.T) {
	eh := NewEventHandler()

	err := eh.HandleMessage(context.Background(), message(t, models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{EventID: "e3", EventType: models.EventTypeOrderCreated},
		OrderID:   "3",
	}))
	assert.NoError(t, err)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()

	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

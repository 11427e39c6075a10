package worker

import (
	"context"
	"log"

	"cartease/internal/broker"
	"cartease/internal/models"
)

// PaymentResultHandler settles pending payments from provider events.
// service.HostedGateway implements it.
type PaymentResultHandler interface {
	HandlePaymentSucceeded(ctx context.Context, event *models.PaymentSucceededEvent) error
	HandlePaymentFailed(ctx context.Context, event *models.PaymentFailedEvent) error
}

// PaymentWorker consumes payment provider results from kafka
type PaymentWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewPaymentWorker creates a new payment worker
func NewPaymentWorker(consumer *broker.Consumer, results PaymentResultHandler) *PaymentWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnPaymentSucceeded(results.HandlePaymentSucceeded)
	eventHandler.OnPaymentFailed(results.HandlePaymentFailed)

	return &PaymentWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start blocks consuming payment events until ctx is cancelled
func (w *PaymentWorker) Start(ctx context.Context) error {
	log.Println("Starting payment worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PaymentWorker) Stop() error {
	log.Println("Stopping payment worker...")
	return w.consumer.Close()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"cartease/internal/models"
	"cartease/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	reasonDeclined    = "payment declined"
	reasonCancelled   = "payment cancelled"
	reasonUnavailable = "payment gateway unavailable"
)

// PaymentRequest carries the options the payment widget is opened with.
// Amount is in minor currency units.
type PaymentRequest struct {
	Reference    string `json:"reference"`
	Key          string `json:"key,omitempty"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image,omitempty"`
	PrefillName  string `json:"prefillName"`
	PrefillEmail string `json:"prefillEmail"`
	ThemeColor   string `json:"themeColor"`
}

// PaymentGateway collects a payment. Open must eventually invoke exactly one
// of the callbacks, possibly from another goroutine.
type PaymentGateway interface {
	Open(ctx context.Context, req PaymentRequest, onSuccess func(paymentID string), onFailure func(reason string))
}

// MockGateway settles payments locally with a configurable approval rate
type MockGateway struct {
	successRate float64
	latency     time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockGateway creates a mock gateway. A successRate of 1 approves every
// payment and 0 declines every payment.
func NewMockGateway(successRate float64, latency time.Duration) *MockGateway {
	return &MockGateway{
		successRate: successRate,
		latency:     latency,
		logger:      util.GetLogger(),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Open waits for the configured latency and then approves or declines
func (g *MockGateway) Open(ctx context.Context, req PaymentRequest, onSuccess func(string), onFailure func(string)) {
	_, span := util.StartSpan(ctx, "MockGateway.Open")
	defer span.End()

	if g.latency > 0 {
		select {
		case <-ctx.Done():
			onFailure(reasonCancelled)
			return
		case <-time.After(g.latency):
		}
	}

	if !g.approve() {
		g.logger.Warn("Mock payment declined", zap.String("reference", req.Reference))
		onFailure(reasonDeclined)
		return
	}

	paymentID := newPaymentID()
	g.logger.Info("Mock payment approved",
		zap.String("reference", req.Reference),
		zap.String("payment_id", paymentID),
		zap.Int64("amount", req.Amount))
	onSuccess(paymentID)
}

func (g *MockGateway) approve() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64() < g.successRate
}

func newPaymentID() string {
	return "pay_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:14]
}

type pendingPayment struct {
	onSuccess func(string)
	onFailure func(string)
}

// HostedGateway hands the payment to an external provider and waits for the
// result to come back by webhook or event.
type HostedGateway struct {
	mu      sync.Mutex
	pending map[string]pendingPayment
	logger  *zap.Logger
}

// NewHostedGateway creates a hosted gateway with no pending payments
func NewHostedGateway() *HostedGateway {
	return &HostedGateway{
		pending: make(map[string]pendingPayment),
		logger:  util.GetLogger(),
	}
}

// Open registers the callbacks under the request reference
func (g *HostedGateway) Open(ctx context.Context, req PaymentRequest, onSuccess func(string), onFailure func(string)) {
	g.mu.Lock()
	_, exists := g.pending[req.Reference]
	if !exists {
		g.pending[req.Reference] = pendingPayment{onSuccess: onSuccess, onFailure: onFailure}
	}
	g.mu.Unlock()

	if exists {
		onFailure("duplicate payment reference")
		return
	}

	g.logger.Info("Awaiting hosted payment",
		zap.String("reference", req.Reference),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency))
}

// Complete settles a pending payment as successful
func (g *HostedGateway) Complete(ctx context.Context, reference, paymentID string) error {
	p, err := g.take(reference)
	if err != nil {
		return err
	}
	p.onSuccess(paymentID)
	return nil
}

// Fail settles a pending payment as failed
func (g *HostedGateway) Fail(ctx context.Context, reference, reason string) error {
	p, err := g.take(reference)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = reasonDeclined
	}
	p.onFailure(reason)
	return nil
}

// HandlePaymentSucceeded settles a payment from a provider event. Events for
// references this instance does not know are acknowledged and dropped.
func (g *HostedGateway) HandlePaymentSucceeded(ctx context.Context, event *models.PaymentSucceededEvent) error {
	return g.ignoreUnknown(event.Reference, g.Complete(ctx, event.Reference, event.PaymentID))
}

// HandlePaymentFailed settles a payment failure from a provider event
func (g *HostedGateway) HandlePaymentFailed(ctx context.Context, event *models.PaymentFailedEvent) error {
	return g.ignoreUnknown(event.Reference, g.Fail(ctx, event.Reference, event.Reason))
}

// Pending reports how many payments are still waiting for a result
func (g *HostedGateway) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *HostedGateway) take(reference string) (pendingPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pending[reference]
	if !ok {
		return pendingPayment{}, fmt.Errorf("%w: %s", ErrUnknownReference, reference)
	}
	delete(g.pending, reference)
	return p, nil
}

func (g *HostedGateway) ignoreUnknown(reference string, err error) error {
	if errors.Is(err, ErrUnknownReference) {
		g.logger.Warn("Payment event for unknown reference", zap.String("reference", reference))
		return nil
	}
	return err
}

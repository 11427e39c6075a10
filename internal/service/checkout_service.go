package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cartease/internal/models"
	"cartease/internal/store"
	"cartease/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultSessionRetention = 24 * time.Hour

// CheckoutOptions are the merchant details shown by the payment widget.
// SessionRetention is how long a settled session stays readable; zero means
// a day.
type CheckoutOptions struct {
	Key              string
	Currency         string
	MerchantName     string
	Description      string
	Image            string
	ThemeColor       string
	SessionRetention time.Duration
}

// CustomerDetails is the checkout form. Every field is required.
type CustomerDetails struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// ShippingAddress joins the address parts the way orders store them
func (d CustomerDetails) ShippingAddress() string {
	return strings.Join([]string{d.Address, d.City, d.PostalCode, d.Country}, ", ")
}

// CheckoutResult is returned when a checkout starts. Payment holds the options
// a client needs to open the provider's widget for a hosted payment.
type CheckoutResult struct {
	Session models.CheckoutSession `json:"session"`
	Payment PaymentRequest         `json:"payment"`
}

type checkoutAttempt struct {
	session  models.CheckoutSession
	items    []models.CartItem
	customer CustomerDetails
	openedAt time.Time
	settled  bool
}

// CheckoutService turns the cart into a paid order through a PaymentGateway
type CheckoutService struct {
	cart           *store.CartStore
	store          *store.Store
	gateway        PaymentGateway
	eventPublisher EventPublisher
	options        CheckoutOptions
	logger         *zap.Logger
	now            func() time.Time

	mu       sync.Mutex
	attempts map[string]*checkoutAttempt
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	cart *store.CartStore,
	store *store.Store,
	gateway PaymentGateway,
	eventPublisher EventPublisher,
	options CheckoutOptions,
) *CheckoutService {
	if options.SessionRetention <= 0 {
		options.SessionRetention = defaultSessionRetention
	}

	return &CheckoutService{
		cart:           cart,
		store:          store,
		gateway:        gateway,
		eventPublisher: eventPublisher,
		options:        options,
		logger:         util.GetLogger(),
		now:            time.Now,
		attempts:       make(map[string]*checkoutAttempt),
	}
}

// StartCheckout validates the customer, snapshots the cart and opens a payment
// for its total. With a gateway that settles immediately the returned session
// is already completed or failed. Only one checkout may await payment at a
// time; a second one gets ErrCheckoutPending until the first settles.
func (s *CheckoutService) StartCheckout(ctx context.Context, details CustomerDetails) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.StartCheckout")
	defer span.End()

	if err := validateStruct(&details); err != nil {
		return nil, err
	}

	cart := s.cart.Snapshot()
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	now := s.now()
	attempt := &checkoutAttempt{
		session: models.CheckoutSession{
			ID:        uuid.New().String(),
			Status:    models.CheckoutStatusAwaitingPayment,
			Amount:    cart.TotalPrice,
			Currency:  s.options.Currency,
			CreatedAt: now,
			UpdatedAt: now,
		},
		items:    cart.Items,
		customer: details,
		openedAt: now,
	}
	id := attempt.session.ID

	s.mu.Lock()
	if pending := s.pendingAttempt(); pending != "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrCheckoutPending, pending)
	}
	s.pruneSettled(now)
	s.attempts[id] = attempt
	s.mu.Unlock()

	util.CheckoutsStartedTotal.Inc()
	s.logger.Info("Checkout started",
		zap.String("session_id", id),
		zap.String("amount", cart.TotalPrice.String()),
		zap.Int("items", cart.TotalItems))

	req := PaymentRequest{
		Reference:    id,
		Key:          s.options.Key,
		Amount:       cart.TotalPrice.Shift(2).Round(0).IntPart(),
		Currency:     s.options.Currency,
		Name:         s.options.MerchantName,
		Description:  s.options.Description,
		Image:        s.options.Image,
		PrefillName:  details.Name,
		PrefillEmail: details.Email,
		ThemeColor:   s.options.ThemeColor,
	}

	// results may arrive long after the request that started the checkout
	callbackCtx := context.WithoutCancel(ctx)
	s.openPayment(ctx, req,
		func(paymentID string) { s.completeCheckout(callbackCtx, id, paymentID) },
		func(reason string) { s.failCheckout(callbackCtx, id, reason) },
	)

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{Session: session, Payment: req}, nil
}

// GetSession returns the current state of a checkout
func (s *CheckoutService) GetSession(ctx context.Context, id string) (models.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[id]
	if !ok {
		return models.CheckoutSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return attempt.session, nil
}

// pendingAttempt returns the id of an attempt that has not finished settling.
// Must be called with s.mu held.
func (s *CheckoutService) pendingAttempt() string {
	for id, attempt := range s.attempts {
		if attempt.session.Status == models.CheckoutStatusAwaitingPayment {
			return id
		}
	}
	return ""
}

// pruneSettled forgets settled sessions older than the retention window.
// Must be called with s.mu held.
func (s *CheckoutService) pruneSettled(now time.Time) {
	cutoff := now.Add(-s.options.SessionRetention)
	for id, attempt := range s.attempts {
		if attempt.session.Status != models.CheckoutStatusAwaitingPayment && attempt.session.UpdatedAt.Before(cutoff) {
			delete(s.attempts, id)
		}
	}
}

// openPayment shields the checkout from a missing or misbehaving gateway
func (s *CheckoutService) openPayment(ctx context.Context, req PaymentRequest, onSuccess, onFailure func(string)) {
	if s.gateway == nil {
		onFailure(reasonUnavailable)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Payment gateway panicked",
				zap.String("session_id", req.Reference),
				zap.Any("panic", r))
			onFailure(fmt.Sprintf("%s: %v", reasonUnavailable, r))
		}
	}()

	s.gateway.Open(ctx, req, onSuccess, onFailure)
}

// claim marks the attempt settled and returns it, or nil if a result was
// already recorded.
func (s *CheckoutService) claim(id string) *checkoutAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[id]
	if !ok || attempt.settled {
		return nil
	}
	attempt.settled = true
	return attempt
}

func (s *CheckoutService) completeCheckout(ctx context.Context, id, paymentID string) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.completeCheckout")
	defer span.End()

	attempt := s.claim(id)
	if attempt == nil {
		s.logger.Warn("Ignoring repeated payment result", zap.String("session_id", id))
		return
	}

	util.PaymentSuccessTotal.Inc()
	util.PaymentLatency.Observe(s.now().Sub(attempt.openedAt).Seconds())

	order := s.store.CreateOrder(store.NewOrder{
		Items: attempt.items,
		Customer: models.Customer{
			Name:    attempt.customer.Name,
			Email:   attempt.customer.Email,
			Address: attempt.customer.ShippingAddress(),
		},
		PaymentID: paymentID,
		Status:    models.OrderStatusPaid,
	})
	util.OrdersCreatedTotal.Inc()

	// only the paid lines leave the cart; anything added while the payment
	// was open stays for the next checkout
	if err := s.cart.RemoveOrdered(ctx, attempt.items); err != nil {
		s.logger.Warn("Ordered lines removed in memory only", zap.String("session_id", id), zap.Error(err))
	}

	s.mu.Lock()
	attempt.session.Status = models.CheckoutStatusCompleted
	attempt.session.OrderID = order.ID
	attempt.session.PaymentID = paymentID
	attempt.session.UpdatedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("Payment successful, order created",
		zap.String("session_id", id),
		zap.String("order_id", order.ID),
		zap.String("payment_id", paymentID))

	event := &models.OrderCreatedEvent{
		BaseEvent:     newBaseEvent(models.EventTypeOrderCreated),
		OrderID:       order.ID,
		PaymentID:     paymentID,
		CustomerEmail: order.CustomerEmail,
		Total:         order.Total,
		Items:         order.Items,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		publishFailed(s.logger, event.EventType, err)
	}
}

func (s *CheckoutService) failCheckout(ctx context.Context, id, reason string) {
	attempt := s.claim(id)
	if attempt == nil {
		s.logger.Warn("Ignoring repeated payment result", zap.String("session_id", id))
		return
	}

	util.PaymentFailedTotal.Inc()
	util.PaymentLatency.Observe(s.now().Sub(attempt.openedAt).Seconds())

	s.mu.Lock()
	attempt.session.Status = models.CheckoutStatusFailed
	attempt.session.FailureReason = reason
	attempt.session.UpdatedAt = s.now()
	s.mu.Unlock()

	s.logger.Warn("Payment failed",
		zap.String("session_id", id),
		zap.String("reason", reason))
}

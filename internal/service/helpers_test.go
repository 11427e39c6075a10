package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cartease/internal/cache"
	"cartease/internal/models"
	"cartease/internal/store"
	"cartease/internal/util"

	"go.uber.org/zap/zaptest"
)

type recordingPublisher struct {
	mu             sync.Mutex
	err            error
	ordersCreated  []*models.OrderCreatedEvent
	statusChanges  []*models.OrderStatusChangedEvent
	productChanges []*models.ProductChangedEvent
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ordersCreated = append(p.ordersCreated, e)
	return p.err
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanges = append(p.statusChanges, e)
	return p.err
}

func (p *recordingPublisher) PublishProductChanged(_ context.Context, e *models.ProductChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.productChanges = append(p.productChanges, e)
	return p.err
}

var errBrokerDown = errors.New("broker down")

type fixture struct {
	store     *store.Store
	cart      *store.CartStore
	kv        *cache.Memory
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	util.SetLogger(zaptest.NewLogger(t))

	kv := cache.NewMemory()
	return &fixture{
		store:     store.NewSeededStore(),
		cart:      store.NewCartStore(context.Background(), kv, "cart"),
		kv:        kv,
		publisher: &recordingPublisher{},
	}
}

func boolPtr(b bool) *bool { return &b }

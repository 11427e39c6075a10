package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cartease/internal/models"
	"cartease/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// KV is the durable key-value cache the cart mirrors itself to.
// Both redisclient.Client and cache.Memory satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// CartStore owns the cart of the current session. Every mutation writes the
// whole cart to the cache under a fixed key.
type CartStore struct {
	mu     sync.Mutex
	kv     KV
	key    string
	items  []models.CartItem
	logger *zap.Logger
}

// NewCartStore restores the cart saved under key. A missing, unreadable or
// malformed snapshot leaves the cart empty.
func NewCartStore(ctx context.Context, kv KV, key string) *CartStore {
	cs := &CartStore{
		kv:     kv,
		key:    key,
		items:  []models.CartItem{},
		logger: util.GetLogger(),
	}

	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		cs.logger.Error("Failed to read cart from cache", zap.String("key", key), zap.Error(err))
		util.CartRestoreFailuresTotal.Inc()
		return cs
	}
	if !found {
		return cs
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		cs.logger.Error("Failed to parse cart from cache", zap.String("key", key), zap.Error(err))
		util.CartRestoreFailuresTotal.Inc()
		return cs
	}
	if items != nil {
		cs.items = items
	}

	cs.logger.Info("Cart restored", zap.String("key", key), zap.Int("lines", len(cs.items)))
	return cs
}

// AddToCart adds quantity of product, merging into the existing line for the
// same product id. The quantity is not validated.
func (cs *CartStore) AddToCart(ctx context.Context, product models.Product, quantity int) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if i := cs.index(product.ID); i >= 0 {
		cs.items[i].Quantity += quantity
	} else {
		cs.items = append(cs.items, models.CartItem{
			ID:       product.ID,
			Product:  product,
			Quantity: quantity,
		})
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	return cs.save(ctx)
}

// UpdateQuantity sets the quantity of a line. Anything below 1 removes it.
func (cs *CartStore) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return cs.RemoveFromCart(ctx, id)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if i := cs.index(id); i >= 0 {
		cs.items[i].Quantity = quantity
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return cs.save(ctx)
}

// RemoveFromCart drops the line for id; unknown ids are ignored.
func (cs *CartStore) RemoveFromCart(ctx context.Context, id string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if i := cs.index(id); i >= 0 {
		cs.items = append(cs.items[:i], cs.items[i+1:]...)
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return cs.save(ctx)
}

// ClearCart empties the cart
func (cs *CartStore) ClearCart(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.items = []models.CartItem{}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return cs.save(ctx)
}

// RemoveOrdered subtracts the ordered lines from the cart. Lines added or
// topped up after the order's snapshot was taken keep the difference; lines
// that drop below one are removed.
func (cs *CartStore) RemoveOrdered(ctx context.Context, ordered []models.CartItem) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, line := range ordered {
		i := cs.index(line.ID)
		if i < 0 {
			continue
		}
		cs.items[i].Quantity -= line.Quantity
		if cs.items[i].Quantity < 1 {
			cs.items = append(cs.items[:i], cs.items[i+1:]...)
		}
	}

	util.CartMutationsTotal.WithLabelValues("checkout").Inc()
	return cs.save(ctx)
}

// Items returns a copy of the cart lines in insertion order
func (cs *CartStore) Items() []models.CartItem {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.copyItems()
}

// TotalItems is the sum of all line quantities
func (cs *CartStore) TotalItems() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return totalItems(cs.items)
}

// TotalPrice is the sum of price × quantity over all lines
func (cs *CartStore) TotalPrice() decimal.Decimal {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return totalPrice(cs.items)
}

// Snapshot returns the lines and both totals from the same state
func (cs *CartStore) Snapshot() models.Cart {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return models.Cart{
		Items:      cs.copyItems(),
		TotalItems: totalItems(cs.items),
		TotalPrice: totalPrice(cs.items),
	}
}

// save writes the current lines to the cache. Must be called with cs.mu held.
// On failure the in-memory change is kept and the error is returned.
func (cs *CartStore) save(ctx context.Context) error {
	data, err := json.Marshal(cs.items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := cs.kv.Set(ctx, cs.key, string(data)); err != nil {
		util.CartPersistFailuresTotal.Inc()
		cs.logger.Error("Failed to persist cart", zap.String("key", cs.key), zap.Error(err))
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func (cs *CartStore) index(id string) int {
	for i := range cs.items {
		if cs.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (cs *CartStore) copyItems() []models.CartItem {
	items := make([]models.CartItem, len(cs.items))
	copy(items, cs.items)
	return items
}

func totalItems(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalPrice(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

package service

import (
	"context"
	"fmt"

	"cartease/internal/models"
	"cartease/internal/store"
	"cartease/internal/util"

	"go.uber.org/zap"
)

// CartService resolves product ids against the catalog before touching the cart
type CartService struct {
	cart    *store.CartStore
	catalog *store.Store
	logger  *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(cart *store.CartStore, catalog *store.Store) *CartService {
	return &CartService{
		cart:    cart,
		catalog: catalog,
		logger:  util.GetLogger(),
	}
}

// View returns the cart with its totals
func (s *CartService) View(ctx context.Context) models.Cart {
	return s.cart.Snapshot()
}

// Add puts quantity of the product in the cart. A zero quantity means one.
func (s *CartService) Add(ctx context.Context, productID string, quantity int) (models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Add")
	defer span.End()

	product, ok := s.catalog.GetProductByID(productID)
	if !ok {
		return models.Cart{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if !product.InStock {
		return models.Cart{}, fmt.Errorf("%w: %s", ErrOutOfStock, product.Name)
	}
	if quantity == 0 {
		quantity = 1
	}

	s.persisted(s.cart.AddToCart(ctx, product, quantity), "add")

	s.logger.Info("Added to cart",
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))

	return s.cart.Snapshot(), nil
}

// Update sets the quantity of a line; below one removes it
func (s *CartService) Update(ctx context.Context, productID string, quantity int) models.Cart {
	ctx, span := util.StartSpan(ctx, "CartService.Update")
	defer span.End()

	s.persisted(s.cart.UpdateQuantity(ctx, productID, quantity), "update")
	return s.cart.Snapshot()
}

// Remove drops the line for the product
func (s *CartService) Remove(ctx context.Context, productID string) models.Cart {
	ctx, span := util.StartSpan(ctx, "CartService.Remove")
	defer span.End()

	s.persisted(s.cart.RemoveFromCart(ctx, productID), "remove")
	return s.cart.Snapshot()
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context) models.Cart {
	ctx, span := util.StartSpan(ctx, "CartService.Clear")
	defer span.End()

	s.persisted(s.cart.ClearCart(ctx), "clear")
	return s.cart.Snapshot()
}

// persisted downgrades a cache write failure to a warning. The cart in memory
// already holds the change and the next successful write catches the cache up.
func (s *CartService) persisted(err error, op string) {
	if err != nil {
		s.logger.Warn("Cart change not persisted", zap.String("op", op), zap.Error(err))
	}
}

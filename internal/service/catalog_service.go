package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cartease/internal/models"
	"cartease/internal/store"
	"cartease/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles storefront browsing and admin product management
type CatalogService struct {
	store          *store.Store
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, eventPublisher EventPublisher) *CatalogService {
	return &CatalogService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ProductInput is the admin product form. Price accepts a JSON number or a
// numeric string; InStock defaults to true when omitted.
type ProductInput struct {
	Name        string      `json:"name" binding:"required"`
	Description string      `json:"description" binding:"required"`
	Price       json.Number `json:"price" binding:"required,numeric"`
	Image       string      `json:"image" binding:"required,url"`
	Category    string      `json:"category" binding:"required"`
	InStock     *bool       `json:"inStock"`
	Featured    bool        `json:"featured"`
}

func (in *ProductInput) toProduct() (models.Product, error) {
	if err := validateStruct(in); err != nil {
		return models.Product{}, err
	}

	price, err := decimal.NewFromString(in.Price.String())
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: price: %v", ErrValidation, err)
	}
	if price.IsNegative() {
		return models.Product{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}

	return models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       price,
		Image:       in.Image,
		Category:    strings.TrimSpace(in.Category),
		InStock:     inStock,
		Featured:    in.Featured,
	}, nil
}

// ListProducts returns the products matching both the text query and the
// exact category. Empty values match everything.
func (s *CatalogService) ListProducts(ctx context.Context, query, category string) []models.Product {
	_, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	if query == "" {
		if category == "" {
			return s.store.GetProducts()
		}
		return s.store.GetProductsByCategory(category)
	}

	products := s.store.SearchProducts(query)
	if category == "" {
		return products
	}

	filtered := products[:0]
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Featured returns the products flagged for the home page
func (s *CatalogService) Featured(ctx context.Context) []models.Product {
	return s.store.GetFeaturedProducts()
}

// FirstProducts returns up to limit products in catalog order
func (s *CatalogService) FirstProducts(ctx context.Context, limit int) []models.Product {
	products := s.store.GetProducts()
	if len(products) > limit {
		products = products[:limit]
	}
	return products
}

// Categories returns the distinct product categories
func (s *CatalogService) Categories(ctx context.Context) []string {
	return s.store.GetCategories()
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	p, ok := s.store.GetProductByID(id)
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// AdminSearch backs the admin product table. A blank query lists everything.
func (s *CatalogService) AdminSearch(ctx context.Context, query string) []models.Product {
	if strings.TrimSpace(query) == "" {
		return s.store.GetProducts()
	}
	return s.store.SearchProducts(query)
}

// CreateProduct validates the form and adds the product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	product, err := in.toProduct()
	if err != nil {
		return models.Product{}, err
	}

	created := s.store.CreateProduct(product)
	util.ProductMutationsTotal.WithLabelValues("create").Inc()

	s.logger.Info("Product created",
		zap.String("product_id", created.ID),
		zap.String("name", created.Name))

	s.publishProductChanged(ctx, models.EventTypeProductCreated, created.ID, &created)
	return created, nil
}

// UpdateProduct replaces the editable fields of an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	product, err := in.toProduct()
	if err != nil {
		return models.Product{}, err
	}
	product.ID = id

	updated, ok := s.store.UpdateProduct(product)
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	util.ProductMutationsTotal.WithLabelValues("update").Inc()

	s.logger.Info("Product updated", zap.String("product_id", id))

	s.publishProductChanged(ctx, models.EventTypeProductUpdated, id, &updated)
	return updated, nil
}

// DeleteProduct removes a product from the catalog. Carts and orders keep
// their own snapshots of it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	if !s.store.DeleteProduct(id) {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	util.ProductMutationsTotal.WithLabelValues("delete").Inc()

	s.logger.Info("Product deleted", zap.String("product_id", id))

	s.publishProductChanged(ctx, models.EventTypeProductDeleted, id, nil)
	return nil
}

func (s *CatalogService) publishProductChanged(ctx context.Context, eventType, id string, product *models.Product) {
	event := &models.ProductChangedEvent{
		BaseEvent: newBaseEvent(eventType),
		ProductID: id,
		Product:   product,
	}
	if err := s.eventPublisher.PublishProductChanged(ctx, event); err != nil {
		publishFailed(s.logger, eventType, err)
	}
}

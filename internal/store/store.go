package store

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"cartease/internal/models"
)

// Store is the in-memory catalog and order repository. It owns its products
// and orders for the lifetime of the process; every accessor returns copies.
type Store struct {
	mu            sync.RWMutex
	products      []models.Product
	orders        []models.Order
	nextProductID int
	nextOrderID   int
	now           func() time.Time
}

// NewStore creates a repository holding the given products and orders
func NewStore(products []models.Product, orders []models.Order) *Store {
	s := &Store{
		products: make([]models.Product, 0, len(products)),
		orders:   make([]models.Order, 0, len(orders)),
		now:      time.Now,
	}

	for _, p := range products {
		s.products = append(s.products, p)
		s.nextProductID = maxID(s.nextProductID, p.ID)
	}
	for _, o := range orders {
		s.orders = append(s.orders, copyOrder(o))
		s.nextOrderID = maxID(s.nextOrderID, o.ID)
	}

	return s
}

// NewSeededStore creates a repository holding the sample catalog and orders
func NewSeededStore() *Store {
	return NewStore(SeedProducts(), SeedOrders())
}

// maxID keeps the highest numeric id seen so generated ids never collide,
// even after deletions. Non-numeric ids are ignored.
func maxID(current int, id string) int {
	n, err := strconv.Atoi(id)
	if err != nil || n <= current {
		return current
	}
	return n
}

// GetProducts retrieves all products
func (s *Store) GetProducts() []models.Product {
	return s.filterProducts(func(models.Product) bool { return true })
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.productIndex(id); i >= 0 {
		return s.products[i], true
	}
	return models.Product{}, false
}

// GetFeaturedProducts retrieves products flagged as featured
func (s *Store) GetFeaturedProducts() []models.Product {
	return s.filterProducts(func(p models.Product) bool { return p.Featured })
}

// GetProductsByCategory retrieves products whose category matches exactly
func (s *Store) GetProductsByCategory(category string) []models.Product {
	return s.filterProducts(func(p models.Product) bool { return p.Category == category })
}

// SearchProducts matches query case-insensitively against name or description
func (s *Store) SearchProducts(query string) []models.Product {
	q := strings.ToLower(query)
	return s.filterProducts(func(p models.Product) bool { return matchesQuery(p, q) })
}

func matchesQuery(p models.Product, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Description), lowerQuery)
}

// GetCategories returns the distinct categories in first-seen order
func (s *Store) GetCategories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// CreateProduct stores a new product. The id and timestamps are assigned here;
// whatever the caller put in those fields is ignored.
func (s *Store) CreateProduct(product models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	now := s.now()

	product.ID = strconv.Itoa(s.nextProductID)
	product.CreatedAt = now
	product.UpdatedAt = now

	s.products = append(s.products, product)
	return product
}

// UpdateProduct replaces the product with the same ID and refreshes UpdatedAt.
// CreatedAt is kept from the stored record. Returns false if the ID is unknown.
func (s *Store) UpdateProduct(product models.Product) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(product.ID)
	if i < 0 {
		return models.Product{}, false
	}

	product.CreatedAt = s.products[i].CreatedAt
	product.UpdatedAt = s.now()
	s.products[i] = product
	return product, true
}

// DeleteProduct removes a product by ID. Returns false if the ID is unknown.
func (s *Store) DeleteProduct(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return false
	}

	s.products = append(s.products[:i], s.products[i+1:]...)
	return true
}

// productIndex must be called with s.mu held
func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) filterProducts(keep func(models.Product) bool) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

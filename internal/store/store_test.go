package store

import (
	"testing"
	"time"

	"cartease/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	s := NewSeededStore()
	s.now = func() time.Time { return fixedNow }
	return s
}

func productIDs(products []models.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestProductQueries(t *testing.T) {
	s := newTestStore()

	assert.Len(t, s.GetProducts(), 6)
	assert.Equal(t, []string{"1", "2", "5"}, productIDs(s.GetFeaturedProducts()))
	assert.Equal(t, []string{"1", "4", "5"}, productIDs(s.GetProductsByCategory("Electronics")))
	assert.Empty(t, s.GetProductsByCategory("electronics"))
	assert.Equal(t, []string{"Electronics", "Wearables", "Furniture", "Appliances"}, s.GetCategories())

	p, ok := s.GetProductByID("3")
	require.True(t, ok)
	assert.Equal(t, "Ergonomic Office Chair", p.Name)

	_, ok = s.GetProductByID("99")
	assert.False(t, ok)
}

func TestSearchProducts(t *testing.T) {
	s := newTestStore()

	tests := []struct {
		query string
		want  []string
	}{
		{"watch", []string{"2"}},
		{"WATCH", []string{"2"}},
		{"perfect for", []string{"1", "3", "5"}},
		{"coffee", []string{"6"}},
		{"nothing like this", []string{}},
		{"", []string{"1", "2", "3", "4", "5", "6"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, productIDs(s.SearchProducts(tt.query)))
		})
	}
}

func TestCreateProduct(t *testing.T) {
	s := newTestStore()

	created := s.CreateProduct(models.Product{
		ID:       "ignored",
		Name:     "Desk Lamp",
		Price:    decimal.RequireFromString("39.50"),
		Category: "Furniture",
		InStock:  true,
	})

	assert.Equal(t, "7", created.ID)
	assert.Equal(t, fixedNow, created.CreatedAt)
	assert.Equal(t, fixedNow, created.UpdatedAt)
	assert.Len(t, s.GetProducts(), 7)

	// ids keep increasing after a delete
	require.True(t, s.DeleteProduct("7"))
	again := s.CreateProduct(models.Product{Name: "Desk Lamp v2"})
	assert.Equal(t, "8", again.ID)
}

func TestUpdateProduct(t *testing.T) {
	s := newTestStore()
	original, _ := s.GetProductByID("2")

	changed := original
	changed.Price = decimal.RequireFromString("129.99")
	changed.CreatedAt = time.Time{}

	updated, ok := s.UpdateProduct(changed)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("129.99").Equal(updated.Price))
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)
	assert.Equal(t, fixedNow, updated.UpdatedAt)

	stored, _ := s.GetProductByID("2")
	assert.Equal(t, updated, stored)

	_, ok = s.UpdateProduct(models.Product{ID: "404", Name: "ghost"})
	assert.False(t, ok)
	assert.Len(t, s.GetProducts(), 6)
}

func TestDeleteProduct(t *testing.T) {
	s := newTestStore()

	assert.False(t, s.DeleteProduct("404"))
	assert.Len(t, s.GetProducts(), 6)

	assert.True(t, s.DeleteProduct("4"))
	assert.Equal(t, []string{"1", "2", "3", "5", "6"}, productIDs(s.GetProducts()))
	_, ok := s.GetProductByID("4")
	assert.False(t, ok)
}

func TestReturnedProductsAreCopies(t *testing.T) {
	s := newTestStore()

	products := s.GetProducts()
	products[0].Name = "mutated"

	p, _ := s.GetProductByID("1")
	assert.Equal(t, "Premium Wireless Headphones", p.Name)
}

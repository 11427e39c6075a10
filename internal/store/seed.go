package store

import (
	"time"

	"cartease/internal/models"

	"github.com/shopspring/decimal"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// SeedProducts returns the sample catalog
func SeedProducts() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Premium Wireless Headphones",
			Description: "High-quality wireless headphones with noise cancellation and exceptional sound quality. Perfect for music lovers and audiophiles.",
			Price:       decimal.RequireFromString("199.99"),
			Image:       "https://images.unsplash.com/photo-1618160702438-9b02ab6515c9",
			Category:    "Electronics",
			InStock:     true,
			Featured:    true,
			CreatedAt:   day(2023, time.January, 15),
			UpdatedAt:   day(2023, time.January, 15),
		},
		{
			ID:          "2",
			Name:        "Smart Fitness Watch",
			Description: "Track your fitness goals with this advanced smartwatch. Features heart rate monitoring, step counting, and sleep tracking.",
			Price:       decimal.RequireFromString("149.99"),
			Image:       "https://images.unsplash.com/photo-1582562124811-c09040d0a901",
			Category:    "Wearables",
			InStock:     true,
			Featured:    true,
			CreatedAt:   day(2023, time.February, 10),
			UpdatedAt:   day(2023, time.February, 10),
		},
		{
			ID:          "3",
			Name:        "Ergonomic Office Chair",
			Description: "Comfortable office chair with lumbar support and adjustable height. Perfect for long hours of work or gaming.",
			Price:       decimal.RequireFromString("249.99"),
			Image:       "https://images.unsplash.com/photo-1721322800607-8c38375eef04",
			Category:    "Furniture",
			InStock:     true,
			CreatedAt:   day(2023, time.March, 5),
			UpdatedAt:   day(2023, time.March, 5),
		},
		{
			ID:          "4",
			Name:        "Professional Camera Kit",
			Description: "Complete camera kit for amateur and professional photographers. Includes high resolution DSLR camera and various lenses.",
			Price:       decimal.RequireFromString("899.99"),
			Image:       "https://images.unsplash.com/photo-1618160702438-9b02ab6515c9",
			Category:    "Electronics",
			InStock:     false,
			CreatedAt:   day(2023, time.April, 20),
			UpdatedAt:   day(2023, time.April, 20),
		},
		{
			ID:          "5",
			Name:        "Portable Bluetooth Speaker",
			Description: "Waterproof portable speaker with amazing sound quality and 24-hour battery life. Perfect for outdoor activities.",
			Price:       decimal.RequireFromString("79.99"),
			Image:       "https://images.unsplash.com/photo-1582562124811-c09040d0a901",
			Category:    "Electronics",
			InStock:     true,
			Featured:    true,
			CreatedAt:   day(2023, time.May, 12),
			UpdatedAt:   day(2023, time.May, 12),
		},
		{
			ID:          "6",
			Name:        "Premium Coffee Machine",
			Description: "Automatic coffee machine with built-in grinder and milk frother. Make barista-quality coffee at home.",
			Price:       decimal.RequireFromString("349.99"),
			Image:       "https://images.unsplash.com/photo-1721322800607-8c38375eef04",
			Category:    "Appliances",
			InStock:     true,
			CreatedAt:   day(2023, time.June, 1),
			UpdatedAt:   day(2023, time.June, 1),
		},
	}
}

// SeedOrders returns the sample order history
func SeedOrders() []models.Order {
	return []models.Order{
		{
			ID: "1",
			Items: []models.OrderItem{
				{ID: "1-1", ProductID: "1", ProductName: "Premium Wireless Headphones", ProductPrice: decimal.RequireFromString("199.99"), Quantity: 1},
			},
			Total:           decimal.RequireFromString("199.99"),
			Status:          models.OrderStatusDelivered,
			CustomerName:    "John Doe",
			CustomerEmail:   "john@example.com",
			CustomerAddress: "123 Main St, Anytown, AN 12345",
			PaymentID:       "pay_123456",
			CreatedAt:       day(2023, time.June, 15),
		},
		{
			ID: "2",
			Items: []models.OrderItem{
				{ID: "2-1", ProductID: "2", ProductName: "Smart Fitness Watch", ProductPrice: decimal.RequireFromString("149.99"), Quantity: 1},
				{ID: "2-2", ProductID: "5", ProductName: "Portable Bluetooth Speaker", ProductPrice: decimal.RequireFromString("79.99"), Quantity: 2},
			},
			Total:           decimal.RequireFromString("309.97"),
			Status:          models.OrderStatusShipped,
			CustomerName:    "Jane Smith",
			CustomerEmail:   "jane@example.com",
			CustomerAddress: "456 Broad St, Othertown, OT 67890",
			PaymentID:       "pay_789012",
			CreatedAt:       day(2023, time.July, 20),
		},
	}
}

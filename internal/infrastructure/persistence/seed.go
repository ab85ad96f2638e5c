package persistence

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/trade"
)

type seedProduct struct {
	name        string
	description string
	price       string
	category    string
	stock       int
}

var catalogSeed = []seedProduct{
	{"Laptop Pro", "High-performance laptop with 16GB RAM", "1299.99", "Electronics", 50},
	{"Wireless Mouse", "Ergonomic wireless mouse with precision tracking", "29.99", "Electronics", 100},
	{"Smart Watch", "Fitness tracking smartwatch with heart rate monitor", "249.99", "Electronics", 75},
	{"Cotton T-Shirt", "Comfortable 100% cotton t-shirt", "19.99", "Clothing", 200},
	{"Denim Jeans", "Classic fit denim jeans", "49.99", "Clothing", 150},
	{"Running Shoes", "Lightweight running shoes with cushioned sole", "89.99", "Sports", 80},
	{"Yoga Mat", "Non-slip exercise yoga mat", "24.99", "Sports", 120},
	{"JavaScript Guide", "Complete guide to modern JavaScript", "39.99", "Books", 60},
	{"Python Cookbook", "Recipes for mastering Python", "44.99", "Books", 45},
	{"Garden Tools Set", "5-piece garden tool set", "34.99", "Home & Garden", 90},
	{"LED Desk Lamp", "Adjustable LED desk lamp with USB charging", "39.99", "Home & Garden", 70},
	{"Bluetooth Headphones", "Noise-cancelling wireless headphones", "159.99", "Electronics", 65},
	{"Winter Jacket", "Waterproof winter jacket with hood", "129.99", "Clothing", 40},
	{"Dumbbells Set", "Adjustable weight dumbbells set", "79.99", "Sports", 55},
	{"React Handbook", "Building modern web apps with React", "42.99", "Books", 50},
	{"Coffee Maker", "Programmable coffee maker with timer", "59.99", "Home & Garden", 85},
	{"Gaming Keyboard", "RGB mechanical gaming keyboard", "89.99", "Electronics", 70},
	{"Sunglasses", "UV protection polarized sunglasses", "29.99", "Clothing", 180},
	{"Tennis Racket", "Professional grade tennis racket", "119.99", "Sports", 35},
	{"Node.js in Action", "Server-side JavaScript development", "45.99", "Books", 40},
	{"Plant Pot Set", "Decorative ceramic plant pots", "27.99", "Home & Garden", 95},
	{"Webcam HD", "1080p HD webcam for video calls", "49.99", "Electronics", 110},
}

// SeedProducts builds the demo catalog. Creation times are spaced one second
// apart so the newest-first listing returns them in catalog order.
func SeedProducts(now time.Time) ([]*catalog.Product, error) {
	products := make([]*catalog.Product, 0, len(catalogSeed))
	for i, s := range catalogSeed {
		p, err := catalog.NewProduct(s.name, s.description, decimal.RequireFromString(s.price), s.category, s.stock)
		if err != nil {
			return nil, fmt.Errorf("seed product %q: %w", s.name, err)
		}
		if err := p.SetImageURL(placeholderImage(s.name)); err != nil {
			return nil, fmt.Errorf("seed product %q: %w", s.name, err)
		}
		p.CreatedAt = now.Add(-time.Duration(i) * time.Second)
		p.UpdatedAt = p.CreatedAt
		products = append(products, p)
	}
	return products, nil
}

func placeholderImage(name string) string {
	return "https://via.placeholder.com/300x200?text=" + url.QueryEscape(name)
}

// Seeder loads the demo catalog
type Seeder struct {
	products catalog.ProductRepository
	orders   trade.OrderRepository
}

// NewSeeder creates a Seeder
func NewSeeder(products catalog.ProductRepository, orders trade.OrderRepository) *Seeder {
	return &Seeder{products: products, orders: orders}
}

// Seed inserts the demo catalog. With reset, orders and products are
// removed first; without it an already populated catalog is left alone.
// Returns the number of products inserted.
func (s *Seeder) Seed(ctx context.Context, reset bool) (int, error) {
	if !reset {
		existing, err := s.products.Count(ctx, catalog.ProductFilter{})
		if err != nil {
			return 0, fmt.Errorf("count products: %w", err)
		}
		if existing > 0 {
			return 0, nil
		}
	} else {
		if err := s.orders.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("clear orders: %w", err)
		}
		if err := s.products.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("clear products: %w", err)
		}
	}

	products, err := SeedProducts(time.Now())
	if err != nil {
		return 0, err
	}
	if err := s.products.SaveBatch(ctx, products); err != nil {
		return 0, fmt.Errorf("save products: %w", err)
	}
	return len(products), nil
}

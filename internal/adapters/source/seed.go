package source

import (
	"context"

	"github.com/shopcomplex/storefront/internal/domain"
)

// Seed is the curated launch batch: regional products that neither upstream
// API carries. Prices are raw source values and get rescaled with the rest
// of the merged batch.
type Seed struct{}

func NewSeed() *Seed { return &Seed{} }

func (*Seed) Name() string { return "seed" }

func (*Seed) Fetch(_ context.Context) ([]domain.RawProduct, error) {
	return seedProducts(), nil
}

func rated(rate float64, count int) (*float64, *int) { return &rate, &count }

func seedProducts() []domain.RawProduct {
	type entry struct {
		id       int
		title    string
		price    float64
		category string
		image    string
		rate     float64
		count    int
	}
	entries := []entry{
		{1001, "Samsung Galaxy S23 Ultra 5G", 89999, "smartphones", "https://images.unsplash.com/photo-1610945415295-d9bbf067e59c?w=400", 4.7, 1250},
		{1002, "LG 55\" 4K Smart TV", 45999, "electronics", "https://images.unsplash.com/photo-1593359677879-a4bb92f829d1?w=400", 4.5, 890},
		{1003, "Whirlpool 265L Refrigerator", 24999, "appliances", "https://images.unsplash.com/photo-1571175443880-49e1d25b2bc5?w=400", 4.3, 567},
		{1004, "Philips LED Smart Bulb", 599, "lighting", "https://images.unsplash.com/photo-1550985616-10810253b84d?w=400", 4.2, 2340},
		{1005, "Milton Thermosteel Water Bottle 1L", 799, "home & kitchen", "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=400", 4.6, 3450},
		{1006, "Prestige Induction Cooktop", 2499, "appliances", "https://images.unsplash.com/photo-1585659722983-3a675dabf23d?w=400", 4.4, 1890},
		{1007, "Seiko Wall Clock", 1299, "home decor", "https://images.unsplash.com/photo-1563861826100-9cb868fdbe1c?w=400", 4.5, 890},
		{1008, "Wooden Photo Frame Set of 3", 899, "home decor", "https://images.unsplash.com/photo-1513519245088-0e12902e35ca?w=400", 4.3, 670},
		{1009, "Ceramic Water Jug with Glasses", 1499, "home & kitchen", "https://images.unsplash.com/photo-1584627904-1bc1c0c3c7d9?w=400", 4.4, 450},
		{1010, "Bajaj Table Fan 400mm", 1899, "appliances", "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=400", 4.2, 1200},
	}
	out := make([]domain.RawProduct, 0, len(entries))
	for _, e := range entries {
		rate, count := rated(e.rate, e.count)
		out = append(out, domain.RawProduct{
			ID:          e.id,
			HasID:       true,
			Title:       e.title,
			Price:       e.price,
			Category:    e.category,
			Image:       e.image,
			Rating:      rate,
			RatingCount: count,
		})
	}
	return out
}

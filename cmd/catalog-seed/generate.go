package main

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

// category is one distribution bucket of the synthetic catalog.
type category struct {
	Name   string
	Weight float64 // share of total products; weights sum to 1.0
	Types  []string
}

var categories = []category{
	{Name: "men's clothing", Weight: 0.30, Types: []string{"Backpack", "T-Shirt", "Jacket", "Slim Fit Shirt", "Hoodie"}},
	{Name: "women's clothing", Weight: 0.30, Types: []string{"Rain Jacket", "Moto Biker Jacket", "Short Sleeve Top", "Cardigan", "Dress"}},
	{Name: "jewelery", Weight: 0.15, Types: []string{"Bracelet", "Ring", "Earrings", "Necklace"}},
	{Name: "electronics", Weight: 0.25, Types: []string{"External Hard Drive", "SSD", "USB Flash Drive", "Gaming Monitor"}},
}

var (
	adjectives = []string{"Classic", "Premium", "Everyday", "Lightweight", "Vintage", "Essential", "Urban", "Deluxe"}
	colors     = []string{"Black", "White", "Navy", "Olive", "Burgundy", "Silver", "Gold", "Grey"}

	descriptionTemplates = []string{
		"A %s built for daily use, with durable materials and a clean finish.",
		"This %s pairs a modern cut with a comfortable fit for any occasion.",
		"Reliable %s with a one year warranty and free returns.",
	}
)

// generateProducts builds n fakestoreapi-shaped products with ids 1..n. The
// output depends only on n and seed.
func generateProducts(n int, seed int64) []domain.Product {
	rng := rand.New(rand.NewSource(seed))
	products := make([]domain.Product, 0, n)

	remaining := n
	for i, cat := range categories {
		count := int(float64(n) * cat.Weight)
		if i == len(categories)-1 {
			count = remaining
		}
		remaining -= count

		for j := 0; j < count; j++ {
			id := len(products) + 1
			productType := cat.Types[rng.Intn(len(cat.Types))]

			// 5.00 - 999.99
			cents := int64(500 + rng.Intn(99500))

			products = append(products, domain.Product{
				ID: id,
				Title: fmt.Sprintf("%s %s - %s",
					adjectives[rng.Intn(len(adjectives))], productType, colors[rng.Intn(len(colors))]),
				Price:       decimal.New(cents, -2),
				Description: fmt.Sprintf(descriptionTemplates[rng.Intn(len(descriptionTemplates))], productType),
				Category:    cat.Name,
				Image:       fmt.Sprintf("https://picsum.photos/seed/storefront-%d/400/400", id),
				Rating: domain.Rating{
					Rate:  float64(10+rng.Intn(41)) / 10,
					Count: rng.Intn(700),
				},
			})
		}
	}

	return products
}

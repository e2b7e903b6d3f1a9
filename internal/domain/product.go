package domain

import "github.com/shopspring/decimal"

// Rating is the aggregated review score published with a catalog product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a read-only catalog entry as served by the catalog source.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Rating      Rating          `json:"rating"`
}

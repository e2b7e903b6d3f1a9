package domain

import "github.com/shopspring/decimal"

// CartLine is a single cart entry. It is a snapshot of the product's display
// fields taken when the product was first added; later catalog changes are
// not reflected.
type CartLine struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
}

// NewCartLine builds a line with quantity 1 from a catalog product.
func NewCartLine(p Product) CartLine {
	return CartLine{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Quantity:    1,
	}
}

// CartState is the ordered set of cart lines. Lines keep the order in which
// their products were first added and ids are unique.
type CartState struct {
	Items []CartLine `json:"items"`
}

// ItemCount returns the total number of units in the cart.
func (s CartState) ItemCount() int {
	var count int
	for _, line := range s.Items {
		count += line.Quantity
	}
	return count
}

// FindLineIndex returns the index of the line with the given product id,
// or -1 if the cart has no such line.
func (s CartState) FindLineIndex(id int) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the state so callers can hold on to it
// without observing later transitions.
func (s CartState) Clone() CartState {
	items := make([]CartLine, len(s.Items))
	copy(items, s.Items)
	return CartState{Items: items}
}

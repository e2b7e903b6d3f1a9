package cart

import "github.com/utafrali/storefront/internal/domain"

// Action type identifiers, as carried in the wire envelope.
const (
	TypeAddToCart         = "cart/addToCart"
	TypeIncrementQuantity = "cart/incrementQuantity"
	TypeDecrementQuantity = "cart/decrementQuantity"
)

// Action is a cart command. Actions are plain values: they can be built,
// logged, encoded and replayed independently of the store that applies them.
type Action interface {
	Type() string
	isAction()
}

// AddToCart adds one unit of Product, appending a new line if the product is
// not in the cart yet.
type AddToCart struct {
	Product domain.Product
}

// IncrementQuantity adds one unit to the line with the given product id.
type IncrementQuantity struct {
	ID int
}

// DecrementQuantity removes one unit from the line with the given product id.
// A line at quantity 1 is removed.
type DecrementQuantity struct {
	ID int
}

func (AddToCart) Type() string         { return TypeAddToCart }
func (IncrementQuantity) Type() string { return TypeIncrementQuantity }
func (DecrementQuantity) Type() string { return TypeDecrementQuantity }

func (AddToCart) isAction()         {}
func (IncrementQuantity) isAction() {}
func (DecrementQuantity) isAction() {}

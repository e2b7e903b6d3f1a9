package cart

import "github.com/utafrali/storefront/internal/domain"

// Reduce applies action to state and returns the resulting state. The input
// state is never modified. Reduce is total: ids that are not in the cart make
// IncrementQuantity and DecrementQuantity no-ops.
func Reduce(state domain.CartState, action Action) domain.CartState {
	next := state.Clone()

	switch a := action.(type) {
	case AddToCart:
		if i := next.FindLineIndex(a.Product.ID); i >= 0 {
			// Only the quantity moves; the snapshot taken on first add is kept.
			next.Items[i].Quantity++
		} else {
			next.Items = append(next.Items, domain.NewCartLine(a.Product))
		}

	case IncrementQuantity:
		if i := next.FindLineIndex(a.ID); i >= 0 {
			next.Items[i].Quantity++
		}

	case DecrementQuantity:
		i := next.FindLineIndex(a.ID)
		switch {
		case i < 0:
		case next.Items[i].Quantity > 1:
			next.Items[i].Quantity--
		default:
			next.Items = append(next.Items[:i], next.Items[i+1:]...)
		}
	}

	return next
}

// Package cart implements the shopping cart engine: pure transitions over
// immutable cart snapshots plus the derived monetary totals. Every operation
// returns a new State; callers persist the result through the snapshot store.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/nordmart/storefront/internal/domain/product"
)

// Line is a single (product, quantity) pairing in the cart. The product is a
// copy taken at add time; cart contents do not track later catalog changes.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// State is an immutable cart snapshot: insertion-ordered lines plus the active
// promo code and its flat discount amount. Discount is non-zero only when
// PromoCode is set.
type State struct {
	Lines     []Line          `json:"lines"`
	PromoCode string          `json:"promoCode,omitempty"`
	Discount  decimal.Decimal `json:"discount"`
}

// Empty returns a cart with no lines and no active promo.
func Empty() State {
	return State{Discount: decimal.Zero}
}

// clone copies the line slice so transitions never alias the input snapshot.
func (s State) clone() State {
	out := s
	out.Lines = make([]Line, len(s.Lines))
	copy(out.Lines, s.Lines)
	return out
}

// Add merges quantity into an existing line for the same product id, or
// appends a new line. Quantities <= 0 are outside defined usage and leave the
// snapshot unchanged, preserving the no-nonpositive-line invariant.
func Add(s State, p product.Product, quantity int) State {
	if quantity <= 0 {
		return s
	}
	out := s.clone()
	for i := range out.Lines {
		if out.Lines[i].Product.ID == p.ID {
			out.Lines[i].Quantity += quantity
			return out
		}
	}
	out.Lines = append(out.Lines, Line{Product: p, Quantity: quantity})
	return out
}

// Remove filters out the line matching productID. Removing an absent product
// is a no-op.
func Remove(s State, productID int64) State {
	out := s
	out.Lines = make([]Line, 0, len(s.Lines))
	for _, l := range s.Lines {
		if l.Product.ID != productID {
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

// SetQuantity replaces the quantity of the matching line. A quantity <= 0
// removes the line instead. Unknown product ids are a no-op.
func SetQuantity(s State, productID int64, quantity int) State {
	if quantity <= 0 {
		return Remove(s, productID)
	}
	out := s.clone()
	for i := range out.Lines {
		if out.Lines[i].Product.ID == productID {
			out.Lines[i].Quantity = quantity
			break
		}
	}
	return out
}

// Clear empties the cart and resets the promo code and discount.
func Clear(State) State {
	return Empty()
}

// WithPromo returns the snapshot with the given promo code and flat discount
// applied. The code is expected to be validated and uppercased by the caller.
func WithPromo(s State, code string, discount decimal.Decimal) State {
	out := s
	out.PromoCode = code
	out.Discount = discount
	return out
}

// Count is the total unit count across all lines.
func Count(s State) int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of price * quantity across all lines.
func Subtotal(s State) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.Lines {
		sum = sum.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Total is the subtotal minus the active discount, floored at zero and
// rounded to 2 decimal places. The discount never drives the total negative.
func Total(s State) decimal.Decimal {
	total := Subtotal(s).Sub(s.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}

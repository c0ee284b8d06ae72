// Package wishlist implements the favorites engine: an insertion-ordered set
// of products deduplicated by product id, with pure snapshot transitions.
package wishlist

import (
	"github.com/nordmart/storefront/internal/domain/product"
)

// State is an immutable wishlist snapshot. Products holds the stored copies
// in insertion order; index provides O(1) membership checks and is rebuilt
// lazily per snapshot so repeated Contains calls stay cheap.
type State struct {
	Products []product.Product `json:"products"`

	index map[int64]struct{}
}

// Empty returns a wishlist with no products.
func Empty() State {
	return State{}
}

// Contains reports whether the product id is wishlisted.
func (s *State) Contains(productID int64) bool {
	if s.index == nil {
		s.index = make(map[int64]struct{}, len(s.Products))
		for _, p := range s.Products {
			s.index[p.ID] = struct{}{}
		}
	}
	_, ok := s.index[productID]
	return ok
}

// Add appends the product unless its id is already present.
func Add(s State, p product.Product) State {
	if s.Contains(p.ID) {
		return s
	}
	out := State{Products: make([]product.Product, 0, len(s.Products)+1)}
	out.Products = append(out.Products, s.Products...)
	out.Products = append(out.Products, p)
	return out
}

// Remove filters out the product matching productID. Absent ids are a no-op.
func Remove(s State, productID int64) State {
	out := State{Products: make([]product.Product, 0, len(s.Products))}
	for _, p := range s.Products {
		if p.ID != productID {
			out.Products = append(out.Products, p)
		}
	}
	return out
}

// Toggle removes the product when present and adds it when absent. This is
// the primary operation driving product-card favorite buttons.
func Toggle(s State, p product.Product) State {
	if s.Contains(p.ID) {
		return Remove(s, p.ID)
	}
	return Add(s, p)
}

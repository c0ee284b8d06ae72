package order

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FilterByStatus returns the orders matching the given status.
func FilterByStatus(orders []Order, status Status) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// FindByRef locates an order by its id or human-readable order number.
func FindByRef(orders []Order, ref string) (*Order, bool) {
	for i := range orders {
		if orders[i].ID == ref || orders[i].Number == ref {
			return &orders[i], true
		}
	}
	return nil, false
}

// TotalRevenue sums the totals of all given orders. Cancelled orders are
// excluded.
func TotalRevenue(orders []Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if o.Status == StatusCancelled {
			continue
		}
		sum = sum.Add(o.Total)
	}
	return sum
}

// Recent returns up to n orders sorted by placement date descending.
func Recent(orders []Order, n int) []Order {
	out := make([]Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlacedAt.After(out[j].PlacedAt)
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

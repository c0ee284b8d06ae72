package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordmart/storefront/internal/domain/product"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestProduct(id int64, name, price string) product.Product {
	return product.Product{
		ID:       id,
		Name:     name,
		Price:    d(price),
		Stock:    100,
		Category: "test",
	}
}

func TestAdd_MergesSameProduct(t *testing.T) {
	p := newTestProduct(1, "Widget", "10.00")

	s := Add(Add(Empty(), p, 2), p, 3)

	require.Len(t, s.Lines, 1)
	assert.Equal(t, 5, s.Lines[0].Quantity)
}

func TestAdd_AppendsDistinctProducts(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Widget", "10.00"), 1)
	s = Add(s, newTestProduct(2, "Gadget", "20.00"), 1)

	require.Len(t, s.Lines, 2)
	assert.Equal(t, int64(1), s.Lines[0].Product.ID, "insertion order preserved")
	assert.Equal(t, int64(2), s.Lines[1].Product.ID)
}

func TestAdd_NonPositiveQuantityIsNoop(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Widget", "10.00"), 0)
	assert.Empty(t, s.Lines)

	s = Add(s, newTestProduct(1, "Widget", "10.00"), -2)
	assert.Empty(t, s.Lines)
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	p := newTestProduct(1, "Widget", "10.00")
	base := Add(Empty(), p, 1)

	_ = Add(base, p, 9)

	assert.Equal(t, 1, base.Lines[0].Quantity)
}

func TestRemove_Idempotent(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Widget", "10.00"), 1)

	once := Remove(s, 1)
	twice := Remove(once, 1)

	assert.Empty(t, once.Lines)
	assert.Equal(t, once.Lines, twice.Lines)
}

func TestSetQuantity(t *testing.T) {
	p := newTestProduct(1, "Widget", "10.00")
	s := Add(Empty(), p, 1)

	s = SetQuantity(s, 1, 7)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 7, s.Lines[0].Quantity)

	// Unknown id is a no-op.
	same := SetQuantity(s, 42, 3)
	assert.Equal(t, s.Lines, same.Lines)
}

func TestSetQuantityZero_EquivalentToRemove(t *testing.T) {
	p := newTestProduct(1, "Widget", "10.00")
	s := Add(Empty(), p, 3)

	assert.Equal(t, Remove(s, 1).Lines, SetQuantity(s, 1, 0).Lines)
}

func TestClear_ResetsPromo(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Widget", "10.00"), 2)
	s = WithPromo(s, "WELCOME10", d("10"))

	s = Clear(s)

	assert.Empty(t, s.Lines)
	assert.Empty(t, s.PromoCode)
	assert.True(t, decimal.Zero.Equal(s.Discount))
}

func TestDerivedTotals(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Tea", "2.50"), 2)
	s = Add(s, newTestProduct(2, "Coffee", "3.90"), 1)

	assert.Equal(t, 3, Count(s))
	assert.True(t, d("8.90").Equal(Subtotal(s)), "subtotal %s", Subtotal(s))
}

func TestTotal_ClampedAtZero(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Tea", "2.50"), 2)
	s = Add(s, newTestProduct(2, "Coffee", "3.90"), 1)
	s = WithPromo(s, "SUMMER2025", d("20"))

	assert.True(t, decimal.Zero.Equal(Total(s)), "total %s", Total(s))
}

func TestTotal_SubtractsDiscount(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Widget", "25.00"), 2)
	s = WithPromo(s, "WELCOME10", d("10"))

	assert.True(t, d("40.00").Equal(Total(s)))
}

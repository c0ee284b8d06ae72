package wishlist

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordmart/storefront/internal/domain/product"
)

func newTestProduct(id int64, name string) product.Product {
	return product.Product{ID: id, Name: name, Price: decimal.NewFromInt(10)}
}

func TestAdd_Deduplicates(t *testing.T) {
	p := newTestProduct(1, "Widget")

	s := Add(Add(Empty(), p), p)

	require.Len(t, s.Products, 1)
	assert.True(t, s.Contains(1))
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	s := Add(Empty(), newTestProduct(2, "Gadget"))
	s = Add(s, newTestProduct(1, "Widget"))

	require.Len(t, s.Products, 2)
	assert.Equal(t, int64(2), s.Products[0].ID)
	assert.Equal(t, int64(1), s.Products[1].ID)
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	s := Add(Empty(), newTestProduct(1, "Widget"))

	out := Remove(s, 99)

	assert.Equal(t, s.Products, out.Products)
}

func TestToggle_TwiceRestoresContent(t *testing.T) {
	p := newTestProduct(1, "Widget")
	base := Add(Empty(), newTestProduct(2, "Gadget"))

	toggled := Toggle(Toggle(base, p), p)

	assert.Equal(t, base.Products, toggled.Products)
}

func TestToggle_AddsWhenAbsent(t *testing.T) {
	p := newTestProduct(1, "Widget")

	s := Toggle(Empty(), p)

	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))
}

func TestContains_RepeatedLookups(t *testing.T) {
	s := Empty()
	for i := int64(1); i <= 50; i++ {
		s = Add(s, newTestProduct(i, "p"))
	}

	for i := int64(1); i <= 50; i++ {
		assert.True(t, s.Contains(i))
	}
	assert.False(t, s.Contains(51))
}

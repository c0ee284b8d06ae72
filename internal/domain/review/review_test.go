package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordmart/storefront/internal/domain/product"
)

func TestNew_ValidatesRating(t *testing.T) {
	for _, rating := range []int{0, -1, 6} {
		_, err := New(1, "u1", rating, "")
		require.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}

	r, err := New(1, "u1", 5, "great")
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, int64(1), r.ProductID)
	assert.Equal(t, 5, r.Rating)
}

func TestRatings_FeedsAverage(t *testing.T) {
	reviews := []Review{
		{UserID: "u1", Rating: 2},
		{UserID: "u2", Rating: 4},
	}

	assert.InDelta(t, 3.0, product.AvgRating(Ratings(reviews)), 1e-9)
}

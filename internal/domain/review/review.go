package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/nordmart/storefront/internal/domain/product"
)

// ErrInvalidRating is returned when a rating is outside the 1..5 range.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Review is a per-user product review. The rating values feed the product
// rating average.
type Review struct {
	ID        string
	ProductID int64
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// New validates and builds a review ready for persistence.
func New(productID int64, userID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	return &Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}, nil
}

// Ratings projects reviews onto rating entries for aggregation.
func Ratings(reviews []Review) []product.Rating {
	out := make([]product.Rating, len(reviews))
	for i, r := range reviews {
		out[i] = product.Rating{UserID: r.UserID, Value: r.Rating}
	}
	return out
}

// Repository defines persistence operations for reviews.
type Repository interface {
	ListByProduct(ctx context.Context, productID int64) ([]Review, error)
	Create(ctx context.Context, r *Review) error
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordmart/storefront/internal/domain/review"
)

const (
	listReviewsByProductSQL = `SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`

	createReviewSQL = `INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListByProduct returns the product's reviews newest-first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product %d: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanReview)
}

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	_, err := r.pool.Exec(ctx, createReviewSQL,
		rev.ID, rev.ProductID, rev.UserID, rev.Rating, rev.Comment, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating review %q: %w", rev.ID, err)
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rev review.Review
	err := row.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt)
	return rev, err
}

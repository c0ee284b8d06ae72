package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nordmart/storefront/internal/domain/auth"
)

const (
	userColumns = `id, email, password_hash, name, role, created_at`

	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	getUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	upsertUserSQL = `INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash,
		    name = EXCLUDED.name, role = EXCLUDED.role`
)

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByEmail returns the user with the given email.
// Returns auth.ErrInvalidCredentials when no such user exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, getUserByEmailSQL, email)
}

// FindByID returns the user with the given id.
// Returns auth.ErrInvalidCredentials when no such user exists.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findOne(ctx, getUserByIDSQL, id)
}

// Upsert inserts or updates a user account. Used by seeding.
func (r *UserRepository) Upsert(ctx context.Context, u auth.User) error {
	_, err := r.pool.Exec(ctx, upsertUserSQL, u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role))
	if err != nil {
		return fmt.Errorf("upserting user %q: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, sql string, arg any) (*auth.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (auth.User, error) {
	var (
		u    auth.User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt)
	u.Role = auth.Role(role)
	return u, err
}

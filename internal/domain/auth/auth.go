package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidCredentials is returned for unknown emails or wrong passwords.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for expired, malformed, or mistyped tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Role controls access to the admin surface.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
}

// Repository provides user lookups for authentication.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

package promo

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCode is returned when a promo code is unknown or inactive. It is a
// recoverable, user-visible failure: the caller's cart state stays untouched.
var ErrInvalidCode = errors.New("invalid promo code")

// Rule maps a promo code to a flat discount amount. Codes are stored and
// matched uppercase; lookups are case-insensitive.
type Rule struct {
	Code        string
	Amount      decimal.Decimal
	Description string
	Active      bool
}

// Repository provides lookup of promo rules by their code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	// ListCodes returns all active codes, used to warm lookup caches.
	ListCodes(ctx context.Context) ([]string, error)
}

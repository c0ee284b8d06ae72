package promo

import (
	"context"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

// Validator resolves a promo code to its rule. Implementations must treat
// codes case-insensitively and return ErrInvalidCode for unknown codes.
type Validator interface {
	Validate(ctx context.Context, code string) (*Rule, error)
}

// RepoValidator implements Validator by looking up rules from a Repository.
type RepoValidator struct {
	repo Repository
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo}
}

// Validate looks up the rule for the given code. It returns ErrInvalidCode
// when the code is not found or inactive.
func (v *RepoValidator) Validate(ctx context.Context, code string) (*Rule, error) {
	rule, err := v.repo.FindByCode(ctx, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup promo code")
	}
	return rule, nil
}

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
)

// BloomValidator wraps another Validator with a bloom filter seeded from the
// repository's known codes. Definitely-unknown codes are rejected without a
// repository round trip; possible hits fall through to the inner validator.
type BloomValidator struct {
	inner  Validator
	filter *bloom.BloomFilter
}

// NewBloomValidator builds the filter from the repository's active codes and
// returns a validator that pre-checks membership before delegating.
func NewBloomValidator(ctx context.Context, repo Repository, inner Validator) (*BloomValidator, error) {
	codes, err := repo.ListCodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list promo codes")
	}

	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	for _, code := range codes {
		filter.AddString(strings.ToUpper(code))
	}

	return &BloomValidator{inner: inner, filter: filter}, nil
}

// Validate short-circuits codes the filter has never seen, otherwise defers
// to the inner validator for the authoritative answer.
func (v *BloomValidator) Validate(ctx context.Context, code string) (*Rule, error) {
	if !v.filter.TestString(strings.ToUpper(code)) {
		return nil, ErrInvalidCode
	}
	return v.inner.Validate(ctx, code)
}

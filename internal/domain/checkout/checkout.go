// Package checkout models the three-step checkout flow: Summary -> Address ->
// Confirm. Each step is gated by a precondition; asking for a step the session
// does not qualify for redirects to the earliest unmet step.
package checkout

import (
	"github.com/go-faster/errors"

	"github.com/nordmart/storefront/internal/domain/cart"
	"github.com/nordmart/storefront/internal/domain/order"
)

// ErrIncompleteAddress is returned when a captured address is missing its
// required street or city.
var ErrIncompleteAddress = errors.New("address requires street and city")

// Step identifies a checkout step. Steps are strictly ordered.
type Step string

const (
	StepSummary Step = "summary"
	StepAddress Step = "address"
	StepConfirm Step = "confirm"
)

// rank gives the ordering used for "earliest unmet step" resolution.
func (s Step) rank() int {
	switch s {
	case StepAddress:
		return 1
	case StepConfirm:
		return 2
	default:
		return 0
	}
}

// Session is the per-user checkout state persisted between steps. Only the
// captured address survives across requests; the reachable step is always
// derived from the cart and address, never trusted from storage.
type Session struct {
	Address *order.Address `json:"address,omitempty"`
}

// Empty returns a session with no captured address.
func Empty() Session {
	return Session{}
}

// CaptureAddress validates and stores the shipping address on the session.
func CaptureAddress(s Session, addr order.Address) (Session, error) {
	if !addr.Complete() {
		return s, ErrIncompleteAddress
	}
	s.Address = &addr
	return s, nil
}

// Resolve returns the step actually reachable when the user requests target:
// Address and Confirm require a non-empty cart, and Confirm additionally
// requires a complete captured address. The result is the earliest unmet
// step, or target itself when all its preconditions hold.
func Resolve(target Step, c cart.State, s Session) Step {
	if target.rank() >= StepAddress.rank() && len(c.Lines) == 0 {
		return StepSummary
	}
	if target.rank() >= StepConfirm.rank() {
		if s.Address == nil || !s.Address.Complete() {
			return StepAddress
		}
	}
	return target
}

// CanConfirm reports whether the session qualifies for order confirmation.
func CanConfirm(c cart.State, s Session) bool {
	return Resolve(StepConfirm, c, s) == StepConfirm
}

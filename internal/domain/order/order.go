package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when placement is attempted with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status is the fulfillment state of an order. The progression is linear
// (Processing -> Shipped -> Delivered) with Cancelled as a terminal side
// branch reachable before delivery.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusProcessing:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered || next == StatusCancelled
	default:
		// Delivered and Cancelled are terminal.
		return false
	}
}

// Item is a line snapshot captured at placement time. Name and unit price are
// copied from the catalog so historical orders stay stable when prices change.
type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Address is the shipping address snapshot attached to an order.
type Address struct {
	FullName string `json:"full_name"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Complete reports whether the address carries the minimum required fields.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != ""
}

// Order represents a placed customer order. Orders are append-only; after
// creation only the status changes, through guarded transitions.
type Order struct {
	ID        string
	Number    string
	UserID    string
	Status    Status
	Total     decimal.Decimal
	Discount  decimal.Decimal
	PromoCode string
	Items     []Item
	Address   *Address
	PlacedAt  time.Time
}

// Repository defines persistence operations for the orders ledger.
type Repository interface {
	// Create persists a new order and decrements catalog stock for every
	// item in a single transaction. It returns product.ErrInsufficientStock
	// when any line exceeds the available stock.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// ListByUser returns the user's orders most-recent-first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// List returns all orders most-recent-first.
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

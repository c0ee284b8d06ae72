package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nordmart/storefront/internal/domain/cart"
)

var tracer = otel.Tracer("storefront/order")

// PlaceRequest holds the input for placing an order: the user's current cart
// snapshot and the shipping address captured during checkout.
type PlaceRequest struct {
	UserID  string
	Cart    cart.State
	Address Address
}

// Service encapsulates order placement and status management.
type Service struct {
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service backed by the given ledger repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders, now: time.Now}
}

// Place turns the cart snapshot into an order with status Processing and
// persists it. Line snapshots copy name and unit price from the cart so the
// order stays stable against later catalog changes. Stock is decremented
// transactionally by the repository; insufficient stock surfaces as
// product.ErrInsufficientStock and leaves nothing persisted, so the caller
// can retry the same submission.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	ctx, span := tracer.Start(ctx, "order.Place",
		trace.WithAttributes(attribute.Int("cart.lines", len(req.Cart.Lines))))
	defer span.End()

	if len(req.Cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]Item, len(req.Cart.Lines))
	for i, l := range req.Cart.Lines {
		items[i] = Item{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
		}
	}

	placedAt := s.now()
	addr := req.Address
	o := &Order{
		ID:        uuid.New().String(),
		Number:    newOrderNumber(placedAt),
		UserID:    req.UserID,
		Status:    StatusProcessing,
		Total:     cart.Total(req.Cart),
		Discount:  req.Cart.Discount.Round(2),
		PromoCode: req.Cart.PromoCode,
		Items:     items,
		Address:   &addr,
		PlacedAt:  placedAt,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// UpdateStatus applies a guarded status transition to an existing order.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !next.Valid() || !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", o.Status, next, ErrInvalidTransition)
	}

	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	o.Status = next
	return o, nil
}

// newOrderNumber builds a human-readable order number like ORD-20250901-1A2B3C4D.
func newOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}

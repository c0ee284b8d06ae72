// Package api implements the storefront HTTP handlers. Handlers decode
// requests, delegate to the domain engines and repositories, and encode
// responses with jx. Per-user cart, wishlist, and checkout snapshots are
// loaded from the snapshot store, transformed by the pure engines, and
// written back after every mutation.
package api

import (
	"context"
	"net/http"

	"github.com/nordmart/storefront/internal/domain/auth"
	"github.com/nordmart/storefront/internal/domain/cart"
	"github.com/nordmart/storefront/internal/domain/checkout"
	"github.com/nordmart/storefront/internal/domain/order"
	"github.com/nordmart/storefront/internal/domain/product"
	"github.com/nordmart/storefront/internal/domain/promo"
	"github.com/nordmart/storefront/internal/domain/review"
	"github.com/nordmart/storefront/internal/domain/wishlist"
)

// SnapshotStore persists per-user state snapshots, implemented by
// kvstore.Store.
type SnapshotStore[T any] interface {
	Load(ctx context.Context, userID string) (T, error)
	Save(ctx context.Context, userID string, state T) error
	Delete(ctx context.Context, userID string) error
}

// Handler bundles the domain dependencies behind the HTTP surface.
type Handler struct {
	products product.Repository
	reviews  review.Repository
	orders   order.Repository
	placer   *order.Service
	promos   promo.Validator
	auth     *auth.Service

	carts     SnapshotStore[cart.State]
	wishlists SnapshotStore[wishlist.State]
	sessions  SnapshotStore[checkout.Session]
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	reviews review.Repository,
	orders order.Repository,
	placer *order.Service,
	promos promo.Validator,
	authSvc *auth.Service,
	carts SnapshotStore[cart.State],
	wishlists SnapshotStore[wishlist.State],
	sessions SnapshotStore[checkout.Session],
) *Handler {
	return &Handler{
		products:  products,
		reviews:   reviews,
		orders:    orders,
		placer:    placer,
		promos:    promos,
		auth:      authSvc,
		carts:     carts,
		wishlists: wishlists,
		sessions:  sessions,
	}
}

// Routes registers every API route on a fresh mux. Authentication and role
// checks are applied per route.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/refresh", h.refresh)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.listReviews)
	mux.Handle("POST /api/products/{id}/reviews", h.requireAuth(h.createReview))

	mux.Handle("GET /api/cart", h.requireAuth(h.getCart))
	mux.Handle("POST /api/cart/items", h.requireAuth(h.addCartItem))
	mux.Handle("PATCH /api/cart/items/{id}", h.requireAuth(h.updateCartItem))
	mux.Handle("DELETE /api/cart/items/{id}", h.requireAuth(h.removeCartItem))
	mux.Handle("DELETE /api/cart", h.requireAuth(h.clearCart))
	mux.Handle("POST /api/cart/promo", h.requireAuth(h.applyPromo))
	mux.Handle("POST /api/cart/validate", h.requireAuth(h.validateCart))

	mux.Handle("GET /api/wishlist", h.requireAuth(h.getWishlist))
	mux.Handle("PUT /api/wishlist/{id}", h.requireAuth(h.toggleWishlist))
	mux.Handle("DELETE /api/wishlist/{id}", h.requireAuth(h.removeWishlistItem))

	mux.Handle("GET /api/checkout", h.requireAuth(h.getCheckout))
	mux.Handle("PUT /api/checkout/address", h.requireAuth(h.putAddress))
	mux.Handle("POST /api/checkout/confirm", h.requireAuth(h.confirmCheckout))

	mux.Handle("GET /api/orders", h.requireAuth(h.listOrders))
	mux.Handle("GET /api/orders/{ref}", h.requireAuth(h.getOrder))

	mux.Handle("PATCH /api/admin/orders/{id}/status", h.requireAdmin(h.updateOrderStatus))
	mux.Handle("GET /api/admin/stats", h.requireAdmin(h.adminStats))
	mux.Handle("GET /api/admin/products/low-stock", h.requireAdmin(h.lowStockProducts))

	return mux
}

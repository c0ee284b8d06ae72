package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/nordmart/storefront/internal/domain/wishlist"
)

func (h *Handler) respondWishlist(w http.ResponseWriter, s wishlist.State) {
	respond(w, http.StatusOK, func(e *jx.Encoder) {
		encodeWishlist(e, s)
	})
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	s, err := h.wishlists.Load(r.Context(), identityFrom(r.Context()).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondWishlist(w, s)
}

// toggleWishlist flips the product's wishlist membership: present becomes
// absent and vice versa. This backs the heart button on product cards.
func (h *Handler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	uid := identityFrom(r.Context()).UserID
	s, err := h.wishlists.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	next := wishlist.Toggle(s, *p)
	if err := h.wishlists.Save(r.Context(), uid, next); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondWishlist(w, next)
}

func (h *Handler) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	uid := identityFrom(r.Context()).UserID
	s, err := h.wishlists.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	next := wishlist.Remove(s, id)
	if err := h.wishlists.Save(r.Context(), uid, next); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondWishlist(w, next)
}

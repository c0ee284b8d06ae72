package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/nordmart/storefront/internal/domain/cart"
)

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type applyPromoRequest struct {
	Code string `json:"code"`
}

func (h *Handler) respondCart(w http.ResponseWriter, status int, s cart.State) {
	respond(w, status, func(e *jx.Encoder) {
		encodeCart(e, s)
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s, err := h.carts.Load(r.Context(), identityFrom(r.Context()).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondCart(w, http.StatusOK, s)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusUnprocessableEntity, "quantity must be positive")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	uid := identityFrom(r.Context()).UserID
	s, err := h.carts.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	next := cart.Add(s, *p, req.Quantity)
	if err := h.carts.Save(r.Context(), uid, next); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondCart(w, http.StatusOK, next)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req setQuantityRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uid := identityFrom(r.Context()).UserID
	s, err := h.carts.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	next := cart.SetQuantity(s, id, req.Quantity)
	if err := h.carts.Save(r.Context(), uid, next); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondCart(w, http.StatusOK, next)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	uid := identityFrom(r.Context()).UserID
	s, err := h.carts.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	next := cart.Remove(s, id)
	if err := h.carts.Save(r.Context(), uid, next); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondCart(w, http.StatusOK, next)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	uid := identityFrom(r.Context()).UserID
	if err := h.carts.Delete(r.Context(), uid); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondCart(w, http.StatusOK, cart.Empty())
}

func (h *Handler) applyPromo(w http.ResponseWriter, r *http.Request) {
	var req applyPromoRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.promos.Validate(r.Context(), req.Code)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	uid := identityFrom(r.Context()).UserID
	s, err := h.carts.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	next := cart.WithPromo(s, rule.Code, rule.Amount)
	if err := h.carts.Save(r.Context(), uid, next); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	h.respondCart(w, http.StatusOK, next)
}

// validateCart re-checks every cart line against current catalog stock and
// reports lines that can no longer be fulfilled. The cart itself is left
// untouched; the client decides how to resolve the issues.
func (h *Handler) validateCart(w http.ResponseWriter, r *http.Request) {
	s, err := h.carts.Load(r.Context(), identityFrom(r.Context()).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	ids := make([]int64, len(s.Lines))
	for i, l := range s.Lines {
		ids[i] = l.Product.ID
	}

	current, err := h.products.GetByIDs(r.Context(), ids)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	stock := make(map[int64]int, len(current))
	for _, p := range current {
		stock[p.ID] = p.Stock
	}

	type issue struct {
		productID int64
		reason    string
		available int
	}
	var issues []issue
	for _, l := range s.Lines {
		available, found := stock[l.Product.ID]
		switch {
		case !found:
			issues = append(issues, issue{l.Product.ID, "product no longer available", 0})
		case available < l.Quantity:
			issues = append(issues, issue{l.Product.ID, "insufficient stock", available})
		}
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("valid")
		e.Bool(len(issues) == 0)
		e.FieldStart("issues")
		e.ArrStart()
		for _, is := range issues {
			e.ObjStart()
			e.FieldStart("productId")
			e.Int64(is.productID)
			e.FieldStart("reason")
			e.Str(is.reason)
			e.FieldStart("available")
			e.Int(is.available)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

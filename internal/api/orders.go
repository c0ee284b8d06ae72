package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/nordmart/storefront/internal/domain/order"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), identityFrom(r.Context()).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	if status := order.Status(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "unknown order status")
			return
		}
		orders = order.FilterByStatus(orders, status)
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrders(e, orders)
	})
}

// getOrder fetches one of the caller's orders by id or order number.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), identityFrom(r.Context()).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	o, found := order.FindByRef(orders, r.PathValue("ref"))
	if !found {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, *o)
	})
}

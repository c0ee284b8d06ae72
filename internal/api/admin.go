package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/nordmart/storefront/internal/domain/order"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next := order.Status(req.Status)
	if !next.Valid() {
		respondError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	o, err := h.placer.UpdateStatus(r.Context(), r.PathValue("id"), next)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		encodeOrder(e, *o)
	})
}

const recentOrdersLimit = 5

// adminStats aggregates the orders ledger into the dashboard numbers: total
// count, revenue excluding cancellations, per-status counts, and the most
// recent orders.
func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("totalOrders")
		e.Int(len(orders))
		e.FieldStart("revenue")
		encodeDecimal(e, order.TotalRevenue(orders))
		e.FieldStart("byStatus")
		e.ObjStart()
		for _, status := range []order.Status{
			order.StatusProcessing,
			order.StatusShipped,
			order.StatusDelivered,
			order.StatusCancelled,
		} {
			e.FieldStart(string(status))
			e.Int(len(order.FilterByStatus(orders, status)))
		}
		e.ObjEnd()
		e.FieldStart("recent")
		encodeOrders(e, order.Recent(orders, recentOrdersLimit))
		e.ObjEnd()
	})
}

func (h *Handler) lowStockProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.LowStock(r.Context())
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("products")
		encodeProducts(e, products)
		e.FieldStart("count")
		e.Int(len(products))
		e.ObjEnd()
	})
}

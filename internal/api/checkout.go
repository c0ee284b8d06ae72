package api

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/nordmart/storefront/internal/domain/checkout"
	"github.com/nordmart/storefront/internal/domain/order"
)

type addressRequest struct {
	FullName string `json:"fullName"`
	Street   string `json:"street"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

func (r addressRequest) toAddress() order.Address {
	return order.Address{
		FullName: r.FullName,
		Street:   r.Street,
		City:     r.City,
		Zip:      r.Zip,
		Country:  r.Country,
	}
}

func parseStep(raw string) (checkout.Step, bool) {
	switch checkout.Step(raw) {
	case checkout.StepSummary, "":
		return checkout.StepSummary, true
	case checkout.StepAddress:
		return checkout.StepAddress, true
	case checkout.StepConfirm:
		return checkout.StepConfirm, true
	}
	return "", false
}

// getCheckout resolves the step the caller may actually be on. Requesting a
// step whose preconditions are unmet yields the earliest unmet step instead,
// so the client can route there.
func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	target, ok := parseStep(r.URL.Query().Get("step"))
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown checkout step")
		return
	}

	uid := identityFrom(r.Context()).UserID
	c, err := h.carts.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	session, err := h.sessions.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("step")
		e.Str(string(checkout.Resolve(target, c, session)))
		e.FieldStart("cart")
		encodeCart(e, c)
		if session.Address != nil {
			e.FieldStart("address")
			encodeAddress(e, *session.Address)
		}
		e.ObjEnd()
	})
}

func (h *Handler) putAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uid := identityFrom(r.Context()).UserID
	session, err := h.sessions.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	next, err := checkout.CaptureAddress(session, req.toAddress())
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	if err := h.sessions.Save(r.Context(), uid, next); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("address")
		encodeAddress(e, *next.Address)
		e.ObjEnd()
	})
}

// confirmCheckout places the order from the current cart and address and
// resets the cart and checkout session on success.
func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	uid := identityFrom(r.Context()).UserID
	c, err := h.carts.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	session, err := h.sessions.Load(r.Context(), uid)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	if !checkout.CanConfirm(c, session) {
		step := checkout.Resolve(checkout.StepConfirm, c, session)
		respond(w, http.StatusConflict, func(e *jx.Encoder) {
			e.ObjStart()
			e.FieldStart("code")
			e.Int(http.StatusConflict)
			e.FieldStart("message")
			e.Str("checkout prerequisites not met")
			e.FieldStart("step")
			e.Str(string(step))
			e.ObjEnd()
		})
		return
	}

	o, err := h.placer.Place(r.Context(), order.PlaceRequest{
		UserID:  uid,
		Cart:    c,
		Address: *session.Address,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	// The order is already persisted; snapshot cleanup failures only leave a
	// stale cart behind, so log and keep going.
	lg := zctx.From(r.Context())
	if err := h.carts.Delete(r.Context(), uid); err != nil {
		lg.Warn("clear cart after confirm", zap.Error(err))
	}
	if err := h.sessions.Delete(r.Context(), uid); err != nil {
		lg.Warn("clear checkout session after confirm", zap.Error(err))
	}

	respond(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeOrder(e, *o)
	})
}

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/nordmart/storefront/internal/domain/auth"
	"github.com/nordmart/storefront/internal/domain/checkout"
	"github.com/nordmart/storefront/internal/domain/order"
	"github.com/nordmart/storefront/internal/domain/product"
	"github.com/nordmart/storefront/internal/domain/promo"
	"github.com/nordmart/storefront/internal/domain/review"
)

const maxBodyBytes = 1 << 20

// respond writes a JSON body built with the given encoder callback.
func respond(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// respondError writes the uniform {code, message} error body.
func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// respondDomainError maps a domain error onto an HTTP status. Unrecognized
// errors are logged and surface as an opaque 500.
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, promo.ErrInvalidCode),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, checkout.ErrIncompleteAddress):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		zctx.From(ctx).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads and decodes a JSON request body into dst, capping the body
// size. Unknown fields are ignored so clients can evolve independently.
func decodeBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

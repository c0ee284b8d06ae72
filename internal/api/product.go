package api

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/nordmart/storefront/internal/domain/product"
	"github.com/nordmart/storefront/internal/domain/review"
)

// parseListParams reads the catalog filter query parameters. Malformed
// numeric values are treated as absent rather than rejected.
func parseListParams(r *http.Request) product.ListParams {
	q := r.URL.Query()
	params := product.ListParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Ordering: product.Ordering(q.Get("sort")),
	}
	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	if v, err := decimal.NewFromString(q.Get("minPrice")); err == nil {
		params.MinPrice = v
	}
	if v, err := decimal.NewFromString(q.Get("maxPrice")); err == nil {
		params.MaxPrice = v
	}
	params.MinRating, _ = strconv.ParseFloat(q.Get("minRating"), 64)
	return params
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.products.List(r.Context(), parseListParams(r))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("products")
		encodeProducts(e, result.Products)
		e.FieldStart("total")
		e.Int(result.Total)
		e.ObjEnd()
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
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

	reviews, err := h.reviews.ListByProduct(r.Context(), id)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("product")
		encodeProduct(e, *p)
		e.FieldStart("avgRating")
		e.Float64(product.AvgRating(review.Ratings(reviews)))
		e.FieldStart("reviewCount")
		e.Int(len(reviews))
		e.ObjEnd()
	})
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), id)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, rev := range reviews {
			encodeReview(e, rev)
		}
		e.ArrEnd()
	})
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req createReviewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The product must exist before accepting a review for it.
	if _, err := h.products.GetByID(r.Context(), id); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	rev, err := review.New(id, identityFrom(r.Context()).UserID, req.Rating, req.Comment)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	if err := h.reviews.Create(r.Context(), rev); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeReview(e, *rev)
	})
}

package api

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/nordmart/storefront/internal/domain/cart"
	"github.com/nordmart/storefront/internal/domain/order"
	"github.com/nordmart/storefront/internal/domain/product"
	"github.com/nordmart/storefront/internal/domain/review"
	"github.com/nordmart/storefront/internal/domain/wishlist"
)

// encodeDecimal writes a decimal as a JSON number, preserving its exact
// string form (no float rounding on the wire).
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	encodeDecimal(e, p.Price)
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("createdAt")
	encodeTime(e, p.CreatedAt)
	e.ObjEnd()
}

func encodeProducts(e *jx.Encoder, products []product.Product) {
	e.ArrStart()
	for _, p := range products {
		encodeProduct(e, p)
	}
	e.ArrEnd()
}

func encodeCart(e *jx.Encoder, s cart.State) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, l := range s.Lines {
		e.ObjStart()
		e.FieldStart("product")
		encodeProduct(e, l.Product)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("lineTotal")
		encodeDecimal(e, l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("count")
	e.Int(cart.Count(s))
	e.FieldStart("subtotal")
	encodeDecimal(e, cart.Subtotal(s))
	if s.PromoCode != "" {
		e.FieldStart("promoCode")
		e.Str(s.PromoCode)
	}
	e.FieldStart("discount")
	encodeDecimal(e, s.Discount)
	e.FieldStart("total")
	encodeDecimal(e, cart.Total(s))
	e.ObjEnd()
}

func encodeWishlist(e *jx.Encoder, s wishlist.State) {
	e.ObjStart()
	e.FieldStart("products")
	encodeProducts(e, s.Products)
	e.FieldStart("count")
	e.Int(len(s.Products))
	e.ObjEnd()
}

func encodeAddress(e *jx.Encoder, a order.Address) {
	e.ObjStart()
	e.FieldStart("fullName")
	e.Str(a.FullName)
	e.FieldStart("street")
	e.Str(a.Street)
	e.FieldStart("city")
	e.Str(a.City)
	e.FieldStart("zip")
	e.Str(a.Zip)
	e.FieldStart("country")
	e.Str(a.Country)
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("number")
	e.Str(o.Number)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("total")
	encodeDecimal(e, o.Total)
	e.FieldStart("discount")
	encodeDecimal(e, o.Discount)
	if o.PromoCode != "" {
		e.FieldStart("promoCode")
		e.Str(o.PromoCode)
	}
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("unitPrice")
		encodeDecimal(e, it.UnitPrice)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	if o.Address != nil {
		e.FieldStart("address")
		encodeAddress(e, *o.Address)
	}
	e.FieldStart("placedAt")
	encodeTime(e, o.PlacedAt)
	e.ObjEnd()
}

func encodeOrders(e *jx.Encoder, orders []order.Order) {
	e.ArrStart()
	for _, o := range orders {
		encodeOrder(e, o)
	}
	e.ArrEnd()
}

func encodeReview(e *jx.Encoder, r review.Review) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(r.ID)
	e.FieldStart("productId")
	e.Int64(r.ProductID)
	e.FieldStart("userId")
	e.Str(r.UserID)
	e.FieldStart("rating")
	e.Int(r.Rating)
	e.FieldStart("comment")
	e.Str(r.Comment)
	e.FieldStart("createdAt")
	encodeTime(e, r.CreatedAt)
	e.ObjEnd()
}

package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when an order requests more units
	// than the catalog currently holds.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product represents a catalog item available for purchase. The JSON tags
// cover the snapshot form stored by the cart and wishlist engines.
type Product struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Category          string          `json:"category"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// LowOnStock reports whether the product's stock has dropped to or below its
// configured threshold.
func (p Product) LowOnStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// Ordering enumerates the supported listing sort orders.
type Ordering string

const (
	OrderingNameAsc   Ordering = "name"
	OrderingNameDesc  Ordering = "-name"
	OrderingPriceAsc  Ordering = "price"
	OrderingPriceDesc Ordering = "-price"
	OrderingNewest    Ordering = "-created_at"
	OrderingOldest    Ordering = "created_at"
)

// ListParams holds pagination and filter parameters for catalog listing.
// Zero values mean "no filter"; Page and PageSize are normalized by the
// repository when out of range.
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	Category  string
	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal
	MinRating float64
	Ordering  Ordering
}

// ListResult is one page of the catalog plus the total match count.
type ListResult struct {
	Products []Product
	Total    int
}

// Repository defines read and stock operations for the product catalog.
type Repository interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	// LowStock returns products whose stock is at or below their threshold.
	LowStock(ctx context.Context) ([]Product, error)
}

package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nordmart/storefront/internal/domain/product"
)

const (
	productColumns = `p.id, p.name, p.price, p.stock, p.low_stock_threshold, p.category, p.created_at`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1) ORDER BY p.id`

	lowStockSQL = `SELECT ` + productColumns + ` FROM products p
		WHERE p.stock <= p.low_stock_threshold ORDER BY p.stock, p.id`

	upsertProductSQL = `INSERT INTO products (id, name, price, stock, low_stock_threshold, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, stock = EXCLUDED.stock,
		    low_stock_threshold = EXCLUDED.low_stock_threshold, category = EXCLUDED.category`
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns one catalog page matching the filter parameters plus the total
// match count. The minRating filter averages review ratings per product;
// products without reviews count as rating 0.
func (r *ProductRepository) List(ctx context.Context, params product.ListParams) (*product.ListResult, error) {
	where, args := buildProductFilter(params)

	countSQL := `SELECT COUNT(*) FROM products p` + where
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	pageSQL := `SELECT ` + productColumns + ` FROM products p` + where +
		orderClause(params.Ordering) +
		` LIMIT ` + strconv.Itoa(pageSize) + ` OFFSET ` + strconv.Itoa((page-1)*pageSize)

	rows, err := r.pool.Query(ctx, pageSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return &product.ListResult{Products: products, Total: total}, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// LowStock returns products at or below their low-stock threshold.
func (r *ProductRepository) LowStock(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, lowStockSQL)
	if err != nil {
		return nil, fmt.Errorf("listing low stock products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Upsert inserts or updates a catalog product. Used by seeding.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Price, p.Stock, p.LowStockThreshold, p.Category)
	if err != nil {
		return fmt.Errorf("upserting product %d: %w", p.ID, err)
	}
	return nil
}

// buildProductFilter assembles the WHERE clause shared by the count and page
// queries. Arguments are positional, appended in filter order.
func buildProductFilter(params product.ListParams) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if params.Search != "" {
		clauses = append(clauses, `p.name ILIKE '%' || `+arg(params.Search)+` || '%'`)
	}
	if params.Category != "" {
		clauses = append(clauses, `p.category = `+arg(params.Category))
	}
	if params.MinPrice.IsPositive() {
		clauses = append(clauses, `p.price >= `+arg(params.MinPrice))
	}
	if params.MaxPrice.IsPositive() {
		clauses = append(clauses, `p.price <= `+arg(params.MaxPrice))
	}
	if params.MinRating > 0 {
		clauses = append(clauses,
			`(SELECT COALESCE(AVG(r.rating), 0) FROM reviews r WHERE r.product_id = p.id) >= `+
				arg(decimal.NewFromFloat(params.MinRating)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps the ordering parameter onto a whitelisted ORDER BY.
func orderClause(ordering product.Ordering) string {
	switch ordering {
	case product.OrderingNameAsc:
		return " ORDER BY p.name, p.id"
	case product.OrderingNameDesc:
		return " ORDER BY p.name DESC, p.id"
	case product.OrderingPriceAsc:
		return " ORDER BY p.price, p.id"
	case product.OrderingPriceDesc:
		return " ORDER BY p.price DESC, p.id"
	case product.OrderingOldest:
		return " ORDER BY p.created_at, p.id"
	case product.OrderingNewest:
		return " ORDER BY p.created_at DESC, p.id"
	default:
		return " ORDER BY p.id"
	}
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &price, &p.Stock, &p.LowStockThreshold, &p.Category, &p.CreatedAt,
	)
	p.Price = price
	return p, err
}

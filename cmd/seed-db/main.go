// Command seed-db loads the demo catalog, promo codes, and demo accounts into
// the database. Safe to re-run; every write is an upsert.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/nordmart/storefront/internal/domain/auth"
	"github.com/nordmart/storefront/internal/domain/product"
	"github.com/nordmart/storefront/internal/domain/promo"
	"github.com/nordmart/storefront/internal/repository"
)

type productJSON struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Category          string          `json:"category"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
		demoPassword  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "admin@storefront.dev", "admin account email")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.StringVar(&demoPassword, "demo-password", "", "demo customer password; empty skips the demo account")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or STORE_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword, demoPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword, demoPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedPromoCodes(ctx, repository.NewPromoRepository(pool)); err != nil {
		return errors.Wrap(err, "seed promo codes")
	}
	if err := seedUsers(ctx, repository.NewUserRepository(pool), adminEmail, adminPassword, demoPassword); err != nil {
		return errors.Wrap(err, "seed users")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, product.Product{
			ID:                p.ID,
			Name:              p.Name,
			Price:             p.Price,
			Stock:             p.Stock,
			LowStockThreshold: p.LowStockThreshold,
			Category:          p.Category,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %d", p.ID)
		}

		slog.Info("upserted product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedPromoCodes(ctx context.Context, repo *repository.PromoRepository) error {
	slog.Info("seeding promo codes")

	rules := []promo.Rule{
		{Code: "SUMMER2025", Amount: decimal.NewFromInt(20), Description: "Summer sale: $20 off", Active: true},
		{Code: "WELCOME10", Amount: decimal.NewFromInt(10), Description: "Welcome discount: $10 off", Active: true},
		{Code: "ANGULAR", Amount: decimal.NewFromInt(50), Description: "Framework fans: $50 off", Active: true},
	}

	for _, rule := range rules {
		if err := repo.Upsert(ctx, rule); err != nil {
			return errors.Wrapf(err, "upsert promo code %s", rule.Code)
		}

		slog.Info("upserted promo code", slog.String("code", rule.Code), slog.String("description", rule.Description))
	}

	return nil
}

func seedUsers(ctx context.Context, repo *repository.UserRepository, adminEmail, adminPassword, demoPassword string) error {
	slog.Info("seeding accounts")

	upsert := func(id, email, name, password string, role auth.Role) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hash password")
		}
		if err := repo.Upsert(ctx, auth.User{
			ID:           id,
			Email:        email,
			PasswordHash: string(hash),
			Name:         name,
			Role:         role,
		}); err != nil {
			return err
		}
		slog.Info("upserted account", slog.String("email", email), slog.String("role", string(role)))
		return nil
	}

	if err := upsert("admin", adminEmail, "Store Admin", adminPassword, auth.RoleAdmin); err != nil {
		return err
	}
	if demoPassword != "" {
		if err := upsert("demo", "demo@storefront.dev", "Demo Customer", demoPassword, auth.RoleCustomer); err != nil {
			return err
		}
	}

	return nil
}

// Command seed-db prepares a database for local development: it runs
// migrations and inserts an admin account, default store settings and a
// small demo catalog with a few coupons. Existing rows are left alone,
// so the command is safe to re-run.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/auth"
	"github.com/merchkit/backoffice/internal/domain/catalog"
	"github.com/merchkit/backoffice/internal/domain/coupon"
	"github.com/merchkit/backoffice/internal/domain/settings"
	"github.com/merchkit/backoffice/internal/domain/user"
	"github.com/merchkit/backoffice/internal/repository"
)

func main() {
	var (
		databaseURL   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or BACKOFFICE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("BACKOFFICE_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or BACKOFFICE_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminEmail, adminPassword string) error {
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

	if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}
	if err := seedSettings(ctx, repository.NewSettingsRepository(pool)); err != nil {
		return errors.Wrap(err, "seed settings")
	}
	if err := seedCatalog(ctx, repository.NewCategoryRepository(pool), repository.NewProductRepository(pool)); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedCoupons(ctx, repository.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedAdmin(ctx context.Context, users user.Repository, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			slog.Info("admin account already present", slog.String("email", email))
			return nil
		}
		return err
	}

	slog.Info("created admin account", slog.String("email", email))
	return nil
}

func seedSettings(ctx context.Context, store settings.Repository) error {
	s, err := store.Get(ctx)
	if err != nil {
		return err
	}
	if s.StoreName != "" {
		slog.Info("settings already present")
		return nil
	}

	s = settings.Default()
	s.StoreName = "Demo Store"
	s.StoreEmail = "store@example.com"
	s.EnableTax = true
	s.TaxRate = decimal.NewFromInt(8)
	s.EnableShipping = true
	s.ShippingFee = decimal.NewFromInt(5)

	if _, err := store.Put(ctx, s); err != nil {
		return err
	}
	slog.Info("saved default settings")
	return nil
}

func seedCatalog(ctx context.Context, categories catalog.CategoryRepository, products catalog.ProductRepository) error {
	cat := &catalog.Category{
		ID:          uuid.New().String(),
		Name:        "Apparel",
		Slug:        catalog.Slugify("Apparel"),
		Description: "Shirts, hoodies and caps",
		Active:      true,
	}
	if err := categories.Create(ctx, cat); err != nil {
		if errors.Is(err, catalog.ErrSlugExists) {
			slog.Info("demo catalog already present")
			return nil
		}
		return err
	}

	demo := []catalog.Product{
		{
			Name:      "Classic Tee",
			Price:     decimal.NewFromInt(20),
			Inventory: 100,
			SKU:       "TEE-001",
			Featured:  true,
		},
		{
			Name:      "Logo Cap",
			Price:     decimal.NewFromInt(5),
			Inventory: 50,
			SKU:       "CAP-001",
		},
		{
			Name:      "Zip Hoodie",
			Price:     decimal.RequireFromString("49.99"),
			Inventory: 25,
			SKU:       "HOOD-001",
		},
	}
	for i := range demo {
		p := demo[i]
		p.ID = uuid.New().String()
		p.Slug = catalog.Slugify(p.Name)
		p.CategoryID = cat.ID
		p.Active = true
		if err := products.Create(ctx, &p); err != nil {
			return errors.Wrapf(err, "create product %s", p.SKU)
		}
		slog.Info("created product", slog.String("sku", p.SKU), slog.String("name", p.Name))
	}

	return nil
}

func seedCoupons(ctx context.Context, coupons coupon.Repository) error {
	now := time.Now().UTC()
	year := now.AddDate(1, 0, 0)

	maxDiscount := decimal.NewFromInt(20)
	minPurchase := decimal.NewFromInt(50)

	demo := []coupon.Coupon{
		{
			Code:        "WELCOME10",
			Kind:        coupon.KindPercentage,
			Value:       decimal.NewFromInt(10),
			MaxDiscount: &maxDiscount,
			ValidFrom:   now,
			ValidUntil:  year,
			Enabled:     true,
		},
		{
			Code:        "SAVE15",
			Kind:        coupon.KindFixed,
			Value:       decimal.NewFromInt(15),
			MinPurchase: &minPurchase,
			ValidFrom:   now,
			ValidUntil:  year,
			Enabled:     true,
		},
	}
	for i := range demo {
		if err := coupons.Create(ctx, &demo[i]); err != nil {
			if errors.Is(err, coupon.ErrCodeExists) {
				slog.Info("coupon already present", slog.String("code", demo[i].Code))
				continue
			}
			return errors.Wrapf(err, "create coupon %s", demo[i].Code)
		}
		slog.Info("created coupon", slog.String("code", demo[i].Code))
	}

	return nil
}

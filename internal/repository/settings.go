package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/backoffice/internal/domain/settings"
)

const (
	getSettingsSQL = `SELECT store_name, store_email, store_phone, store_address, currency,
		enable_tax, tax_rate, enable_shipping, shipping_fee, maintenance_mode,
		store_description, updated_at
		FROM settings WHERE id = 'store'`

	upsertSettingsSQL = `INSERT INTO settings
		(id, store_name, store_email, store_phone, store_address, currency,
		 enable_tax, tax_rate, enable_shipping, shipping_fee, maintenance_mode, store_description, updated_at)
		VALUES ('store', $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			store_email = EXCLUDED.store_email,
			store_phone = EXCLUDED.store_phone,
			store_address = EXCLUDED.store_address,
			currency = EXCLUDED.currency,
			enable_tax = EXCLUDED.enable_tax,
			tax_rate = EXCLUDED.tax_rate,
			enable_shipping = EXCLUDED.enable_shipping,
			shipping_fee = EXCLUDED.shipping_fee,
			maintenance_mode = EXCLUDED.maintenance_mode,
			store_description = EXCLUDED.store_description,
			updated_at = now()`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
// The settings table holds at most one row.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the store settings, or the defaults when none have been
// saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.pool.QueryRow(ctx, getSettingsSQL).Scan(
		&s.StoreName, &s.StoreEmail, &s.StorePhone, &s.StoreAddress, &s.Currency,
		&s.EnableTax, &s.TaxRate, &s.EnableShipping, &s.ShippingFee,
		&s.MaintenanceMode, &s.StoreDescription, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Default(), nil
		}
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return &s, nil
}

// Put overwrites the store settings, creating the row on first save.
func (r *SettingsRepository) Put(ctx context.Context, s *settings.Settings) (*settings.Settings, error) {
	_, err := r.pool.Exec(ctx, upsertSettingsSQL,
		s.StoreName, s.StoreEmail, s.StorePhone, s.StoreAddress, s.Currency,
		s.EnableTax, s.TaxRate, s.EnableShipping, s.ShippingFee,
		s.MaintenanceMode, s.StoreDescription,
	)
	if err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	return r.Get(ctx)
}

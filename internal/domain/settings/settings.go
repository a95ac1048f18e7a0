// Package settings holds the store-level configuration singleton.
package settings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the single store configuration record. TaxRate is a
// percentage applied to order subtotals; ShippingFee is a flat amount
// per order. Both apply only when their enable flag is set.
type Settings struct {
	StoreName        string          `json:"storeName"`
	StoreEmail       string          `json:"storeEmail"`
	StorePhone       string          `json:"storePhone"`
	StoreAddress     string          `json:"storeAddress"`
	Currency         string          `json:"currency"`
	EnableTax        bool            `json:"enableTax"`
	TaxRate          decimal.Decimal `json:"taxRate"`
	EnableShipping   bool            `json:"enableShipping"`
	ShippingFee      decimal.Decimal `json:"shippingFee"`
	MaintenanceMode  bool            `json:"maintenanceMode"`
	StoreDescription string          `json:"storeDescription"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Default returns the settings used before an administrator saves any.
func Default() *Settings {
	return &Settings{
		Currency:    "USD",
		TaxRate:     decimal.Zero,
		ShippingFee: decimal.Zero,
	}
}

// Repository persists the settings singleton.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Put(ctx context.Context, s *Settings) (*Settings, error)
}

// Package catalog holds the product and category entities.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/listing"
)

var (
	// ErrProductNotFound is returned when a requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrSlugExists is returned when a product or category slug collides.
	ErrSlugExists = errors.New("slug already exists")
	// ErrSKUExists is returned when a product SKU collides.
	ErrSKUExists = errors.New("sku already exists")
)

// Product is a catalog item available for purchase.
type Product struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	ComparePrice *decimal.Decimal `json:"comparePrice,omitempty"`
	Images       []string         `json:"images"`
	CategoryID   string           `json:"categoryId,omitempty"`
	Inventory    int              `json:"inventory"`
	SKU          string           `json:"sku"`
	Featured     bool             `json:"featured"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ProductRepository provides persistence for products.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	List(ctx context.Context, params ProductListParams) ([]Product, listing.Pagination, error)
}

// ProductListParams filters the product list endpoint.
type ProductListParams struct {
	listing.Params
	CategoryID string
	Featured   *bool
	Active     *bool
}

package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/merchkit/backoffice/internal/listing"
)

// ErrCategoryNotFound is returned when a requested category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// Category groups products, optionally under a parent category.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	ParentID    string    `json:"parentId,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryRepository provides persistence for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, params listing.Params) ([]Category, listing.Pagination, error)
}

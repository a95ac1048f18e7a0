// Package media holds uploaded asset records. Binary data lives on the
// external media host; only the public URL is stored here.
package media

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/merchkit/backoffice/internal/listing"
)

// ErrNotFound is returned when a requested media record does not exist.
var ErrNotFound = errors.New("media not found")

// Media is a stored asset reference.
type Media struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"type"`
	Size        int64     `json:"size"`
	Width       *int      `json:"width,omitempty"`
	Height      *int      `json:"height,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Host stores binary assets and serves them by public URL.
type Host interface {
	// Upload stores the payload (a base64 data URI or raw bytes encoded
	// by the caller) and returns its public URL.
	Upload(ctx context.Context, data string) (string, error)
	// Delete removes an asset by its public ID.
	Delete(ctx context.Context, publicID string) error
	// PublicIDFromURL derives the host's asset identifier from a
	// delivery URL produced by Upload.
	PublicIDFromURL(rawURL string) string
}

// Repository provides persistence for media records.
type Repository interface {
	Create(ctx context.Context, m *Media) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Media, error)
	List(ctx context.Context, params listing.Params) ([]Media, listing.Pagination, error)
}

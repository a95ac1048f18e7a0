// Package review holds customer product reviews and their moderation state.
package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/merchkit/backoffice/internal/listing"
)

var (
	// ErrNotFound is returned when a requested review does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Review is a customer's product review. Reviews are hidden until a
// staff member approves them.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	CustomerID string    `json:"customerId"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Comment    string    `json:"comment"`
	Approved   bool      `json:"approved"`
	Reply      string    `json:"reply,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Repository provides persistence for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Review, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	SetReply(ctx context.Context, id string, reply string) error
	List(ctx context.Context, params ListParams) ([]Review, listing.Pagination, error)
}

// ListParams filters the review list endpoint.
type ListParams struct {
	listing.Params
	ProductID string
	Approved  *bool
}

// Package contact holds customer contact-form messages.
package contact

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/merchkit/backoffice/internal/listing"
)

// Status tracks how far a message has been handled.
type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

var (
	// ErrNotFound is returned when a requested message does not exist.
	ErrNotFound = errors.New("contact message not found")
	// ErrUnknownStatus is returned for a status value outside the enum.
	ErrUnknownStatus = errors.New("unknown contact status")
)

// Contact is an inbound message from the storefront contact form.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	Important bool      `json:"important"`
	Reply     string    `json:"reply,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ParseStatus validates a raw status string against the enum.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusNew, StatusRead, StatusReplied:
		return s, nil
	default:
		return "", ErrUnknownStatus
	}
}

// Repository provides persistence for contact messages.
type Repository interface {
	Create(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Contact, error)
	SetStatus(ctx context.Context, id string, status Status) error
	SetImportant(ctx context.Context, id string, important bool) error
	SetReply(ctx context.Context, id string, reply string) error
	List(ctx context.Context, params ListParams) ([]Contact, listing.Pagination, error)
}

// ListParams filters the contact list endpoint.
type ListParams struct {
	listing.Params
	Status    Status
	Important *bool
}

// Package user holds staff and customer accounts.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/merchkit/backoffice/internal/listing"
)

// Role controls what a user may do in the back office.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailExists is returned when another account already uses the
	// email (case-insensitive).
	ErrEmailExists = errors.New("email already registered")
)

// User is an account. PasswordHash is a bcrypt digest and is never
// serialized in responses.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	Avatar       string     `json:"avatar,omitempty"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ValidRole reports whether a raw role string is part of the enum.
func ValidRole(raw string) bool {
	switch Role(raw) {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// Repository provides persistence for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, params ListParams) ([]User, listing.Pagination, error)
}

// ListParams filters the user list endpoint.
type ListParams struct {
	listing.Params
	Role Role
}

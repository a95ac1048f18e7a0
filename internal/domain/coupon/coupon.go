package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/listing"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindPercentage discounts a percentage of the order subtotal.
	KindPercentage Kind = "percentage"
	// KindFixed discounts a fixed amount, capped at the subtotal.
	KindFixed Kind = "fixed"
)

// Status is the displayable state of a coupon at a point in time.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusExpired   Status = "expired"
	StatusScheduled Status = "scheduled"
)

var (
	// ErrNotFound is returned when a coupon code does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrCodeExists is returned on create/update when another coupon
	// already uses the code (case-insensitive).
	ErrCodeExists = errors.New("coupon code already exists")
	// ErrNotActive is returned when a coupon is disabled, expired or not
	// yet within its validity window.
	ErrNotActive = errors.New("coupon is not active")
	// ErrMinPurchase is returned when the subtotal is below the coupon's
	// minimum purchase requirement.
	ErrMinPurchase = errors.New("subtotal below coupon minimum purchase")
	// ErrUsageLimitReached is returned when a coupon has exhausted its
	// allowed redemptions.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrLimitBelowUsage is returned on update when the new usage limit
	// is lower than the redemptions already recorded.
	ErrLimitBelowUsage = errors.New("coupon usage limit below current usage count")
)

// Coupon is a discount rule redeemable at checkout. Codes are stored
// uppercase and matched case-insensitively.
type Coupon struct {
	Code        string           `json:"code"`
	Kind        Kind             `json:"kind"`
	Value       decimal.Decimal  `json:"value"`
	MinPurchase *decimal.Decimal `json:"minPurchase,omitempty"`
	MaxDiscount *decimal.Decimal `json:"maxDiscount,omitempty"`
	ValidFrom   time.Time        `json:"validFrom"`
	ValidUntil  time.Time        `json:"validUntil"`
	Enabled     bool             `json:"enabled"`
	UsageLimit  *int             `json:"usageLimit,omitempty"`
	UsageCount  int              `json:"usageCount"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Repository provides persistence for coupons.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, code string) error
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context, params ListParams) ([]Coupon, listing.Pagination, error)
}

// ListParams filters the coupon list endpoint. Status applies the same
// classification rules as Classify, evaluated against the current time.
type ListParams struct {
	listing.Params
	Status Status
}

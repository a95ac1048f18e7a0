package coupon

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Classify returns the displayable status of a coupon at the given moment.
// The checks are ordered deliberately: a disabled coupon reports inactive
// even when its window has passed, an expired coupon reports expired even
// when it was never enabled for its window, and scheduled beats active.
func Classify(c *Coupon, now time.Time) Status {
	if !c.Enabled {
		return StatusInactive
	}
	if now.After(c.ValidUntil) {
		return StatusExpired
	}
	if now.Before(c.ValidFrom) {
		return StatusScheduled
	}
	return StatusActive
}

// ComputeDiscount returns the discount amount the coupon grants for the
// given subtotal. It reports a sentinel error when the coupon is not
// applicable: ErrNotActive, ErrMinPurchase or ErrUsageLimitReached.
// The result is rounded half-up to 2 decimal places and is never
// negative nor larger than the subtotal.
func ComputeDiscount(c *Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if Classify(c, now) != StatusActive {
		return decimal.Zero, ErrNotActive
	}
	if c.MinPurchase != nil && subtotal.LessThan(*c.MinPurchase) {
		return decimal.Zero, ErrMinPurchase
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return decimal.Zero, ErrUsageLimitReached
	}

	var amount decimal.Decimal
	switch c.Kind {
	case KindFixed:
		amount = decimal.Min(c.Value, subtotal)
	case KindPercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
		if c.MaxDiscount != nil {
			amount = decimal.Min(amount, *c.MaxDiscount)
		}
	default:
		return decimal.Zero, errors.Errorf("unsupported coupon kind: %q", c.Kind)
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), nil
}

// NormalizeCode uppercases and trims a coupon code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateWrite checks the invariants enforced when a coupon is created
// or updated. Uniqueness of the code is the repository's concern.
func ValidateWrite(c *Coupon) error {
	if NormalizeCode(c.Code) == "" {
		return errors.New("code is required")
	}
	if c.Kind != KindPercentage && c.Kind != KindFixed {
		return errors.Errorf("unknown coupon kind: %q", c.Kind)
	}
	if c.Value.IsNegative() {
		return errors.New("value must not be negative")
	}
	if c.Kind == KindPercentage && c.Value.GreaterThan(hundred) {
		return errors.New("percentage value must be between 0 and 100")
	}
	if c.MinPurchase != nil && c.MinPurchase.IsNegative() {
		return errors.New("minPurchase must not be negative")
	}
	if c.MaxDiscount != nil && c.MaxDiscount.IsNegative() {
		return errors.New("maxDiscount must not be negative")
	}
	if c.ValidFrom.After(c.ValidUntil) {
		return errors.New("validFrom must not be after validUntil")
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return errors.New("usageLimit must not be negative")
	}
	return nil
}

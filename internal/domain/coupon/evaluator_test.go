package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decP(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intP(v int) *int { return &v }

func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name   string
		coupon Coupon
		want   Status
	}{
		{
			name:   "inside window and enabled",
			coupon: Coupon{Enabled: true, ValidFrom: past, ValidUntil: future},
			want:   StatusActive,
		},
		{
			name:   "disabled",
			coupon: Coupon{Enabled: false, ValidFrom: past, ValidUntil: future},
			want:   StatusInactive,
		},
		{
			name:   "window in the past",
			coupon: Coupon{Enabled: true, ValidFrom: past, ValidUntil: now.Add(-time.Hour)},
			want:   StatusExpired,
		},
		{
			name:   "window in the future",
			coupon: Coupon{Enabled: true, ValidFrom: now.Add(time.Hour), ValidUntil: future},
			want:   StatusScheduled,
		},
		{
			name:   "disabled beats expired",
			coupon: Coupon{Enabled: false, ValidFrom: past, ValidUntil: now.Add(-time.Hour)},
			want:   StatusInactive,
		},
		{
			name:   "disabled beats scheduled",
			coupon: Coupon{Enabled: false, ValidFrom: now.Add(time.Hour), ValidUntil: future},
			want:   StatusInactive,
		},
		{
			name: "expired beats scheduled when the window is inverted upstream",
			// ValidUntil before now and ValidFrom after now cannot pass
			// write validation, but classification must still be
			// deterministic: expired wins.
			coupon: Coupon{Enabled: true, ValidFrom: future, ValidUntil: now.Add(-time.Hour)},
			want:   StatusExpired,
		},
		{
			name:   "window boundaries are inclusive at start",
			coupon: Coupon{Enabled: true, ValidFrom: now, ValidUntil: future},
			want:   StatusActive,
		},
		{
			name:   "window boundaries are inclusive at end",
			coupon: Coupon{Enabled: true, ValidFrom: past, ValidUntil: now},
			want:   StatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.coupon, now))
		})
	}
}

func TestComputeDiscount(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	active := Coupon{Enabled: true, ValidFrom: past, ValidUntil: future}

	tests := []struct {
		name     string
		coupon   Coupon
		subtotal decimal.Decimal
		want     decimal.Decimal
		wantErr  error
	}{
		{
			name: "percentage capped by max discount",
			coupon: func() Coupon {
				c := active
				c.Code = "SAVE10"
				c.Kind = KindPercentage
				c.Value = dec("10")
				c.MaxDiscount = decP("20")
				c.MinPurchase = decP("50")
				return c
			}(),
			subtotal: dec("300"),
			want:     dec("20"),
		},
		{
			name: "percentage below the cap",
			coupon: func() Coupon {
				c := active
				c.Kind = KindPercentage
				c.Value = dec("10")
				c.MaxDiscount = decP("20")
				return c
			}(),
			subtotal: dec("150"),
			want:     dec("15"),
		},
		{
			name: "percentage rounds half up",
			coupon: func() Coupon {
				c := active
				c.Kind = KindPercentage
				c.Value = dec("7.5")
				return c
			}(),
			subtotal: dec("10.07"),
			// 10.07 * 0.075 = 0.755250 -> 0.76
			want: dec("0.76"),
		},
		{
			name: "fixed capped at subtotal",
			coupon: func() Coupon {
				c := active
				c.Kind = KindFixed
				c.Value = dec("15")
				return c
			}(),
			subtotal: dec("10"),
			want:     dec("10"),
		},
		{
			name: "fixed below subtotal",
			coupon: func() Coupon {
				c := active
				c.Kind = KindFixed
				c.Value = dec("15")
				return c
			}(),
			subtotal: dec("40"),
			want:     dec("15"),
		},
		{
			name: "scheduled coupon is not applicable",
			coupon: Coupon{
				Enabled: true, ValidFrom: now.Add(time.Hour), ValidUntil: future,
				Kind: KindPercentage, Value: dec("10"),
			},
			subtotal: dec("100"),
			wantErr:  ErrNotActive,
		},
		{
			name: "disabled coupon is not applicable",
			coupon: Coupon{
				Enabled: false, ValidFrom: past, ValidUntil: future,
				Kind: KindFixed, Value: dec("5"),
			},
			subtotal: dec("100"),
			wantErr:  ErrNotActive,
		},
		{
			name: "subtotal below min purchase",
			coupon: func() Coupon {
				c := active
				c.Kind = KindPercentage
				c.Value = dec("10")
				c.MinPurchase = decP("50")
				return c
			}(),
			subtotal: dec("49.99"),
			wantErr:  ErrMinPurchase,
		},
		{
			name: "usage limit exhausted",
			coupon: func() Coupon {
				c := active
				c.Kind = KindFixed
				c.Value = dec("5")
				c.UsageLimit = intP(3)
				c.UsageCount = 3
				return c
			}(),
			subtotal: dec("100"),
			wantErr:  ErrUsageLimitReached,
		},
		{
			name: "usage limit with redemptions remaining",
			coupon: func() Coupon {
				c := active
				c.Kind = KindFixed
				c.Value = dec("5")
				c.UsageLimit = intP(3)
				c.UsageCount = 2
				return c
			}(),
			subtotal: dec("100"),
			want:     dec("5"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDiscount(&tt.coupon, tt.subtotal, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
	assert.Equal(t, "SAVE10", NormalizeCode("SAVE10"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestValidateWrite(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	later := now.AddDate(0, 1, 0)

	valid := Coupon{
		Code:       "SAVE10",
		Kind:       KindPercentage,
		Value:      dec("10"),
		ValidFrom:  now,
		ValidUntil: later,
	}
	require.NoError(t, ValidateWrite(&valid))

	tests := []struct {
		name   string
		mutate func(*Coupon)
	}{
		{"empty code", func(c *Coupon) { c.Code = " " }},
		{"unknown kind", func(c *Coupon) { c.Kind = "bogo" }},
		{"negative value", func(c *Coupon) { c.Value = dec("-1") }},
		{"percentage above 100", func(c *Coupon) { c.Value = dec("101") }},
		{"negative min purchase", func(c *Coupon) { c.MinPurchase = decP("-5") }},
		{"negative max discount", func(c *Coupon) { c.MaxDiscount = decP("-5") }},
		{"inverted window", func(c *Coupon) { c.ValidFrom = later; c.ValidUntil = now }},
		{"negative usage limit", func(c *Coupon) { c.UsageLimit = intP(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, ValidateWrite(&c))
		})
	}
}

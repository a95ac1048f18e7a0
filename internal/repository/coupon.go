package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/domain/coupon"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	couponColumns = `code, kind, value, min_purchase, max_discount,
		valid_from, valid_until, enabled, usage_limit, usage_count,
		created_at, updated_at`

	insertCouponSQL = `INSERT INTO coupons
		(code, kind, value, min_purchase, max_discount, valid_from, valid_until, enabled, usage_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateCouponSQL = `UPDATE coupons SET kind = $2, value = $3, min_purchase = $4,
		max_discount = $5, valid_from = $6, valid_until = $7, enabled = $8,
		usage_limit = $9, updated_at = now()
		WHERE UPPER(code) = UPPER($1)
		AND ($9::int IS NULL OR $9::int >= usage_count)`

	deleteCouponSQL = `DELETE FROM coupons WHERE UPPER(code) = UPPER($1)`

	getCouponSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE UPPER(code) = UPPER($1)`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Create inserts a new coupon. Returns coupon.ErrCodeExists when the
// code is already taken (case-insensitive, enforced by the primary key
// on the uppercase-normalized code).
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	c.Code = coupon.NormalizeCode(c.Code)
	_, err := r.pool.Exec(ctx, insertCouponSQL,
		c.Code, string(c.Kind), c.Value, c.MinPurchase, c.MaxDiscount,
		c.ValidFrom, c.ValidUntil, c.Enabled, c.UsageLimit,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return coupon.ErrCodeExists
		}
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	return nil
}

// Update rewrites a coupon's rule fields. The code itself and the usage
// counter are immutable through this path, and the usage limit cannot be
// set below the redemptions already counted.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL,
		c.Code, string(c.Kind), c.Value, c.MinPurchase, c.MaxDiscount,
		c.ValidFrom, c.ValidUntil, c.Enabled, c.UsageLimit,
	)
	if err != nil {
		return fmt.Errorf("updating coupon %q: %w", c.Code, err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means either the code is unknown or the new limit
		// undercuts usage_count. Tell them apart with a lookup.
		if _, findErr := r.FindByCode(ctx, c.Code); findErr != nil {
			return findErr
		}
		return coupon.ErrLimitBelowUsage
	}
	return nil
}

// Delete removes a coupon permanently. There is no soft delete.
func (r *CouponRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, deleteCouponSQL, code)
	if err != nil {
		return fmt.Errorf("deleting coupon %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// FindByCode looks up a coupon by its code, case-insensitively.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// List returns coupons matching the filter with pagination. The status
// filter applies the same classification order as coupon.Classify:
// disabled, then past-window, then future-window, then active.
func (r *CouponRepository) List(ctx context.Context, params coupon.ListParams) ([]coupon.Coupon, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		conds = append(conds, "code ILIKE "+arg("%"+p.Search+"%"))
	}
	switch params.Status {
	case coupon.StatusActive:
		conds = append(conds, "enabled", "valid_from <= now()", "valid_until >= now()")
	case coupon.StatusInactive:
		conds = append(conds, "NOT enabled")
	case coupon.StatusExpired:
		conds = append(conds, "enabled", "valid_until < now()")
	case coupon.StatusScheduled:
		conds = append(conds, "enabled", "valid_until >= now()", "valid_from > now()")
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM coupons"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting coupons: %w", err)
	}

	sort := orderBy(map[string]string{
		"code":       "code",
		"value":      "value",
		"validUntil": "valid_until",
		"createdAt":  "created_at",
	}, p.SortBy, "created_at", p.Desc)

	query := "SELECT " + couponColumns + " FROM coupons" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing coupons: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing coupons: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c           coupon.Coupon
		kind        string
		minPurchase *decimal.Decimal
		maxDiscount *decimal.Decimal
		usageLimit  *int32
		validFrom   time.Time
		validUntil  time.Time
	)
	err := row.Scan(
		&c.Code, &kind, &c.Value, &minPurchase, &maxDiscount,
		&validFrom, &validUntil, &c.Enabled, &usageLimit, &c.UsageCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	c.Kind = coupon.Kind(kind)
	c.MinPurchase = minPurchase
	c.MaxDiscount = maxDiscount
	c.ValidFrom = validFrom
	c.ValidUntil = validUntil
	if usageLimit != nil {
		limit := int(*usageLimit)
		c.UsageLimit = &limit
	}
	return c, err
}

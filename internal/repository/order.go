package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/backoffice/internal/domain/coupon"
	"github.com/merchkit/backoffice/internal/domain/order"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	nextOrderSeqSQL = `UPDATE counters SET value = value + 1 WHERE name = 'orders' RETURNING value`

	insertOrderSQL = `INSERT INTO orders
		(id, order_number, customer_id, items, subtotal, tax, shipping, discount, total,
		 status, payment_status, payment_method, coupon_code, shipping_address, billing_address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	// The usage_limit guard makes over-redemption impossible: when the
	// counter has reached the limit no row matches and the whole order
	// transaction rolls back.
	redeemCouponSQL = `UPDATE coupons SET usage_count = usage_count + 1, updated_at = now()
		WHERE UPPER(code) = UPPER($1)
		  AND (usage_limit IS NULL OR usage_count < usage_limit)`

	couponExistsSQL = `SELECT EXISTS (SELECT 1 FROM coupons WHERE UPPER(code) = UPPER($1))`

	orderColumns = `id, order_number, customer_id, items, subtotal, tax, shipping,
		discount, total, status, payment_status, payment_method, coupon_code,
		shipping_address, billing_address, notes, created_at, updated_at`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	updatePaymentStatusSQL = `UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order in a single transaction: it draws the next
// order number from the atomic counter row, inserts the order, and, when
// a coupon is attached, increments the coupon usage counter under its
// usage-limit guard. Either everything commits or nothing does.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}
	billingJSON, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("marshaling billing address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int64
	if err := tx.QueryRow(ctx, nextOrderSeqSQL).Scan(&seq); err != nil {
		return fmt.Errorf("advancing order sequence: %w", err)
	}
	o.OrderNumber = order.FormatOrderNumber(seq)

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.OrderNumber, o.CustomerID, itemsJSON,
		o.Subtotal, o.Tax, o.Shipping, o.Discount, o.Total,
		string(o.Status), string(o.PaymentStatus), o.PaymentMethod,
		o.CouponCode, shippingJSON, billingJSON, o.Notes,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.OrderNumber, err)
	}

	if o.CouponCode != "" {
		tag, err := tx.Exec(ctx, redeemCouponSQL, o.CouponCode)
		if err != nil {
			return fmt.Errorf("redeeming coupon %q: %w", o.CouponCode, err)
		}
		if tag.RowsAffected() == 0 {
			// Zero rows covers both an exhausted coupon and one deleted
			// since checkout validated it.
			var exists bool
			err := tx.QueryRow(ctx, couponExistsSQL, o.CouponCode).Scan(&exists)
			if err != nil {
				return fmt.Errorf("checking coupon %q: %w", o.CouponCode, err)
			}
			if !exists {
				return coupon.ErrNotFound
			}
			return coupon.ErrUsageLimitReached
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.OrderNumber, err)
	}
	return nil
}

// Get returns a single order by its identifier.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// UpdateStatus persists a fulfilment status change. Legality of the
// transition is the service's concern.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// UpdatePaymentStatus persists a payment status change.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx, updatePaymentStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating order %q payment status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Delete removes an order. Not used in normal operation; orders are
// retained and moved to cancelled instead.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// List returns orders matching the filter with pagination. Search
// matches the order number.
func (r *OrderRepository) List(ctx context.Context, params order.ListParams) ([]order.Order, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		conds = append(conds, "order_number ILIKE "+arg("%"+p.Search+"%"))
	}
	if params.Status != "" {
		conds = append(conds, "status = "+arg(string(params.Status)))
	}
	if params.CustomerID != "" {
		conds = append(conds, "customer_id = "+arg(params.CustomerID))
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting orders: %w", err)
	}

	sort := orderBy(map[string]string{
		"orderNumber": "order_number",
		"total":       "total",
		"status":      "status",
		"createdAt":   "created_at",
	}, p.SortBy, "created_at", p.Desc)

	query := "SELECT " + orderColumns + " FROM orders" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing orders: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing orders: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o             order.Order
		status        string
		paymentStatus string
		itemsJSON     []byte
		shippingJSON  []byte
		billingJSON   []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &itemsJSON,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total,
		&status, &paymentStatus, &o.PaymentMethod, &o.CouponCode,
		&shippingJSON, &billingJSON, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	if err := json.Unmarshal(billingJSON, &o.BillingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling billing address: %w", err)
	}
	return o, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/backoffice/internal/domain/review"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	reviewColumns = `id, product_id, customer_id, rating, title, comment, approved, reply, created_at, updated_at`

	insertReviewSQL = `INSERT INTO reviews (id, product_id, customer_id, rating, title, comment, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	deleteReviewSQL = `DELETE FROM reviews WHERE id = $1`

	getReviewSQL = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	setReviewApprovedSQL = `UPDATE reviews SET approved = $2, updated_at = now() WHERE id = $1`

	setReviewReplySQL = `UPDATE reviews SET reply = $2, updated_at = now() WHERE id = $1`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	_, err := r.pool.Exec(ctx, insertReviewSQL,
		rv.ID, rv.ProductID, rv.CustomerID, rv.Rating, rv.Title, rv.Comment, rv.Approved,
	)
	if err != nil {
		return fmt.Errorf("creating review %q: %w", rv.ID, err)
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteReviewSQL, id)
	if err != nil {
		return fmt.Errorf("deleting review %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

// Get returns a single review by id.
func (r *ReviewRepository) Get(ctx context.Context, id string) (*review.Review, error) {
	rows, err := r.pool.Query(ctx, getReviewSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting review %q: %w", id, err)
	}
	rv, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, review.ErrNotFound
		}
		return nil, fmt.Errorf("getting review %q: %w", id, err)
	}
	return &rv, nil
}

// SetApproved flips the moderation flag.
func (r *ReviewRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	tag, err := r.pool.Exec(ctx, setReviewApprovedSQL, id, approved)
	if err != nil {
		return fmt.Errorf("approving review %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

// SetReply stores a staff reply on a review.
func (r *ReviewRepository) SetReply(ctx context.Context, id string, reply string) error {
	tag, err := r.pool.Exec(ctx, setReviewReplySQL, id, reply)
	if err != nil {
		return fmt.Errorf("replying to review %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

// List returns reviews matching the filter with pagination. Search
// matches title and comment.
func (r *ReviewRepository) List(ctx context.Context, params review.ListParams) ([]review.Review, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		pat := arg("%" + p.Search + "%")
		conds = append(conds, "(title ILIKE "+pat+" OR comment ILIKE "+pat+")")
	}
	if params.ProductID != "" {
		conds = append(conds, "product_id = "+arg(params.ProductID))
	}
	if params.Approved != nil {
		conds = append(conds, "approved = "+arg(*params.Approved))
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM reviews"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting reviews: %w", err)
	}

	sort := orderBy(map[string]string{
		"rating":    "rating",
		"createdAt": "created_at",
	}, p.SortBy, "created_at", p.Desc)

	query := "SELECT " + reviewColumns + " FROM reviews" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing reviews: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing reviews: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rv review.Review
	err := row.Scan(
		&rv.ID, &rv.ProductID, &rv.CustomerID, &rv.Rating, &rv.Title,
		&rv.Comment, &rv.Approved, &rv.Reply, &rv.CreatedAt, &rv.UpdatedAt,
	)
	return rv, err
}

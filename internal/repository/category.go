package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/backoffice/internal/domain/catalog"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	categoryColumns = `id, name, slug, description, image, parent_id, active, created_at, updated_at`

	insertCategorySQL = `INSERT INTO categories
		(id, name, slug, description, image, parent_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateCategorySQL = `UPDATE categories SET name = $2, slug = $3, description = $4,
		image = $5, parent_id = $6, active = $7, updated_at = now()
		WHERE id = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`

	getCategorySQL = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category. Slug collisions surface as
// catalog.ErrSlugExists.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	_, err := r.pool.Exec(ctx, insertCategorySQL,
		c.ID, c.Name, c.Slug, c.Description, c.Image, nullable(c.ParentID), c.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrSlugExists
		}
		return fmt.Errorf("creating category %q: %w", c.ID, err)
	}
	return nil
}

// Update rewrites a category.
func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL,
		c.ID, c.Name, c.Slug, c.Description, c.Image, nullable(c.ParentID), c.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrSlugExists
		}
		return fmt.Errorf("updating category %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// Get returns a single category by its identifier.
func (r *CategoryRepository) Get(ctx context.Context, id string) (*catalog.Category, error) {
	rows, err := r.pool.Query(ctx, getCategorySQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}
	return &c, nil
}

// List returns categories matching the filter with pagination. Search
// matches the name.
func (r *CategoryRepository) List(ctx context.Context, params listing.Params) ([]catalog.Category, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		conds = append(conds, "name ILIKE "+arg("%"+p.Search+"%"))
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM categories"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting categories: %w", err)
	}

	sort := orderBy(map[string]string{
		"name":      "name",
		"createdAt": "created_at",
	}, p.SortBy, "name", p.Desc)

	query := "SELECT " + categoryColumns + " FROM categories" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing categories: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing categories: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var (
		c        catalog.Category
		parentID *string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &parentID,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if parentID != nil {
		c.ParentID = *parentID
	}
	return c, err
}

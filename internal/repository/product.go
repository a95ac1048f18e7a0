package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/domain/catalog"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	productColumns = `id, name, slug, description, price, compare_price, images,
		category_id, inventory, sku, featured, active, created_at, updated_at`

	insertProductSQL = `INSERT INTO products
		(id, name, slug, description, price, compare_price, images, category_id, inventory, sku, featured, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	updateProductSQL = `UPDATE products SET name = $2, slug = $3, description = $4,
		price = $5, compare_price = $6, images = $7, category_id = $8, inventory = $9,
		sku = $10, featured = $11, active = $12, updated_at = now()
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	getProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
)

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product. Slug and SKU collisions surface as
// catalog.ErrSlugExists / catalog.ErrSKUExists.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshaling product images: %w", err)
	}
	_, err = r.pool.Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.ComparePrice,
		images, nullable(p.CategoryID), p.Inventory, p.SKU, p.Featured, p.Active,
	)
	if err != nil {
		if conflictErr := productConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update rewrites a product.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshaling product images: %w", err)
	}
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.ComparePrice,
		images, nullable(p.CategoryID), p.Inventory, p.SKU, p.Featured, p.Active,
	)
	if err != nil {
		if conflictErr := productConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// Get returns a single product by its identifier.
func (r *ProductRepository) Get(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs in one query.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// List returns products matching the filter with pagination. Search
// matches name, description and SKU.
func (r *ProductRepository) List(ctx context.Context, params catalog.ProductListParams) ([]catalog.Product, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		pat := arg("%" + p.Search + "%")
		conds = append(conds, "(name ILIKE "+pat+" OR description ILIKE "+pat+" OR sku ILIKE "+pat+")")
	}
	if params.CategoryID != "" {
		conds = append(conds, "category_id = "+arg(params.CategoryID))
	}
	if params.Featured != nil {
		conds = append(conds, "featured = "+arg(*params.Featured))
	}
	if params.Active != nil {
		conds = append(conds, "active = "+arg(*params.Active))
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting products: %w", err)
	}

	sort := orderBy(map[string]string{
		"name":      "name",
		"price":     "price",
		"inventory": "inventory",
		"createdAt": "created_at",
	}, p.SortBy, "created_at", p.Desc)

	query := "SELECT " + productColumns + " FROM products" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing products: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing products: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p            catalog.Product
		comparePrice *decimal.Decimal
		imagesJSON   []byte
		categoryID   *string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &comparePrice,
		&imagesJSON, &categoryID, &p.Inventory, &p.SKU, &p.Featured, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	p.ComparePrice = comparePrice
	if categoryID != nil {
		p.CategoryID = *categoryID
	}
	if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
		return p, fmt.Errorf("unmarshaling product images: %w", err)
	}
	return p, nil
}

// productConflict maps a unique violation to the colliding-column
// sentinel, or returns nil for other errors.
func productConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if pgErr.ConstraintName == "products_sku_key" {
		return catalog.ErrSKUExists
	}
	return catalog.ErrSlugExists
}

// nullable maps an empty string to NULL for optional foreign keys.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

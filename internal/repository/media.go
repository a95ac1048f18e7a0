package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/backoffice/internal/domain/media"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	mediaColumns = `id, url, filename, content_type, size, width, height, created_at`

	insertMediaSQL = `INSERT INTO media (id, url, filename, content_type, size, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	deleteMediaSQL = `DELETE FROM media WHERE id = $1`

	getMediaSQL = `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`
)

var _ media.Repository = (*MediaRepository)(nil)

// MediaRepository implements media.Repository backed by PostgreSQL.
type MediaRepository struct {
	pool *pgxpool.Pool
}

// NewMediaRepository returns a MediaRepository that uses the given pool.
func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

// Create inserts a new media record.
func (r *MediaRepository) Create(ctx context.Context, m *media.Media) error {
	_, err := r.pool.Exec(ctx, insertMediaSQL,
		m.ID, m.URL, m.Filename, m.ContentType, m.Size, m.Width, m.Height,
	)
	if err != nil {
		return fmt.Errorf("creating media %q: %w", m.ID, err)
	}
	return nil
}

// Delete removes a media record.
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteMediaSQL, id)
	if err != nil {
		return fmt.Errorf("deleting media %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrNotFound
	}
	return nil
}

// Get returns a single media record by id.
func (r *MediaRepository) Get(ctx context.Context, id string) (*media.Media, error) {
	rows, err := r.pool.Query(ctx, getMediaSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting media %q: %w", id, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMedia)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrNotFound
		}
		return nil, fmt.Errorf("getting media %q: %w", id, err)
	}
	return &m, nil
}

// List returns media records with pagination. Search matches the filename.
func (r *MediaRepository) List(ctx context.Context, params listing.Params) ([]media.Media, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		conds = append(conds, "filename ILIKE "+arg("%"+p.Search+"%"))
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM media"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting media: %w", err)
	}

	sort := orderBy(map[string]string{
		"filename":  "filename",
		"size":      "size",
		"createdAt": "created_at",
	}, p.SortBy, "created_at", p.Desc)

	query := "SELECT " + mediaColumns + " FROM media" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing media: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanMedia)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing media: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanMedia(row pgx.CollectableRow) (media.Media, error) {
	var m media.Media
	err := row.Scan(
		&m.ID, &m.URL, &m.Filename, &m.ContentType, &m.Size,
		&m.Width, &m.Height, &m.CreatedAt,
	)
	return m, err
}

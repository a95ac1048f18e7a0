package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/backoffice/internal/domain/contact"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	contactColumns = `id, name, email, subject, message, status, important, reply, created_at, updated_at`

	insertContactSQL = `INSERT INTO contacts (id, name, email, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	deleteContactSQL = `DELETE FROM contacts WHERE id = $1`

	getContactSQL = `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	setContactStatusSQL = `UPDATE contacts SET status = $2, updated_at = now() WHERE id = $1`

	setContactImportantSQL = `UPDATE contacts SET important = $2, updated_at = now() WHERE id = $1`

	// Replying also advances the workflow status.
	setContactReplySQL = `UPDATE contacts SET reply = $2, status = 'replied', updated_at = now() WHERE id = $1`
)

var _ contact.Repository = (*ContactRepository)(nil)

// ContactRepository implements contact.Repository backed by PostgreSQL.
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a ContactRepository that uses the given pool.
func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// Create inserts a new contact message.
func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	_, err := r.pool.Exec(ctx, insertContactSQL,
		c.ID, c.Name, c.Email, c.Subject, c.Message, string(c.Status),
	)
	if err != nil {
		return fmt.Errorf("creating contact %q: %w", c.ID, err)
	}
	return nil
}

// Delete removes a contact message.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteContactSQL, id)
	if err != nil {
		return fmt.Errorf("deleting contact %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// Get returns a single contact message by id.
func (r *ContactRepository) Get(ctx context.Context, id string) (*contact.Contact, error) {
	rows, err := r.pool.Query(ctx, getContactSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting contact %q: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanContact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contact.ErrNotFound
		}
		return nil, fmt.Errorf("getting contact %q: %w", id, err)
	}
	return &c, nil
}

// SetStatus updates the handling state.
func (r *ContactRepository) SetStatus(ctx context.Context, id string, status contact.Status) error {
	tag, err := r.pool.Exec(ctx, setContactStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating contact %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// SetImportant flips the important flag.
func (r *ContactRepository) SetImportant(ctx context.Context, id string, important bool) error {
	tag, err := r.pool.Exec(ctx, setContactImportantSQL, id, important)
	if err != nil {
		return fmt.Errorf("flagging contact %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// SetReply stores the staff reply and marks the message replied.
func (r *ContactRepository) SetReply(ctx context.Context, id string, reply string) error {
	tag, err := r.pool.Exec(ctx, setContactReplySQL, id, reply)
	if err != nil {
		return fmt.Errorf("replying to contact %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// List returns contact messages matching the filter with pagination.
// Search matches name, email and subject.
func (r *ContactRepository) List(ctx context.Context, params contact.ListParams) ([]contact.Contact, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		pat := arg("%" + p.Search + "%")
		conds = append(conds, "(name ILIKE "+pat+" OR email ILIKE "+pat+" OR subject ILIKE "+pat+")")
	}
	if params.Status != "" {
		conds = append(conds, "status = "+arg(string(params.Status)))
	}
	if params.Important != nil {
		conds = append(conds, "important = "+arg(*params.Important))
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM contacts"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting contacts: %w", err)
	}

	sort := orderBy(map[string]string{
		"name":      "name",
		"status":    "status",
		"createdAt": "created_at",
	}, p.SortBy, "created_at", p.Desc)

	query := "SELECT " + contactColumns + " FROM contacts" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing contacts: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanContact)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing contacts: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanContact(row pgx.CollectableRow) (contact.Contact, error) {
	var (
		c      contact.Contact
		status string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &status,
		&c.Important, &c.Reply, &c.CreatedAt, &c.UpdatedAt,
	)
	c.Status = contact.Status(status)
	return c, err
}

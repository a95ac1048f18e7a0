package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/merchkit/backoffice/internal/domain/user"
	"github.com/merchkit/backoffice/internal/listing"
)

const (
	userColumns = `id, name, email, password, role, active, avatar, last_login, created_at, updated_at`

	insertUserSQL = `INSERT INTO users (id, name, email, password, role, active, avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updateUserSQL = `UPDATE users SET name = $2, email = $3, password = $4, role = $5,
		active = $6, avatar = $7, updated_at = now()
		WHERE id = $1`

	deleteUserSQL = `DELETE FROM users WHERE id = $1`

	getUserSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	setLastLoginSQL = `UPDATE users SET last_login = $2 WHERE id = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user. Email collisions surface as
// user.ErrEmailExists (the unique index is on the lowercased email).
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.pool.Exec(ctx, insertUserSQL,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Active, u.Avatar,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailExists
		}
		return fmt.Errorf("creating user %q: %w", u.ID, err)
	}
	return nil
}

// Update rewrites a user record.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.pool.Exec(ctx, updateUserSQL,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Active, u.Avatar,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailExists
		}
		return fmt.Errorf("updating user %q: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteUserSQL, id)
	if err != nil {
		return fmt.Errorf("deleting user %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Get returns a single user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

// GetByEmail returns the user with the given email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &u, nil
}

// SetLastLogin records a successful login time.
func (r *UserRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, setLastLoginSQL, id, at)
	if err != nil {
		return fmt.Errorf("setting last login for user %q: %w", id, err)
	}
	return nil
}

// List returns users matching the filter with pagination. Search matches
// name and email.
func (r *UserRepository) List(ctx context.Context, params user.ListParams) ([]user.User, listing.Pagination, error) {
	p := params.Normalize()

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Search != "" {
		pat := arg("%" + p.Search + "%")
		conds = append(conds, "(name ILIKE "+pat+" OR email ILIKE "+pat+")")
	}
	if params.Role != "" {
		conds = append(conds, "role = "+arg(string(params.Role)))
	}

	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("counting users: %w", err)
	}

	sort := orderBy(map[string]string{
		"name":      "name",
		"email":     "email",
		"createdAt": "created_at",
	}, p.SortBy, "created_at", p.Desc)

	query := "SELECT " + userColumns + " FROM users" + where + sort +
		" LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing users: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, listing.Pagination{}, fmt.Errorf("listing users: %w", err)
	}

	return items, listing.NewPagination(total, p), nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u    user.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Active,
		&u.Avatar, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	u.Role = user.Role(role)
	return u, err
}

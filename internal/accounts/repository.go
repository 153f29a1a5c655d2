package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newsdesk-cms/newsdesk/internal/platform/db"
	"github.com/newsdesk-cms/newsdesk/internal/roles"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	pool  *pgxpool.Pool
	roles *roles.Repository
}

// NewRepository constructs a repository. The roles repository populates
// each account's role and permissions on read.
func NewRepository(pool *pgxpool.Pool, roleRepo *roles.Repository) *Repository {
	return &Repository{pool: pool, roles: roleRepo}
}

const accountColumns = `id, full_name, email, password_hash, phone, role_id, status, last_login, deleted, deleted_at, created_at, updated_at`

func scanAccountRow(row pgx.Row) (*Account, int64, error) {
	var (
		a         Account
		roleID    int64
		lastLogin pgtype.Timestamptz
	)
	err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.Phone, &roleID, &a.Status, &lastLogin, &a.Deleted, &a.DeletedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, shared.ErrNotFound
		}
		return nil, 0, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return &a, roleID, nil
}

// populateRole attaches the role (with its live permissions) to the
// account. A soft-deleted role leaves Role nil; the account then carries
// no grants, which the gate treats as "no permissions assigned".
func (r *Repository) populateRole(ctx context.Context, a *Account, roleID int64) error {
	role, err := r.roles.Get(ctx, roleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	a.Role = role
	return nil
}

// Get fetches a non-deleted account by id with role and permissions populated.
func (r *Repository) Get(ctx context.Context, id int64) (*Account, error) {
	a, roleID, err := scanAccountRow(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND NOT deleted`, id))
	if err != nil {
		return nil, err
	}
	if err := r.populateRole(ctx, a, roleID); err != nil {
		return nil, err
	}
	return a, nil
}

// FindByEmail fetches a non-deleted account by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	a, roleID, err := scanAccountRow(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1 AND NOT deleted`, email))
	if err != nil {
		return nil, err
	}
	if err := r.populateRole(ctx, a, roleID); err != nil {
		return nil, err
	}
	return a, nil
}

// ListFilter narrows the account listing.
type ListFilter struct {
	Search string
	RoleID int64
	Page   int
	Limit  int
}

// List returns accounts matching the filter plus the total match count.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Account, int, error) {
	where := `NOT deleted`
	args := []any{}
	if f.Search != "" {
		args = append(args, f.Search)
		where += fmt.Sprintf(` AND (full_name ILIKE '%%' || $%d || '%%' OR email ILIKE '%%' || $%d || '%%')`, len(args), len(args))
	}
	if f.RoleID != 0 {
		args = append(args, f.RoleID)
		where += fmt.Sprintf(` AND role_id = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(f.Page, f.Limit, total)
	args = append(args, p.Limit, p.Offset())
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM accounts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			accountColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Account
	var roleIDs []int64
	for rows.Next() {
		a, roleID, err := scanAccountRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
		roleIDs = append(roleIDs, roleID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i, a := range out {
		if err := r.populateRole(ctx, a, roleIDs[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// Create inserts an account. The partial unique index on email is the
// real uniqueness enforcement under concurrent registration.
func (r *Repository) Create(ctx context.Context, a *Account, roleID int64) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (full_name, email, password_hash, phone, role_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		a.FullName, a.Email, a.PasswordHash, a.Phone, roleID, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Update persists profile fields, role, and status.
func (r *Repository) Update(ctx context.Context, a *Account, roleID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET full_name = $2, email = $3, phone = $4, role_id = $5, status = $6, updated_at = now()
		 WHERE id = $1 AND NOT deleted`,
		a.ID, a.FullName, a.Email, a.Phone, roleID, a.Status,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus changes only the status field.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET status = $2, updated_at = now() WHERE id = $1 AND NOT deleted`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// StampLastLogin records a successful login.
func (r *Repository) StampLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE accounts SET last_login = $2 WHERE id = $1`, id, at)
	return err
}

// SoftDelete marks the account deleted, freeing its email for reuse
// under the partial unique index.
func (r *Repository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET deleted = TRUE, deleted_at = $2, updated_at = now() WHERE id = $1 AND NOT deleted`,
		id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus returns account totals grouped by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM accounts WHERE NOT deleted GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var c int
		if err := rows.Scan(&status, &c); err != nil {
			return nil, err
		}
		counts[status] = c
	}
	return counts, rows.Err()
}

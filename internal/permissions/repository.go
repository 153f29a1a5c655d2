package permissions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newsdesk-cms/newsdesk/internal/platform/db"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for permissions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const permissionColumns = `id, name, description, resource, actions, deleted, deleted_at, created_at, updated_at`

func scanPermission(row pgx.Row) (Permission, error) {
	var p Permission
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Actions, &p.Deleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns all non-deleted permissions ordered by resource then name.
func (r *Repository) List(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE NOT deleted ORDER BY resource, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Get fetches a non-deleted permission by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Permission, error) {
	p, err := scanPermission(r.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1 AND NOT deleted`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByName fetches a non-deleted permission by its unique name.
func (r *Repository) FindByName(ctx context.Context, name string) (*Permission, error) {
	p, err := scanPermission(r.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE name = $1 AND NOT deleted`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ResolveIDs returns the subset of ids that resolve to non-deleted permissions.
func (r *Repository) ResolveIDs(ctx context.Context, ids []int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = ANY($1) AND NOT deleted`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Create inserts a permission. The partial unique index on name is the
// real uniqueness enforcement; 23505 surfaces as ErrConflict.
func (r *Repository) Create(ctx context.Context, p *Permission) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (name, description, resource, actions) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Resource, p.Actions,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapUniqueViolation(err)
}

// Update persists name, description, resource, and actions.
func (r *Repository) Update(ctx context.Context, p *Permission) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE permissions SET name = $2, description = $3, resource = $4, actions = $5, updated_at = now()
		 WHERE id = $1 AND NOT deleted`,
		p.ID, p.Name, p.Description, p.Resource, p.Actions,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SoftDelete marks the permission deleted; rows are never removed so
// roles that still reference them stay intact.
func (r *Repository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE permissions SET deleted = TRUE, deleted_at = $2, updated_at = now() WHERE id = $1 AND NOT deleted`,
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

// ListResources returns the distinct resource tags among non-deleted permissions.
func (r *Repository) ListResources(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT resource FROM permissions WHERE NOT deleted ORDER BY resource`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var resources []string
	for rows.Next() {
		var res string
		if err := rows.Scan(&res); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func mapUniqueViolation(err error) error {
	if err != nil && db.IsUniqueViolation(err) {
		return shared.ErrConflict
	}
	return err
}

// Count returns the number of non-deleted permissions.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var c int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM permissions WHERE NOT deleted`).Scan(&c)
	return c, err
}

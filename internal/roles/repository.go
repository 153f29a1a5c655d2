package roles

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newsdesk-cms/newsdesk/internal/permissions"
	"github.com/newsdesk-cms/newsdesk/internal/platform/db"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all non-deleted roles with their permissions populated,
// newest first.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, is_default, deleted, deleted_at, created_at, updated_at
		 FROM roles WHERE NOT deleted ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Title, &role.Description, &role.IsDefault, &role.Deleted, &role.DeletedAt, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		perms, err := r.rolePermissions(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}
	return roles, nil
}

// Get fetches a non-deleted role by id with permissions populated.
func (r *Repository) Get(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, is_default, deleted, deleted_at, created_at, updated_at
		 FROM roles WHERE id = $1 AND NOT deleted`, id).
		Scan(&role.ID, &role.Title, &role.Description, &role.IsDefault, &role.Deleted, &role.DeletedAt, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	perms, err := r.rolePermissions(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

// FindByTitle fetches a non-deleted role by its unique title.
func (r *Repository) FindByTitle(ctx context.Context, title string) (*Role, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM roles WHERE title = $1 AND NOT deleted`, title).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

// Create inserts a role and attaches its permission references in order.
func (r *Repository) Create(ctx context.Context, role *Role, permissionIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO roles (title, description, is_default) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		role.Title, role.Description, role.IsDefault,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrConflict
		}
		return err
	}
	if err := attachPermissions(ctx, tx, role.ID, permissionIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update persists title/description and replaces the permission list when
// permissionIDs is non-nil.
func (r *Repository) Update(ctx context.Context, role *Role, permissionIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE roles SET title = $2, description = $3, updated_at = now() WHERE id = $1 AND NOT deleted`,
		role.ID, role.Title, role.Description,
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
	if permissionIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
			return err
		}
		if err := attachPermissions(ctx, tx, role.ID, permissionIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SoftDelete marks the role deleted. Accounts referencing it keep the
// reference for historical reads.
func (r *Repository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE roles SET deleted = TRUE, deleted_at = $2, updated_at = now() WHERE id = $1 AND NOT deleted`,
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

func attachPermissions(ctx context.Context, tx pgx.Tx, roleID int64, permissionIDs []int64) error {
	for pos, pid := range permissionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_id, permission_id, position) VALUES ($1, $2, $3)
			 ON CONFLICT (role_id, permission_id) DO NOTHING`,
			roleID, pid, pos,
		); err != nil {
			return err
		}
	}
	return nil
}

// rolePermissions loads the role's non-deleted permissions in assignment order.
func (r *Repository) rolePermissions(ctx context.Context, roleID int64) ([]permissions.Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.description, p.resource, p.actions, p.deleted, p.deleted_at, p.created_at, p.updated_at
		 FROM role_permissions rp
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE rp.role_id = $1 AND NOT p.deleted
		 ORDER BY rp.position`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []permissions.Permission
	for rows.Next() {
		var p permissions.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Actions, &p.Deleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Count returns the number of non-deleted roles.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var c int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM roles WHERE NOT deleted`).Scan(&c)
	return c, err
}

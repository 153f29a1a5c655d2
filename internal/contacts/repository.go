package contacts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for contact messages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a submission.
func (r *Repository) Create(ctx context.Context, m *Message) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contacts (name, email, phone, subject, body) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.Name, m.Email, m.Phone, m.Subject, m.Body,
	).Scan(&m.ID, &m.CreatedAt)
}

// List returns all submissions, unread first, newest first.
func (r *Repository) List(ctx context.Context) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, phone, subject, body, read, created_at FROM contacts ORDER BY read, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags a submission as handled.
func (r *Repository) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contacts SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a submission. Contact messages carry no references, so
// unlike the identity/role/permission records they are hard-deleted.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountUnread returns the number of unhandled submissions.
func (r *Repository) CountUnread(ctx context.Context) (int, error) {
	var c int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contacts WHERE NOT read`).Scan(&c)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	return c, nil
}

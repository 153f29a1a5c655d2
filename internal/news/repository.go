package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newsdesk-cms/newsdesk/internal/platform/db"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for articles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const articleColumns = `id, title, slug, content_html, excerpt, author, thumbnail, category, status, publish_at, featured, views, deleted, deleted_at, created_at, updated_at`

func scanArticle(row pgx.Row) (*Article, error) {
	var (
		a         Article
		publishAt pgtype.Timestamptz
	)
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.ContentHTML, &a.Excerpt, &a.Author, &a.Thumbnail, &a.Category, &a.Status, &publishAt, &a.Featured, &a.Views, &a.Deleted, &a.DeletedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if publishAt.Valid {
		t := publishAt.Time
		a.PublishAt = &t
	}
	return &a, nil
}

// ListFilter narrows the admin article listing.
type ListFilter struct {
	Status   string
	Search   string
	Category string
	Page     int
	Limit    int
}

// List returns articles matching the filter plus the total match count,
// newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Article, int, error) {
	where := `NOT deleted`
	args := []any{}
	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.Category != "" && f.Category != "all" {
		args = append(args, f.Category)
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, f.Search)
		where += fmt.Sprintf(` AND (title ILIKE '%%' || $%d || '%%' OR author ILIKE '%%' || $%d || '%%')`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM news WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(f.Page, f.Limit, total)
	args = append(args, p.Limit, p.Offset())
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM news WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			articleColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// ListPublished returns published articles for the public site.
func (r *Repository) ListPublished(ctx context.Context, category string, page, limit int) ([]*Article, int, error) {
	return r.List(ctx, ListFilter{Status: StatusPublished, Category: category, Page: page, Limit: limit})
}

// Get fetches a non-deleted article by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Article, error) {
	return scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM news WHERE id = $1 AND NOT deleted`, id))
}

// FindBySlug fetches a published article by slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*Article, error) {
	return scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM news WHERE slug = $1 AND status = 'published' AND NOT deleted`, slug))
}

// Create inserts an article.
func (r *Repository) Create(ctx context.Context, a *Article) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO news (title, slug, content_html, excerpt, author, thumbnail, category, status, publish_at, featured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at, updated_at`,
		a.Title, a.Slug, a.ContentHTML, a.Excerpt, a.Author, a.Thumbnail, a.Category, a.Status, a.PublishAt, a.Featured,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil && db.IsUniqueViolation(err) {
		return shared.ErrConflict
	}
	return err
}

// Update persists all mutable article fields.
func (r *Repository) Update(ctx context.Context, a *Article) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE news SET title = $2, slug = $3, content_html = $4, excerpt = $5, author = $6, thumbnail = $7,
		 category = $8, status = $9, publish_at = $10, featured = $11, updated_at = now()
		 WHERE id = $1 AND NOT deleted`,
		a.ID, a.Title, a.Slug, a.ContentHTML, a.Excerpt, a.Author, a.Thumbnail, a.Category, a.Status, a.PublishAt, a.Featured,
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

// SoftDelete marks the article deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE news SET deleted = TRUE, deleted_at = $2, updated_at = now() WHERE id = $1 AND NOT deleted`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the public view counter.
func (r *Repository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE news SET views = views + 1 WHERE id = $1`, id)
	return err
}

// PublishDue flips scheduled articles whose publish time has passed to
// published, returning how many changed.
func (r *Repository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE news SET status = 'published', updated_at = now() WHERE status = 'scheduled' AND publish_at <= $1 AND NOT deleted`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountByStatus returns article totals grouped by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM news WHERE NOT deleted GROUP BY status`)
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

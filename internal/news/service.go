package news

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// RepositoryPort defines data access methods for articles.
type RepositoryPort interface {
	List(ctx context.Context, f ListFilter) ([]*Article, int, error)
	ListPublished(ctx context.Context, category string, page, limit int) ([]*Article, int, error)
	Get(ctx context.Context, id int64) (*Article, error)
	FindBySlug(ctx context.Context, slug string) (*Article, error)
	Create(ctx context.Context, a *Article) error
	Update(ctx context.Context, a *Article) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	IncrementViews(ctx context.Context, id int64) error
	PublishDue(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// Service handles article business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns the admin listing with pagination metadata.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Article, shared.Pagination, error) {
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(f.Page, f.Limit, total), nil
}

// ListPublished returns the public listing of published articles.
func (s *Service) ListPublished(ctx context.Context, category string, page, limit int) ([]*Article, shared.Pagination, error) {
	list, total, err := s.repo.ListPublished(ctx, category, page, limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, limit, total), nil
}

// Get returns a single article for admin views.
func (s *Service) Get(ctx context.Context, id int64) (*Article, error) {
	return s.repo.Get(ctx, id)
}

// Read returns a published article by slug and counts the view.
func (s *Service) Read(ctx context.Context, slug string) (*Article, error) {
	a, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, a.ID); err != nil {
		return nil, err
	}
	a.Views++
	return a, nil
}

// Input carries the writable article fields.
type Input struct {
	Title       string
	ContentHTML string
	Excerpt     string
	Author      string
	Thumbnail   string
	Category    string
	Status      string
	PublishAt   *time.Time
	Featured    bool
}

func (in *Input) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if in.Title == "" || in.ContentHTML == "" || in.Author == "" {
		return shared.Wrap(shared.ErrValidation, "title, contentHtml, and author are required")
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if !ValidStatus(in.Status) {
		return shared.Wrap(shared.ErrValidation, "invalid status")
	}
	if in.Status == StatusScheduled && in.PublishAt == nil {
		return shared.Wrap(shared.ErrValidation, "publishAt is required for scheduled articles")
	}
	if in.Category == "" {
		in.Category = "all"
	}
	return nil
}

// Create inserts a new article. The slug derives from the title; on a
// slug collision a short random suffix disambiguates.
func (s *Service) Create(ctx context.Context, in Input) (*Article, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	a := &Article{
		Title:       in.Title,
		Slug:        Slugify(in.Title),
		ContentHTML: in.ContentHTML,
		Excerpt:     in.Excerpt,
		Author:      in.Author,
		Thumbnail:   in.Thumbnail,
		Category:    in.Category,
		Status:      in.Status,
		PublishAt:   in.PublishAt,
		Featured:    in.Featured,
	}
	err := s.repo.Create(ctx, a)
	if errors.Is(err, shared.ErrConflict) {
		a.Slug = a.Slug + "-" + uuid.NewString()[:8]
		err = s.repo.Create(ctx, a)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces an article's content. An empty Thumbnail keeps the
// current one.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Article, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != a.Title {
		a.Slug = Slugify(in.Title)
	}
	a.Title = in.Title
	a.ContentHTML = in.ContentHTML
	a.Excerpt = in.Excerpt
	a.Author = in.Author
	if in.Thumbnail != "" {
		a.Thumbnail = in.Thumbnail
	}
	a.Category = in.Category
	a.Status = in.Status
	a.PublishAt = in.PublishAt
	a.Featured = in.Featured

	err = s.repo.Update(ctx, a)
	if errors.Is(err, shared.ErrConflict) {
		a.Slug = a.Slug + "-" + uuid.NewString()[:8]
		err = s.repo.Update(ctx, a)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete soft-deletes an article.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id, time.Now().UTC())
}

// PublishDue flips due scheduled articles to published.
func (s *Service) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.PublishDue(ctx, now)
}

// CountByStatus exposes article totals for the dashboard.
func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

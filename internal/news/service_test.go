package news

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockRepository struct {
	byID   map[int64]*Article
	bySlug map[string]int64
	nextID int64

	published int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: make(map[int64]*Article), bySlug: make(map[string]int64), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, f ListFilter) ([]*Article, int, error) {
	var out []*Article
	for _, a := range m.byID {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepository) ListPublished(ctx context.Context, category string, page, limit int) ([]*Article, int, error) {
	var out []*Article
	for _, a := range m.byID {
		if a.Status != StatusPublished {
			continue
		}
		if category != "" && category != "all" && a.Category != category {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Article, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepository) FindBySlug(ctx context.Context, slug string) (*Article, error) {
	id, ok := m.bySlug[slug]
	if !ok {
		return nil, shared.ErrNotFound
	}
	a := m.byID[id]
	if a.Status != StatusPublished {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepository) Create(ctx context.Context, a *Article) error {
	if _, taken := m.bySlug[a.Slug]; taken {
		return shared.ErrConflict
	}
	a.ID = m.nextID
	m.nextID++
	cp := *a
	m.byID[a.ID] = &cp
	m.bySlug[a.Slug] = a.ID
	return nil
}

func (m *mockRepository) Update(ctx context.Context, a *Article) error {
	old, ok := m.byID[a.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if id, taken := m.bySlug[a.Slug]; taken && id != a.ID {
		return shared.ErrConflict
	}
	delete(m.bySlug, old.Slug)
	cp := *a
	m.byID[a.ID] = &cp
	m.bySlug[a.Slug] = a.ID
	return nil
}

func (m *mockRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	a, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.bySlug, a.Slug)
	delete(m.byID, id)
	return nil
}

func (m *mockRepository) IncrementViews(ctx context.Context, id int64) error {
	a, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.Views++
	return nil
}

func (m *mockRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, a := range m.byID {
		if a.Status == StatusScheduled && a.PublishAt != nil && !a.PublishAt.After(now) {
			a.Status = StatusPublished
			n++
		}
	}
	m.published += n
	return n, nil
}

func (m *mockRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range m.byID {
		out[a.Status]++
	}
	return out, nil
}

func draftInput(title string) Input {
	return Input{
		Title:       title,
		ContentHTML: "<p>body</p>",
		Author:      "Desk",
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateArticleSlug(t *testing.T) {
	svc := NewService(newMockRepository())

	a, err := svc.Create(context.Background(), draftInput("Tin tức buổi sáng"))
	require.NoError(t, err)
	assert.Equal(t, "tin-tuc-buoi-sang", a.Slug)
	assert.Equal(t, StatusDraft, a.Status)
	assert.Equal(t, "all", a.Category)
}

func TestCreateArticleSlugCollision(t *testing.T) {
	svc := NewService(newMockRepository())

	first, err := svc.Create(context.Background(), draftInput("Same Title"))
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), draftInput("Same Title"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "same-title-"))
}

func TestCreateScheduledRequiresPublishAt(t *testing.T) {
	svc := NewService(newMockRepository())

	in := draftInput("Planned")
	in.Status = StatusScheduled
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "publishAt is required for scheduled articles", err.Error())

	at := time.Now().Add(time.Hour)
	in.PublishAt = &at
	a, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, a.Status)
}

func TestCreateArticleMissingFields(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Create(context.Background(), Input{Title: "No body"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestReadCountsView(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	in := draftInput("Published Piece")
	in.Status = StatusPublished
	a, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	got, err := svc.Read(context.Background(), a.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
	assert.Equal(t, int64(1), repo.byID[a.ID].Views)
}

func TestReadDraftInvisible(t *testing.T) {
	svc := NewService(newMockRepository())

	a, err := svc.Create(context.Background(), draftInput("Still Drafting"))
	require.NoError(t, err)

	_, err = svc.Read(context.Background(), a.Slug)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateReslugsOnTitleChange(t *testing.T) {
	svc := NewService(newMockRepository())
	a, err := svc.Create(context.Background(), draftInput("Old Title"))
	require.NoError(t, err)

	in := draftInput("New Title")
	in.Thumbnail = ""
	updated, err := svc.Update(context.Background(), a.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "new-title", updated.Slug)
}

func TestUpdateKeepsThumbnailWhenEmpty(t *testing.T) {
	svc := NewService(newMockRepository())
	in := draftInput("With Image")
	in.Thumbnail = "/uploads/abc.jpg"
	a, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), a.ID, draftInput("With Image"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.jpg", updated.Thumbnail)
}

func TestPublishDue(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	now := time.Now().UTC()

	due := draftInput("Due Piece")
	due.Status = StatusScheduled
	past := now.Add(-time.Minute)
	due.PublishAt = &past
	_, err := svc.Create(context.Background(), due)
	require.NoError(t, err)

	future := draftInput("Future Piece")
	future.Status = StatusScheduled
	later := now.Add(time.Hour)
	future.PublishAt = &later
	_, err = svc.Create(context.Background(), future)
	require.NoError(t, err)

	n, err := svc.PublishDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[StatusPublished])
	assert.Equal(t, 1, counts[StatusScheduled])
}

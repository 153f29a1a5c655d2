package permissions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

type mockRepository struct {
	perms  map[int64]*Permission
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{perms: make(map[int64]*Permission), nextID: 1}
}

func (m *mockRepository) seed(p Permission) *Permission {
	p.ID = m.nextID
	m.nextID++
	m.perms[p.ID] = &p
	return &p
}

func (m *mockRepository) List(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(m.perms))
	for _, p := range m.perms {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Permission, error) {
	p, ok := m.perms[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) FindByName(ctx context.Context, name string) (*Permission, error) {
	for _, p := range m.perms {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) ResolveIDs(ctx context.Context, ids []int64) ([]Permission, error) {
	out := make([]Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.perms[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(ctx context.Context, p *Permission) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.perms[p.ID] = &cp
	return nil
}

func (m *mockRepository) Update(ctx context.Context, p *Permission) error {
	cp := *p
	m.perms[p.ID] = &cp
	return nil
}

func (m *mockRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	if _, ok := m.perms[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.perms, id)
	return nil
}

func (m *mockRepository) ListResources(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range m.perms {
		if _, ok := seen[p.Resource]; !ok {
			seen[p.Resource] = struct{}{}
			out = append(out, p.Resource)
		}
	}
	return out, nil
}

func TestCreatePermission(t *testing.T) {
	svc := NewService(newMockRepository())

	p, err := svc.Create(context.Background(), CreateInput{
		Name:     "news:manage",
		Resource: "news",
		Actions:  []string{"Manage", "manage", "read"},
	})
	require.NoError(t, err)
	// Actions are lowercased and de-duplicated, order preserved.
	assert.Equal(t, []string{"manage", "read"}, p.Actions)
}

func TestCreatePermissionUnknownAction(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "news:publish",
		Resource: "news",
		Actions:  []string{"publish"},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, `unknown action "publish"`, err.Error())
}

func TestCreatePermissionNoActions(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Create(context.Background(), CreateInput{Name: "x", Resource: "news"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreatePermissionDuplicateName(t *testing.T) {
	repo := newMockRepository()
	repo.seed(Permission{Name: "news:read", Resource: "news", Actions: []string{"read"}})
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Name: "news:read", Resource: "news", Actions: []string{"read"},
	})
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, "permission already exists", err.Error())
}

func TestUpdatePermissionPartial(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(Permission{Name: "news:read", Description: "old", Resource: "news", Actions: []string{"read"}})
	svc := NewService(repo)

	updated, err := svc.Update(context.Background(), p.ID, UpdateInput{Description: "Read published news"})
	require.NoError(t, err)
	assert.Equal(t, "news:read", updated.Name)
	assert.Equal(t, "Read published news", updated.Description)
	assert.Equal(t, []string{"read"}, updated.Actions)
}

func TestResolveSetMembership(t *testing.T) {
	repo := newMockRepository()
	a := repo.seed(Permission{Name: "news:read", Resource: "news", Actions: []string{"read"}})
	b := repo.seed(Permission{Name: "news:manage", Resource: "news", Actions: []string{"manage"}})
	svc := NewService(repo)

	t.Run("all ids resolve", func(t *testing.T) {
		resolved, err := svc.Resolve(context.Background(), []int64{a.ID, b.ID})
		require.NoError(t, err)
		assert.Len(t, resolved, 2)
	})

	t.Run("duplicates collapse before the membership check", func(t *testing.T) {
		resolved, err := svc.Resolve(context.Background(), []int64{a.ID, a.ID, b.ID})
		require.NoError(t, err)
		assert.Len(t, resolved, 2)
	})

	t.Run("duplicates cannot mask a missing id", func(t *testing.T) {
		_, err := svc.Resolve(context.Background(), []int64{a.ID, a.ID, 999})
		require.ErrorIs(t, err, shared.ErrInvalidReference)
		assert.Equal(t, "some permissions are invalid", err.Error())
	})

	t.Run("empty list is valid", func(t *testing.T) {
		resolved, err := svc.Resolve(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, resolved)
	})
}

func TestDeletedPermissionStopsResolving(t *testing.T) {
	repo := newMockRepository()
	p := repo.seed(Permission{Name: "news:read", Resource: "news", Actions: []string{"read"}})
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	_, err := svc.Resolve(context.Background(), []int64{p.ID})
	assert.ErrorIs(t, err, shared.ErrInvalidReference)
}

package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/newsdesk-cms/newsdesk/internal/roles"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockRepository struct {
	byID   map[int64]*Account
	nextID int64
	roles  map[int64]*roles.Role
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		byID:   make(map[int64]*Account),
		nextID: 1,
		roles: map[int64]*roles.Role{
			1: {ID: 1, Title: "admin", IsDefault: true},
			2: {ID: 2, Title: "editor", IsDefault: true},
			3: {ID: 3, Title: "user", IsDefault: true},
		},
	}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, f ListFilter) ([]*Account, int, error) {
	var out []*Account
	for _, a := range m.byID {
		if f.RoleID != 0 && (a.Role == nil || a.Role.ID != f.RoleID) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, a *Account, roleID int64) error {
	a.ID = m.nextID
	m.nextID++
	a.Role = m.roles[roleID]
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockRepository) Update(ctx context.Context, a *Account, roleID int64) error {
	if _, ok := m.byID[a.ID]; !ok {
		return shared.ErrNotFound
	}
	a.Role = m.roles[roleID]
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	a, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockRepository) StampLastLogin(ctx context.Context, id int64, at time.Time) error {
	a, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.LastLogin = &at
	return nil
}

func (m *mockRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range m.byID {
		out[a.Status]++
	}
	return out, nil
}

// roleLookup backed by the same role table.
func (m *mockRepository) lookupGet(ctx context.Context, id int64) (*roles.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

type mockRoleLookup struct{ repo *mockRepository }

func (l mockRoleLookup) Get(ctx context.Context, id int64) (*roles.Role, error) {
	return l.repo.lookupGet(ctx, id)
}

func (l mockRoleLookup) FindByTitle(ctx context.Context, title string) (*roles.Role, error) {
	for _, r := range l.repo.roles {
		if r.Title == title {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, mockRoleLookup{repo: repo}, bcrypt.MinCost), repo
}

func mustCreate(t *testing.T, svc *Service, email string, roleID int64) *Account {
	t.Helper()
	a, err := svc.Create(context.Background(), CreateInput{
		FullName: "Staff Member",
		Email:    email,
		Password: "secret123",
		RoleID:   roleID,
	})
	require.NoError(t, err)
	return a
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateAccount(t *testing.T) {
	svc, _ := newTestService()
	a := mustCreate(t, svc, "staff@example.com", 2)

	assert.Equal(t, StatusActive, a.Status)
	require.NotNil(t, a.Role)
	assert.Equal(t, "editor", a.Role.Title)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("secret123")))
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, "dup@example.com", 2)

	_, err := svc.Create(context.Background(), CreateInput{
		FullName: "Other", Email: "Dup@Example.com", Password: "pw123456", RoleID: 3,
	})
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, "email already exists", err.Error())
}

func TestCreateAccountUnknownRole(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{
		FullName: "X", Email: "x@example.com", Password: "pw123456", RoleID: 99,
	})
	require.ErrorIs(t, err, shared.ErrInvalidReference)
	assert.Equal(t, "invalid role", err.Error())
}

func TestCreateAccountInvalidStatus(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{
		FullName: "X", Email: "x@example.com", Password: "pw123456", RoleID: 3, Status: "banned",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateAccountEmailConflict(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, "a@example.com", 2)
	b := mustCreate(t, svc, "b@example.com", 2)

	_, err := svc.Update(context.Background(), b.ID, UpdateInput{Email: "a@example.com"})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateAccountRole(t *testing.T) {
	svc, _ := newTestService()
	a := mustCreate(t, svc, "a@example.com", 3)

	updated, err := svc.Update(context.Background(), a.ID, UpdateInput{RoleID: 2})
	require.NoError(t, err)
	require.NotNil(t, updated.Role)
	assert.Equal(t, "editor", updated.Role.Title)
}

func TestDeleteOwnAccountForbidden(t *testing.T) {
	svc, _ := newTestService()
	a := mustCreate(t, svc, "self@example.com", 1)

	err := svc.Delete(context.Background(), a.ID, a.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, "cannot delete your own account", err.Error())
}

func TestDeleteOtherAccount(t *testing.T) {
	svc, repo := newTestService()
	actor := mustCreate(t, svc, "admin@example.com", 1)
	victim := mustCreate(t, svc, "leaver@example.com", 3)

	require.NoError(t, svc.Delete(context.Background(), actor.ID, victim.ID))
	_, ok := repo.byID[victim.ID]
	assert.False(t, ok)
}

func TestChangeOwnStatusForbidden(t *testing.T) {
	svc, _ := newTestService()
	a := mustCreate(t, svc, "self@example.com", 1)

	err := svc.ChangeStatus(context.Background(), a.ID, a.ID, StatusInactive)
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, "cannot change your own status", err.Error())
}

func TestChangeStatus(t *testing.T) {
	svc, repo := newTestService()
	actor := mustCreate(t, svc, "admin@example.com", 1)
	target := mustCreate(t, svc, "staff@example.com", 2)

	require.NoError(t, svc.ChangeStatus(context.Background(), actor.ID, target.ID, StatusSuspended))
	assert.Equal(t, StatusSuspended, repo.byID[target.ID].Status)

	err := svc.ChangeStatus(context.Background(), actor.ID, target.ID, "banned")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestListFiltersByRoleTitle(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, "a@example.com", 2)
	mustCreate(t, svc, "b@example.com", 3)

	list, page, err := svc.List(context.Background(), ListQuery{Role: "editor", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a@example.com", list[0].Email)
	assert.Equal(t, 1, page.TotalItems)

	// Unknown titles fall back to an unfiltered listing.
	list, _, err = svc.List(context.Background(), ListQuery{Role: "ghost", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestIdentityProjection(t *testing.T) {
	a := &Account{
		ID:       5,
		Email:    "ed@example.com",
		FullName: "Ed",
		Role:     &roles.Role{ID: 2, Title: "editor"},
	}
	id := a.Identity()
	assert.Equal(t, "editor", id.RoleTitle)
	assert.Empty(t, id.Permissions)

	a.Role = nil
	id = a.Identity()
	assert.Empty(t, id.RoleTitle)
	assert.Empty(t, id.Permissions)
}

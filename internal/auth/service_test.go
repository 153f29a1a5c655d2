package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/newsdesk-cms/newsdesk/internal/accounts"
	"github.com/newsdesk-cms/newsdesk/internal/permissions"
	"github.com/newsdesk-cms/newsdesk/internal/roles"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// ============================================================================
// MOCKS
// ============================================================================

type mockAccounts struct {
	byID   map[int64]*accounts.Account
	nextID int64

	createErr error
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{byID: make(map[int64]*accounts.Account), nextID: 1}
}

func (m *mockAccounts) Get(ctx context.Context, id int64) (*accounts.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAccounts) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockAccounts) Create(ctx context.Context, a *accounts.Account, roleID int64) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = m.nextID
	m.nextID++
	a.Role = &roles.Role{ID: roleID}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockAccounts) StampLastLogin(ctx context.Context, id int64, at time.Time) error {
	a, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.LastLogin = &at
	return nil
}

type mockRoles struct {
	byID map[int64]*roles.Role
}

func (m *mockRoles) Get(ctx context.Context, id int64) (*roles.Role, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r, nil
}

func (m *mockRoles) FindByTitle(ctx context.Context, title string) (*roles.Role, error) {
	for _, r := range m.byID {
		if r.Title == title {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *mockAccounts, *mockRoles) {
	t.Helper()
	repo := newMockAccounts()
	roleSource := &mockRoles{byID: map[int64]*roles.Role{
		1: {ID: 1, Title: "admin", IsDefault: true},
		2: {ID: 2, Title: "editor", IsDefault: true, Permissions: []permissions.Permission{
			{Resource: "news", Actions: []string{"manage"}},
		}},
		3: {ID: 3, Title: "user", IsDefault: true},
	}}
	issuer := NewTokenIssuer("test-secret", time.Hour)
	return NewService(repo, roleSource, issuer, bcrypt.MinCost), repo, roleSource
}

func register(t *testing.T, svc *Service, email string) {
	t.Helper()
	require.NoError(t, svc.Register(context.Background(), RegisterInput{
		FullName: "Test User",
		Email:    email,
		Password: "secret123",
	}))
}

// ============================================================================
// REGISTER
// ============================================================================

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc, repo, _ := newTestService(t)
	register(t, svc, "new@example.com")

	a, err := repo.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, accounts.StatusActive, a.Status)
	require.NotNil(t, a.Role)
	assert.Equal(t, int64(3), a.Role.ID)
	assert.NotEqual(t, "secret123", a.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "dup@example.com")

	err := svc.Register(context.Background(), RegisterInput{
		FullName: "Other", Email: "dup@example.com", Password: "pw123456",
	})
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, "email already exists", err.Error())
}

func TestRegisterUnknownRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Register(context.Background(), RegisterInput{
		FullName: "Test", Email: "x@example.com", Password: "pw123456", RoleID: 99,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidReference)
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Register(context.Background(), RegisterInput{Email: "x@example.com"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

// ============================================================================
// LOGIN
// ============================================================================

func TestLoginSuccess(t *testing.T) {
	svc, repo, _ := newTestService(t)
	register(t, svc, "login@example.com")

	token, a, err := svc.Login(context.Background(), "Login@Example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, a.LastLogin)

	stored, err := repo.FindByEmail(context.Background(), "login@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "login@example.com")

	_, _, err := svc.Login(context.Background(), "login@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, _, err := svc.Login(context.Background(), "ghost@example.com", "pw")
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "user not found", err.Error())
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	register(t, svc, "off@example.com")
	for _, a := range repo.byID {
		a.Status = accounts.StatusInactive
	}

	_, _, err := svc.Login(context.Background(), "off@example.com", "secret123")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.Equal(t, "account is not active", err.Error())
}

// ============================================================================
// RESOLVE TOKEN
// ============================================================================

func TestResolveTokenReflectsStore(t *testing.T) {
	svc, repo, roleSource := newTestService(t)
	register(t, svc, "live@example.com")

	token, a, err := svc.Login(context.Background(), "live@example.com", "secret123")
	require.NoError(t, err)

	// Grants come from the store at resolve time, not from the token.
	repo.byID[a.ID].Role = roleSource.byID[2]
	resolved, err := svc.ResolveToken(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved.Role)
	assert.Equal(t, "editor", resolved.Role.Title)

	id := resolved.Identity()
	require.Len(t, id.Permissions, 1)
	assert.Equal(t, "news", id.Permissions[0].Resource)
}

func TestResolveTokenDeletedAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	register(t, svc, "gone@example.com")

	token, a, err := svc.Login(context.Background(), "gone@example.com", "secret123")
	require.NoError(t, err)

	delete(repo.byID, a.ID)
	_, err = svc.ResolveToken(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.Equal(t, "invalid token or user not found", err.Error())
}

func TestResolveTokenDeactivatedAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	register(t, svc, "locked@example.com")

	token, a, err := svc.Login(context.Background(), "locked@example.com", "secret123")
	require.NoError(t, err)

	repo.byID[a.ID].Status = accounts.StatusSuspended
	_, err = svc.ResolveToken(context.Background(), token)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.Equal(t, "account is not active", err.Error())
}

// ============================================================================
// MIDDLEWARE
// ============================================================================

func TestAuthenticateMiddleware(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "mw@example.com")
	token, _, err := svc.Login(context.Background(), "mw@example.com", "secret123")
	require.NoError(t, err)

	mw := Middleware{Service: svc}
	var captured *shared.Identity
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, "mw@example.com", captured.Email)
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

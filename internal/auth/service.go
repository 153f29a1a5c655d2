package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/newsdesk-cms/newsdesk/internal/accounts"
	"github.com/newsdesk-cms/newsdesk/internal/roles"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// AccountSource is the slice of account persistence the auth flows need.
type AccountSource interface {
	Get(ctx context.Context, id int64) (*accounts.Account, error)
	FindByEmail(ctx context.Context, email string) (*accounts.Account, error)
	Create(ctx context.Context, a *accounts.Account, roleID int64) error
	StampLastLogin(ctx context.Context, id int64, at time.Time) error
}

// RoleSource resolves role references during registration.
type RoleSource interface {
	Get(ctx context.Context, id int64) (*roles.Role, error)
	FindByTitle(ctx context.Context, title string) (*roles.Role, error)
}

// DefaultRole is the role assigned at self-registration when no explicit
// role is requested.
const DefaultRole = "user"

// Service wraps authentication business rules.
type Service struct {
	repo       AccountSource
	roleSource RoleSource
	issuer     *TokenIssuer
	bcryptCost int
}

// NewService constructs a new Service.
func NewService(repo AccountSource, roleSource RoleSource, issuer *TokenIssuer, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, roleSource: roleSource, issuer: issuer, bcryptCost: bcryptCost}
}

// RegisterInput carries self-registration fields.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
	RoleID   int64
}

// Register creates an active account, falling back to the default user
// role when no role is requested.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if in.FullName == "" || email == "" || in.Password == "" {
		return shared.Wrap(shared.ErrValidation, "fullName, email, and password are required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return shared.Wrap(shared.ErrConflict, "email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	var role *roles.Role
	var err error
	if in.RoleID != 0 {
		role, err = s.roleSource.Get(ctx, in.RoleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.Wrap(shared.ErrInvalidReference, "invalid role")
			}
			return err
		}
	} else {
		role, err = s.roleSource.FindByTitle(ctx, DefaultRole)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.Wrap(shared.ErrInvalidReference, "default user role not found")
			}
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return err
	}

	a := &accounts.Account{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Status:       accounts.StatusActive,
	}
	if err := s.repo.Create(ctx, a, role.ID); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return shared.Wrap(shared.ErrConflict, "email already exists")
		}
		return err
	}
	return nil
}

// Login validates credentials and mints a bearer token. Only active,
// non-deleted accounts may log in.
func (s *Service) Login(ctx context.Context, email, password string) (string, *accounts.Account, error) {
	a, err := s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil, shared.Wrap(shared.ErrNotFound, "user not found")
		}
		return "", nil, err
	}
	if a.Status != accounts.StatusActive {
		return "", nil, shared.Wrap(shared.ErrUnauthenticated, "account is not active")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.Wrap(shared.ErrUnauthenticated, "invalid credentials")
	}

	now := time.Now().UTC()
	if err := s.repo.StampLastLogin(ctx, a.ID, now); err != nil {
		return "", nil, err
	}
	a.LastLogin = &now

	token, err := s.issuer.Issue(a)
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

// ResolveToken verifies a raw token and re-resolves the embedded account
// against the store. The token is only an identity pointer: the role and
// permissions on the returned account reflect the store at call time, so
// revocations take effect without waiting for token expiry.
func (s *Service) ResolveToken(ctx context.Context, raw string) (*accounts.Account, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Wrap(shared.ErrUnauthenticated, "invalid token or user not found")
		}
		return nil, err
	}
	if a.Status != accounts.StatusActive {
		return nil, shared.Wrap(shared.ErrUnauthenticated, "account is not active")
	}
	return a, nil
}

// Account fetches the account behind a verified identity.
func (s *Service) Account(ctx context.Context, id int64) (*accounts.Account, error) {
	return s.repo.Get(ctx, id)
}

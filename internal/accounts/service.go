package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/newsdesk-cms/newsdesk/internal/roles"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, f ListFilter) ([]*Account, int, error)
	Create(ctx context.Context, a *Account, roleID int64) error
	Update(ctx context.Context, a *Account, roleID int64) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	StampLastLogin(ctx context.Context, id int64, at time.Time) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// RoleLookup resolves role references during account writes.
type RoleLookup interface {
	Get(ctx context.Context, id int64) (*roles.Role, error)
	FindByTitle(ctx context.Context, title string) (*roles.Role, error)
}

// Service handles account business logic.
type Service struct {
	repo       RepositoryPort
	roleLookup RoleLookup
	bcryptCost int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roleLookup RoleLookup, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, roleLookup: roleLookup, bcryptCost: bcryptCost}
}

// ListQuery narrows the account listing by search term and role title.
type ListQuery struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

// List returns accounts matching the query plus pagination metadata.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Account, shared.Pagination, error) {
	filter := ListFilter{Search: strings.TrimSpace(q.Search), Page: q.Page, Limit: q.Limit}
	if title := strings.TrimSpace(q.Role); title != "" {
		// Unknown role titles are ignored rather than matching nothing.
		role, err := s.roleLookup.FindByTitle(ctx, title)
		if err == nil {
			filter.RoleID = role.ID
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Pagination{}, err
		}
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(q.Page, q.Limit, total), nil
}

// Get returns a single account with role and permissions populated.
func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	return s.repo.Get(ctx, id)
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
	RoleID   int64
	Status   string
}

// Create registers a new account. Email uniqueness is checked among
// non-deleted accounts only; a soft-deleted account frees its email.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if in.FullName == "" || email == "" || in.Password == "" {
		return nil, shared.Wrap(shared.ErrValidation, "fullName, email, and password are required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, shared.Wrap(shared.ErrConflict, "email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if _, err := s.roleLookup.Get(ctx, in.RoleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Wrap(shared.ErrInvalidReference, "invalid role")
		}
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = StatusActive
	}
	if !ValidStatus(status) {
		return nil, shared.Wrap(shared.ErrValidation, "invalid status")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	a := &Account{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Status:       status,
	}
	if err := s.repo.Create(ctx, a, in.RoleID); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Wrap(shared.ErrConflict, "email already exists")
		}
		return nil, err
	}
	return s.repo.Get(ctx, a.ID)
}

// UpdateInput carries optional replacement fields; zero values keep the
// current ones.
type UpdateInput struct {
	FullName string
	Email    string
	Phone    string
	RoleID   int64
	Status   string
}

// Update mutates an account's profile, role, or status.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Account, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	roleID := int64(0)
	if a.Role != nil {
		roleID = a.Role.ID
	}

	if email := strings.TrimSpace(strings.ToLower(in.Email)); email != "" && email != a.Email {
		if other, err := s.repo.FindByEmail(ctx, email); err == nil && other.ID != a.ID {
			return nil, shared.Wrap(shared.ErrConflict, "email already exists")
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		a.Email = email
	}
	if in.FullName != "" {
		a.FullName = strings.TrimSpace(in.FullName)
	}
	if in.Phone != "" {
		a.Phone = strings.TrimSpace(in.Phone)
	}
	if in.RoleID != 0 && in.RoleID != roleID {
		if _, err := s.roleLookup.Get(ctx, in.RoleID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.Wrap(shared.ErrInvalidReference, "invalid role")
			}
			return nil, err
		}
		roleID = in.RoleID
	}
	if in.Status != "" {
		if !ValidStatus(in.Status) {
			return nil, shared.Wrap(shared.ErrValidation, "invalid status")
		}
		a.Status = in.Status
	}

	if err := s.repo.Update(ctx, a, roleID); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Wrap(shared.ErrConflict, "email already exists")
		}
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete soft-deletes an account. An actor can never delete itself.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.ID == actorID {
		return shared.Wrap(shared.ErrForbidden, "cannot delete your own account")
	}
	return s.repo.SoftDelete(ctx, id, time.Now().UTC())
}

// ChangeStatus updates an account's status. An actor can never change
// its own status.
func (s *Service) ChangeStatus(ctx context.Context, actorID, id int64, status string) error {
	if !ValidStatus(status) {
		return shared.Wrap(shared.ErrValidation, "invalid status")
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.ID == actorID {
		return shared.Wrap(shared.ErrForbidden, "cannot change your own status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// CountByStatus exposes account totals for the dashboard.
func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

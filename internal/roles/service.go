package roles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/newsdesk-cms/newsdesk/internal/permissions"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (*Role, error)
	FindByTitle(ctx context.Context, title string) (*Role, error)
	Create(ctx context.Context, role *Role, permissionIDs []int64) error
	Update(ctx context.Context, role *Role, permissionIDs []int64) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// PermissionResolver validates permission-id lists against the registry.
type PermissionResolver interface {
	Resolve(ctx context.Context, ids []int64) ([]permissions.Permission, error)
}

// Service handles role business logic.
type Service struct {
	repo     RepositoryPort
	resolver PermissionResolver
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, resolver PermissionResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// List returns all non-deleted roles with permissions populated.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get returns a single role.
func (s *Service) Get(ctx context.Context, id int64) (*Role, error) {
	return s.repo.Get(ctx, id)
}

// CreateInput carries the fields for a new role.
type CreateInput struct {
	Title         string
	Description   string
	PermissionIDs []int64
}

// Create inserts a role after the advisory title-uniqueness check and
// permission-reference validation. Every referenced permission must
// resolve to a non-deleted record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Role, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, shared.Wrap(shared.ErrValidation, "title is required")
	}

	if _, err := s.repo.FindByTitle(ctx, title); err == nil {
		return nil, shared.Wrap(shared.ErrConflict, "role already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	permissionIDs := dedupeIDs(in.PermissionIDs)
	if _, err := s.resolver.Resolve(ctx, permissionIDs); err != nil {
		return nil, err
	}

	role := &Role{Title: title, Description: strings.TrimSpace(in.Description)}
	if err := s.repo.Create(ctx, role, permissionIDs); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Wrap(shared.ErrConflict, "role already exists")
		}
		return nil, err
	}
	return s.repo.Get(ctx, role.ID)
}

// UpdateInput carries optional replacement fields. PermissionIDs nil
// keeps the current list; an empty non-nil list clears it.
type UpdateInput struct {
	Title         string
	Description   string
	PermissionIDs []int64
}

// Update mutates a role. The default admin role is immutable regardless
// of the actor's own role.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Role, error) {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.AdminLocked() {
		return nil, shared.Wrap(shared.ErrImmutable, "cannot modify default admin role")
	}

	if title := strings.TrimSpace(in.Title); title != "" && title != role.Title {
		if _, err := s.repo.FindByTitle(ctx, title); err == nil {
			return nil, shared.Wrap(shared.ErrConflict, "role already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		role.Title = title
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		role.Description = desc
	}
	permissionIDs := in.PermissionIDs
	if permissionIDs != nil {
		permissionIDs = dedupeIDs(permissionIDs)
		if _, err := s.resolver.Resolve(ctx, permissionIDs); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, role, permissionIDs); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Wrap(shared.ErrConflict, "role already exists")
		}
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// dedupeIDs collapses duplicate ids, keeping first-occurrence order so
// the stored permission positions follow the request. A non-nil input
// stays non-nil; Update relies on nil meaning "keep current".
func dedupeIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Delete soft-deletes a role. Default roles are undeletable.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if role.Protected() {
		return shared.Wrap(shared.ErrImmutable, "cannot delete default role")
	}
	return s.repo.SoftDelete(ctx, id, time.Now().UTC())
}

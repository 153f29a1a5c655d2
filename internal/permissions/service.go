package permissions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// RepositoryPort defines data access methods for permissions.
type RepositoryPort interface {
	List(ctx context.Context) ([]Permission, error)
	Get(ctx context.Context, id int64) (*Permission, error)
	FindByName(ctx context.Context, name string) (*Permission, error)
	ResolveIDs(ctx context.Context, ids []int64) ([]Permission, error)
	Create(ctx context.Context, p *Permission) error
	Update(ctx context.Context, p *Permission) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	ListResources(ctx context.Context) ([]string, error)
}

// Service handles permission business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all non-deleted permissions.
func (s *Service) List(ctx context.Context) ([]Permission, error) {
	return s.repo.List(ctx)
}

// Get returns a single permission.
func (s *Service) Get(ctx context.Context, id int64) (*Permission, error) {
	return s.repo.Get(ctx, id)
}

// CreateInput carries the fields for a new permission.
type CreateInput struct {
	Name        string
	Description string
	Resource    string
	Actions     []string
}

// Create inserts a new permission after the advisory name-uniqueness check.
// The check can race with a concurrent create; the unique index catches
// the loser as ErrConflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Permission, error) {
	name := strings.TrimSpace(in.Name)
	resource := strings.TrimSpace(in.Resource)
	if name == "" || resource == "" {
		return nil, shared.Wrap(shared.ErrValidation, "name and resource are required")
	}
	actions, err := normalizeActions(in.Actions)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, shared.Wrap(shared.ErrConflict, "permission already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	p := &Permission{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Resource:    resource,
		Actions:     actions,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Wrap(shared.ErrConflict, "permission already exists")
		}
		return nil, err
	}
	return p, nil
}

// UpdateInput carries optional replacement fields; empty values keep the
// current ones, mirroring the partial-update behavior of the admin API.
type UpdateInput struct {
	Name        string
	Description string
	Resource    string
	Actions     []string
}

// Update mutates an existing permission.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Permission, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		p.Description = desc
	}
	if resource := strings.TrimSpace(in.Resource); resource != "" {
		p.Resource = resource
	}
	if len(in.Actions) > 0 {
		actions, err := normalizeActions(in.Actions)
		if err != nil {
			return nil, err
		}
		p.Actions = actions
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.Wrap(shared.ErrConflict, "permission already exists")
		}
		return nil, err
	}
	return p, nil
}

// Delete soft-deletes a permission. Roles referencing it keep the
// reference; the permission simply stops resolving.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id, time.Now().UTC())
}

// Resources returns the distinct resource tags in use.
func (s *Service) Resources(ctx context.Context) ([]string, error) {
	return s.repo.ListResources(ctx)
}

// Resolve validates a permission-id list by distinct-set membership:
// every distinct id must resolve to a non-deleted permission. Duplicates
// in the request are collapsed first so they cannot mask a missing id.
func (s *Service) Resolve(ctx context.Context, ids []int64) ([]Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	distinct := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	resolved, err := s.repo.ResolveIDs(ctx, distinct)
	if err != nil {
		return nil, err
	}
	if len(resolved) != len(distinct) {
		return nil, shared.Wrap(shared.ErrInvalidReference, "some permissions are invalid")
	}
	return resolved, nil
}

func normalizeActions(actions []string) ([]string, error) {
	if len(actions) == 0 {
		return nil, shared.Wrap(shared.ErrValidation, "at least one action is required")
	}
	out := make([]string, 0, len(actions))
	seen := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		a = strings.TrimSpace(strings.ToLower(a))
		if !ValidAction(a) {
			return nil, shared.Wrapf(shared.ErrValidation, "unknown action %q", a)
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}

package contacts

import (
	"context"
	"strings"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// RepositoryPort defines data access methods for contact messages.
type RepositoryPort interface {
	Create(ctx context.Context, m *Message) error
	List(ctx context.Context) ([]Message, error)
	MarkRead(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	CountUnread(ctx context.Context) (int, error)
}

// Service handles contact-form business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Submit stores a public contact-form submission.
func (s *Service) Submit(ctx context.Context, m Message) (*Message, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(strings.ToLower(m.Email))
	if m.Name == "" || m.Email == "" || m.Body == "" {
		return nil, shared.Wrap(shared.ErrValidation, "name, email, and message are required")
	}
	if err := s.repo.Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all submissions for the admin view.
func (s *Service) List(ctx context.Context) ([]Message, error) {
	return s.repo.List(ctx)
}

// MarkRead flags a submission as handled.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkRead(ctx, id)
}

// Delete removes a submission.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// CountUnread exposes the unread total for the dashboard.
func (s *Service) CountUnread(ctx context.Context) (int, error) {
	return s.repo.CountUnread(ctx)
}

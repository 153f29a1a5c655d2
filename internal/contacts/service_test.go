package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

type mockRepository struct {
	byID   map[int64]*Message
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: make(map[int64]*Message), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, msg *Message) error {
	msg.ID = m.nextID
	m.nextID++
	cp := *msg
	m.byID[msg.ID] = &cp
	return nil
}

func (m *mockRepository) List(ctx context.Context) ([]Message, error) {
	out := make([]Message, 0, len(m.byID))
	for _, msg := range m.byID {
		out = append(out, *msg)
	}
	return out, nil
}

func (m *mockRepository) MarkRead(ctx context.Context, id int64) error {
	msg, ok := m.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	msg.Read = true
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockRepository) CountUnread(ctx context.Context) (int, error) {
	n := 0
	for _, msg := range m.byID {
		if !msg.Read {
			n++
		}
	}
	return n, nil
}

func TestSubmit(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	msg, err := svc.Submit(context.Background(), Message{
		Name:  "  Reader  ",
		Email: "Reader@Example.com",
		Body:  "Great coverage",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reader", msg.Name)
	assert.Equal(t, "reader@example.com", msg.Email)
	assert.False(t, msg.Read)
}

func TestSubmitMissingFields(t *testing.T) {
	svc := NewService(newMockRepository())
	_, err := svc.Submit(context.Background(), Message{Name: "Reader"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestMarkReadAffectsUnreadCount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	msg, err := svc.Submit(context.Background(), Message{Name: "A", Email: "a@example.com", Body: "hi"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), Message{Name: "B", Email: "b@example.com", Body: "hello"})
	require.NoError(t, err)

	n, err := svc.CountUnread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, svc.MarkRead(context.Background(), msg.ID))
	n, err = svc.CountUnread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteMissingMessage(t *testing.T) {
	svc := NewService(newMockRepository())
	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// Package dashboard assembles aggregate counts for the admin overview.
// The redis cache here is display-only; authorization never reads it.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKey = "dashboard:stats"
	cacheTTL = 30 * time.Second
)

// Stats is the admin overview payload.
type Stats struct {
	Accounts       map[string]int `json:"accounts"`
	News           map[string]int `json:"news"`
	UnreadContacts int            `json:"unreadContacts"`
	Roles          int            `json:"roles"`
	Permissions    int            `json:"permissions"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

// StatusCounter reports record totals grouped by status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// UnreadCounter reports the unread contact total.
type UnreadCounter interface {
	CountUnread(ctx context.Context) (int, error)
}

// RecordCounter reports a plain record total.
type RecordCounter interface {
	Count(ctx context.Context) (int, error)
}

// Service computes the overview, caching results briefly in redis.
type Service struct {
	logger      *slog.Logger
	cache       *redis.Client
	accounts    StatusCounter
	news        StatusCounter
	contacts    UnreadCounter
	roles       RecordCounter
	permissions RecordCounter
}

// NewService builds Service instance.
func NewService(logger *slog.Logger, cache *redis.Client, accounts, news StatusCounter, contacts UnreadCounter, roles, permissions RecordCounter) *Service {
	return &Service{logger: logger, cache: cache, accounts: accounts, news: news, contacts: contacts, roles: roles, permissions: permissions}
}

// Stats returns the overview, from cache when fresh. Redis failures fall
// back to the store so the dashboard never 500s on a cold cache.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached Stats
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("dashboard cache read", slog.Any("error", err))
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("dashboard cache write", slog.Any("error", err))
			}
		}
	}
	return stats, nil
}

func (s *Service) compute(ctx context.Context) (*Stats, error) {
	accounts, err := s.accounts.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	news, err := s.news.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.contacts.CountUnread(ctx)
	if err != nil {
		return nil, err
	}
	roleCount, err := s.roles.Count(ctx)
	if err != nil {
		return nil, err
	}
	permCount, err := s.permissions.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Accounts:       accounts,
		News:           news,
		UnreadContacts: unread,
		Roles:          roleCount,
		Permissions:    permCount,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

package user

import (
	"context"
	"fmt"
	"log/slog"

	"userpost-service/internal/shared/db"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Cache stores immutable entities by key.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Publisher interface {
	WriteJSON(ctx context.Context, key string, v any) error
}

type Service interface {
	Create(ctx context.Context, name string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

type Option func(*service)

func WithCache(c Cache) Option { return func(s *service) { s.cache = c } }

func WithPublisher(p Publisher) Option { return func(s *service) { s.events = p } }

type service struct {
	store   *db.Store
	repo    Repository
	created prometheus.Counter
	cache   Cache
	events  Publisher
}

func NewService(store *db.Store, r Repository, created prometheus.Counter, opts ...Option) Service {
	s := &service{store: store, repo: r, created: created}
	for _, o := range opts {
		o(s)
	}
	return s
}

func cacheKey(id int64) string { return fmt.Sprintf("user:%d", id) }

func (s *service) Create(ctx context.Context, name string) (*User, error) {
	u := &User{Name: name}
	if err := s.store.Tx(ctx, func(tx *gorm.DB) error {
		return s.repo.Create(tx, u)
	}); err != nil {
		return nil, err
	}
	// committed; a crash before this line undercounts, which is accepted
	s.created.Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(u.ID), u); err != nil {
			slog.WarnContext(ctx, "user cache set", "user_id", u.ID, "err", err)
		}
	}
	if s.events != nil {
		if err := s.events.WriteJSON(ctx, fmt.Sprint(u.ID), ToResponse(u)); err != nil {
			slog.WarnContext(ctx, "publish user created", "user_id", u.ID, "err", err)
		}
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	if s.cache != nil {
		var cached User
		ok, err := s.cache.Get(ctx, cacheKey(id), &cached)
		if err != nil {
			slog.WarnContext(ctx, "user cache get", "user_id", id, "err", err)
		} else if ok {
			return &cached, nil
		}
	}

	var u *User
	if err := s.store.Read(ctx, func(tx *gorm.DB) error {
		var err error
		u, err = s.repo.FindByID(tx, id)
		return err
	}); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(id), u); err != nil {
			slog.WarnContext(ctx, "user cache set", "user_id", id, "err", err)
		}
	}
	return u, nil
}

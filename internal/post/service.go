package post

import (
	"context"
	"fmt"
	"log/slog"

	"userpost-service/internal/shared/db"
	"userpost-service/internal/user"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// UserFinder is the referential existence check run before a post is written.
type UserFinder interface {
	FindByID(tx *gorm.DB, id int64) (*user.User, error)
}

// Cache stores immutable posts by key.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Publisher interface {
	WriteJSON(ctx context.Context, key string, v any) error
}

type Service interface {
	Create(ctx context.Context, userID int64, content string) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
}

type Option func(*service)

func WithCache(c Cache) Option { return func(s *service) { s.cache = c } }

func WithPublisher(p Publisher) Option { return func(s *service) { s.events = p } }

type service struct {
	store   *db.Store
	repo    Repository
	users   UserFinder
	created prometheus.Counter
	cache   Cache
	events  Publisher
}

func NewService(store *db.Store, r Repository, users UserFinder, created prometheus.Counter, opts ...Option) Service {
	s := &service{store: store, repo: r, users: users, created: created}
	for _, o := range opts {
		o(s)
	}
	return s
}

func cacheKey(id int64) string { return fmt.Sprintf("post:%d", id) }

// Create writes the post only if its author exists; the check and the
// insert share one transaction. Missing authors yield user.ErrNotFound.
func (s *service) Create(ctx context.Context, userID int64, content string) (*Post, error) {
	p := &Post{UserID: userID, Content: content}
	if err := s.store.Tx(ctx, func(tx *gorm.DB) error {
		if _, err := s.users.FindByID(tx, userID); err != nil {
			return err
		}
		return s.repo.Create(tx, p)
	}); err != nil {
		return nil, err
	}
	s.created.Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(p.ID), p); err != nil {
			slog.WarnContext(ctx, "post cache set", "post_id", p.ID, "err", err)
		}
	}
	if s.events != nil {
		if err := s.events.WriteJSON(ctx, fmt.Sprint(p.UserID), ToResponse(p)); err != nil {
			slog.WarnContext(ctx, "publish post created", "post_id", p.ID, "err", err)
		}
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Post, error) {
	if s.cache != nil {
		var cached Post
		ok, err := s.cache.Get(ctx, cacheKey(id), &cached)
		if err != nil {
			slog.WarnContext(ctx, "post cache get", "post_id", id, "err", err)
		} else if ok {
			return &cached, nil
		}
	}

	var p *Post
	if err := s.store.Read(ctx, func(tx *gorm.DB) error {
		var err error
		p, err = s.repo.FindByID(tx, id)
		return err
	}); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(id), p); err != nil {
			slog.WarnContext(ctx, "post cache set", "post_id", id, "err", err)
		}
	}
	return p, nil
}

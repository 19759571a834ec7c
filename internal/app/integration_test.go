//go:build integration

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"userpost-service/configs"
	"userpost-service/internal/metrics"
	"userpost-service/internal/migrate"
	"userpost-service/internal/post"
	"userpost-service/internal/shared/db"
	"userpost-service/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *configs.Config {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("userpost"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &configs.Config{
		DBDriver:   "postgres",
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "testuser",
		DBPass:     "testpass",
		DBName:     "userpost",
		DBMaxConns: 10,
	}
	// the primary doubles as its own replica so lookups take the resolver path
	cfg.DBReadReplicas = []string{cfg.DSN()}
	return cfg
}

func TestPostgresEndToEnd(t *testing.T) {
	cfg := startPostgres(t)
	store, err := db.Open(context.Background(), cfg, db.WithRetry(3, 500*time.Millisecond), db.WithTracing())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, migrate.AutoMigrateAll(store))

	m := metrics.New()
	userRepo := user.NewRepository()
	srv := httptest.NewServer(NewRouter(Deps{
		Users:   user.NewService(store, userRepo, m.UsersCreated),
		Posts:   post.NewService(store, post.NewRepository(), userRepo, m.PostsCreated),
		Metrics: m,
		Ping:    store.Ping,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	t.Cleanup(srv.Close)
	s := &testServer{Server: srv, m: m}

	code, u := s.call(t, http.MethodPost, "/users", `{"name": "Test User"}`)
	require.Equal(t, http.StatusOK, code)
	uid := int(u["id"].(float64))

	code, p := s.call(t, http.MethodPost, "/posts", fmt.Sprintf(`{"user_id": %d, "content": "pg post"}`, uid))
	require.Equal(t, http.StatusOK, code)

	code, fetched := s.call(t, http.MethodGet, fmt.Sprintf("/posts/%d", int(p["post_id"].(float64))), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, p["content"], fetched["content"])
	assert.Equal(t, p["user_id"], fetched["user_id"])

	code, _ = s.call(t, http.MethodPost, "/posts", `{"user_id": 424242, "content": "orphan"}`)
	assert.Equal(t, http.StatusNotFound, code)

	// the foreign key holds even when the service check is bypassed
	err = store.Base.Omit("Author").Create(&post.Post{UserID: 424242, Content: "raw"}).Error
	assert.Error(t, err)

	got := s.scrape(t)
	assert.Equal(t, 1.0, got["users_created_total"])
	assert.Equal(t, 1.0, got["posts_created_total"])
}

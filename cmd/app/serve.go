package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"userpost-service/configs"
	"userpost-service/internal/app"
	"userpost-service/internal/kafka"
	"userpost-service/internal/metrics"
	"userpost-service/internal/migrate"
	"userpost-service/internal/post"
	"userpost-service/internal/shared/db"
	"userpost-service/internal/shared/redisx"
	"userpost-service/internal/user"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func newServeCmd(cfg *configs.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.AppPort, "addr", cfg.AppPort, "listen address")
	return cmd
}

func serve(ctx context.Context, cfg *configs.Config) error {
	shutdown, err := initOTEL(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	store, err := db.Open(ctx, cfg, db.WithTracing())
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.AutoMigrate {
		if err := migrate.AutoMigrateAll(store); err != nil {
			return err
		}
	}

	m := metrics.New()
	userRepo := user.NewRepository()
	var (
		userOpts []user.Option
		postOpts []post.Option
	)

	if cfg.RedisAddr != "" {
		cache := redisx.New(cfg.RedisAddr, cfg.CacheTTL)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, lookups go to the database", "addr", cfg.RedisAddr, "err", err)
		}
		userOpts = append(userOpts, user.WithCache(cache))
		postOpts = append(postOpts, post.WithCache(cache))
	}

	if cfg.KafkaBrokers != "" {
		uw := kafka.NewWriter(cfg.KafkaBrokers, kafka.Topic(cfg.KafkaTopicPrefix, kafka.TopicUsersCreated))
		defer uw.Close()
		pw := kafka.NewWriter(cfg.KafkaBrokers, kafka.Topic(cfg.KafkaTopicPrefix, kafka.TopicPostsCreated))
		defer pw.Close()
		userOpts = append(userOpts, user.WithPublisher(uw))
		postOpts = append(postOpts, post.WithPublisher(pw))
	}

	handler := app.NewRouter(app.Deps{
		Users:   user.NewService(store, userRepo, m.UsersCreated, userOpts...),
		Posts:   post.NewService(store, post.NewRepository(), userRepo, m.PostsCreated, postOpts...),
		Metrics: m,
		Ping:    store.Ping,
		Logger:  slog.Default(),
	})

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           otelhttp.NewHandler(handler, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("userpost-service listening", "addr", cfg.AppPort, "db", cfg.DBDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(c)
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"userpost-service/configs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Store owns the connection pool. Every request borrows a scoped session
// from it through Tx or Read; nothing is held between requests.
type Store struct {
	Base     *gorm.DB
	pool     *pgxpool.Pool
	replicas []*sql.DB
}

type Option func(*options)

type options struct {
	attempts int
	sleep    time.Duration
	tracing  bool
}

func WithRetry(attempts int, sleep time.Duration) Option {
	return func(o *options) { o.attempts, o.sleep = attempts, sleep }
}

// WithTracing installs the OpenTelemetry gorm plugin so every statement
// becomes a span under the request span.
func WithTracing() Option { return func(o *options) { o.tracing = true } }

func Open(ctx context.Context, cfg *configs.Config, opts ...Option) (*Store, error) {
	o := options{attempts: 8, sleep: time.Second}
	for _, fn := range opts {
		fn(&o)
	}

	var (
		s   *Store
		err error
	)
	switch cfg.DBDriver {
	case "postgres":
		s, err = openPostgres(ctx, cfg, o)
	case "sqlite", "":
		s, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	if o.tracing {
		if err := s.Base.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			s.Close()
			return nil, fmt.Errorf("db tracing: %w", err)
		}
	}
	return s, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

func openSQLite(cfg *configs.Config) (*Store, error) {
	base, err := gorm.Open(sqlite.Open(cfg.SQLiteDSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	sqlDB, err := base.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection also keeps an
	// in-memory database alive for the life of the store.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return &Store{Base: base}, nil
}

func openPostgres(ctx context.Context, cfg *configs.Config, o options) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("db config: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = int32(cfg.DBMaxConns)
	}
	pcfg.MaxConnLifetime = 30 * time.Minute

	var (
		pool *pgxpool.Pool
		last error
	)
	sleep := o.sleep
	for i := 1; i <= o.attempts; i++ {
		pool, last = pgxpool.NewWithConfig(ctx, pcfg)
		if last == nil {
			if last = pingWithTimeout(ctx, pool, 2*time.Second); last == nil {
				break
			}
			pool.Close()
			pool = nil
		}
		slog.Warn("db not ready", "attempt", i, "err", last)
		if i == o.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}
	if pool == nil {
		return nil, fmt.Errorf("db open: %w", last)
	}

	base, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), gormConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("db open: %w", err)
	}
	s := &Store{Base: base, pool: pool}

	if len(cfg.DBReadReplicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.DBReadReplicas))
		for _, dsn := range cfg.DBReadReplicas {
			conn, err := sql.Open("pgx", dsn)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("db replica: %w", err)
			}
			s.replicas = append(s.replicas, conn)
			replicas = append(replicas, postgres.New(postgres.Config{Conn: conn}))
		}
		r := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).SetMaxOpenConns(cfg.DBMaxConns).SetConnMaxLifetime(30 * time.Minute)
		if err := base.Use(r); err != nil {
			s.Close()
			return nil, fmt.Errorf("dbresolver: %w", err)
		}
	}
	return s, nil
}

func pingWithTimeout(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(c); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

// Tx runs fn in one transaction. It commits when fn returns nil and rolls
// back on error or panic, so the connection is released on every path.
func (s *Store) Tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.Base.WithContext(ctx).Transaction(fn)
}

// Read runs fn on a session for lookups. With read replicas configured the
// statements are routed to a replica.
func (s *Store) Read(ctx context.Context, fn func(tx *gorm.DB) error) error {
	sess := s.Base.WithContext(ctx)
	if len(s.replicas) > 0 {
		sess = sess.Clauses(dbresolver.Read)
	}
	return fn(sess)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.Base.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the primary, the read replicas and the pgx pool.
func (s *Store) Close() {
	if sqlDB, err := s.Base.DB(); err == nil {
		_ = sqlDB.Close()
	}
	for _, r := range s.replicas {
		_ = r.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// Stats exposes the database/sql pool counters, mostly for tests.
func (s *Store) Stats() sql.DBStats {
	sqlDB, err := s.Base.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

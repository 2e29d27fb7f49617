// Package postgres implements store.Store on PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/listenupapp/fieldcodec/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// PostgreSQL error codes
const (
	uniqueViolation = "23505"
)

// Store provides PostgreSQL-backed persistence for contacts.
type Store struct {
	store.CodecHolder

	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// options holds the runtime configuration.
type options struct {
	maxConns       int32
	minConns       int32
	maxLifetime    time.Duration
	maxIdleTime    time.Duration
	connectTimeout time.Duration
	logger         *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxConns sets the maximum number of connections.
func WithMaxConns(n int32) Option {
	return func(o *options) {
		o.maxConns = n
	}
}

// WithMinConns sets the minimum number of connections.
func WithMinConns(n int32) Option {
	return func(o *options) {
		o.minConns = n
	}
}

// WithConnectTimeout sets the connection timeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = timeout
	}
}

// Open connects to databaseURL and creates the contacts table if needed.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*Store, error) {
	o := &options{
		maxConns:       10,
		minConns:       1,
		maxLifetime:    time.Hour,
		maxIdleTime:    30 * time.Minute,
		connectTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = o.maxConns
	poolConfig.MinConns = o.minConns
	poolConfig.MaxConnLifetime = o.maxLifetime
	poolConfig.MaxConnIdleTime = o.maxIdleTime

	ctx, cancel := context.WithTimeout(ctx, o.connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	s := &Store{
		pool:   pool,
		logger: o.logger,
		now:    time.Now,
	}
	s.SetCodecs(store.FixedCodecs(store.DefaultCodecs(store.Keys(s))))

	o.logger.Info("PostgreSQL database opened", "host", poolConfig.ConnConfig.Host, "database", poolConfig.ConnConfig.Database)
	return s, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping returns nil if it can successfully talk to the database.
func (s *Store) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

// isUniqueViolation reports a unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isNoRows reports an empty single-row result.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

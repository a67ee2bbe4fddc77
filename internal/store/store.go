package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("store: row not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("store: duplicate row")
)

const (
	defaultQueryTimeout = 5 * time.Second
	uniqueViolation     = "23505"
)

type Store struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// Options configures the connection pool
type Options struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// NewStore creates a new database store
func NewStore(opts Options) (*Store, error) {
	db, err := sqlx.Connect("postgres", opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewFromDB(db, opts.QueryTimeout), nil
}

// NewFromDB wraps an existing connection pool
func NewFromDB(db *sqlx.DB, queryTimeout time.Duration) *Store {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Store{db: db, queryTimeout: queryTimeout}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

// begin bounds a query by the store timeout and records its latency.
func (s *Store) begin(ctx context.Context, query string) (context.Context, func()) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	start := time.Now()
	return ctx, func() {
		cancel()
		util.StoreQueryLatency.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Package store provides the Postgres-backed lookup-table and property
// providers consumed by the calculation packages. The free-text French
// range descriptions stored in the tables are parsed into structured
// numeric brackets here, at the load boundary, so the calculation core
// never does string pattern matching.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store wraps the connection pool and exposes the table providers.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to Postgres using the given URL and returns a Store.
func New(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

// Close closes the database connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Package store reads and writes the team_stats and matchups tables.
//
// Two backends share one query layer: Postgres through pgxpool, and an
// embedded SQLite database through database/sql. Callers acquire a Session
// per request and release it when the request is done.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bracketiq/madness-data/internal/config"
	"github.com/bracketiq/madness-data/internal/db"
	"github.com/bracketiq/madness-data/internal/stats"
)

// Store hands out request-scoped sessions over a pooled database handle.
type Store struct {
	dialect dialect
	acquire func(ctx context.Context) (conn, error)
	close   func()
}

// NewPostgres builds a Store over an existing pgx pool. The pool is expected
// to have the prepared statements from package db registered.
func NewPostgres(pool *pgxpool.Pool) *Store {
	return &Store{
		dialect: postgresDialect,
		acquire: func(ctx context.Context) (conn, error) {
			c, err := pool.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			return pgxConn{c}, nil
		},
		close: pool.Close,
	}
}

// NewSQLite builds a Store over an open SQLite handle.
func NewSQLite(sqlDB *sql.DB) *Store {
	return &Store{
		dialect: sqliteDialect,
		acquire: func(ctx context.Context) (conn, error) {
			c, err := sqlDB.Conn(ctx)
			if err != nil {
				return nil, err
			}
			return sqlConn{c}, nil
		},
		close: func() { _ = sqlDB.Close() },
	}
}

// Open connects to the backend selected by cfg.DatabaseURL.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to SQLite", "path", cfg.SQLitePath())
		return NewSQLite(sqlDB), nil
	default:
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Postgres", "max_conns", cfg.DBPoolMaxConns)
		return NewPostgres(pool.Pool), nil
	}
}

// Session acquires one connection for the caller. Close releases it.
func (s *Store) Session(ctx context.Context) (*Session, error) {
	c, err := s.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: c, dialect: s.dialect}, nil
}

// Close shuts down the underlying pool.
func (s *Store) Close() {
	s.close()
}

// TeamStatsForPair runs a pair lookup on its own short-lived session, so the
// Store can serve concurrent lookups without sharing a connection.
func (s *Store) TeamStatsForPair(ctx context.Context, year int, teamA, teamB string) ([]stats.TeamSeasonStats, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return sess.TeamStatsForPair(ctx, year, teamA, teamB)
}

// HealthCheck verifies a connection can be acquired and queried.
func (s *Store) HealthCheck(ctx context.Context) error {
	sess, err := s.Session(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()
	return sess.HealthCheck(ctx)
}

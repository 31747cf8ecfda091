// Package db opens the database handles behind the store: a pgxpool-based
// Postgres pool with prepared statement registration, or an embedded SQLite
// database for local runs and tests.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/bracketiq/madness-data/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new Postgres connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Prepared statement names.
const (
	StmtHealthCheck     = "health_check"
	StmtTeamStatsYears  = "team_stats_years"
	StmtMatchupsPerYear = "matchups_per_year"
)

// Statements maps each prepared statement name to its SQL. Backends without
// server-side preparation execute the text directly.
var Statements = map[string]string{
	StmtHealthCheck:     "SELECT 1",
	StmtTeamStatsYears:  "SELECT DISTINCT year FROM " + config.TeamStatsTable + " ORDER BY year",
	StmtMatchupsPerYear: "SELECT year, COUNT(*) FROM " + config.MatchupsTable + " GROUP BY year ORDER BY year",
}

// registerPreparedStatements registers the fixed statements the API and the
// loader use. Filtered queries are built per request and rely on pgx's
// statement cache.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

// OpenSQLite opens an embedded SQLite database. An in-memory database is
// private to one connection, so the handle is pinned to a single connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}
	return sqlDB, nil
}

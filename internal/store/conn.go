package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bracketiq/madness-data/internal/db"
)

// rows is the iteration surface shared by pgx.Rows and *sql.Rows.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// conn is one acquired connection on either backend.
type conn interface {
	Query(ctx context.Context, query string, args ...any) (rows, error)
	Exec(ctx context.Context, query string, args ...any) error
	CopyFrom(ctx context.Context, table string, columns []string, values [][]any) (int64, error)
	Release()
}

// --------------------------------------------------------------------------
// Postgres
// --------------------------------------------------------------------------

type pgxConn struct {
	c *pgxpool.Conn
}

func (p pgxConn) Query(ctx context.Context, query string, args ...any) (rows, error) {
	return p.c.Query(ctx, query, args...)
}

func (p pgxConn) Exec(ctx context.Context, query string, args ...any) error {
	_, err := p.c.Exec(ctx, query, args...)
	return err
}

func (p pgxConn) CopyFrom(ctx context.Context, table string, columns []string, values [][]any) (int64, error) {
	return p.c.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(values))
}

func (p pgxConn) Release() { p.c.Release() }

// --------------------------------------------------------------------------
// SQLite
// --------------------------------------------------------------------------

type sqlConn struct {
	c *sql.Conn
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }

func (s sqlConn) Query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := s.c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r}, nil
}

func (s sqlConn) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.c.ExecContext(ctx, query, args...)
	return err
}

// CopyFrom inserts all values inside one transaction with a prepared insert.
func (s sqlConn) CopyFrom(ctx context.Context, table string, columns []string, values [][]any) (int64, error) {
	tx, err := s.c.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), marks))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for i, row := range values {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return n, fmt.Errorf("insert row %d: %w", i, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (s sqlConn) Release() { _ = s.c.Close() }

// --------------------------------------------------------------------------
// Dialects
// --------------------------------------------------------------------------

type dialect struct {
	name string
	// bind returns the placeholder for the n-th (1-based) argument.
	bind func(n int) string
	// like is the case-insensitive pattern operator.
	like string
	// serial is the auto-assigned primary key column type.
	serial string
	// float is the floating point column type.
	float string
	// prepared reports whether db.Statements are registered server-side.
	prepared bool
}

var postgresDialect = dialect{
	name:     "postgres",
	bind:     func(n int) string { return "$" + strconv.Itoa(n) },
	like:     "ILIKE",
	serial:   "SERIAL PRIMARY KEY",
	float:    "DOUBLE PRECISION",
	prepared: true,
}

// SQLite's LIKE is case-insensitive for ASCII.
var sqliteDialect = dialect{
	name:   "sqlite",
	bind:   func(int) string { return "?" },
	like:   "LIKE",
	serial: "INTEGER PRIMARY KEY AUTOINCREMENT",
	float:  "REAL",
}

// statement returns what to send for a named statement from package db.
func (d dialect) statement(name string) string {
	if d.prepared {
		return name
	}
	return db.Statements[name]
}

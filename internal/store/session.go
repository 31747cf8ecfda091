package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/bracketiq/madness-data/internal/config"
	"github.com/bracketiq/madness-data/internal/db"
	"github.com/bracketiq/madness-data/internal/metrics"
	"github.com/bracketiq/madness-data/internal/stats"
)

// Session is a single acquired connection. It is not safe for concurrent use.
type Session struct {
	conn    conn
	dialect dialect
}

// Close releases the connection back to the pool.
func (s *Session) Close() {
	s.conn.Release()
}

// Criteria narrows a read. Zero values leave the corresponding bound open.
type Criteria struct {
	FromYear int    // inclusive lower bound
	ToYear   int    // inclusive upper bound
	Team     string // case-insensitive substring of the team name
}

// YearCount is the number of stored matchups for one year.
type YearCount struct {
	Year  int
	Count int
}

// HealthCheck runs the health_check statement.
func (s *Session) HealthCheck(ctx context.Context) (err error) {
	defer observe("health_check", &err)
	r, err := s.conn.Query(ctx, s.dialect.statement(db.StmtHealthCheck))
	if err != nil {
		return err
	}
	defer r.Close()
	for r.Next() {
	}
	return r.Err()
}

// TeamStatsForPair returns every team_stats row for year whose team equals
// teamA or teamB exactly.
func (s *Session) TeamStatsForPair(ctx context.Context, year int, teamA, teamB string) (out []stats.TeamSeasonStats, err error) {
	defer observe("team_stats_pair", &err)
	q := fmt.Sprintf("SELECT %s FROM %s WHERE year = %s AND team IN (%s, %s)",
		strings.Join(teamColumns, ", "), config.TeamStatsTable,
		s.dialect.bind(1), s.dialect.bind(2), s.dialect.bind(3))
	return s.scanTeamStats(ctx, q, year, teamA, teamB)
}

// TeamStats returns team_stats rows matching c, ordered by year and team.
func (s *Session) TeamStats(ctx context.Context, c Criteria) (out []stats.TeamSeasonStats, err error) {
	defer observe("team_stats", &err)
	where, args := s.where(c, "team")
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY year, team",
		strings.Join(teamColumns, ", "), config.TeamStatsTable, where)
	return s.scanTeamStats(ctx, q, args...)
}

// Matchups returns matchup rows matching c, ordered by id. The team criterion
// matches either side of the pairing.
func (s *Session) Matchups(ctx context.Context, c Criteria) (out []stats.MatchupRecord, err error) {
	defer observe("matchups", &err)
	where, args := s.where(c, "team_a", "team_b")
	q := fmt.Sprintf("SELECT id, %s FROM %s%s ORDER BY id",
		strings.Join(matchupColumns, ", "), config.MatchupsTable, where)

	r, err := s.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for r.Next() {
		var m stats.MatchupRecord
		dest := []any{&m.ID, &m.Year, &m.TeamA, &m.TeamB, &m.Winner, &m.Seed, &m.WinPct}
		for i := range m.Diffs {
			dest = append(dest, &m.Diffs[i])
		}
		if err := r.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan matchup: %w", err)
		}
		out = append(out, m)
	}
	return out, r.Err()
}

// Years lists the distinct years present in team_stats.
func (s *Session) Years(ctx context.Context) (years []int, err error) {
	defer observe("team_stats_years", &err)
	r, err := s.conn.Query(ctx, s.dialect.statement(db.StmtTeamStatsYears))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	for r.Next() {
		var y int
		if err := r.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, r.Err()
}

// MatchupCounts returns the number of stored matchups per year.
func (s *Session) MatchupCounts(ctx context.Context) (counts []YearCount, err error) {
	defer observe("matchups_per_year", &err)
	r, err := s.conn.Query(ctx, s.dialect.statement(db.StmtMatchupsPerYear))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	for r.Next() {
		var yc YearCount
		if err := r.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, yc)
	}
	return counts, r.Err()
}

// InsertTeamStats bulk-inserts rows and returns how many were written.
func (s *Session) InsertTeamStats(ctx context.Context, rows []stats.TeamSeasonStats) (n int64, err error) {
	defer observe("insert_team_stats", &err)
	values := make([][]any, 0, len(rows))
	for _, t := range rows {
		t.Sanitize()
		v := []any{t.Team, t.Year, nullable(t.Conference), value(t.Seed), value(t.Wins), value(t.Losses), value(t.WinPct)}
		for _, x := range t.Values {
			v = append(v, value(x))
		}
		values = append(values, append(v, nullable(t.NCAAWins), nullable(t.NCAALoss)))
	}
	n, err = s.conn.CopyFrom(ctx, config.TeamStatsTable, teamColumns, values)
	if err == nil {
		metrics.RowsLoadedTotal.WithLabelValues(config.TeamStatsTable).Add(float64(n))
	}
	return n, err
}

// InsertMatchups bulk-inserts rows; ids are assigned by the database.
func (s *Session) InsertMatchups(ctx context.Context, rows []stats.MatchupRecord) (n int64, err error) {
	defer observe("insert_matchups", &err)
	values := make([][]any, 0, len(rows))
	for _, m := range rows {
		m.Sanitize()
		v := []any{m.Year, m.TeamA, m.TeamB, m.Winner, m.Seed, value(m.WinPct)}
		for _, x := range m.Diffs {
			v = append(v, value(x))
		}
		values = append(values, v)
	}
	n, err = s.conn.CopyFrom(ctx, config.MatchupsTable, matchupColumns, values)
	if err == nil {
		metrics.RowsLoadedTotal.WithLabelValues(config.MatchupsTable).Add(float64(n))
	}
	return n, err
}

// CreateSchema creates both tables if they do not exist.
func (s *Session) CreateSchema(ctx context.Context) (err error) {
	defer observe("create_schema", &err)
	for _, stmt := range schema(s.dialect) {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *Session) scanTeamStats(ctx context.Context, q string, args ...any) ([]stats.TeamSeasonStats, error) {
	r, err := s.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []stats.TeamSeasonStats
	for r.Next() {
		var (
			t                  stats.TeamSeasonStats
			conf, ncaaW, ncaaL *string
		)
		dest := []any{&t.Team, &t.Year, &conf, &t.Seed, &t.Wins, &t.Losses, &t.WinPct}
		for i := range t.Values {
			dest = append(dest, &t.Values[i])
		}
		dest = append(dest, &ncaaW, &ncaaL)
		if err := r.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan team stats: %w", err)
		}
		t.Conference, t.NCAAWins, t.NCAALoss = deref(conf), deref(ncaaW), deref(ncaaL)
		out = append(out, t)
	}
	return out, r.Err()
}

// where renders c as a WHERE clause. The team substring is matched against
// any of teamCols.
func (s *Session) where(c Criteria, teamCols ...string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return s.dialect.bind(len(args))
	}

	switch {
	case c.FromYear > 0 && c.ToYear > 0:
		conds = append(conds, fmt.Sprintf("year BETWEEN %s AND %s", arg(c.FromYear), arg(c.ToYear)))
	case c.FromYear > 0:
		conds = append(conds, "year >= "+arg(c.FromYear))
	case c.ToYear > 0:
		conds = append(conds, "year <= "+arg(c.ToYear))
	}

	if c.Team != "" {
		pattern := "%" + escapeLike(c.Team) + "%"
		var ors []string
		for _, col := range teamCols {
			ors = append(ors, fmt.Sprintf(`%s %s %s ESCAPE '\'`, col, s.dialect.like, arg(pattern)))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func observe(op string, err *error) {
	status := "ok"
	if *err != nil {
		status = "error"
	}
	metrics.DBQueriesTotal.WithLabelValues(op, status).Inc()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// value unwraps an optional column so both drivers see a plain value or nil.
func value[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

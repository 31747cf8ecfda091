package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketiq/madness-data/internal/db"
	"github.com/bracketiq/madness-data/internal/stats"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	s := NewSQLite(sqlDB)
	t.Cleanup(s.Close)

	sess, err := s.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()
	require.NoError(t, sess.CreateSchema(ctx))
	// Idempotent.
	require.NoError(t, sess.CreateSchema(ctx))
	return s
}

func teamRow(name string, year, seed int, ps float64) stats.TeamSeasonStats {
	t := stats.TeamSeasonStats{
		Team:       name,
		Year:       year,
		Conference: "Big 12",
		Seed:       stats.Int(seed),
		Wins:       stats.Int(30),
		Losses:     stats.Int(4),
		WinPct:     stats.Float(0.882),
		NCAAWins:   "['SIU Edwardsville']",
	}
	for _, s := range stats.All() {
		t.Values.Set(s, float64(s)+0.5)
	}
	t.Values.Set(stats.PointsScored, ps)
	return t
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	sess, err := s.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	duke := teamRow("Duke", 2025, 1, 82.4)
	duke.Values.Set(stats.Steals, math.NaN())
	duke.Conference = ""

	n, err := sess.InsertTeamStats(ctx, []stats.TeamSeasonStats{
		teamRow("Houston", 2024, 1, 73.1),
		teamRow("Houston", 2025, 1, 74.0),
		teamRow("SIU Edwardsville", 2025, 16, 70.5),
		duke,
		teamRow("St. Mary's_College", 2020, 6, 71.0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	mk := func(year int, a, b string, seedDiff int) stats.MatchupRecord {
		m := stats.MatchupRecord{Year: year, TeamA: a, TeamB: b, Winner: 1, Seed: seedDiff, WinPct: stats.Float(0.1)}
		m.Diffs.Set(stats.PointsScored, 3.5)
		return m
	}
	bad := mk(2021, "Gonzaga", "Baylor", -1)
	bad.Diffs.Set(stats.Assists, math.Inf(1))

	n, err = sess.InsertMatchups(ctx, []stats.MatchupRecord{
		mk(2019, "Virginia", "Texas Tech", 2),
		mk(2020, "Houston", "Kansas", -2),
		bad,
		mk(2020, "Duke", "Houston", 0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestTeamStatsCriteria(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()
	sess, err := s.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	all, err := sess.TeamStats(ctx, Criteria{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, 2020, all[0].Year, "ordered by year")

	single, err := sess.TeamStats(ctx, Criteria{FromYear: 2025, ToYear: 2025})
	require.NoError(t, err)
	assert.Len(t, single, 3)

	from, err := sess.TeamStats(ctx, Criteria{FromYear: 2024})
	require.NoError(t, err)
	assert.Len(t, from, 4)

	to, err := sess.TeamStats(ctx, Criteria{ToYear: 2024})
	require.NoError(t, err)
	assert.Len(t, to, 2)

	byName, err := sess.TeamStats(ctx, Criteria{Team: "hOuS"})
	require.NoError(t, err)
	require.Len(t, byName, 2)
	for _, r := range byName {
		assert.Equal(t, "Houston", r.Team)
	}

	both, err := sess.TeamStats(ctx, Criteria{FromYear: 2025, ToYear: 2025, Team: "houston"})
	require.NoError(t, err)
	assert.Len(t, both, 1)

	wildcard, err := sess.TeamStats(ctx, Criteria{Team: "_"})
	require.NoError(t, err)
	require.Len(t, wildcard, 1, "underscore is matched literally")
	assert.Equal(t, "St. Mary's_College", wildcard[0].Team)
}

func TestTeamStatsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	rows, err := s.TeamStatsForPair(ctx, 2025, "Duke", "Houston")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var duke stats.TeamSeasonStats
	for _, r := range rows {
		if r.Team == "Duke" {
			duke = r
		}
	}
	require.Equal(t, "Duke", duke.Team)
	assert.Equal(t, "", duke.Conference)
	require.NotNil(t, duke.Seed)
	assert.Equal(t, 1, *duke.Seed)
	ps, ok := duke.Values.Get(stats.PointsScored)
	require.True(t, ok)
	assert.Equal(t, 82.4, ps)
	_, ok = duke.Values.Get(stats.Steals)
	assert.False(t, ok, "NaN is stored as NULL")
	assert.Equal(t, "['SIU Edwardsville']", duke.NCAAWins)
	assert.Equal(t, "", duke.NCAALoss)

	none, err := s.TeamStatsForPair(ctx, 2025, "duke", "houston")
	require.NoError(t, err)
	assert.Empty(t, none, "pair lookup is exact")
}

func TestMatchupsCriteria(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()
	sess, err := s.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	all, err := sess.Matchups(ctx, Criteria{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].ID, all[i-1].ID)
	}
	assert.Equal(t, "Virginia", all[0].TeamA)
	assert.Equal(t, "Texas Tech", all[0].TeamB)
	v, ok := all[0].Diffs.Get(stats.PointsScored)
	require.True(t, ok)
	assert.Equal(t, 3.5, v)

	_, ok = all[2].Diffs.Get(stats.Assists)
	assert.False(t, ok, "infinite differential stored as NULL")

	y2020, err := sess.Matchups(ctx, Criteria{FromYear: 2020, ToYear: 2020})
	require.NoError(t, err)
	assert.Len(t, y2020, 2)

	houston, err := sess.Matchups(ctx, Criteria{Team: "HOUSTON"})
	require.NoError(t, err)
	assert.Len(t, houston, 2, "matches either side")

	counts, err := sess.MatchupCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []YearCount{{2019, 1}, {2020, 2}, {2021, 1}}, counts)

	years, err := sess.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2024, 2025}, years)
}

func TestHealthCheck(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.HealthCheck(context.Background()))
}

func TestWhereClause(t *testing.T) {
	pg := &Session{dialect: postgresDialect}
	where, args := pg.where(Criteria{FromYear: 2019, ToYear: 2021, Team: "duke"}, "team_a", "team_b")
	assert.Equal(t, ` WHERE year BETWEEN $1 AND $2 AND (team_a ILIKE $3 ESCAPE '\' OR team_b ILIKE $4 ESCAPE '\')`, where)
	assert.Equal(t, []any{2019, 2021, "%duke%", "%duke%"}, args)

	where, args = pg.where(Criteria{}, "team")
	assert.Empty(t, where)
	assert.Empty(t, args)

	lite := &Session{dialect: sqliteDialect}
	where, _ = lite.where(Criteria{ToYear: 2020, Team: "50%"}, "team")
	assert.Equal(t, ` WHERE year <= ? AND (team LIKE ? ESCAPE '\')`, where)
}

func TestSchemaCoversCanonicalColumns(t *testing.T) {
	stmts := schema(sqliteDialect)
	require.Len(t, stmts, 3)
	for _, c := range teamColumns {
		assert.Contains(t, stmts[0], "  "+c+" ")
	}
	for _, c := range matchupColumns {
		assert.Contains(t, stmts[1], "  "+c+" ")
	}
	assert.Contains(t, stmts[1], "INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.Contains(t, schema(postgresDialect)[1], "SERIAL PRIMARY KEY")
}

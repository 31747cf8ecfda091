package store

import (
	"fmt"
	"strings"

	"github.com/bracketiq/madness-data/internal/config"
	"github.com/bracketiq/madness-data/internal/stats"
)

// Column lists in canonical order. The matchup table spells the team columns
// in snake case; everything else shares the CSV names.
var (
	teamColumns    = stats.TeamColumns()
	matchupColumns = dbMatchupColumns()
)

func dbMatchupColumns() []string {
	cols := stats.MatchupColumns()
	for i, c := range cols {
		switch c {
		case stats.ColTeamA:
			cols[i] = "team_a"
		case stats.ColTeamB:
			cols[i] = "team_b"
		}
	}
	return cols
}

// schema returns the CREATE statements for both tables.
func schema(d dialect) []string {
	var team strings.Builder
	fmt.Fprintf(&team, "CREATE TABLE IF NOT EXISTS %s (\n", config.TeamStatsTable)
	team.WriteString("  team TEXT NOT NULL,\n  year INTEGER NOT NULL,\n  conference TEXT,\n")
	team.WriteString("  seed INTEGER,\n  wins INTEGER,\n  losses INTEGER,\n")
	fmt.Fprintf(&team, "  win_pct %s,\n", d.float)
	for _, s := range stats.All() {
		fmt.Fprintf(&team, "  %s %s,\n", s.Name(), d.float)
	}
	team.WriteString("  ncaa_wins TEXT,\n  ncaa_loss TEXT,\n  PRIMARY KEY (team, year)\n)")

	var m strings.Builder
	fmt.Fprintf(&m, "CREATE TABLE IF NOT EXISTS %s (\n", config.MatchupsTable)
	fmt.Fprintf(&m, "  id %s,\n", d.serial)
	m.WriteString("  year INTEGER NOT NULL,\n  team_a TEXT NOT NULL,\n  team_b TEXT NOT NULL,\n")
	m.WriteString("  winner INTEGER NOT NULL,\n  diff_seed INTEGER NOT NULL,\n")
	fmt.Fprintf(&m, "  diff_win_pct %s", d.float)
	for _, s := range stats.All() {
		fmt.Fprintf(&m, ",\n  %s %s", s.DiffName(), d.float)
	}
	m.WriteString("\n)")

	return []string{
		team.String(),
		m.String(),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_year_idx ON %s (year)", config.MatchupsTable, config.MatchupsTable),
	}
}

package ingest

import (
	"sort"
	"strings"

	"github.com/bracketiq/madness-data/internal/dataset"
	"github.com/bracketiq/madness-data/internal/matchup"
	"github.com/bracketiq/madness-data/internal/scrape"
	"github.com/bracketiq/madness-data/internal/stats"
)

type teamYear struct {
	team string
	year int
}

// Merge left-joins the tournament field with scraped statistics on
// (team, year). Seed, conference and record come from the field; the win
// percentage is wins / (wins + losses) rounded to three decimals, or 0 for a
// team without games.
func Merge(field []dataset.FieldEntry, scraped []stats.TeamSeasonStats) []stats.TeamSeasonStats {
	byKey := make(map[teamYear]stats.TeamSeasonStats, len(scraped))
	for _, s := range scraped {
		byKey[teamYear{s.Team, s.Year}] = s
	}

	out := make([]stats.TeamSeasonStats, 0, len(field))
	for _, e := range field {
		row := byKey[teamYear{e.Team, e.Year}]
		row.Team, row.Year, row.Conference = e.Team, e.Year, e.Conference
		row.Seed = stats.Int(e.Seed)
		row.Wins, row.Losses = stats.Int(e.Wins), stats.Int(e.Losses)

		pct := 0.0
		if games := e.Wins + e.Losses; games > 0 {
			pct = matchup.Round3(float64(e.Wins) / float64(games))
		}
		row.WinPct = &pct
		out = append(out, row)
	}
	return out
}

// UniqueTeams returns the distinct team names of the field, sorted. With
// slug set, names are converted to their lower-case dashed form first.
func UniqueTeams(field []dataset.FieldEntry, slug bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range field {
		name := e.Team
		if slug {
			name = scrape.LowerDashed(name)
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MapTeams pairs each unique team name with the slug at the same position.
// Extra entries on either side are dropped; a repeated name keeps its last
// slug.
func MapTeams(names, slugs []string) [][2]string {
	n := min(len(names), len(slugs))
	index := make(map[string]int, n)
	var out [][2]string
	for i := 0; i < n; i++ {
		name, slug := strings.TrimSpace(names[i]), strings.TrimSpace(slugs[i])
		if j, ok := index[name]; ok {
			out[j][1] = slug
			continue
		}
		index[name] = len(out)
		out = append(out, [2]string{name, slug})
	}
	return out
}

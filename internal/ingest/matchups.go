package ingest

import (
	"log/slog"
	"strings"

	"github.com/bracketiq/madness-data/internal/matchup"
	"github.com/bracketiq/madness-data/internal/scrape"
	"github.com/bracketiq/madness-data/internal/stats"
)

type gameKey struct {
	year   int
	lo, hi string
}

func newGameKey(year int, a, b string) gameKey {
	if a > b {
		a, b = b, a
	}
	return gameKey{year, a, b}
}

// BuildMatchups derives one matchup per tournament game from the teams'
// recorded wins. Every winner is teamA, so winner is always 1.
//
// Names are cleaned before comparison and each opponent is resolved to the
// closest known team; matches under scrape.MatchThreshold are logged as
// possible mismatches but still used. Opponents without a row for the year
// are skipped, and a game reported by both teams is kept once.
func BuildMatchups(rows []stats.TeamSeasonStats, logger *slog.Logger) ([]stats.MatchupRecord, Result) {
	var result Result

	cleaned := make([]stats.TeamSeasonStats, len(rows))
	byKey := make(map[teamYear]stats.TeamSeasonStats, len(rows))
	names := make([]string, 0, len(rows))
	for i, r := range rows {
		r.Team = scrape.CleanTeamName(r.Team)
		cleaned[i] = r
		names = append(names, r.Team)
		if _, dup := byKey[teamYear{r.Team, r.Year}]; !dup {
			byKey[teamYear{r.Team, r.Year}] = r
		}
	}
	matcher := scrape.NewMatcher(names)

	var out []stats.MatchupRecord
	seen := make(map[gameKey]bool)
	for _, a := range cleaned {
		if strings.TrimSpace(a.NCAAWins) == "" {
			continue
		}
		for _, opp := range strings.Split(a.NCAAWins, ",") {
			name := scrape.CleanTeamName(opp)
			if name == "" {
				continue
			}
			best, score, ok := matcher.Best(name)
			if !ok || best == a.Team {
				continue
			}
			if score < scrape.MatchThreshold {
				logger.Warn("Possible name mismatch", "name", name, "match", best, "score", score)
			}

			b, found := byKey[teamYear{best, a.Year}]
			if !found {
				logger.Warn("No data found for matchup", "team_a", a.Team, "team_b", best, "year", a.Year)
				result.Missing++
				continue
			}

			key := newGameKey(a.Year, a.Team, b.Team)
			if seen[key] {
				result.Skipped++
				continue
			}
			seen[key] = true

			out = append(out, matchup.Compute(a.Year, a, b).Record(1))
			result.Written++
		}
	}
	return out, result
}

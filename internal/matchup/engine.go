package matchup

import (
	"context"
	"errors"
	"fmt"

	"github.com/bracketiq/madness-data/internal/metrics"
	"github.com/bracketiq/madness-data/internal/stats"
)

var (
	// ErrNotFound means one or both teams have no statistics for the year.
	ErrNotFound = errors.New("one or both of the teams not in table")
	// ErrAmbiguous means the store returned more rows than the two requested
	// teams can account for.
	ErrAmbiguous = errors.New("more than one statistics row per team")
)

// LookupError describes a failed differential lookup.
type LookupError struct {
	Year  int
	TeamA string
	TeamB string
	Rows  int
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("matchup %s vs %s (%d): %d rows: %v", e.TeamA, e.TeamB, e.Year, e.Rows, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Kind names the error category for transport and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguous):
		return "ambiguous"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unavailable"
	}
}

// PairFinder fetches the statistics rows of the named teams for one year.
type PairFinder interface {
	TeamStatsForPair(ctx context.Context, year int, teamA, teamB string) ([]stats.TeamSeasonStats, error)
}

// Lookup loads both teams' statistics and computes the differential of teamA
// over teamB.
//
// The row whose team name equals teamA exactly is oriented as teamA. When no
// row matches exactly the first row returned is teamA.
func Lookup(ctx context.Context, f PairFinder, year int, teamA, teamB string) (Differential, error) {
	rows, err := f.TeamStatsForPair(ctx, year, teamA, teamB)
	if err != nil {
		metrics.DifferentialLookups.WithLabelValues(Kind(err)).Inc()
		return Differential{}, fmt.Errorf("load team stats for %d: %w", year, err)
	}

	want := 2
	if teamA == teamB {
		want = 1
	}
	switch {
	case len(rows) > want:
		err = &LookupError{Year: year, TeamA: teamA, TeamB: teamB, Rows: len(rows), Err: ErrAmbiguous}
	case len(rows) < want:
		err = &LookupError{Year: year, TeamA: teamA, TeamB: teamB, Rows: len(rows), Err: ErrNotFound}
	}
	metrics.DifferentialLookups.WithLabelValues(Kind(err)).Inc()
	if err != nil {
		return Differential{}, err
	}

	if want == 1 {
		return Compute(year, rows[0], rows[0]), nil
	}
	a, b := rows[0], rows[1]
	if b.Team == teamA && a.Team != teamA {
		a, b = b, a
	}
	return Compute(year, a, b), nil
}

// Package query implements the filtered read paths over stored matchups and
// team statistics.
package query

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/bracketiq/madness-data/internal/stats"
	"github.com/bracketiq/madness-data/internal/store"
)

// Filter is the optional (start, end, team) filter shared by both read paths.
// Zero values mean "no filter".
type Filter struct {
	StartYear int
	EndYear   int
	Team      string
}

// Reader is the store surface the read paths need. *store.Session satisfies it.
type Reader interface {
	TeamStats(ctx context.Context, c store.Criteria) ([]stats.TeamSeasonStats, error)
	Matchups(ctx context.Context, c store.Criteria) ([]stats.MatchupRecord, error)
}

// ParseFilter reads start_year, end_year and team from query parameters.
// Missing or malformed values are ignored.
func ParseFilter(v url.Values) Filter {
	return Filter{
		StartYear: parseYear(v.Get("start_year")),
		EndYear:   parseYear(v.Get("end_year")),
		Team:      strings.TrimSpace(v.Get("team")),
	}
}

// Year is the filter for a single year.
func Year(y int) Filter {
	return Filter{StartYear: y, EndYear: y}
}

// Criteria maps the filter onto store criteria. Both bounds give an inclusive
// range; a start year alone selects that year; an end year alone is ignored.
func (f Filter) Criteria() store.Criteria {
	c := store.Criteria{Team: f.Team}
	switch {
	case f.StartYear > 0 && f.EndYear > 0:
		c.FromYear, c.ToYear = f.StartYear, f.EndYear
	case f.StartYear > 0:
		c.FromYear, c.ToYear = f.StartYear, f.StartYear
	}
	return c
}

// Matchups returns stored matchups matching f with non-finite values removed.
func Matchups(ctx context.Context, r Reader, f Filter) ([]stats.MatchupRecord, error) {
	rows, err := r.Matchups(ctx, f.Criteria())
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Sanitize()
	}
	return nonNil(rows), nil
}

// TeamStats returns stored team statistics matching f with non-finite values
// removed.
func TeamStats(ctx context.Context, r Reader, f Filter) ([]stats.TeamSeasonStats, error) {
	rows, err := r.TeamStats(ctx, f.Criteria())
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Sanitize()
	}
	return nonNil(rows), nil
}

func parseYear(s string) int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y <= 0 {
		return 0
	}
	return y
}

// nonNil keeps empty results rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package bracket

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bracketiq/madness-data/internal/matchup"
	"github.com/bracketiq/madness-data/internal/metrics"
)

const defaultConcurrency = 8

// Game is a pairing as published: labels, outcome when played, and the
// statistical differential of teamA over teamB.
type Game struct {
	Region          string                `json:"region"`
	Matchup         string                `json:"matchup"`
	TeamA           string                `json:"team_a"`
	SeedA           int                   `json:"seed_a"`
	TeamB           string                `json:"team_b"`
	SeedB           int                   `json:"seed_b"`
	Day             string                `json:"day"`
	Date            string                `json:"date"`
	Result          *string               `json:"result,omitempty"`
	Winner          *string               `json:"winner,omitempty"`
	Upset           *bool                 `json:"upset,omitempty"`
	PointDifference *int                  `json:"point_difference,omitempty"`
	StatsAvailable  bool                  `json:"stats_available"`
	StatsError      string                `json:"stats_error,omitempty"`
	Stats           *matchup.Differential `json:"stats,omitempty"`
}

// Aggregator joins pairings with differentials from one reference season.
type Aggregator struct {
	finder      matchup.PairFinder
	year        int
	concurrency int
	logger      *slog.Logger
}

// NewAggregator creates an Aggregator. finder must be safe for concurrent use.
func NewAggregator(finder matchup.PairFinder, statsYear int, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		finder:      finder,
		year:        statsYear,
		concurrency: defaultConcurrency,
		logger:      logger,
	}
}

// Games enriches every pairing, preserving input order. A failed lookup marks
// only its own game unavailable; the call fails only when ctx is done.
func (a *Aggregator) Games(ctx context.Context, pairings []Pairing) ([]Game, error) {
	games := make([]Game, len(pairings))
	for i, p := range pairings {
		games[i] = newGame(p)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, p := range pairings {
		g.Go(func() error {
			d, err := matchup.Lookup(gctx, a.finder, a.year, p.TeamA, p.TeamB)
			if err == nil {
				games[i].StatsAvailable = true
				games[i].Stats = &d
				return nil
			}

			kind := matchup.Kind(err)
			if kind == "canceled" {
				return err
			}
			games[i].StatsError = kind
			metrics.BracketEnrichmentFailures.WithLabelValues(kind).Inc()
			switch kind {
			case "not_found", "ambiguous":
				a.logger.Warn("Bracket pairing without stats",
					"team_a", p.TeamA, "team_b", p.TeamB, "year", a.year, "kind", kind)
			default:
				a.logger.Error("Bracket stats lookup failed",
					"team_a", p.TeamA, "team_b", p.TeamB, "year", a.year, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return games, nil
}

func newGame(p Pairing) Game {
	g := Game{
		Region:  p.Region,
		Matchup: p.Label(),
		TeamA:   p.TeamA,
		SeedA:   p.SeedA,
		TeamB:   p.TeamB,
		SeedB:   p.SeedB,
		Day:     p.Day,
		Date:    p.Date,
	}
	if r, ok := p.Result(); ok {
		g.Result = &r.Label
		if r.Winner != "" {
			g.Winner = &r.Winner
		}
		g.Upset = &r.Upset
		g.PointDifference = &r.PointDifference
	}
	return g
}

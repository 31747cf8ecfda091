package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bracketiq/madness-data/internal/dataset"
	"github.com/bracketiq/madness-data/internal/scrape"
	"github.com/bracketiq/madness-data/internal/stats"
)

// FieldSource fetches one year's tournament field.
type FieldSource interface {
	Field(ctx context.Context, year int) ([]dataset.FieldEntry, error)
}

// ScrapeField collects the fields of every year in [from, to]. Years that
// fail are logged and skipped.
func ScrapeField(ctx context.Context, src FieldSource, from, to int, logger *slog.Logger) ([]dataset.FieldEntry, Result) {
	var (
		result Result
		all    []dataset.FieldEntry
	)
	for year := from; year <= to; year++ {
		if ctx.Err() != nil {
			result.AddErrorf("interrupted before %d: %v", year, ctx.Err())
			break
		}
		entries, err := src.Field(ctx, year)
		if err != nil {
			logger.Warn("Failed to retrieve field", "year", year, "error", err)
			result.AddErrorf("field %d: %v", year, err)
			continue
		}
		if len(entries) == 0 {
			result.Skipped++
			continue
		}
		all = append(all, entries...)
		result.Fetched += len(entries)
		logger.Info("Scraped field", "year", year, "teams", len(entries))
	}
	return all, result
}

// TeamStatsSource fetches one team's season statistics.
type TeamStatsSource interface {
	TeamStats(ctx context.Context, team string, year int) (stats.TeamSeasonStats, error)
	URL(team string, year int) string
}

// StatsOptions configures a statistics scrape.
type StatsOptions struct {
	// ProgressPath receives a snapshot of the rows scraped so far every
	// ProgressEvery teams. Empty disables snapshots.
	ProgressPath  string
	ProgressEvery int
	// A random pause in [MinDelay, MaxDelay) follows every team.
	MinDelay time.Duration
	MaxDelay time.Duration
}

// StatsRun is the outcome of a statistics scrape.
type StatsRun struct {
	Rows    []stats.TeamSeasonStats
	Missing []dataset.MissingTeam
	Result  Result
}

// ScrapeStats fetches statistics for every field entry in order. Teams
// without a page are recorded as missing; other failures are logged and
// skipped. Only context cancellation stops the run early, returning what was
// collected.
func ScrapeStats(ctx context.Context, src TeamStatsSource, entries []dataset.FieldEntry, opts StatsOptions, logger *slog.Logger) (StatsRun, error) {
	var run StatsRun
	for i, e := range entries {
		logger.Info("Fetching stats", "team", e.Team, "year", e.Year)
		ts, err := src.TeamStats(ctx, e.Team, e.Year)
		switch {
		case err == nil:
			run.Rows = append(run.Rows, ts)
			run.Result.Fetched++
		case errors.Is(err, scrape.ErrPageNotFound):
			logger.Warn("Page not found", "team", e.Team, "year", e.Year, "url", src.URL(e.Team, e.Year))
			run.Missing = append(run.Missing, dataset.MissingTeam{Team: e.Team, Year: e.Year, URL: src.URL(e.Team, e.Year)})
			run.Result.Missing++
		case ctx.Err() != nil:
			return run, ctx.Err()
		default:
			logger.Error("Failed to retrieve stats", "team", e.Team, "year", e.Year, "error", err)
			run.Result.AddErrorf("%s (%d): %v", e.Team, e.Year, err)
		}

		processed := i + 1
		if opts.ProgressPath != "" && opts.ProgressEvery > 0 && processed%opts.ProgressEvery == 0 {
			if err := writeProgress(opts.ProgressPath, run.Rows); err != nil {
				logger.Error("Failed to save progress", "path", opts.ProgressPath, "error", err)
			} else {
				logger.Info("Progress saved", "processed", processed, "rows", len(run.Rows))
			}
		}

		if processed < len(entries) {
			if err := pause(ctx, opts.MinDelay, opts.MaxDelay); err != nil {
				return run, err
			}
		}
	}
	return run, nil
}

func writeProgress(path string, rows []stats.TeamSeasonStats) error {
	return dataset.WriteFile(path, func(w io.Writer) error {
		return dataset.WriteTeamStats(w, rows)
	})
}

func pause(ctx context.Context, lo, hi time.Duration) error {
	d := lo
	if hi > lo {
		d += rand.N(hi - lo)
	}
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

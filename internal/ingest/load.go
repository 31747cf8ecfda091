package ingest

import (
	"context"
	"log/slog"

	"github.com/bracketiq/madness-data/internal/stats"
)

// Loader is the bulk-insert surface of a store session.
type Loader interface {
	InsertTeamStats(ctx context.Context, rows []stats.TeamSeasonStats) (int64, error)
	InsertMatchups(ctx context.Context, rows []stats.MatchupRecord) (int64, error)
}

// loadBatchSize bounds the rows sent per bulk insert.
const loadBatchSize = 1000

// LoadTeamStats inserts rows in batches. A failed batch is recorded and the
// remaining batches are still attempted.
func LoadTeamStats(ctx context.Context, l Loader, rows []stats.TeamSeasonStats, logger *slog.Logger) Result {
	return loadBatches(ctx, rows, "team_stats", logger, func(batch []stats.TeamSeasonStats) (int64, error) {
		return l.InsertTeamStats(ctx, batch)
	})
}

// LoadMatchups inserts rows in batches.
func LoadMatchups(ctx context.Context, l Loader, rows []stats.MatchupRecord, logger *slog.Logger) Result {
	return loadBatches(ctx, rows, "matchups", logger, func(batch []stats.MatchupRecord) (int64, error) {
		return l.InsertMatchups(ctx, batch)
	})
}

func loadBatches[T any](ctx context.Context, rows []T, table string, logger *slog.Logger, insert func([]T) (int64, error)) Result {
	result := Result{Fetched: len(rows)}
	for start := 0; start < len(rows); start += loadBatchSize {
		if err := ctx.Err(); err != nil {
			result.AddErrorf("%s: %v", table, err)
			break
		}
		end := min(start+loadBatchSize, len(rows))
		n, err := insert(rows[start:end])
		if err != nil {
			result.AddErrorf("%s rows %d-%d: %v", table, start, end-1, err)
			continue
		}
		result.Written += int(n)
		logger.Info("Loaded batch", "table", table, "rows", n, "total", result.Written)
	}
	return result
}

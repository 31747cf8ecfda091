// Command ingest is the March Madness data pipeline CLI.
//
// Usage:
//
//	madness-ingest scrape field --from 2008 --to 2025 --out field.csv
//	madness-ingest scrape stats --field field.csv --mapping mapping.csv --out team_stats_raw.csv
//	madness-ingest merge --field field.csv --stats team_stats_raw.csv --out team_stats.csv
//	madness-ingest build matchups --in team_stats.csv --out matchups.csv
//	madness-ingest init-db
//	madness-ingest load teams --file team_stats.csv
//	madness-ingest load matchups --file matchups.csv
//	madness-ingest status
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bracketiq/madness-data/internal/config"
	"github.com/bracketiq/madness-data/internal/dataset"
	"github.com/bracketiq/madness-data/internal/ingest"
	"github.com/bracketiq/madness-data/internal/scrape"
	"github.com/bracketiq/madness-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	root := &cobra.Command{
		Use:          "madness-ingest",
		Short:        "March Madness data pipeline CLI",
		SilenceUsage: true,
	}

	root.AddCommand(initDBCmd())
	root.AddCommand(loadCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(scrapeCmd())
	root.AddCommand(mergeCmd())
	root.AddCommand(buildCmd())
	root.AddCommand(teamsCmd())
	root.AddCommand(csvCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Database commands
// --------------------------------------------------------------------------

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the team_stats and matchups tables if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(func(ctx context.Context, sess *store.Session) error {
				if err := sess.CreateSchema(ctx); err != nil {
					return err
				}
				logger.Info("Schema ready")
				return nil
			})
		},
	}
}

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk-load CSV files into the database",
	}
	cmd.AddCommand(loadTeamsCmd())
	cmd.AddCommand(loadMatchupsCmd())
	return cmd
}

func loadTeamsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Load team season statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := dataset.ReadFile(file, dataset.ReadTeamStats)
			if err != nil {
				return err
			}
			return runDB(func(ctx context.Context, sess *store.Session) error {
				start := time.Now()
				result := ingest.LoadTeamStats(ctx, sess, rows, logger)
				return finish("Team stats load", start, result)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "team_stats.csv", "Team statistics CSV")
	return cmd
}

func loadMatchupsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "matchups",
		Short: "Load historical matchups",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := dataset.ReadFile(file, dataset.ReadMatchups)
			if err != nil {
				return err
			}
			return runDB(func(ctx context.Context, sess *store.Session) error {
				start := time.Now()
				result := ingest.LoadMatchups(ctx, sess, rows, logger)
				return finish("Matchups load", start, result)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "matchups.csv", "Matchups CSV")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored years and matchup counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(func(ctx context.Context, sess *store.Session) error {
				years, err := sess.Years(ctx)
				if err != nil {
					return err
				}
				logger.Info("Team statistics", "years", years)

				counts, err := sess.MatchupCounts(ctx)
				if err != nil {
					return err
				}
				for _, c := range counts {
					logger.Info("Matchups", "year", c.Year, "count", c.Count)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// scrape command
// --------------------------------------------------------------------------

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape tournament fields and team statistics",
	}
	cmd.AddCommand(scrapeFieldCmd())
	cmd.AddCommand(scrapeStatsCmd())
	return cmd
}

func scrapeFieldCmd() *cobra.Command {
	var (
		from, to int
		out      string
	)
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Scrape tournament fields from Wikipedia",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from > to {
				return fmt.Errorf("--from %d is after --to %d", from, to)
			}
			return runScrape(func(ctx context.Context, cfg *config.ScrapeConfig) error {
				src := scrape.NewWikipedia(newClient("wikipedia", cfg), cfg.WikipediaBaseURL)
				start := time.Now()
				entries, result := ingest.ScrapeField(ctx, src, from, to, logger)
				if err := dataset.WriteFile(out, func(w io.Writer) error {
					return dataset.WriteField(w, entries)
				}); err != nil {
					return err
				}
				result.Written = len(entries)
				return finish("Field scrape", start, result)
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 2008, "First tournament year")
	cmd.Flags().IntVar(&to, "to", 2025, "Last tournament year")
	cmd.Flags().StringVar(&out, "out", "field.csv", "Output CSV")
	return cmd
}

func scrapeStatsCmd() *cobra.Command {
	var (
		fieldFile, mappingFile, out, missingFile string
		opts                                     ingest.StatsOptions
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Scrape team season statistics from Sports-Reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := dataset.ReadFile(fieldFile, dataset.ReadField)
			if err != nil {
				return err
			}
			var slugs map[string]string
			if mappingFile != "" {
				if slugs, err = dataset.ReadFile(mappingFile, dataset.ReadMapping); err != nil {
					return err
				}
			}

			return runScrape(func(ctx context.Context, cfg *config.ScrapeConfig) error {
				src := scrape.NewSportsReference(newClient("sports-reference", cfg), cfg.SportsReferenceBaseURL, slugs)
				start := time.Now()
				run, err := ingest.ScrapeStats(ctx, src, entries, opts, logger)
				if err != nil {
					logger.Warn("Scrape interrupted, writing partial results", "error", err)
				}

				if werr := dataset.WriteFile(out, func(w io.Writer) error {
					return dataset.WriteTeamStats(w, run.Rows)
				}); werr != nil {
					return werr
				}
				if werr := dataset.WriteFile(missingFile, func(w io.Writer) error {
					return dataset.WriteMissing(w, run.Missing)
				}); werr != nil {
					return werr
				}
				run.Result.Written = len(run.Rows)
				if ferr := finish("Stats scrape", start, run.Result); ferr != nil {
					return ferr
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&fieldFile, "field", "field.csv", "Tournament field CSV")
	cmd.Flags().StringVar(&mappingFile, "mapping", "", "Team name to URL slug mapping CSV")
	cmd.Flags().StringVar(&out, "out", "team_stats_raw.csv", "Output CSV")
	cmd.Flags().StringVar(&missingFile, "missing", "missing_teams.csv", "CSV of teams without a statistics page")
	cmd.Flags().StringVar(&opts.ProgressPath, "progress", "team_stats_progress.csv", "Progress snapshot CSV (empty disables)")
	cmd.Flags().IntVar(&opts.ProgressEvery, "progress-every", 50, "Teams between progress snapshots")
	cmd.Flags().DurationVar(&opts.MinDelay, "min-delay", 3*time.Second, "Minimum pause between teams")
	cmd.Flags().DurationVar(&opts.MaxDelay, "max-delay", 6*time.Second, "Maximum pause between teams")
	return cmd
}

// --------------------------------------------------------------------------
// merge and build commands
// --------------------------------------------------------------------------

func mergeCmd() *cobra.Command {
	var fieldFile, statsFile, out string
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Join the tournament field with scraped statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := dataset.ReadFile(fieldFile, dataset.ReadField)
			if err != nil {
				return err
			}
			scraped, err := dataset.ReadFile(statsFile, dataset.ReadTeamStats)
			if err != nil {
				return err
			}
			rows := ingest.Merge(field, scraped)
			if err := dataset.WriteFile(out, func(w io.Writer) error {
				return dataset.WriteTeamStats(w, rows)
			}); err != nil {
				return err
			}
			logger.Info("Merge finished", "field", len(field), "scraped", len(scraped), "written", len(rows), "out", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&fieldFile, "field", "field.csv", "Tournament field CSV")
	cmd.Flags().StringVar(&statsFile, "stats", "team_stats_raw.csv", "Scraped statistics CSV")
	cmd.Flags().StringVar(&out, "out", "team_stats.csv", "Output CSV")
	return cmd
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Derive datasets from merged statistics",
	}
	cmd.AddCommand(buildMatchupsCmd())
	return cmd
}

func buildMatchupsCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "matchups",
		Short: "Build historical matchups from each team's tournament wins",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := dataset.ReadFile(in, dataset.ReadTeamStats)
			if err != nil {
				return err
			}
			start := time.Now()
			matchups, result := ingest.BuildMatchups(rows, logger)
			result.Fetched = len(rows)
			if err := dataset.WriteFile(out, func(w io.Writer) error {
				return dataset.WriteMatchups(w, matchups)
			}); err != nil {
				return err
			}
			return finish("Matchup build", start, result)
		},
	}
	cmd.Flags().StringVar(&in, "in", "team_stats.csv", "Merged team statistics CSV")
	cmd.Flags().StringVar(&out, "out", "matchups.csv", "Output CSV")
	return cmd
}

// --------------------------------------------------------------------------
// teams and csv utilities
// --------------------------------------------------------------------------

func teamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Team name list utilities",
	}
	cmd.AddCommand(teamsUniqueCmd())
	cmd.AddCommand(teamsMapCmd())
	return cmd
}

func teamsUniqueCmd() *cobra.Command {
	var (
		fieldFile, out string
		slug           bool
	)
	cmd := &cobra.Command{
		Use:   "unique",
		Short: "List the unique team names of a field CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := dataset.ReadFile(fieldFile, dataset.ReadField)
			if err != nil {
				return err
			}
			names := ingest.UniqueTeams(field, slug)
			header := dataset.ColUniqueTeam
			if slug {
				header = dataset.ColLowerTeam
			}
			if err := dataset.WriteFile(out, func(w io.Writer) error {
				return dataset.WriteColumn(w, header, names)
			}); err != nil {
				return err
			}
			logger.Info("Unique teams written", "count", len(names), "out", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&fieldFile, "field", "field.csv", "Tournament field CSV")
	cmd.Flags().StringVar(&out, "out", "unique_teams.csv", "Output CSV")
	cmd.Flags().BoolVar(&slug, "slug", false, "Write lower-case dashed names")
	return cmd
}

func teamsMapCmd() *cobra.Command {
	var uniqueFile, lowerFile, out string
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Zip unique team names with their URL slugs",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := readColumn(uniqueFile, dataset.ColUniqueTeam)
			if err != nil {
				return err
			}
			slugs, err := readColumn(lowerFile, dataset.ColLowerTeam)
			if err != nil {
				return err
			}
			if len(names) != len(slugs) {
				logger.Warn("Name and slug lists differ in length", "names", len(names), "slugs", len(slugs))
			}
			pairs := ingest.MapTeams(names, slugs)
			if err := dataset.WriteFile(out, func(w io.Writer) error {
				return dataset.WriteMapping(w, pairs)
			}); err != nil {
				return err
			}
			logger.Info("Mapping written", "pairs", len(pairs), "out", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&uniqueFile, "unique", "unique_teams.csv", "CSV with a unique_ncaa_team column")
	cmd.Flags().StringVar(&lowerFile, "lower", "lower_teams.csv", "CSV with a lower_ncaa_team column")
	cmd.Flags().StringVar(&out, "out", "mapping.csv", "Output CSV")
	return cmd
}

func csvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "CSV file utilities",
	}
	var in, out string
	reverse := &cobra.Command{
		Use:   "reverse",
		Short: "Reverse the data rows of a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			return dataset.WriteFile(out, func(w io.Writer) error {
				return dataset.Reverse(f, w)
			})
		},
	}
	reverse.Flags().StringVar(&in, "in", "", "Input CSV")
	reverse.Flags().StringVar(&out, "out", "", "Output CSV")
	_ = reverse.MarkFlagRequired("in")
	_ = reverse.MarkFlagRequired("out")
	cmd.AddCommand(reverse)
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runDB handles config loading, store connection, and context cancellation.
func runDB(fn func(ctx context.Context, sess *store.Session) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer st.Close()

	sess, err := st.Session(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	return fn(ctx, sess)
}

// runScrape loads the scraper settings and handles context cancellation.
func runScrape(fn func(ctx context.Context, cfg *config.ScrapeConfig) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadScrape()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return fn(ctx, cfg)
}

func newClient(source string, cfg *config.ScrapeConfig) *scrape.Client {
	return scrape.NewClient(source, scrape.ClientOptions{
		RequestsPerMinute: cfg.ScrapeRequestsPerMinute,
		MaxRetries:        cfg.ScrapeMaxRetries,
		InitialBackoff:    cfg.ScrapeInitialBackoff,
		Timeout:           cfg.ScrapeTimeout,
	}, logger)
}

func readColumn(path, col string) ([]string, error) {
	return dataset.ReadFile(path, func(r io.Reader) ([]string, error) {
		return dataset.ReadColumn(r, col)
	})
}

// finish logs a step summary and its errors. A step with errors and nothing
// written fails the command.
func finish(step string, start time.Time, result ingest.Result) error {
	logger.Info(step+" finished", "duration", time.Since(start).Round(time.Second), "summary", result.Summary())
	for _, e := range result.Errors {
		logger.Error(step+" error", "error", e)
	}
	if len(result.Errors) > 0 && result.Written == 0 {
		return fmt.Errorf("%s failed with %d errors", step, len(result.Errors))
	}
	return nil
}

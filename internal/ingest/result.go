// Package ingest orchestrates the offline pipeline: scrape the tournament
// fields and team statistics, merge them, derive historical matchups and
// bulk-load both tables.
package ingest

import "fmt"

// Result tracks counts and errors from one pipeline step.
type Result struct {
	Fetched int
	Written int
	Missing int
	Skipped int
	Errors  []string
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.Fetched += other.Fetched
	r.Written += other.Written
	r.Missing += other.Missing
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError records an error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the step.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"fetched=%d written=%d missing=%d skipped=%d errors=%d",
		r.Fetched, r.Written, r.Missing, r.Skipped, len(r.Errors),
	)
}

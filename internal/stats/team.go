package stats

import (
	"encoding/json"
	"math"
)

// TeamSeasonStats is one team's season aggregates for one tournament year.
type TeamSeasonStats struct {
	Team       string
	Year       int
	Conference string
	Seed       *int
	Wins       *int
	Losses     *int
	WinPct     *float64
	Values     Line
	NCAAWins   string
	NCAALoss   string
}

// TeamColumns returns the team_stats columns in canonical order.
func TeamColumns() []string {
	cols := []string{ColTeam, ColYear, ColConference, ColSeed, ColWins, ColLosses, ColWinPct}
	for _, s := range All() {
		cols = append(cols, s.Name())
	}
	return append(cols, ColNCAAWins, ColNCAALoss)
}

// Sanitize replaces non-finite numbers with absent values.
func (t *TeamSeasonStats) Sanitize() {
	t.WinPct = finite(t.WinPct)
	for i := range t.Values {
		t.Values[i] = finite(t.Values[i])
	}
}

// MarshalJSON renders a flat object keyed by column name. Absent values are null.
func (t TeamSeasonStats) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		ColTeam:       t.Team,
		ColYear:       t.Year,
		ColConference: nullString(t.Conference),
		ColSeed:       t.Seed,
		ColWins:       t.Wins,
		ColLosses:     t.Losses,
		ColWinPct:     finite(t.WinPct),
		ColNCAAWins:   nullString(t.NCAAWins),
		ColNCAALoss:   nullString(t.NCAALoss),
	}
	for _, s := range All() {
		out[s.Name()] = finite(t.Values[s])
	}
	return json.Marshal(out)
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Float returns a pointer to v, or nil when v is not finite.
func Float(v float64) *float64 { return finite(&v) }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

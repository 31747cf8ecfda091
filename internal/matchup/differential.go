// Package matchup computes statistical differentials between two teams'
// season aggregates.
package matchup

import (
	"encoding/json"
	"math"

	"github.com/bracketiq/madness-data/internal/stats"
)

// Differential is the per-statistic difference teamA − teamB for one year.
// Values are rounded to three decimals. A nil entry in Stats means one of the
// two teams had no value for that statistic.
type Differential struct {
	Year   int
	TeamA  string
	TeamB  string
	Seed   int
	WinPct float64
	Stats  stats.Line
}

// Compute derives the differential of a over b. Absent seeds and win
// percentages count as zero; any other absent statistic yields an absent
// difference.
func Compute(year int, a, b stats.TeamSeasonStats) Differential {
	d := Differential{
		Year:   year,
		TeamA:  a.Team,
		TeamB:  b.Team,
		Seed:   intOrZero(a.Seed) - intOrZero(b.Seed),
		WinPct: Round3(floatOrZero(a.WinPct) - floatOrZero(b.WinPct)),
	}
	for _, s := range stats.All() {
		av, aok := a.Values.Get(s)
		bv, bok := b.Values.Get(s)
		if !aok || !bok {
			continue
		}
		d.Stats.Set(s, Round3(av-bv))
	}
	return d
}

// Record converts the differential into a storable matchup row.
func (d Differential) Record(winner int) stats.MatchupRecord {
	wp := d.WinPct
	return stats.MatchupRecord{
		Year:   d.Year,
		TeamA:  d.TeamA,
		TeamB:  d.TeamB,
		Winner: winner,
		Seed:   d.Seed,
		WinPct: &wp,
		Diffs:  d.Stats,
	}
}

func (d Differential) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		stats.ColYear:                      d.Year,
		stats.ColTeamA:                     d.TeamA,
		stats.ColTeamB:                     d.TeamB,
		stats.DiffPrefix + stats.ColSeed:   d.Seed,
		stats.DiffPrefix + stats.ColWinPct: d.WinPct,
	}
	for _, s := range stats.All() {
		if v, ok := d.Stats.Get(s); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[s.DiffName()] = v
		} else {
			out[s.DiffName()] = nil
		}
	}
	return json.Marshal(out)
}

// Round3 rounds v to three decimals, halves away from zero, so that
// Round3(-x) == -Round3(x).
func Round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}

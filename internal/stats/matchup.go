package stats

import "encoding/json"

// MatchupRecord is one historical tournament game stored with precomputed
// differentials (teamA value minus teamB value).
type MatchupRecord struct {
	ID     int64
	Year   int
	TeamA  string
	TeamB  string
	Winner int
	Seed   int
	WinPct *float64
	Diffs  Line
}

// MatchupColumns returns the matchup columns in canonical order, excluding id.
func MatchupColumns() []string {
	cols := []string{ColYear, ColTeamA, ColTeamB, ColWinner, DiffPrefix + ColSeed, DiffPrefix + ColWinPct}
	for _, s := range All() {
		cols = append(cols, s.DiffName())
	}
	return cols
}

// Sanitize replaces non-finite differentials with absent values.
func (m *MatchupRecord) Sanitize() {
	m.WinPct = finite(m.WinPct)
	for i := range m.Diffs {
		m.Diffs[i] = finite(m.Diffs[i])
	}
}

func (m MatchupRecord) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		ColID:                  m.ID,
		ColYear:                m.Year,
		ColTeamA:               m.TeamA,
		ColTeamB:               m.TeamB,
		ColWinner:              m.Winner,
		DiffPrefix + ColSeed:   m.Seed,
		DiffPrefix + ColWinPct: finite(m.WinPct),
	}
	for _, s := range All() {
		out[s.DiffName()] = finite(m.Diffs[s])
	}
	return json.Marshal(out)
}

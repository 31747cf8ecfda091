// Package stats defines the tracked season statistics and the row types built
// from them. The Stat list is the single source of truth for the team_stats and
// matchups schemas, the CSV codec and the differential engine.
package stats

// Stat identifies one tracked per-season statistic.
type Stat int

const (
	PointsScored Stat = iota
	PointsAllowed
	SimpleRating
	StrengthOfSchedule
	FieldGoals
	FieldGoalAttempts
	FieldGoalPct
	TwoPointers
	TwoPointAttempts
	TwoPointPct
	ThreePointers
	ThreePointAttempts
	ThreePointPct
	FreeThrows
	FreeThrowAttempts
	FreeThrowPct
	OffensiveRebounds
	DefensiveRebounds
	TotalRebounds
	Assists
	Steals
	Blocks
	Turnovers
	PersonalFouls
	OffensiveRating
	DefensiveRating

	NumStats
)

var statNames = [NumStats]string{
	PointsScored:       "ps_per_game",
	PointsAllowed:      "pa_per_game",
	SimpleRating:       "srs",
	StrengthOfSchedule: "sos",
	FieldGoals:         "fg_per_game",
	FieldGoalAttempts:  "fga_per_game",
	FieldGoalPct:       "fg_pct",
	TwoPointers:        "fg2_per_game",
	TwoPointAttempts:   "fg2a_per_game",
	TwoPointPct:        "fg2_pct",
	ThreePointers:      "fg3_per_game",
	ThreePointAttempts: "fg3a_per_game",
	ThreePointPct:      "fg3_pct",
	FreeThrows:         "ft_per_game",
	FreeThrowAttempts:  "fta_per_game",
	FreeThrowPct:       "ft_pct",
	OffensiveRebounds:  "orb_per_game",
	DefensiveRebounds:  "drb_per_game",
	TotalRebounds:      "trb_per_game",
	Assists:            "ast_per_game",
	Steals:             "stl_per_game",
	Blocks:             "blk_per_game",
	Turnovers:          "tov_per_game",
	PersonalFouls:      "pf_per_game",
	OffensiveRating:    "offensive_rating",
	DefensiveRating:    "defensive_rating",
}

// Column names shared by the schema, the CSV codec and JSON output.
const (
	ColTeam       = "team"
	ColYear       = "year"
	ColConference = "conference"
	ColSeed       = "seed"
	ColWins       = "wins"
	ColLosses     = "losses"
	ColWinPct     = "win_pct"
	ColNCAAWins   = "ncaa_wins"
	ColNCAALoss   = "ncaa_loss"

	ColID     = "id"
	ColTeamA  = "teamA"
	ColTeamB  = "teamB"
	ColWinner = "winner"

	DiffPrefix = "diff_"
)

// All returns every tracked statistic in canonical order.
func All() []Stat {
	out := make([]Stat, NumStats)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// Name is the column / JSON key of the statistic.
func (s Stat) Name() string {
	if s < 0 || s >= NumStats {
		return ""
	}
	return statNames[s]
}

// DiffName is the matchup column holding the teamA − teamB difference.
func (s Stat) DiffName() string { return DiffPrefix + s.Name() }

func (s Stat) String() string { return s.Name() }

// Lookup resolves a column name to its statistic.
func Lookup(name string) (Stat, bool) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), true
		}
	}
	return 0, false
}

// Line holds one optional value per tracked statistic. A nil entry means the
// source had no data for it.
type Line [NumStats]*float64

// Get returns the value of s and whether it is present.
func (l *Line) Get(s Stat) (float64, bool) {
	if l[s] == nil {
		return 0, false
	}
	return *l[s], true
}

// Set stores v for s.
func (l *Line) Set(s Stat, v float64) { l[s] = &v }

// Package bracket builds tournament round views: each scheduled pairing joined
// with its statistical differential, plus upset and margin summaries for
// rounds that have been played.
package bracket

import (
	"fmt"
	"math"
)

// Round names accepted by the API.
const (
	Round64 = "round64"
	Round32 = "round32"
)

// ResponseKey returns the JSON key a round's games are published under.
func ResponseKey(round string) string {
	switch round {
	case Round64:
		return "round_of_64_matchups"
	case Round32:
		return "round_of_32_matchups"
	default:
		return round + "_matchups"
	}
}

// Pairing is one scheduled or completed game. Scores are present only once
// the game has been played.
type Pairing struct {
	Region string `json:"region"`
	TeamA  string `json:"team_a"`
	SeedA  int    `json:"seed_a"`
	TeamB  string `json:"team_b"`
	SeedB  int    `json:"seed_b"`
	ScoreA *int   `json:"score_a,omitempty"`
	ScoreB *int   `json:"score_b,omitempty"`
	Day    string `json:"day"`
	Date   string `json:"date"`
}

// Completed reports whether both scores are known.
func (p Pairing) Completed() bool {
	return p.ScoreA != nil && p.ScoreB != nil
}

// Label renders "(1) Houston vs (16) SIU Edwardsville".
func (p Pairing) Label() string {
	return fmt.Sprintf("(%d) %s vs (%d) %s", p.SeedA, p.TeamA, p.SeedB, p.TeamB)
}

// Result is the outcome of a completed pairing.
type Result struct {
	Label           string
	Winner          string // empty on a tie
	Upset           bool
	PointDifference int
}

// Result derives the outcome. The higher score wins; a tie has no winner and
// is never an upset. An upset is a win by the numerically higher seed.
func (p Pairing) Result() (Result, bool) {
	if !p.Completed() {
		return Result{}, false
	}
	a, b := *p.ScoreA, *p.ScoreB
	r := Result{
		Label:           fmt.Sprintf("%s %d, %s %d", p.TeamA, a, p.TeamB, b),
		PointDifference: abs(a - b),
	}
	switch {
	case a > b:
		r.Winner = p.TeamA
		r.Upset = p.SeedA > p.SeedB
	case b > a:
		r.Winner = p.TeamB
		r.Upset = p.SeedB > p.SeedA
	}
	return r, true
}

// Summary aggregates the completed games of a round.
type Summary struct {
	TotalGames         int     `json:"total_games"`
	Upsets             int     `json:"upsets"`
	UpsetPercentage    float64 `json:"upset_percentage"`
	AvgPointDifference float64 `json:"avg_point_difference"`
}

// Summarize counts completed games, upsets and the mean absolute margin.
// Percentages and averages are rounded to one decimal and are zero when no
// game has been played.
func Summarize(pairings []Pairing) Summary {
	var (
		s      Summary
		margin int
	)
	for _, p := range pairings {
		r, ok := p.Result()
		if !ok {
			continue
		}
		s.TotalGames++
		if r.Upset {
			s.Upsets++
		}
		margin += r.PointDifference
	}
	if s.TotalGames == 0 {
		return s
	}
	s.UpsetPercentage = round1(float64(s.Upsets) / float64(s.TotalGames) * 100)
	s.AvgPointDifference = round1(float64(margin) / float64(s.TotalGames))
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

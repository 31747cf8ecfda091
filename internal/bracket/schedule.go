package bracket

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed schedule_2025.json
var defaultSchedule []byte

// Schedule is the bracket reference data: the pairings of each round and the
// season whose statistics the pairings are compared with.
type Schedule struct {
	StatsYear int                  `json:"stats_year"`
	Rounds    map[string][]Pairing `json:"rounds"`
}

// Round returns the pairings of the named round.
func (s *Schedule) Round(name string) ([]Pairing, bool) {
	p, ok := s.Rounds[name]
	return p, ok
}

// Default returns the embedded 2025 schedule.
func Default() (*Schedule, error) {
	return Parse(defaultSchedule)
}

// LoadFile reads a schedule from a JSON file. An empty path yields the
// embedded default.
func LoadFile(path string) (*Schedule, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bracket file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schedule document.
func Parse(data []byte) (*Schedule, error) {
	var s Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode bracket schedule: %w", err)
	}
	if s.StatsYear <= 0 {
		return nil, fmt.Errorf("bracket schedule: stats_year must be positive")
	}
	for name, pairings := range s.Rounds {
		for i, p := range pairings {
			if p.TeamA == "" || p.TeamB == "" {
				return nil, fmt.Errorf("bracket schedule: %s pairing %d is missing a team", name, i)
			}
			if (p.ScoreA == nil) != (p.ScoreB == nil) {
				return nil, fmt.Errorf("bracket schedule: %s pairing %d has only one score", name, i)
			}
		}
	}
	return &s, nil
}

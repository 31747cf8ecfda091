package matchup

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketiq/madness-data/internal/stats"
)

type fakeFinder struct {
	rows []stats.TeamSeasonStats
	err  error
}

func (f fakeFinder) TeamStatsForPair(_ context.Context, year int, teamA, teamB string) ([]stats.TeamSeasonStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []stats.TeamSeasonStats
	for _, r := range f.rows {
		if r.Year == year && (r.Team == teamA || r.Team == teamB) {
			out = append(out, r)
		}
	}
	return out, nil
}

func team(name string, year, seed int, ps float64) stats.TeamSeasonStats {
	t := stats.TeamSeasonStats{Team: name, Year: year, Seed: stats.Int(seed), WinPct: stats.Float(0.75)}
	for _, s := range stats.All() {
		t.Values.Set(s, float64(s)*1.1+float64(seed)/7)
	}
	t.Values.Set(stats.PointsScored, ps)
	return t
}

func TestComputeExample(t *testing.T) {
	a := stats.TeamSeasonStats{Team: "A", Year: 2025, Seed: stats.Int(3)}
	a.Values.Set(stats.PointsScored, 80.0)
	b := stats.TeamSeasonStats{Team: "B", Year: 2025, Seed: stats.Int(11)}
	b.Values.Set(stats.PointsScored, 75.5)

	d := Compute(2025, a, b)

	v, ok := d.Stats.Get(stats.PointsScored)
	require.True(t, ok)
	assert.Equal(t, 4.5, v)
	assert.Equal(t, -8, d.Seed)
	assert.Equal(t, 0.0, d.WinPct)
	assert.Equal(t, "A", d.TeamA)
	assert.Equal(t, "B", d.TeamB)
}

func TestComputeAntisymmetricAndZeroOnSelf(t *testing.T) {
	a := team("Auburn", 2025, 1, 83.2)
	b := team("Creighton", 2025, 9, 77.9)
	b.Values.Set(stats.FieldGoalPct, 0.4567)
	a.Values.Set(stats.FieldGoalPct, 0.4812)

	ab := Compute(2025, a, b)
	ba := Compute(2025, b, a)
	aa := Compute(2025, a, a)

	assert.Equal(t, -ab.Seed, ba.Seed)
	assert.Equal(t, -ab.WinPct, ba.WinPct)
	assert.Equal(t, 0, aa.Seed)
	for _, s := range stats.All() {
		x, ok := ab.Stats.Get(s)
		require.True(t, ok, s.Name())
		y, _ := ba.Stats.Get(s)
		z, _ := aa.Stats.Get(s)
		assert.Equal(t, x, -y, s.Name())
		assert.Equal(t, 0.0, z, s.Name())
	}
}

func TestComputeRoundsToThreeDecimals(t *testing.T) {
	a := team("Duke", 2025, 1, 83.4567)
	b := team("Baylor", 2025, 9, 71.1234)
	d := Compute(2025, a, b)
	for _, s := range stats.All() {
		v, ok := d.Stats.Get(s)
		require.True(t, ok)
		scaled := v * 1000
		assert.InDelta(t, math.Round(scaled), scaled, 1e-6, s.Name())
	}
	v, _ := d.Stats.Get(stats.PointsScored)
	assert.Equal(t, 12.333, v)
}

func TestComputeDefaultsAndMissingValues(t *testing.T) {
	a := stats.TeamSeasonStats{Team: "A", WinPct: stats.Float(0.8)}
	a.Values.Set(stats.Assists, 15)
	b := stats.TeamSeasonStats{Team: "B", Seed: stats.Int(4)}

	d := Compute(2024, a, b)

	assert.Equal(t, -4, d.Seed)
	assert.Equal(t, 0.8, d.WinPct)
	_, ok := d.Stats.Get(stats.Assists)
	assert.False(t, ok, "missing on one side yields no value")
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 1.235, Round3(1.23456))
	assert.Equal(t, -1.235, Round3(-1.23456))
	assert.Equal(t, 0.0, Round3(-0.0001))
	assert.False(t, math.Signbit(Round3(-0.0001)))
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	finder := fakeFinder{rows: []stats.TeamSeasonStats{
		team("Houston", 2025, 1, 74.0),
		team("SIU Edwardsville", 2025, 16, 70.5),
		team("Houston", 2024, 1, 73.0),
	}}

	t.Run("orients by requested teamA", func(t *testing.T) {
		d, err := Lookup(ctx, finder, 2025, "SIU Edwardsville", "Houston")
		require.NoError(t, err)
		assert.Equal(t, "SIU Edwardsville", d.TeamA)
		assert.Equal(t, 15, d.Seed)
		v, _ := d.Stats.Get(stats.PointsScored)
		assert.Equal(t, -3.5, v)
	})

	t.Run("missing team is not found", func(t *testing.T) {
		_, err := Lookup(ctx, finder, 2025, "Houston", "Gonzaga")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
		var le *LookupError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, 1, le.Rows)
		assert.Equal(t, "not_found", Kind(err))
	})

	t.Run("same team compares to itself", func(t *testing.T) {
		d, err := Lookup(ctx, finder, 2025, "Houston", "Houston")
		require.NoError(t, err)
		assert.Equal(t, 0, d.Seed)
	})

	t.Run("duplicate rows are ambiguous", func(t *testing.T) {
		dup := fakeFinder{rows: append(append([]stats.TeamSeasonStats{}, finder.rows...), team("Houston", 2025, 2, 1))}
		_, err := Lookup(ctx, dup, 2025, "Houston", "SIU Edwardsville")
		assert.ErrorIs(t, err, ErrAmbiguous)
		assert.Equal(t, "ambiguous", Kind(err))
	})

	t.Run("store failure propagates", func(t *testing.T) {
		boom := errors.New("connection refused")
		_, err := Lookup(ctx, fakeFinder{err: boom}, 2025, "Houston", "Duke")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "unavailable", Kind(err))
	})
}

func TestDifferentialJSONKeys(t *testing.T) {
	d := Compute(2025, team("A", 2025, 2, 80), team("B", 2025, 7, 70))
	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"diff_ps_per_game":10`)
	assert.Contains(t, string(raw), `"diff_seed":-5`)
	assert.Contains(t, string(raw), `"teamA":"A"`)
}

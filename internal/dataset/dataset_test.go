package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketiq/madness-data/internal/stats"
)

func TestReadTeamStats(t *testing.T) {
	in := "team,conference,seed,wins,losses,year,win_pct,ps_per_game,fg_pct,extra,ncaa_wins\n" +
		"Houston,Big 12,1.0,30,4,2025,0.882,74.2,nan,x,\"SIU Edwardsville, Gonzaga\"\n" +
		"Duke,ACC,,,,2025,,inf,0.49,,\n"

	rows, err := ReadTeamStats(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	h := rows[0]
	assert.Equal(t, "Houston", h.Team)
	assert.Equal(t, 2025, h.Year)
	require.NotNil(t, h.Seed)
	assert.Equal(t, 1, *h.Seed)
	assert.Equal(t, 0.882, *h.WinPct)
	ps, ok := h.Values.Get(stats.PointsScored)
	require.True(t, ok)
	assert.Equal(t, 74.2, ps)
	_, ok = h.Values.Get(stats.FieldGoalPct)
	assert.False(t, ok, "nan reads as absent")
	assert.Equal(t, "SIU Edwardsville, Gonzaga", h.NCAAWins)

	d := rows[1]
	assert.Nil(t, d.Seed)
	assert.Nil(t, d.WinPct)
	_, ok = d.Values.Get(stats.PointsScored)
	assert.False(t, ok, "inf reads as absent")
}

func TestReadTeamStatsErrors(t *testing.T) {
	_, err := ReadTeamStats(strings.NewReader("team,seed\nDuke,1\n"))
	assert.ErrorContains(t, err, `missing column "year"`)

	_, err = ReadTeamStats(strings.NewReader("team,year,seed\nDuke,2025,one\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadTeamStats(strings.NewReader("team,year,seed\nDuke,2025,1.5\n"))
	assert.ErrorContains(t, err, "invalid integer")

	_, err = ReadTeamStats(strings.NewReader(""))
	assert.Error(t, err)
}

func TestTeamStatsRoundTrip(t *testing.T) {
	in := stats.TeamSeasonStats{Team: "Saint Mary's", Year: 2025, Conference: "WCC", Seed: stats.Int(7), WinPct: stats.Float(0.853), NCAAWins: "Vanderbilt"}
	in.Values.Set(stats.Assists, 14.6)
	in.Values.Set(stats.DefensiveRating, 94.1)

	var buf bytes.Buffer
	require.NoError(t, WriteTeamStats(&buf, []stats.TeamSeasonStats{in}))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(stats.TeamColumns(), ","), header)

	out, err := ReadTeamStats(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in, out[0])
}

func TestMatchupsRoundTrip(t *testing.T) {
	in := stats.MatchupRecord{Year: 2023, TeamA: "uconn", TeamB: "san diego state", Winner: 1, Seed: -1, WinPct: stats.Float(-0.021)}
	in.Diffs.Set(stats.PointsScored, 4.3)

	var buf bytes.Buffer
	require.NoError(t, WriteMatchups(&buf, []stats.MatchupRecord{in}))
	out, err := ReadMatchups(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in, out[0])
}

func TestFieldAndMapping(t *testing.T) {
	entries := []FieldEntry{{Seed: 16, Team: "SIU Edwardsville", Conference: "OVC", Wins: 22, Losses: 12, Year: 2025}}
	var buf bytes.Buffer
	require.NoError(t, WriteField(&buf, entries))
	assert.True(t, strings.HasPrefix(buf.String(), "seed,team,conference,wins,losses,year\n"))

	got, err := ReadField(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	buf.Reset()
	require.NoError(t, WriteMapping(&buf, [][2]string{{"UConn", "connecticut"}}))
	m, err := ReadMapping(&buf)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"UConn": "connecticut"}, m)
}

func TestReverse(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Reverse(strings.NewReader("a,b\n1,x\n2,y\n3,z\n"), &out))
	assert.Equal(t, "a,b\n3,z\n2,y\n1,x\n", out.String())
}

func TestParseFloat(t *testing.T) {
	for _, s := range []string{"", " ", "nan", "NaN", "inf", "-inf", "None"} {
		v, err := ParseFloat(s)
		assert.NoError(t, err, s)
		assert.Nil(t, v, s)
	}
	v, err := ParseFloat(" -3.25 ")
	require.NoError(t, err)
	assert.Equal(t, -3.25, *v)

	_, err = ParseFloat("12-4")
	assert.Error(t, err)
}

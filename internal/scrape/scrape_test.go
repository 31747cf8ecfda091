package scrape

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketiq/madness-data/internal/stats"
)

func testClient() *Client {
	return NewClient("test", ClientOptions{
		RequestsPerMinute: 60000,
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		Timeout:           5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClientRetriesAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, "<html>ok</html>")
	}))
	defer srv.Close()

	body, err := testClient().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientGivesUpWhenRateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), calls.Load(), "one attempt plus two retries")
}

func TestClientStatusHandling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	_, err := testClient().Get(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = testClient().Get(context.Background(), srv.URL+"/forbidden")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
}

func TestClientDecodesCompressedBodies(t *testing.T) {
	const page = "<html><body>compressed</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Path {
		case "/br":
			bw := brotli.NewWriter(&buf)
			bw.Write([]byte(page))
			bw.Close()
			w.Header().Set("Content-Encoding", "br")
		case "/gzip":
			gw := gzip.NewWriter(&buf)
			gw.Write([]byte(page))
			gw.Close()
			w.Header().Set("Content-Encoding", "gzip")
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	for _, enc := range []string{"br", "gzip"} {
		body, err := testClient().Get(context.Background(), srv.URL+"/"+enc)
		require.NoError(t, err, enc)
		assert.Equal(t, page, string(body), enc)
	}
}

func TestClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := testClient().Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "texas-aandm", Slug("Texas A&M"))
	assert.Equal(t, "san-jose-state", Slug("San José State"))
	assert.Equal(t, "north-carolina", LowerDashed("North Carolina"))

	assert.Equal(t, "saint marys", CleanTeamName(" St. Mary's (CA) "))
	assert.Equal(t, "texas am", CleanTeamName("Texas A&M"))
	assert.Equal(t, "arkansas-pine bluff", CleanTeamName("Arkansas-Pine Bluff"))
}

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"gonzaga", "saint marys", "houston", "gonzaga"})

	best, score, ok := m.Best("houston")
	require.True(t, ok)
	assert.Equal(t, "houston", best)
	assert.Equal(t, 100, score)

	best, score, _ = m.Best("saint marys ca")
	assert.Equal(t, "saint marys", best)
	assert.GreaterOrEqual(t, score, MatchThreshold)

	_, score, _ = m.Best("wofford")
	assert.Less(t, score, MatchThreshold)

	_, _, ok = NewMatcher(nil).Best("duke")
	assert.False(t, ok)
}

const fieldPage = `<html><body>
<table class="wikitable">
<tr><th>Seed</th><th>School</th><th>Conference</th><th>Record</th></tr>
<tr><td>1</td><td>Houston</td><td>Big 12</td><td>30–4</td></tr>
<tr><td>#16*</td><td>SIU Edwardsville</td><td>OVC</td><td>22-12</td></tr>
<tr><td>12</td><td>Memphis (vacated)</td><td>AAC</td><td>29–6</td></tr>
<tr><td>17</td><td>Nobody</td><td>None</td><td>1-30</td></tr>
<tr><td>First Four</td><td>X</td><td>Y</td><td>1-1</td></tr>
<tr><td>4</td><td>Arizona</td><td>Big 12</td><td>TBD</td></tr>
<tr><td>3</td><td>Short row</td></tr>
</table>
<table class="infobox"><tr><td>1</td><td>Ignored</td><td>X</td><td>1-0</td></tr></table>
</body></html>`

func TestParseField(t *testing.T) {
	entries, err := ParseField(strings.NewReader(fieldPage), 2025)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Houston", entries[0].Team)
	assert.Equal(t, 1, entries[0].Seed)
	assert.Equal(t, 30, entries[0].Wins)
	assert.Equal(t, 4, entries[0].Losses)
	assert.Equal(t, 2025, entries[0].Year)

	assert.Equal(t, 16, entries[1].Seed)
	assert.Equal(t, "OVC", entries[1].Conference)

	assert.Equal(t, "Memphis", entries[2].Team)
}

func TestWikipediaURL(t *testing.T) {
	w := NewWikipedia(testClient(), "https://en.wikipedia.org/")
	assert.Equal(t, "https://en.wikipedia.org/wiki/2019_NCAA_Division_I_men%27s_basketball_tournament", w.URL(2019))
}

const teamPage = `<html><body>
<div data-template="Partials/Teams/Summary">
<p><strong>PS/G:</strong> 74.2 (51st of 364) <strong>PA/G:</strong> 58.0 (1st of 364)</p>
<p><strong>SRS:</strong> 25.41 (2nd of 364) <strong>SOS:</strong> 10.15 (12th of 364)</p>
<p><strong>ORtg:</strong> 121.4 <strong>DRtg:</strong> 87.3</p>
<p><strong>NCAA Tournament:</strong>
Won NCAA First Round (78-40) versus <a href="/cbb/schools/southern-illinois-edwardsville/men/2025.html">#16 SIU Edwardsville</a><br/>
Won NCAA Second Round (81-76) versus <a href="/cbb/schools/gonzaga/men/2025.html">#8 Gonzaga</a><br/>
Won National Final (63-65) versus <a href="/cbb/schools/florida/men/2025.html">#1 Florida</a>
</p>
</div>
<table id="season-total_per_game">
<thead><tr><th></th><th>G</th><th>MP</th><th>FG</th></tr></thead>
<tbody>
<tr><th>Team</th><td>40</td><td>200.6</td><td>26.0</td><td>58.5</td><td>.445</td><td>17.3</td><td>35.6</td><td>.486</td><td>8.7</td><td>22.9</td><td>.381</td><td>13.4</td><td>18.1</td><td>.740</td><td>12.9</td><td>23.7</td><td>36.6</td><td>12.7</td><td>8.3</td><td>4.4</td><td>9.5</td><td>15.4</td></tr>
<tr><th>Opponent</th><td>40</td><td>200.6</td><td>21.1</td></tr>
</tbody>
</table>
</body></html>`

func TestParseTeamPage(t *testing.T) {
	ts, err := ParseTeamPage(strings.NewReader(teamPage), "Houston", 2025)
	require.NoError(t, err)

	want := map[stats.Stat]float64{
		stats.PointsScored:       74.2,
		stats.PointsAllowed:      58.0,
		stats.SimpleRating:       25.41,
		stats.StrengthOfSchedule: 10.15,
		stats.OffensiveRating:    121.4,
		stats.DefensiveRating:    87.3,
		stats.FieldGoals:         26.0,
		stats.FieldGoalPct:       0.445,
		stats.ThreePointPct:      0.381,
		stats.TotalRebounds:      36.6,
		stats.PersonalFouls:      15.4,
	}
	for s, v := range want {
		got, ok := ts.Values.Get(s)
		require.True(t, ok, s.Name())
		assert.Equal(t, v, got, s.Name())
	}

	assert.Equal(t, "SIU Edwardsville, Gonzaga", ts.NCAAWins, "final game counted as the exit")
	assert.Equal(t, "Florida", ts.NCAALoss)
}

func TestParseTeamPageWithoutTable(t *testing.T) {
	_, err := ParseTeamPage(strings.NewReader("<html><body><p>nothing</p></body></html>"), "Nowhere", 2025)
	assert.ErrorIs(t, err, ErrNoStats)
}

func TestSportsReferenceURL(t *testing.T) {
	s := NewSportsReference(testClient(), "https://www.sports-reference.com", map[string]string{"UConn": "connecticut"})
	assert.Equal(t, "https://www.sports-reference.com/cbb/schools/connecticut/men/2024.html", s.URL("UConn", 2024))
	assert.Equal(t, "https://www.sports-reference.com/cbb/schools/saint-mary's/men/2024.html", s.URL("Saint Mary's", 2024))
}

func TestSportsReferenceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cbb/schools/houston/men/2025.html" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, teamPage)
	}))
	defer srv.Close()

	s := NewSportsReference(testClient(), srv.URL, nil)
	ts, err := s.TeamStats(context.Background(), "Houston", 2025)
	require.NoError(t, err)
	assert.Equal(t, "Houston", ts.Team)

	_, err = s.TeamStats(context.Background(), "Atlantis", 2025)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestNCAAResultsChampion(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<div data-template="Partials/Teams/Summary"><p>NCAA Tournament: `)
	for _, o := range []string{"a", "b", "c", "d", "e", "f"} {
		b.WriteString(`Won game versus <a href="/cbb/schools/` + o + `/men/2024.html">` + o + `</a><br>`)
	}
	b.WriteString(`</p></div><table id="season-total_per_game"></table>`)

	ts, err := ParseTeamPage(strings.NewReader(b.String()), "UConn", 2024)
	require.NoError(t, err)
	assert.Equal(t, "a, b, c, d, e, f", ts.NCAAWins)
	assert.Equal(t, "", ts.NCAALoss)
}

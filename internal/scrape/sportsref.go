package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bracketiq/madness-data/internal/stats"
)

// ErrNoStats means the page exists but carries no per-game team table.
var ErrNoStats = errors.New("no per-game team statistics on page")

// SportsReference reads season statistics from school season pages.
type SportsReference struct {
	client  *Client
	baseURL string
	slugs   map[string]string
}

// NewSportsReference creates a statistics scraper. slugs overrides the URL
// slug for team names whose school page is not at Slug(team).
func NewSportsReference(client *Client, baseURL string, slugs map[string]string) *SportsReference {
	return &SportsReference{client: client, baseURL: strings.TrimRight(baseURL, "/"), slugs: slugs}
}

// URL returns the school season page for team.
func (s *SportsReference) URL(team string, year int) string {
	slug, ok := s.slugs[team]
	if !ok || slug == "" {
		slug = Slug(team)
	}
	return fmt.Sprintf("%s/cbb/schools/%s/men/%d.html", s.baseURL, slug, year)
}

// TeamStats fetches and parses one team's season page.
func (s *SportsReference) TeamStats(ctx context.Context, team string, year int) (stats.TeamSeasonStats, error) {
	body, err := s.client.Get(ctx, s.URL(team, year))
	if err != nil {
		return stats.TeamSeasonStats{}, err
	}
	return ParseTeamPage(bytes.NewReader(body), team, year)
}

// Summary paragraph values, e.g. "PS/G: 74.2 (51st of 364)".
var summaryPatterns = []struct {
	stat stats.Stat
	re   *regexp.Regexp
}{
	{stats.PointsScored, regexp.MustCompile(`PS/G:\s*([-+]?\d*\.?\d+)`)},
	{stats.PointsAllowed, regexp.MustCompile(`PA/G:\s*([-+]?\d*\.?\d+)`)},
	{stats.SimpleRating, regexp.MustCompile(`SRS:\s*([-+]?\d*\.?\d+)`)},
	{stats.StrengthOfSchedule, regexp.MustCompile(`SOS:\s*([-+]?\d*\.?\d+)`)},
	{stats.OffensiveRating, regexp.MustCompile(`ORtg:\s*([-+]?\d*\.?\d+)`)},
	{stats.DefensiveRating, regexp.MustCompile(`DRtg:\s*([-+]?\d*\.?\d+)`)},
}

// perGameCells is the number of per-game statistics read from the team row,
// starting at the third data cell (after games and minutes).
const perGameCells = int(stats.PersonalFouls-stats.FieldGoals) + 1

// ParseTeamPage extracts the summary ratings, the per-game team row and the
// NCAA tournament results from a school season page.
func ParseTeamPage(r io.Reader, team string, year int) (stats.TeamSeasonStats, error) {
	ts := stats.TeamSeasonStats{Team: team, Year: year}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ts, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table#season-total_per_game")
	if table.Length() == 0 {
		return ts, fmt.Errorf("%s %d: %w", team, year, ErrNoStats)
	}
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(row.Find("th").First().Text()), "team") {
			return true
		}
		cells := row.Find("td")
		for i := 0; i < perGameCells && i+2 < cells.Length(); i++ {
			if v := parseCell(cells.Eq(i + 2).Text()); v != nil {
				ts.Values[stats.FieldGoals+stats.Stat(i)] = v
			}
		}
		return false
	})

	summary := doc.Find(`div[data-template="Partials/Teams/Summary"]`)
	summary.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.Join(strings.Fields(p.Text()), " ")
		for _, sp := range summaryPatterns {
			if m := sp.re.FindStringSubmatch(text); m != nil {
				if v := parseCell(m[1]); v != nil {
					ts.Values[sp.stat] = v
				}
			}
		}
	})

	wins, losses := NCAAResults(summary)
	ts.NCAAWins = strings.Join(wins, ", ")
	ts.NCAALoss = strings.Join(losses, ", ")
	return ts, nil
}

var (
	lineBreak  = regexp.MustCompile(`(?i)<br\s*/?>`)
	seedPrefix = regexp.MustCompile(`#\d+\s+`)
)

// NCAAResults reads the "NCAA Tournament" summary paragraph: one line per
// game, opponents linked to their school pages, each line saying Won or Lost
// versus the opponent.
//
// A team with six wins is the champion. Otherwise a team with wins but no
// recorded loss has its last win moved to the losses, since its exit game is
// listed like a win.
func NCAAResults(summary *goquery.Selection) (wins, losses []string) {
	var para *goquery.Selection
	summary.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if strings.Contains(p.Text(), "NCAA Tournament") {
			para = p
			return false
		}
		return true
	})
	if para == nil {
		return nil, nil
	}
	inner, err := para.Html()
	if err != nil {
		return nil, nil
	}

	for _, line := range lineBreak.Split(inner, -1) {
		frag, err := goquery.NewDocumentFromReader(strings.NewReader(line))
		if err != nil {
			continue
		}
		text := frag.Text()
		if !strings.Contains(text, "versus") {
			continue
		}
		frag.Find(`a[href*="/cbb/schools/"]`).Each(func(_ int, a *goquery.Selection) {
			opponent := strings.TrimSpace(seedPrefix.ReplaceAllString(strings.TrimSpace(a.Text()), ""))
			switch {
			case strings.Contains(text, "Won"):
				wins = append(wins, opponent)
			case strings.Contains(text, "Lost"):
				losses = append(losses, opponent)
			}
		})
	}

	if len(wins) == 6 {
		return wins, nil
	}
	if len(wins) > 0 && len(losses) == 0 {
		losses = append(losses, wins[len(wins)-1])
		wins = wins[:len(wins)-1]
	}
	return wins, losses
}

func parseCell(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return stats.Float(v)
}

package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bracketiq/madness-data/internal/dataset"
)

// Wikipedia reads tournament fields from the yearly tournament articles.
type Wikipedia struct {
	client  *Client
	baseURL string
}

// NewWikipedia creates a field scraper rooted at baseURL.
func NewWikipedia(client *Client, baseURL string) *Wikipedia {
	return &Wikipedia{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the tournament article for year.
func (w *Wikipedia) URL(year int) string {
	return fmt.Sprintf("%s/wiki/%d_NCAA_Division_I_men%%27s_basketball_tournament", w.baseURL, year)
}

// Field fetches and parses one year's tournament field.
func (w *Wikipedia) Field(ctx context.Context, year int) ([]dataset.FieldEntry, error) {
	body, err := w.client.Get(ctx, w.URL(year))
	if err != nil {
		return nil, err
	}
	return ParseField(bytes.NewReader(body), year)
}

var vacated = regexp.MustCompile(`\(vacated.*$`)

// ParseField extracts seeded teams from every wikitable on the page.
//
// A row qualifies when it has at least four cells, the first cell (stripped
// of # and *) is a seed of 1 to 16, and the fourth cell is a W-L record.
func ParseField(r io.Reader, year int) ([]dataset.FieldEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []dataset.FieldEntry
	doc.Find("table.wikitable").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := row.ChildrenFiltered("th, td")
			if cells.Length() < 4 {
				return
			}
			text := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }

			seedText := strings.NewReplacer("#", "", "*", "").Replace(text(0))
			if seedText == "" || seedText[0] < '0' || seedText[0] > '9' {
				return
			}
			seed, err := strconv.Atoi(seedText)
			if err != nil || seed > 16 {
				return
			}
			wins, losses, ok := parseRecord(text(3))
			if !ok {
				return
			}
			out = append(out, dataset.FieldEntry{
				Seed:       seed,
				Team:       strings.TrimSpace(vacated.ReplaceAllString(text(1), "")),
				Conference: text(2),
				Wins:       wins,
				Losses:     losses,
				Year:       year,
			})
		})
	})
	return out, nil
}

// parseRecord reads "W–L" or "W-L".
func parseRecord(s string) (wins, losses int, ok bool) {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "–", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	l, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return w, l, true
}

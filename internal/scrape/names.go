package scrape

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug formats a team name the way Sports-Reference school URLs spell it:
// lower case, accents folded, spaces as dashes, "&" as "and".
func Slug(team string) string {
	s := strings.ToLower(foldAccents(team))
	s = strings.ReplaceAll(s, " ", "-")
	return strings.ReplaceAll(s, "&", "and")
}

// LowerDashed is the plain lower-case, dashed form used for mapping files.
func LowerDashed(team string) string {
	return strings.ReplaceAll(strings.ToLower(team), " ", "-")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

var (
	parenthetical = regexp.MustCompile(`\s*\(.*?\)`)
	punctuation   = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
)

// CleanTeamName normalizes a team name for fuzzy comparison: lower case,
// parenthesized text and punctuation other than hyphens removed, "st "
// expanded to "saint ".
func CleanTeamName(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = parenthetical.ReplaceAllString(s, "")
	s = punctuation.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, "st ", "saint ")
}

// MatchThreshold is the similarity below which a fuzzy match is reported as
// a possible mismatch.
const MatchThreshold = 85

// Matcher finds the closest known name for an arbitrary spelling.
type Matcher struct {
	names []string
	known map[string]bool
}

// NewMatcher indexes the candidate names.
func NewMatcher(names []string) *Matcher {
	m := &Matcher{known: make(map[string]bool, len(names))}
	for _, n := range names {
		if !m.known[n] {
			m.known[n] = true
			m.names = append(m.names, n)
		}
	}
	return m
}

// Best returns the candidate most similar to name and its similarity on a
// 0–100 scale. Ties keep the earliest candidate. ok is false when there are
// no candidates.
func (m *Matcher) Best(name string) (best string, score int, ok bool) {
	if m.known[name] {
		return name, 100, true
	}
	score = -1
	for _, c := range m.names {
		if s := Similarity(name, c); s > score {
			best, score = c, s
		}
	}
	return best, score, score >= 0
}

// Similarity is 100 × (1 − edit distance / combined length), rounded.
func Similarity(a, b string) int {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(float64(total-d)/float64(total)*100 + 0.5)
}

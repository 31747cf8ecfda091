// Package dataset reads and writes the CSV files exchanged between the
// scrapers, the merge and matchup builders and the database loader.
//
// Files are header-driven: columns are located by name, unknown columns are
// ignored, and blank, nan and inf cells read as absent values.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bracketiq/madness-data/internal/stats"
)

// FieldEntry is one team in one year's tournament field.
type FieldEntry struct {
	Seed       int
	Team       string
	Conference string
	Wins       int
	Losses     int
	Year       int
}

// FieldColumns is the header of a field CSV.
var FieldColumns = []string{stats.ColSeed, stats.ColTeam, stats.ColConference, stats.ColWins, stats.ColLosses, stats.ColYear}

// MissingTeam records a team whose statistics page does not exist.
type MissingTeam struct {
	Team string
	Year int
	URL  string
}

// Mapping file columns.
const (
	ColUniqueTeam = "unique_ncaa_team"
	ColLowerTeam  = "lower_ncaa_team"
)

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

// table is a parsed CSV with a header index.
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}
	t := &table{index: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, h := range records[0] {
		t.index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return t, nil
}

func (t *table) require(cols ...string) error {
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			return fmt.Errorf("csv is missing column %q", c)
		}
	}
	return nil
}

func (t *table) cell(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// rowError prefixes an error with its 1-based data line (header is line 1).
func rowError(i int, err error) error {
	return fmt.Errorf("line %d: %w", i+2, err)
}

// ParseFloat reads an optional number. Blank, nan and inf cells are absent.
func ParseFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "inf", "+inf", "-inf", "infinity", "-infinity", "none", "null":
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return stats.Float(v), nil
}

// ParseInt reads an optional integer. Integral floats such as "16.0" are
// accepted since pandas writes integer columns with gaps that way.
func ParseInt(s string) (*int, error) {
	f, err := ParseFloat(s)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return stats.Int(int(*f)), nil
}

func requiredInt(s, col string) (int, error) {
	v, err := ParseInt(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	if v == nil {
		return 0, fmt.Errorf("%s is required", col)
	}
	return *v, nil
}

// ReadTeamStats reads team statistics rows.
func ReadTeamStats(r io.Reader) ([]stats.TeamSeasonStats, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(stats.ColTeam, stats.ColYear); err != nil {
		return nil, err
	}

	out := make([]stats.TeamSeasonStats, 0, len(t.rows))
	for i, row := range t.rows {
		ts, err := t.teamStats(row)
		if err != nil {
			return nil, rowError(i, err)
		}
		out = append(out, ts)
	}
	return out, nil
}

func (t *table) teamStats(row []string) (stats.TeamSeasonStats, error) {
	ts := stats.TeamSeasonStats{
		Team:       t.cell(row, stats.ColTeam),
		Conference: t.cell(row, stats.ColConference),
		NCAAWins:   t.cell(row, stats.ColNCAAWins),
		NCAALoss:   t.cell(row, stats.ColNCAALoss),
	}
	if ts.Team == "" {
		return ts, fmt.Errorf("team is required")
	}
	var err error
	if ts.Year, err = requiredInt(t.cell(row, stats.ColYear), stats.ColYear); err != nil {
		return ts, err
	}
	for col, dst := range map[string]**int{stats.ColSeed: &ts.Seed, stats.ColWins: &ts.Wins, stats.ColLosses: &ts.Losses} {
		if *dst, err = ParseInt(t.cell(row, col)); err != nil {
			return ts, fmt.Errorf("%s: %w", col, err)
		}
	}
	if ts.WinPct, err = ParseFloat(t.cell(row, stats.ColWinPct)); err != nil {
		return ts, fmt.Errorf("%s: %w", stats.ColWinPct, err)
	}
	for _, s := range stats.All() {
		if ts.Values[s], err = ParseFloat(t.cell(row, s.Name())); err != nil {
			return ts, fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return ts, nil
}

// ReadMatchups reads matchup rows. An id column, if present, is ignored.
func ReadMatchups(r io.Reader) ([]stats.MatchupRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(stats.ColYear, stats.ColTeamA, stats.ColTeamB); err != nil {
		return nil, err
	}

	out := make([]stats.MatchupRecord, 0, len(t.rows))
	for i, row := range t.rows {
		m := stats.MatchupRecord{TeamA: t.cell(row, stats.ColTeamA), TeamB: t.cell(row, stats.ColTeamB)}
		if m.Year, err = requiredInt(t.cell(row, stats.ColYear), stats.ColYear); err != nil {
			return nil, rowError(i, err)
		}
		winner, err := ParseInt(t.cell(row, stats.ColWinner))
		if err != nil {
			return nil, rowError(i, fmt.Errorf("%s: %w", stats.ColWinner, err))
		}
		if winner != nil {
			m.Winner = *winner
		}
		seed, err := ParseFloat(t.cell(row, stats.DiffPrefix+stats.ColSeed))
		if err != nil {
			return nil, rowError(i, err)
		}
		if seed != nil {
			m.Seed = int(math.Round(*seed))
		}
		if m.WinPct, err = ParseFloat(t.cell(row, stats.DiffPrefix+stats.ColWinPct)); err != nil {
			return nil, rowError(i, err)
		}
		for _, s := range stats.All() {
			if m.Diffs[s], err = ParseFloat(t.cell(row, s.DiffName())); err != nil {
				return nil, rowError(i, fmt.Errorf("%s: %w", s.DiffName(), err))
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// ReadField reads a tournament field file.
func ReadField(r io.Reader) ([]FieldEntry, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(stats.ColTeam, stats.ColYear); err != nil {
		return nil, err
	}

	out := make([]FieldEntry, 0, len(t.rows))
	for i, row := range t.rows {
		e := FieldEntry{Team: t.cell(row, stats.ColTeam), Conference: t.cell(row, stats.ColConference)}
		if e.Year, err = requiredInt(t.cell(row, stats.ColYear), stats.ColYear); err != nil {
			return nil, rowError(i, err)
		}
		for col, dst := range map[string]*int{stats.ColSeed: &e.Seed, stats.ColWins: &e.Wins, stats.ColLosses: &e.Losses} {
			v, err := ParseInt(t.cell(row, col))
			if err != nil {
				return nil, rowError(i, fmt.Errorf("%s: %w", col, err))
			}
			if v != nil {
				*dst = *v
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// ReadMapping reads a unique_ncaa_team → lower_ncaa_team slug mapping.
func ReadMapping(r io.Reader) (map[string]string, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(ColUniqueTeam, ColLowerTeam); err != nil {
		return nil, err
	}
	m := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		if team := t.cell(row, ColUniqueTeam); team != "" {
			m[team] = t.cell(row, ColLowerTeam)
		}
	}
	return m, nil
}

// ReadColumn returns every value of one column, in file order.
func ReadColumn(r io.Reader, col string) ([]string, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require(col); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, t.cell(row, col))
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Writing
// --------------------------------------------------------------------------

// WriteTeamStats writes rows in canonical column order.
func WriteTeamStats(w io.Writer, rows []stats.TeamSeasonStats) error {
	records := make([][]string, 0, len(rows))
	for _, ts := range rows {
		rec := []string{ts.Team, strconv.Itoa(ts.Year), ts.Conference,
			formatInt(ts.Seed), formatInt(ts.Wins), formatInt(ts.Losses), formatFloat(ts.WinPct)}
		for _, v := range ts.Values {
			rec = append(rec, formatFloat(v))
		}
		records = append(records, append(rec, ts.NCAAWins, ts.NCAALoss))
	}
	return writeAll(w, stats.TeamColumns(), records)
}

// WriteMatchups writes rows in canonical column order, without ids.
func WriteMatchups(w io.Writer, rows []stats.MatchupRecord) error {
	records := make([][]string, 0, len(rows))
	for _, m := range rows {
		rec := []string{strconv.Itoa(m.Year), m.TeamA, m.TeamB, strconv.Itoa(m.Winner),
			strconv.Itoa(m.Seed), formatFloat(m.WinPct)}
		for _, v := range m.Diffs {
			rec = append(rec, formatFloat(v))
		}
		records = append(records, rec)
	}
	return writeAll(w, stats.MatchupColumns(), records)
}

// WriteField writes a tournament field file.
func WriteField(w io.Writer, rows []FieldEntry) error {
	records := make([][]string, 0, len(rows))
	for _, e := range rows {
		records = append(records, []string{strconv.Itoa(e.Seed), e.Team, e.Conference,
			strconv.Itoa(e.Wins), strconv.Itoa(e.Losses), strconv.Itoa(e.Year)})
	}
	return writeAll(w, FieldColumns, records)
}

// WriteMissing writes the teams whose statistics pages were not found.
func WriteMissing(w io.Writer, rows []MissingTeam) error {
	records := make([][]string, 0, len(rows))
	for _, m := range rows {
		records = append(records, []string{m.Team, strconv.Itoa(m.Year), m.URL})
	}
	return writeAll(w, []string{stats.ColTeam, stats.ColYear, "url"}, records)
}

// WriteColumn writes a single-column file.
func WriteColumn(w io.Writer, header string, values []string) error {
	records := make([][]string, 0, len(values))
	for _, v := range values {
		records = append(records, []string{v})
	}
	return writeAll(w, []string{header}, records)
}

// WriteMapping writes team → slug pairs.
func WriteMapping(w io.Writer, pairs [][2]string) error {
	records := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, []string{p[0], p[1]})
	}
	return writeAll(w, []string{ColUniqueTeam, ColLowerTeam}, records)
}

// Reverse copies a CSV with its data rows in reverse order.
func Reverse(r io.Reader, w io.Writer) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("read csv: missing header")
	}
	data := records[1:]
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	return writeAll(w, records[0], data)
}

func writeAll(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatFloat(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// --------------------------------------------------------------------------
// Files
// --------------------------------------------------------------------------

// ReadFile opens path and decodes it with read.
func ReadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// WriteFile creates path and encodes into it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

package survey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/orgpulse/pulse/internal/model"
)

// Well-known demographic columns of the response table.
const (
	AgeColumn     = "연령"
	AgeBandColumn = "연령대"
	TenureColumn  = "근속년수"
	SiteColumn    = "본사/현업"
)

// TenureOption is a "tenure below N years" filter choice.
type TenureOption struct {
	Label string
	Years float64
}

// TenureOptions are the tenure thresholds offered by the dashboards.
var TenureOptions = []TenureOption{
	{"1년 미만", 1},
	{"3년 미만", 3},
	{"5년 미만", 5},
	{"10년 미만", 10},
	{"15년 미만", 15},
	{"20년 미만", 20},
}

// Options controls how a response table is interpreted.
type Options struct {
	Sheet string
	// LenientScores treats unparsable rating cells as missing instead of
	// failing the load.
	LenientScores bool
}

// Dataset is the respondent table of one session. It is built once and
// passed explicitly to whoever aggregates it.
type Dataset struct {
	Source      string
	Fingerprint string
	Registry    *model.Registry
	Columns     []string
	Records     []model.ResponseRecord
}

// Load reads and interprets a survey file.
func Load(path string, reg *model.Registry, opts Options) (*Dataset, error) {
	t, err := LoadTable(path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	ds, err := Build(t, reg, opts)
	if err != nil {
		return nil, err
	}
	fp, err := Fingerprint(path)
	if err != nil {
		return nil, err
	}
	ds.Fingerprint = fp
	return ds, nil
}

// Build converts a raw table into response records. Rating cells of SCALE
// questions are normalized and checked against the declared bounds; other numeric-looking cells keep their raw text
// and gain a numeric value so they can be filtered on.
func Build(t *Table, reg *model.Registry, opts Options) (*Dataset, error) {
	scale := make([]*model.Question, len(t.Header))
	seen := make(map[string]bool, len(t.Header))
	for i, h := range t.Header {
		if seen[h] {
			slog.Warn("duplicate column, later one wins", "column", h, "source", t.Source)
		}
		seen[h] = true
		if q, ok := reg.Question(h); ok && q.IsScale() {
			scale[i] = &q
		}
	}

	var bad []model.CellError
	records := make([]model.ResponseRecord, 0, len(t.Rows))
	for r, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		rec := make(model.ResponseRecord, len(t.Header))
		for i, h := range t.Header {
			if h == "" {
				continue
			}
			raw := row[i]
			if q := scale[i]; q != nil {
				v, ok, err := NormalizeScore(raw)
				if err == nil && ok {
					err = checkRange(*q, v)
				}
				switch {
				case err != nil && opts.LenientScores:
					rec[h] = model.Answer{}
				case err != nil:
					bad = append(bad, model.CellError{Row: r + 1, Column: h, Value: raw})
				case ok:
					rec[h] = model.Answer{Raw: strings.TrimSpace(raw), Score: v, Numeric: true}
				default:
					rec[h] = model.Answer{}
				}
				continue
			}
			if v, ok := parseNumber(raw); ok {
				rec[h] = model.Answer{Raw: strings.TrimSpace(raw), Score: v, Numeric: true}
				continue
			}
			rec[h] = model.TextAnswer(raw)
		}
		records = append(records, rec)
	}
	if len(bad) > 0 {
		return nil, &model.MalformedError{Source: t.Source, Cells: bad}
	}

	columns := make([]string, 0, len(t.Header)+1)
	for _, h := range t.Header {
		if h != "" {
			columns = append(columns, h)
		}
	}
	ds := &Dataset{Source: t.Source, Registry: reg, Columns: columns, Records: records}
	if ds.HasColumn(AgeColumn) && !ds.HasColumn(AgeBandColumn) {
		ds.Records = DeriveAgeBand(ds.Records)
		ds.Columns = append(ds.Columns, AgeBandColumn)
	}
	return ds, nil
}

// HasColumn reports whether the table has a column named name.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of respondents.
func (d *Dataset) Len() int { return len(d.Records) }

// AgeBand buckets an age into decades: 34 -> "30대".
func AgeBand(age float64) string {
	return fmt.Sprintf("%d대", int(math.Floor(age/10))*10)
}

// DeriveAgeBand returns copies of records with AgeBandColumn set from
// AgeColumn. Records without a numeric age get no band.
func DeriveAgeBand(records []model.ResponseRecord) []model.ResponseRecord {
	out := make([]model.ResponseRecord, len(records))
	for i, rec := range records {
		age, ok := rec.Score(AgeColumn)
		if !ok {
			out[i] = rec
			continue
		}
		out[i] = rec.With(AgeBandColumn, model.TextAnswer(AgeBand(age)))
	}
	return out
}

// Fingerprint returns the hex SHA-256 of a file's content.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

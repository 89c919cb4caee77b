// Package aggregate computes per-category statistics over survey responses.
//
// Every function is pure: it reads the records it is given and returns new
// values, so identical input always yields identical output.
package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/orgpulse/pulse/internal/model"
)

type options struct {
	categories []string
	totalRow   bool
}

// Option tunes an aggregation.
type Option func(*options)

// WithCategories pins the leading category order. Listed categories appear
// even when nobody answered; other observed categories follow, sorted.
func WithCategories(categories ...string) Option {
	return func(o *options) { o.categories = categories }
}

// WithTotalRow adds an AllCategory row to a multi-select distribution.
func WithTotalRow() Option {
	return func(o *options) { o.totalRow = true }
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// AggregateScale computes mean and sample standard deviation of a SCALE
// question per category. Rows[0] is always the AllCategory row over every
// record that answered the question.
func AggregateScale(records []model.ResponseRecord, categoryColumn string, q model.Question, opts ...Option) (model.CategoryAggregate, error) {
	if !q.IsScale() {
		return model.CategoryAggregate{}, model.NewError(model.ErrInvalidInput,
			fmt.Sprintf("question %q is not a scale question", q.Label()), nil)
	}
	if err := checkColumn(records, categoryColumn); err != nil {
		return model.CategoryAggregate{}, err
	}
	o := buildOptions(opts)

	var all []float64
	groups := newGrouping()
	for _, rec := range records {
		v, ok := rec.Score(q.Text)
		if !ok {
			continue
		}
		all = append(all, v)
		cat, ok := categoryOf(rec, categoryColumn)
		if !ok {
			continue
		}
		groups.add(cat, v)
	}

	out := model.CategoryAggregate{Column: categoryColumn, Question: q.Text}
	out.Rows = append(out.Rows, describeRow(model.AllCategory, all))
	for _, cat := range groups.order(o.categories) {
		out.Rows = append(out.Rows, describeRow(cat, groups.values[cat]))
	}
	return out, nil
}

// AggregateMultiSelect computes, per category, the share of respondents
// whose answer contains each choice. The denominator is every record in the
// category, answered or not. A nil vocabulary uses the question's choices.
func AggregateMultiSelect(records []model.ResponseRecord, categoryColumn string, q model.Question, vocabulary []string, opts ...Option) (model.ChoiceDistribution, error) {
	if !q.IsMultiSelect() {
		return model.ChoiceDistribution{}, model.NewError(model.ErrInvalidInput,
			fmt.Sprintf("question %q is not a multi-select question", q.Label()), nil)
	}
	if err := checkColumn(records, categoryColumn); err != nil {
		return model.ChoiceDistribution{}, err
	}
	if vocabulary == nil {
		vocabulary = q.Choices
	}
	o := buildOptions(opts)

	needles := make([]string, len(vocabulary))
	for i, c := range vocabulary {
		needles[i] = norm.NFC.String(c)
	}

	type tally struct {
		total int
		hits  []int
	}
	newTally := func() *tally { return &tally{hits: make([]int, len(vocabulary))} }
	count := func(t *tally, rec model.ResponseRecord) {
		t.total++
		text, ok := rec.Text(q.Text)
		if !ok {
			return
		}
		text = norm.NFC.String(text)
		for i, n := range needles {
			if strings.Contains(text, n) {
				t.hits[i]++
			}
		}
	}

	all := newTally()
	byCat := map[string]*tally{}
	groups := newGrouping()
	for _, rec := range records {
		cat, ok := categoryOf(rec, categoryColumn)
		if !ok {
			continue
		}
		count(all, rec)
		t, seen := byCat[cat]
		if !seen {
			t = newTally()
			byCat[cat] = t
			groups.touch(cat)
		}
		count(t, rec)
	}

	toRow := func(cat string, t *tally) model.ChoiceRow {
		row := model.ChoiceRow{Category: cat, Percentages: make(map[string]float64, len(vocabulary))}
		if t == nil {
			t = newTally()
		}
		row.Total = t.total
		for i, c := range vocabulary {
			row.Percentages[c] = percent(t.hits[i], t.total)
		}
		return row
	}

	out := model.ChoiceDistribution{Column: categoryColumn, Question: q.Text, Choices: append([]string(nil), vocabulary...)}
	if o.totalRow {
		out.Rows = append(out.Rows, toRow(model.AllCategory, all))
	}
	for _, cat := range groups.order(o.categories) {
		out.Rows = append(out.Rows, toRow(cat, byCat[cat]))
	}
	return out, nil
}

// describeRow zero-fills empty groups and reports std 0 for single values.
func describeRow(cat string, values []float64) model.CategoryStat {
	row := model.CategoryStat{Category: cat, Count: len(values)}
	if len(values) == 0 {
		return row
	}
	mean, _ := stats.Mean(values)
	row.Mean = RoundTo2(mean)
	row.Std = RoundTo2(sampleStd(values))
	return row
}

func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return RoundTo2(float64(n) / float64(total) * 100)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func checkColumn(records []model.ResponseRecord, column string) error {
	if column == "" {
		return model.NewError(model.ErrInvalidInput, "category column is required", nil)
	}
	if len(records) == 0 {
		return nil
	}
	for _, rec := range records {
		if _, ok := rec[column]; ok {
			return nil
		}
	}
	return model.NewError(model.ErrInvalidInput, fmt.Sprintf("unknown column %q", column), nil)
}

// categoryOf returns the grouping label of a record.
func categoryOf(rec model.ResponseRecord, column string) (string, bool) {
	a, ok := rec.Get(column)
	if !ok {
		return "", false
	}
	return label(a), true
}

// label renders numeric answers by their value so "4점" and "4" share a key.
func label(a model.Answer) string {
	if a.Numeric {
		return strconv.FormatFloat(a.Score, 'f', -1, 64)
	}
	return a.String()
}

// grouping collects values by key, remembering first-seen order.
type grouping struct {
	seen   []string
	values map[string][]float64
}

func newGrouping() *grouping {
	return &grouping{values: map[string][]float64{}}
}

func (g *grouping) touch(key string) {
	if _, ok := g.values[key]; !ok {
		g.seen = append(g.seen, key)
		g.values[key] = nil
	}
}

func (g *grouping) add(key string, v float64) {
	g.touch(key)
	g.values[key] = append(g.values[key], v)
}

// order returns pinned keys first, then the remaining keys in collation order.
func (g *grouping) order(pinned []string) []string {
	out := make([]string, 0, len(g.seen)+len(pinned))
	used := make(map[string]bool, len(pinned))
	for _, p := range pinned {
		if used[p] {
			continue
		}
		used[p] = true
		out = append(out, p)
	}
	rest := make([]string, 0, len(g.seen))
	for _, k := range g.seen {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	SortLabels(rest)
	return append(out, rest...)
}

// SortLabels sorts category labels in Korean collation order, comparing digit
// runs numerically so "9" sorts before "10".
func SortLabels(labels []string) {
	collate.New(language.Korean, collate.Numeric).SortStrings(labels)
}

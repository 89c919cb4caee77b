package aggregate

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/orgpulse/pulse/internal/model"
)

// GroupedStats runs AggregateScale for several questions over one grouping.
func GroupedStats(records []model.ResponseRecord, categoryColumn string, questions []model.Question, opts ...Option) ([]model.CategoryAggregate, error) {
	out := make([]model.CategoryAggregate, 0, len(questions))
	for _, q := range questions {
		agg, err := AggregateScale(records, categoryColumn, q, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

// RadarSeries is one category's mean per axis.
type RadarSeries struct {
	Category string    `json:"category"`
	Values   []float64 `json:"values"`
}

// Radar holds per-category means of several questions, one axis each.
type Radar struct {
	Axes   []string      `json:"axes"`
	Series []RadarSeries `json:"series"`
}

// RadarMeans returns each category's mean score per question. Axes use the
// questions' short labels. The AllCategory series is omitted.
func RadarMeans(records []model.ResponseRecord, categoryColumn string, questions []model.Question, opts ...Option) (Radar, error) {
	aggs, err := GroupedStats(records, categoryColumn, questions, opts...)
	if err != nil {
		return Radar{}, err
	}
	var r Radar
	index := map[string]int{}
	for qi, agg := range aggs {
		r.Axes = append(r.Axes, questions[qi].Label())
		for _, row := range agg.Rows[1:] {
			i, ok := index[row.Category]
			if !ok {
				i = len(r.Series)
				index[row.Category] = i
				r.Series = append(r.Series, RadarSeries{Category: row.Category, Values: make([]float64, len(questions))})
			}
			r.Series[i].Values[qi] = row.Mean
		}
	}
	return r, nil
}

// CrosstabTable is a row-normalized contingency table. Percent[i][j] is the
// share of row i falling in column j.
type CrosstabTable struct {
	RowColumn string      `json:"row_column"`
	ColColumn string      `json:"col_column"`
	Rows      []string    `json:"rows"`
	Columns   []string    `json:"columns"`
	Counts    [][]int     `json:"counts"`
	Percent   [][]float64 `json:"percent"`
}

// Crosstab counts records by (rowColumn, colColumn) and normalizes each row
// to percentages. Records missing either value are dropped.
func Crosstab(records []model.ResponseRecord, rowColumn, colColumn string) (CrosstabTable, error) {
	if err := checkColumn(records, rowColumn); err != nil {
		return CrosstabTable{}, err
	}
	if err := checkColumn(records, colColumn); err != nil {
		return CrosstabTable{}, err
	}

	rows, cols := newGrouping(), newGrouping()
	counts := map[[2]string]int{}
	for _, rec := range records {
		r, ok := categoryOf(rec, rowColumn)
		if !ok {
			continue
		}
		c, ok := categoryOf(rec, colColumn)
		if !ok {
			continue
		}
		rows.touch(r)
		cols.touch(c)
		counts[[2]string{r, c}]++
	}

	t := CrosstabTable{
		RowColumn: rowColumn,
		ColColumn: colColumn,
		Rows:      rows.order(nil),
		Columns:   cols.order(nil),
	}
	for _, r := range t.Rows {
		cnt := make([]int, len(t.Columns))
		total := 0
		for j, c := range t.Columns {
			cnt[j] = counts[[2]string{r, c}]
			total += cnt[j]
		}
		pct := make([]float64, len(t.Columns))
		for j := range cnt {
			pct[j] = percent(cnt[j], total)
		}
		t.Counts = append(t.Counts, cnt)
		t.Percent = append(t.Percent, pct)
	}
	return t, nil
}

// ResponseDistribution is the crosstab of a category against the scores of a
// SCALE question.
func ResponseDistribution(records []model.ResponseRecord, categoryColumn string, q model.Question) (CrosstabTable, error) {
	if !q.IsScale() {
		return CrosstabTable{}, model.NewError(model.ErrInvalidInput,
			fmt.Sprintf("question %q is not a scale question", q.Label()), nil)
	}
	return Crosstab(records, categoryColumn, q.Text)
}

// Summary mirrors a numeric column description: count, mean, std and the
// five-number summary.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe summarizes the numeric values of column. Quartiles use the
// nearest-rank method.
func Describe(records []model.ResponseRecord, column string) (Summary, error) {
	values := Values(records, column)
	if len(values) == 0 {
		return Summary{}, model.NewError(model.ErrMissingData,
			fmt.Sprintf("column %q has no numeric values", column), nil)
	}
	s := Summary{Column: column, Count: len(values)}
	mean, _ := stats.Mean(values)
	s.Mean = RoundTo2(mean)
	s.Std = RoundTo2(sampleStd(values))
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	q1, _ := stats.PercentileNearestRank(values, 25)
	med, _ := stats.Median(values)
	q3, _ := stats.PercentileNearestRank(values, 75)
	s.Q1, s.Median, s.Q3 = RoundTo2(q1), RoundTo2(med), RoundTo2(q3)
	return s, nil
}

// Values returns the numeric values of column in record order.
func Values(records []model.ResponseRecord, column string) []float64 {
	var out []float64
	for _, rec := range records {
		if v, ok := rec.Score(column); ok {
			out = append(out, v)
		}
	}
	return out
}

// ValueCount is one distinct value with its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts lists distinct non-missing values of column, most frequent
// first; ties keep collation order.
func ValueCounts(records []model.ResponseRecord, column string) []ValueCount {
	g := newGrouping()
	counts := map[string]int{}
	for _, rec := range records {
		v, ok := categoryOf(rec, column)
		if !ok {
			continue
		}
		g.touch(v)
		counts[v]++
	}
	keys := g.order(nil)
	out := make([]ValueCount, len(keys))
	for i, k := range keys {
		out[i] = ValueCount{Value: k, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

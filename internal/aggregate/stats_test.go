package aggregate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgpulse/pulse/internal/model"
)

func TestCrosstab(t *testing.T) {
	records := []model.ResponseRecord{
		rec("dept", "A", "q", 1),
		rec("dept", "A", "q", 5),
		rec("dept", "A", "q", 5),
		rec("dept", "B", "q", 1),
		rec("dept", "B"),
	}
	tab, err := ResponseDistribution(records, "dept", scaleQ)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, tab.Rows)
	assert.Equal(t, []string{"1", "5"}, tab.Columns)
	assert.Equal(t, [][]int{{1, 2}, {1, 0}}, tab.Counts)
	assert.Equal(t, [][]float64{{33.33, 66.67}, {100, 0}}, tab.Percent)

	_, err = ResponseDistribution(records, "dept", multiQ)
	assert.True(t, errors.Is(err, model.Code(model.ErrInvalidInput)))
}

func TestGroupedStatsAndRadar(t *testing.T) {
	q2 := model.Question{Text: "q2", Short: "둘째", Kind: model.KindScale}
	records := []model.ResponseRecord{
		rec("dept", "A", "q", 4, "q2", 2),
		rec("dept", "B", "q", 2, "q2", 5),
	}
	aggs, err := GroupedStats(records, "dept", []model.Question{scaleQ, q2})
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	assert.Equal(t, "q2", aggs[1].Question)

	radar, err := RadarMeans(records, "dept", []model.Question{scaleQ, q2})
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "둘째"}, radar.Axes)
	assert.Equal(t, []RadarSeries{
		{Category: "A", Values: []float64{4, 2}},
		{Category: "B", Values: []float64{2, 5}},
	}, radar.Series)
}

func TestDescribe(t *testing.T) {
	var records []model.ResponseRecord
	for _, v := range []int{1, 2, 3, 4, 5, 6, 7, 8} {
		records = append(records, rec("age", v))
	}
	records = append(records, rec("age", "모름"))

	s, err := Describe(records, "age")
	require.NoError(t, err)
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 4.5, s.Mean)
	assert.Equal(t, 2.45, s.Std)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 2.0, s.Q1)
	assert.Equal(t, 4.5, s.Median)
	assert.Equal(t, 6.0, s.Q3)
	assert.Equal(t, 8.0, s.Max)

	_, err = Describe(records[8:], "age")
	assert.True(t, errors.Is(err, model.Code(model.ErrMissingData)))
}

func TestValueCounts(t *testing.T) {
	records := []model.ResponseRecord{
		rec("sex", "여"), rec("sex", "남"), rec("sex", "여"), rec("sex", ""), rec("x", 1),
	}
	assert.Equal(t, []ValueCount{{Value: "여", Count: 2}, {Value: "남", Count: 1}}, ValueCounts(records, "sex"))
}

func TestKDE(t *testing.T) {
	d, err := KDE([]float64{1, 2, 2, 3, 5}, 200)
	require.NoError(t, err)
	require.Len(t, d.X, 200)
	assert.Greater(t, d.Bandwidth, 0.0)

	// Riemann sum over the grid approximates 1.
	step := d.X[1] - d.X[0]
	var area float64
	for _, y := range d.Y {
		assert.GreaterOrEqual(t, y, 0.0)
		area += y * step
	}
	assert.InDelta(t, 1.0, area, 0.02)

	_, err = KDE([]float64{3, 3, 3}, 50)
	assert.True(t, errors.Is(err, model.Code(model.ErrMissingData)))
	_, err = KDE([]float64{3}, 50)
	assert.Error(t, err)
}

func TestDensityByCategorySkipsDegenerate(t *testing.T) {
	records := []model.ResponseRecord{
		rec("dept", "A", "q", 1), rec("dept", "A", "q", 4),
		rec("dept", "B", "q", 3),
	}
	ds, err := DensityByCategory(records, "dept", scaleQ, 20)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "A", ds[0].Category)
	assert.False(t, math.IsNaN(ds[0].Y[10]))
}

func TestWordFrequencies(t *testing.T) {
	got := WordFrequencies([]string{"소통!", "소통", " 공정 ", "공정.", "소통", "a", "?!"}, 0)
	assert.Equal(t, []WordCount{{Text: "소통", Count: 3}, {Text: "공정", Count: 2}}, got)

	assert.Equal(t, "소통 부재", CleanText("  (소통) 부재!! "))
}

func TestApplyFilters(t *testing.T) {
	records := []model.ResponseRecord{
		rec("site", "본사", "sex", "남", "tenure", 2),
		rec("site", "현업", "sex", "여", "tenure", 12),
		rec("site", "본사", "sex", "여", "tenure", 7),
		rec("site", "본사", "sex", "여"),
	}

	assert.Len(t, ApplyFilters(records, Filters{}), 4)

	got := ApplyFilters(records, Filters{Fields: map[string][]string{
		"site": {"본사"},
		"sex":  {"남", "여"},
	}})
	assert.Len(t, got, 3)

	got = ApplyFilters(records, Filters{
		Fields: map[string][]string{"sex": {"여"}},
		Below:  map[string]float64{"tenure": 10},
	})
	require.Len(t, got, 1)
	v, _ := got[0].Score("tenure")
	assert.Equal(t, 7.0, v)

	got = ApplyFilters(records, Filters{Fields: map[string][]string{"tenure": {"12"}}})
	assert.Len(t, got, 1, "numeric columns match on their value")
}

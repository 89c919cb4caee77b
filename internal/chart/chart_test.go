package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgpulse/pulse/internal/aggregate"
	"github.com/orgpulse/pulse/internal/model"
)

var dist = model.ChoiceDistribution{
	Column:   "dept",
	Question: "m",
	Choices:  []string{"foo", "bar"},
	Rows: []model.ChoiceRow{
		{Category: model.AllCategory, Total: 3, Percentages: map[string]float64{"foo": 66.67, "bar": 33.33}},
		{Category: "A", Total: 2, Percentages: map[string]float64{"foo": 50, "bar": 50}},
		{Category: "B", Total: 1, Percentages: map[string]float64{"foo": 100, "bar": 0}},
	},
}

func TestScaleBar(t *testing.T) {
	agg := model.CategoryAggregate{Column: "dept", Rows: []model.CategoryStat{
		{Category: model.AllCategory, Mean: 3.67}, {Category: "A", Mean: 3},
	}}
	cfg := ScaleBar(agg, "소통")
	require.Len(t, cfg.Series, 1)
	assert.Equal(t, TypeBar, cfg.ChartType)
	assert.Equal(t, []Point{{model.AllCategory, 3.67}, {"A", 3}}, cfg.Series[0].Data)
}

func TestDonutAveragesCategories(t *testing.T) {
	cfg := Donut(dist, "단점")
	assert.Equal(t, donutCenter, cfg.Center)
	assert.Equal(t, []Point{{"foo", 75}, {"bar", 25}}, cfg.Series[0].Data, "the overall row is not averaged in")
}

func TestHeatmapAndChoiceBar(t *testing.T) {
	hm := Heatmap(dist, "h")
	require.Len(t, hm.Series, 3)
	assert.Equal(t, "B", hm.Series[2].Name)
	assert.Equal(t, 100.0, hm.Series[2].Data[0].Value)

	bar := ChoiceBar(dist, "b")
	assert.Len(t, bar.Colors, 3)
	assert.Equal(t, bar.Colors[1], bar.Series[1].Color)
}

func TestStackedBar(t *testing.T) {
	tab := aggregate.CrosstabTable{
		RowColumn: "dept",
		Rows:      []string{"A", "B"},
		Columns:   []string{"1", "5"},
		Percent:   [][]float64{{25, 75}, {100, 0}},
	}
	cfg := StackedBar(tab, "분포")
	require.Len(t, cfg.Series, 2)
	assert.Equal(t, "5", cfg.Series[1].Name)
	assert.Equal(t, []Point{{"A", 75}, {"B", 0}}, cfg.Series[1].Data)
}

func TestScoreRadarFollowsAxes(t *testing.T) {
	cfg := ScoreRadar("후보", map[string]float64{"b": 2, "a": 4}, []string{"a", "b", "c"}, "vision", 5)
	require.Len(t, cfg.Series, 1)
	assert.Equal(t, []Point{{"a", 4}, {"b", 2}, {"c", 0}}, cfg.Series[0].Data)
	assert.Equal(t, 5.0, cfg.Max)
}

func TestWordCloudLimit(t *testing.T) {
	words := []aggregate.WordCount{
		{Text: "소통", Count: 3},
		{Text: "공정", Count: 2},
		{Text: "혁신", Count: 1},
	}
	cfg := WordCloud(words, "w", 2)
	assert.Len(t, cfg.Series[0].Data, 2)
}

func TestConfigJSONShape(t *testing.T) {
	data, err := json.Marshal(Donut(dist, "d"))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "donut", m["chartType"])
	assert.Contains(t, m, "series")
	assert.NotContains(t, m, "xAxis")
}

func TestStatsTable(t *testing.T) {
	agg := model.CategoryAggregate{Column: "dept", Rows: []model.CategoryStat{
		{Category: model.AllCategory, Mean: 3.5, Std: 0.71, Count: 2},
	}}
	tbl := StatsTable(agg, "t")
	assert.Equal(t, [][]string{{model.AllCategory, "3.50", "0.71", "2"}}, tbl.Rows)
	assert.Len(t, tbl.Columns, 4)

	ct := ChoiceTable(dist, "c")
	assert.Equal(t, []string{"B", "100.00", "0.00", "1"}, ct.Rows[2])
}

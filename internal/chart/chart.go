// Package chart turns aggregates into render-ready chart configurations. The
// browser draws them; nothing here knows about pixels.
package chart

import (
	"fmt"
	"strconv"

	"github.com/orgpulse/pulse/internal/aggregate"
	"github.com/orgpulse/pulse/internal/model"
)

// Chart types understood by the dashboard script.
const (
	TypeBar        = "bar"
	TypeStackedBar = "stacked_bar"
	TypeDonut      = "donut"
	TypeHeatmap    = "heatmap"
	TypeRadar      = "radar"
	TypeDensity    = "density"
	TypeWordCloud  = "wordcloud"
)

// donutCenter is the caption drawn inside a donut.
const donutCenter = "응답 분포"

// Default color palette for chart series.
var defaultColors = []string{
	"#66C2A5", "#FC8D62", "#8DA0CB", "#E78AC3", "#A6D854",
	"#FFD92F", "#E5C494", "#B3B3B3", "#4F46E5", "#EF4444",
}

// Config defines how to render a chart.
type Config struct {
	ChartType  string   `json:"chartType"`
	Title      string   `json:"title"`
	XAxis      string   `json:"xAxis,omitempty"`
	YAxis      string   `json:"yAxis,omitempty"`
	Series     []Series `json:"series"`
	Colors     []string `json:"colors,omitempty"`
	Center     string   `json:"center,omitempty"`
	Max        float64  `json:"max,omitempty"`
	ShowLegend bool     `json:"showLegend"`
	ShowGrid   bool     `json:"showGrid"`
}

// Series is one data series.
type Series struct {
	Name  string  `json:"name"`
	Data  []Point `json:"data"`
	Color string  `json:"color,omitempty"`
}

// Point is a single data point.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ScaleBar plots each category's mean score, the overall row first.
func ScaleBar(agg model.CategoryAggregate, title string) *Config {
	points := make([]Point, 0, len(agg.Rows))
	for _, r := range agg.Rows {
		points = append(points, Point{Label: r.Category, Value: r.Mean})
	}
	return &Config{
		ChartType:  TypeBar,
		Title:      title,
		XAxis:      agg.Column,
		YAxis:      "평균 점수",
		Series:     []Series{{Name: "평균", Data: points, Color: defaultColors[0]}},
		Colors:     assignColors(1),
		ShowLegend: false,
		ShowGrid:   true,
	}
}

// ChoiceBar plots one series per category over the choice vocabulary.
func ChoiceBar(dist model.ChoiceDistribution, title string) *Config {
	series := make([]Series, 0, len(dist.Rows))
	for i, r := range dist.Rows {
		points := make([]Point, 0, len(dist.Choices))
		for _, c := range dist.Choices {
			points = append(points, Point{Label: c, Value: r.Percentages[c]})
		}
		series = append(series, Series{Name: r.Category, Data: points, Color: colorAt(i)})
	}
	return &Config{
		ChartType:  TypeBar,
		Title:      title,
		XAxis:      "선택지",
		YAxis:      "응답률 (%)",
		Series:     series,
		Colors:     assignColors(len(series)),
		Max:        100,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// StackedBar plots a crosstab as 100% stacked bars, one bar per row.
func StackedBar(tab aggregate.CrosstabTable, title string) *Config {
	series := make([]Series, 0, len(tab.Columns))
	for j, col := range tab.Columns {
		points := make([]Point, 0, len(tab.Rows))
		for i, row := range tab.Rows {
			points = append(points, Point{Label: row, Value: tab.Percent[i][j]})
		}
		series = append(series, Series{Name: col, Data: points, Color: colorAt(j)})
	}
	return &Config{
		ChartType:  TypeStackedBar,
		Title:      title,
		XAxis:      tab.RowColumn,
		YAxis:      "응답 비율 (%)",
		Series:     series,
		Colors:     assignColors(len(series)),
		Max:        100,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// Heatmap lays out a category x choice percentage grid. Each series is a row.
func Heatmap(dist model.ChoiceDistribution, title string) *Config {
	series := make([]Series, 0, len(dist.Rows))
	for _, r := range dist.Rows {
		points := make([]Point, 0, len(dist.Choices))
		for _, c := range dist.Choices {
			points = append(points, Point{Label: c, Value: r.Percentages[c]})
		}
		series = append(series, Series{Name: r.Category, Data: points})
	}
	return &Config{
		ChartType: TypeHeatmap,
		Title:     title,
		XAxis:     "선택지",
		YAxis:     dist.Column,
		Series:    series,
		Max:       100,
	}
}

// Donut shows each choice's percentage averaged across categories.
func Donut(dist model.ChoiceDistribution, title string) *Config {
	points := make([]Point, 0, len(dist.Choices))
	for _, c := range dist.Choices {
		var sum float64
		n := 0
		for _, r := range dist.Rows {
			if r.Category == model.AllCategory {
				continue
			}
			sum += r.Percentages[c]
			n++
		}
		var mean float64
		if n > 0 {
			mean = aggregate.RoundTo2(sum / float64(n))
		}
		points = append(points, Point{Label: c, Value: mean})
	}
	return &Config{
		ChartType:  TypeDonut,
		Title:      title,
		Series:     []Series{{Name: title, Data: points}},
		Colors:     assignColors(len(points)),
		Center:     donutCenter,
		ShowLegend: true,
	}
}

// Radar plots per-category means over the question axes.
func Radar(r aggregate.Radar, title string, scaleMax float64) *Config {
	series := make([]Series, 0, len(r.Series))
	for i, s := range r.Series {
		points := make([]Point, len(r.Axes))
		for j, axis := range r.Axes {
			points[j] = Point{Label: axis, Value: s.Values[j]}
		}
		series = append(series, Series{Name: s.Category, Data: points, Color: colorAt(i)})
	}
	return &Config{
		ChartType:  TypeRadar,
		Title:      title,
		Series:     series,
		Colors:     assignColors(len(series)),
		Max:        scaleMax,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// ScoreRadar plots a single score map, axes in the given order.
func ScoreRadar(name string, scores map[string]float64, axes []string, title string, scaleMax float64) *Config {
	r := aggregate.Radar{Axes: axes, Series: []aggregate.RadarSeries{{Category: name, Values: make([]float64, len(axes))}}}
	for i, a := range axes {
		r.Series[0].Values[i] = scores[a]
	}
	return Radar(r, title, scaleMax)
}

// Density overlays one estimated curve per category.
func Density(ds []aggregate.Density, title, xAxis string) *Config {
	series := make([]Series, 0, len(ds))
	for i, d := range ds {
		points := make([]Point, len(d.X))
		for j := range d.X {
			points[j] = Point{Label: strconv.FormatFloat(aggregate.RoundTo2(d.X[j]), 'f', -1, 64), Value: d.Y[j]}
		}
		series = append(series, Series{Name: fmt.Sprintf("%s (n=%d)", d.Category, d.Count), Data: points, Color: colorAt(i)})
	}
	return &Config{
		ChartType:  TypeDensity,
		Title:      title,
		XAxis:      xAxis,
		YAxis:      "밀도",
		Series:     series,
		Colors:     assignColors(len(series)),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// WordCloud keeps the limit most frequent words; limit <= 0 keeps all.
func WordCloud(words []aggregate.WordCount, title string, limit int) *Config {
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	points := make([]Point, len(words))
	for i, w := range words {
		points[i] = Point{Label: w.Text, Value: float64(w.Count)}
	}
	return &Config{
		ChartType: TypeWordCloud,
		Title:     title,
		Series:    []Series{{Name: title, Data: points}},
		Colors:    assignColors(len(defaultColors)),
	}
}

func colorAt(i int) string {
	return defaultColors[i%len(defaultColors)]
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = colorAt(i)
	}
	return colors
}

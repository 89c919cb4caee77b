package chart

import (
	"strconv"

	"github.com/orgpulse/pulse/internal/aggregate"
	"github.com/orgpulse/pulse/internal/model"
)

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "percent"
	Align string `json:"align"` // "left", "right"
}

func textColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "text", Align: "left"}
}

func numberColumn(key, label, typ string) Column {
	return Column{Key: key, Label: label, Type: typ, Align: "right"}
}

// StatsTable lists mean, std and count per category.
func StatsTable(agg model.CategoryAggregate, title string) *TableData {
	t := &TableData{
		Title: title,
		Columns: []Column{
			textColumn("category", agg.Column),
			numberColumn("mean", "평균", "number"),
			numberColumn("std", "표준편차", "number"),
			numberColumn("count", "응답 수", "number"),
		},
	}
	for _, r := range agg.Rows {
		t.Rows = append(t.Rows, []string{r.Category, formatFloat(r.Mean), formatFloat(r.Std), strconv.Itoa(r.Count)})
	}
	return t
}

// ChoiceTable lists choice percentages per category.
func ChoiceTable(dist model.ChoiceDistribution, title string) *TableData {
	t := &TableData{Title: title, Columns: []Column{textColumn("category", dist.Column)}}
	for i, c := range dist.Choices {
		t.Columns = append(t.Columns, numberColumn("c"+strconv.Itoa(i), c, "percent"))
	}
	t.Columns = append(t.Columns, numberColumn("total", "응답 수", "number"))
	for _, r := range dist.Rows {
		row := []string{r.Category}
		for _, c := range dist.Choices {
			row = append(row, formatFloat(r.Percentages[c]))
		}
		t.Rows = append(t.Rows, append(row, strconv.Itoa(r.Total)))
	}
	return t
}

// CrosstabTable renders a row-normalized crosstab.
func CrosstabTable(tab aggregate.CrosstabTable, title string) *TableData {
	t := &TableData{Title: title, Columns: []Column{textColumn("row", tab.RowColumn)}}
	for i, c := range tab.Columns {
		t.Columns = append(t.Columns, numberColumn("c"+strconv.Itoa(i), c, "percent"))
	}
	for i, r := range tab.Rows {
		row := []string{r}
		for _, p := range tab.Percent[i] {
			row = append(row, formatFloat(p))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DescribeTable renders a numeric summary as a two-column table.
func DescribeTable(s aggregate.Summary, title string) *TableData {
	return &TableData{
		Title:   title,
		Columns: []Column{textColumn("stat", "통계"), numberColumn("value", s.Column, "number")},
		Rows: [][]string{
			{"count", strconv.Itoa(s.Count)},
			{"mean", formatFloat(s.Mean)},
			{"std", formatFloat(s.Std)},
			{"min", formatFloat(s.Min)},
			{"25%", formatFloat(s.Q1)},
			{"50%", formatFloat(s.Median)},
			{"75%", formatFloat(s.Q3)},
			{"max", formatFloat(s.Max)},
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/orgpulse/pulse/internal/aggregate"
	"github.com/orgpulse/pulse/internal/chart"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/survey"
)

func aggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Print per-category aggregates of survey questions",
		Example: `  pulse aggregate -s responses.xlsx -c 성별
  pulse aggregate -s responses.csv -c 직급 -q "리더의 동기부여" --filter 본사/현업:본사 --tenure 5`,
		RunE: runAggregate,
	}
	f := cmd.Flags()
	addSurveyFlags(cmd)
	f.StringP("category", "c", "", "Grouping column (default: first registry category present)")
	f.StringSliceP("question", "q", nil, "Question text or short label (repeatable; default: all)")
	f.StringArray("filter", nil, "Keep rows where column:value (repeatable; same column is OR-ed)")
	f.Float64("tenure", 0, "Keep rows with tenure below N years (0 = no limit)")
	f.StringP("format", "f", "table", "Output format (table, json)")
	addLogFlags(cmd)
	_ = cmd.MarkFlagRequired("survey")
	return cmd
}

// aggregateResult is one question's output in JSON mode.
type aggregateResult struct {
	Scale       *model.CategoryAggregate  `json:"scale,omitempty"`
	MultiSelect *model.ChoiceDistribution `json:"multi_select,omitempty"`
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	v := setup(cmd)

	data, err := loadSurvey(v)
	if err != nil {
		return err
	}

	category := v.GetString("category")
	if category == "" {
		for _, c := range data.Registry.Categories {
			if data.HasColumn(c) {
				category = c
				break
			}
		}
	}
	if !data.HasColumn(category) {
		return &model.ValidationError{Field: "category", Message: fmt.Sprintf("column %q not in survey", category)}
	}

	filters, err := parseFilters(v.GetStringSlice("filter"), v.GetFloat64("tenure"))
	if err != nil {
		return err
	}
	records := aggregate.ApplyFilters(data.Records, filters)
	slog.Debug("filters applied", "kept", len(records), "total", data.Len())

	questions, err := selectQuestions(data, v.GetStringSlice("question"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var results []aggregateResult
	for _, q := range questions {
		var res aggregateResult
		var table *chart.TableData
		switch {
		case q.IsScale():
			agg, err := aggregate.AggregateScale(records, category, q)
			if err != nil {
				return fmt.Errorf("%s: %w", q.Label(), err)
			}
			res.Scale = &agg
			table = chart.StatsTable(agg, q.Label())
		case q.IsMultiSelect():
			dist, err := aggregate.AggregateMultiSelect(records, category, q, q.Choices, aggregate.WithTotalRow())
			if err != nil {
				return fmt.Errorf("%s: %w", q.Label(), err)
			}
			res.MultiSelect = &dist
			table = chart.ChoiceTable(dist, q.Label())
		}
		if v.GetString("format") == "json" {
			results = append(results, res)
			continue
		}
		printTable(out, table)
	}

	if v.GetString("format") == "json" {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return nil
}

// parseFilters turns column:value pairs into aggregate filters.
func parseFilters(pairs []string, tenure float64) (aggregate.Filters, error) {
	var f aggregate.Filters
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, ":")
		if !ok || col == "" {
			return f, &model.ValidationError{Field: "filter", Message: fmt.Sprintf("expected column:value, got %q", p)}
		}
		if f.Fields == nil {
			f.Fields = map[string][]string{}
		}
		f.Fields[col] = append(f.Fields[col], val)
	}
	if tenure < 0 {
		return f, &model.ValidationError{Field: "tenure", Message: "must not be negative"}
	}
	if tenure > 0 {
		f.Below = map[string]float64{survey.TenureColumn: tenure}
	}
	return f, nil
}

// selectQuestions resolves names against the registry; no names selects
// every registry question present in the survey.
func selectQuestions(data *survey.Dataset, names []string) ([]model.Question, error) {
	var out []model.Question
	if len(names) == 0 {
		for _, q := range data.Registry.Questions {
			if data.HasColumn(q.Text) {
				out = append(out, q)
			} else {
				warn("question not in survey, skipped: %s", q.Label())
			}
		}
		return out, nil
	}
	for _, n := range names {
		q, ok := data.Registry.Question(n)
		if !ok {
			return nil, &model.ValidationError{Field: "question", Message: fmt.Sprintf("unknown question %q", n)}
		}
		out = append(out, q)
	}
	return out, nil
}

func printTable(w io.Writer, t *chart.TableData) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, t.Title)

	tw := tablewriter.NewWriter(w)
	header := make([]string, len(t.Columns))
	align := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Label
		align[i] = tablewriter.ALIGN_LEFT
		if c.Align == "right" {
			align[i] = tablewriter.ALIGN_RIGHT
		}
	}
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetColumnAlignment(align)
	tw.AppendBulk(t.Rows)
	tw.Render()
	fmt.Fprintln(w)
}

func warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(color.Error, "warning: "+format+"\n", args...)
}

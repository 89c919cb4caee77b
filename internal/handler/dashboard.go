package handler

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/orgpulse/pulse/internal/aggregate"
	"github.com/orgpulse/pulse/internal/chart"
	"github.com/orgpulse/pulse/internal/handler/views"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/survey"
)

const (
	densityPoints = 100
	wordLimit     = 80
)

// scope is the record subset and grouping column a dashboard request asks for.
type scope struct {
	category string
	filters  aggregate.Filters
	tenure   string
	records  []model.ResponseRecord
}

// query re-encodes the scope so the page script can pass it to the API.
func (s scope) query() string {
	v := url.Values{}
	v.Set("category", s.category)
	for col, vals := range s.filters.Fields {
		for _, val := range vals {
			v.Add("filter", col+":"+val)
		}
	}
	if s.tenure != "" {
		v.Set("tenure", s.tenure)
	}
	return v.Encode()
}

func (h *Handler) defaultCategory() string {
	if h.config.DefaultCategory != "" {
		return h.config.DefaultCategory
	}
	for _, c := range h.data.Registry.Categories {
		if h.data.HasColumn(c) {
			return c
		}
	}
	return ""
}

// parseScope reads category, filter=<column>:<value> and tenure=<years>.
func (h *Handler) parseScope(r *http.Request) (scope, error) {
	q := r.URL.Query()
	s := scope{category: strings.TrimSpace(q.Get("category"))}
	if s.category == "" {
		s.category = h.defaultCategory()
	}
	if !h.data.HasColumn(s.category) {
		return s, &model.ValidationError{Field: "category", Message: "unknown column " + strconv.Quote(s.category)}
	}

	for _, raw := range q["filter"] {
		col, val, ok := strings.Cut(raw, ":")
		if !ok || col == "" {
			return s, &model.ValidationError{Field: "filter", Message: "expected column:value, got " + strconv.Quote(raw)}
		}
		if !h.data.HasColumn(col) {
			return s, &model.ValidationError{Field: "filter", Message: "unknown column " + strconv.Quote(col)}
		}
		if s.filters.Fields == nil {
			s.filters.Fields = map[string][]string{}
		}
		s.filters.Fields[col] = append(s.filters.Fields[col], val)
	}

	if t := strings.TrimSpace(q.Get("tenure")); t != "" {
		years, err := strconv.ParseFloat(t, 64)
		if err != nil || years <= 0 {
			return s, &model.ValidationError{Field: "tenure", Message: "expected a positive number of years"}
		}
		s.tenure = t
		s.filters.Below = map[string]float64{survey.TenureColumn: years}
	}

	s.records = aggregate.ApplyFilters(h.data.Records, s.filters)
	return s, nil
}

func (h *Handler) question(r *http.Request, kind model.QuestionKind) (model.Question, error) {
	name := r.URL.Query().Get("question")
	q, ok := h.data.Registry.Question(name)
	if !ok || q.Kind != kind {
		return model.Question{}, &model.ValidationError{Field: "question", Message: "unknown " + string(kind) + " question " + strconv.Quote(name)}
	}
	return q, nil
}

func (h *Handler) column(r *http.Request, param string) (string, error) {
	col := r.URL.Query().Get(param)
	if !h.data.HasColumn(col) {
		return "", &model.ValidationError{Field: param, Message: "unknown column " + strconv.Quote(col)}
	}
	return col, nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}

	d := views.DashboardData{
		Respondents:  len(s.records),
		Query:        s.query(),
		DatasetLabel: filepath.Base(h.data.Source),
	}
	for _, c := range h.data.Registry.Categories {
		if !h.data.HasColumn(c) {
			continue
		}
		d.Categories = append(d.Categories, views.Option{Value: c, Label: c, Selected: c == s.category})
		if c == survey.AgeColumn {
			continue
		}
		fc := views.FilterColumn{Column: c}
		chosen := map[string]bool{}
		for _, v := range s.filters.Fields[c] {
			chosen[v] = true
		}
		for _, vc := range aggregate.ValueCounts(h.data.Records, c) {
			fc.Options = append(fc.Options, views.Option{Value: vc.Value, Label: vc.Value, Selected: chosen[vc.Value]})
		}
		d.Filters = append(d.Filters, fc)
	}
	for _, t := range survey.TenureOptions {
		v := strconv.FormatFloat(t.Years, 'f', -1, 64)
		d.Tenure = append(d.Tenure, views.Option{Value: v, Label: t.Label, Selected: v == s.tenure})
	}
	for _, q := range h.data.Registry.ScaleQuestions() {
		if h.data.HasColumn(q.Text) {
			d.Scale = append(d.Scale, views.Option{Value: q.Text, Label: q.Label()})
		}
	}
	for _, q := range h.data.Registry.MultiSelectQuestions() {
		if h.data.HasColumn(q.Text) {
			d.MultiSelect = append(d.MultiSelect, views.Option{Value: q.Text, Label: q.Label()})
		}
	}

	render(w, r, http.StatusOK, views.DashboardPage(d))
}

func (h *Handler) handleColumns(w http.ResponseWriter, r *http.Request) {
	type questionInfo struct {
		Text  string             `json:"text"`
		Label string             `json:"label"`
		Kind  model.QuestionKind `json:"kind"`
	}
	resp := struct {
		Categories []string              `json:"categories"`
		Questions  []questionInfo        `json:"questions"`
		Tenure     []survey.TenureOption `json:"tenure"`
		Columns    []string              `json:"columns"`
	}{Tenure: survey.TenureOptions, Columns: h.data.Columns}
	for _, c := range h.data.Registry.Categories {
		if h.data.HasColumn(c) {
			resp.Categories = append(resp.Categories, c)
		}
	}
	for _, q := range h.data.Registry.Questions {
		if h.data.HasColumn(q.Text) {
			resp.Questions = append(resp.Questions, questionInfo{Text: q.Text, Label: q.Label(), Kind: q.Kind})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleScale(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := h.question(r, model.KindScale)
	if err != nil {
		writeError(w, err)
		return
	}
	agg, err := aggregate.AggregateScale(s.records, s.category, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"aggregate": agg,
		"table":     chart.StatsTable(agg, q.Label()),
		"chart":     chart.ScaleBar(agg, q.Label()),
	})
}

func (h *Handler) handleMultiSelect(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := h.question(r, model.KindMultiSelect)
	if err != nil {
		writeError(w, err)
		return
	}
	dist, err := aggregate.AggregateMultiSelect(s.records, s.category, q, q.Choices, aggregate.WithTotalRow())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"distribution": dist,
		"table":        chart.ChoiceTable(dist, q.Label()),
		"chart":        chart.ChoiceBar(dist, q.Label()),
		"heatmap":      chart.Heatmap(dist, q.Label()),
		"donut":        chart.Donut(dist, q.Label()),
	})
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := h.question(r, model.KindScale)
	if err != nil {
		writeError(w, err)
		return
	}
	tab, err := aggregate.ResponseDistribution(s.records, s.category, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"crosstab": tab,
		"table":    chart.CrosstabTable(tab, q.Label()),
		"chart":    chart.StackedBar(tab, q.Label()),
	})
}

// handleRadar plots every requested SCALE question, or all of them.
func (h *Handler) handleRadar(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var questions []model.Question
	for _, name := range r.URL.Query()["question"] {
		q, ok := h.data.Registry.Question(name)
		if !ok || !q.IsScale() {
			writeError(w, &model.ValidationError{Field: "question", Message: "unknown scale question " + strconv.Quote(name)})
			return
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		for _, q := range h.data.Registry.ScaleQuestions() {
			if h.data.HasColumn(q.Text) {
				questions = append(questions, q)
			}
		}
	}
	radar, err := aggregate.RadarMeans(s.records, s.category, questions)
	if err != nil {
		writeError(w, err)
		return
	}
	scaleMax := 0
	for _, q := range questions {
		scaleMax = max(scaleMax, q.ScaleMax)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"radar": radar,
		"chart": chart.Radar(radar, s.category, float64(scaleMax)),
	})
}

func (h *Handler) handleDensity(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := h.question(r, model.KindScale)
	if err != nil {
		writeError(w, err)
		return
	}
	ds, err := aggregate.DensityByCategory(s.records, s.category, q, densityPoints)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"densities": ds,
		"chart":     chart.Density(ds, q.Label(), q.Label()),
	})
}

func (h *Handler) handleWords(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	col, err := h.column(r, "column")
	if err != nil {
		writeError(w, err)
		return
	}
	minRunes := aggregate.DefaultMinRunes
	if m := r.URL.Query().Get("min"); m != "" {
		if minRunes, err = strconv.Atoi(m); err != nil || minRunes < 1 {
			writeError(w, &model.ValidationError{Field: "min", Message: "expected a positive integer"})
			return
		}
	}
	var texts []string
	for _, rec := range s.records {
		if t, ok := rec.Text(col); ok {
			texts = append(texts, t)
		}
	}
	words := aggregate.WordFrequencies(texts, minRunes)
	title := col
	if q, ok := h.data.Registry.Question(col); ok {
		title = q.Label()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"words": words,
		"chart": chart.WordCloud(words, title, wordLimit),
	})
}

func (h *Handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	col, err := h.column(r, "column")
	if err != nil {
		writeError(w, err)
		return
	}
	sum, err := aggregate.Describe(s.records, col)
	if err != nil {
		writeError(w, err)
		return
	}
	title := col
	if q, ok := h.data.Registry.Question(col); ok {
		title = q.Label()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": sum,
		"table":   chart.DescribeTable(sum, title),
	})
}

func (h *Handler) handleCrosstab(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	row, err := h.column(r, "row")
	if err != nil {
		writeError(w, err)
		return
	}
	col, err := h.column(r, "col")
	if err != nil {
		writeError(w, err)
		return
	}
	tab, err := aggregate.Crosstab(s.records, row, col)
	if err != nil {
		writeError(w, err)
		return
	}
	title := row + " × " + col
	writeJSON(w, http.StatusOK, map[string]any{
		"crosstab": tab,
		"table":    chart.CrosstabTable(tab, title),
		"chart":    chart.StackedBar(tab, title),
	})
}

func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	s, err := h.parseScope(r)
	if err != nil {
		writeError(w, err)
		return
	}
	col, err := h.column(r, "column")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"column": col,
		"counts": aggregate.ValueCounts(s.records, col),
	})
}

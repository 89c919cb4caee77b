package model

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionKind tells how a question's answers are aggregated.
type QuestionKind string

const (
	// KindScale is a bounded numeric rating, possibly written as "<n>점".
	KindScale QuestionKind = "scale"
	// KindMultiSelect is free text matched against a fixed choice vocabulary.
	KindMultiSelect QuestionKind = "multi_select"
)

// AllCategory labels the unfiltered population row of a scale aggregate.
const AllCategory = "전체"

// Question is a survey item declared in the registry.
type Question struct {
	Text     string       `json:"text"`
	Short    string       `json:"short,omitempty"`
	Kind     QuestionKind `json:"kind"`
	ScaleMin int          `json:"scale_min,omitempty"`
	ScaleMax int          `json:"scale_max,omitempty"`
	Choices  []string     `json:"choices,omitempty"`
}

// IsScale reports whether the question holds numeric ratings.
func (q Question) IsScale() bool { return q.Kind == KindScale }

// IsMultiSelect reports whether the question holds multi-choice free text.
func (q Question) IsMultiSelect() bool { return q.Kind == KindMultiSelect }

// Label returns the short label when one is declared.
func (q Question) Label() string {
	if q.Short != "" {
		return q.Short
	}
	return q.Text
}

// Registry declares the survey's grouping columns and questions.
type Registry struct {
	Categories []string   `json:"categories"`
	Questions  []Question `json:"questions"`
}

// Question looks up a question by its text or short label.
func (r *Registry) Question(name string) (Question, bool) {
	for _, q := range r.Questions {
		if q.Text == name || (q.Short != "" && q.Short == name) {
			return q, true
		}
	}
	return Question{}, false
}

// ScaleQuestions returns the SCALE questions in declaration order.
func (r *Registry) ScaleQuestions() []Question {
	return r.byKind(KindScale)
}

// MultiSelectQuestions returns the MULTI_SELECT questions in declaration order.
func (r *Registry) MultiSelectQuestions() []Question {
	return r.byKind(KindMultiSelect)
}

func (r *Registry) byKind(kind QuestionKind) []Question {
	var out []Question
	for _, q := range r.Questions {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	return out
}

// IsCategory reports whether name is a declared grouping column.
func (r *Registry) IsCategory(name string) bool {
	for _, c := range r.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks that every question has a known kind, that texts are unique,
// and that multi-select questions carry a vocabulary.
func (r *Registry) Validate() error {
	if len(r.Questions) == 0 {
		return NewError(ErrInvalidInput, "registry declares no questions", nil)
	}
	seen := make(map[string]bool, len(r.Questions))
	for i, q := range r.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return NewError(ErrInvalidInput, fmt.Sprintf("question %d has empty text", i), nil)
		}
		if seen[q.Text] {
			return NewError(ErrInvalidInput, fmt.Sprintf("duplicate question %q", q.Text), nil)
		}
		seen[q.Text] = true
		switch q.Kind {
		case KindScale:
			if q.ScaleMax != 0 && q.ScaleMax < q.ScaleMin {
				return NewError(ErrInvalidInput, fmt.Sprintf("question %q: scale_max < scale_min", q.Text), nil)
			}
		case KindMultiSelect:
			if len(q.Choices) == 0 {
				return NewError(ErrInvalidInput, fmt.Sprintf("multi-select question %q has no choices", q.Text), nil)
			}
		default:
			return NewError(ErrInvalidInput, fmt.Sprintf("question %q: unknown kind %q", q.Text, q.Kind), nil)
		}
	}
	return nil
}

// Answer is one cell of a response row.
type Answer struct {
	Raw     string
	Score   float64
	Numeric bool
}

// TextAnswer builds a non-numeric answer.
func TextAnswer(raw string) Answer { return Answer{Raw: raw} }

// NumberAnswer builds a numeric answer.
func NumberAnswer(v float64) Answer {
	return Answer{Raw: strconv.FormatFloat(v, 'f', -1, 64), Score: v, Numeric: true}
}

// Missing reports whether the cell carries no value.
func (a Answer) Missing() bool {
	return !a.Numeric && strings.TrimSpace(a.Raw) == ""
}

// String returns the display form used as a category label.
func (a Answer) String() string {
	if a.Numeric && a.Raw == "" {
		return strconv.FormatFloat(a.Score, 'f', -1, 64)
	}
	return strings.TrimSpace(a.Raw)
}

// ResponseRecord is one respondent's row keyed by column name.
type ResponseRecord map[string]Answer

// Get returns the answer for field, with ok false when absent or missing.
func (r ResponseRecord) Get(field string) (Answer, bool) {
	a, ok := r[field]
	if !ok || a.Missing() {
		return Answer{}, false
	}
	return a, true
}

// Score returns the numeric value of field.
func (r ResponseRecord) Score(field string) (float64, bool) {
	a, ok := r.Get(field)
	if !ok || !a.Numeric {
		return 0, false
	}
	return a.Score, true
}

// Text returns the trimmed text of field.
func (r ResponseRecord) Text(field string) (string, bool) {
	a, ok := r.Get(field)
	if !ok {
		return "", false
	}
	return a.String(), true
}

// With returns a copy of the record with field set to a.
func (r ResponseRecord) With(field string, a Answer) ResponseRecord {
	out := make(ResponseRecord, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[field] = a
	return out
}

// CategoryStat is one row of a scale aggregate.
type CategoryStat struct {
	Category string  `json:"category"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Count    int     `json:"count"`
}

// CategoryAggregate summarizes a scale question per category.
// Rows[0] is always the AllCategory row.
type CategoryAggregate struct {
	Column   string         `json:"column"`
	Question string         `json:"question"`
	Rows     []CategoryStat `json:"rows"`
}

// Row returns the row for category.
func (a CategoryAggregate) Row(category string) (CategoryStat, bool) {
	for _, r := range a.Rows {
		if r.Category == category {
			return r, true
		}
	}
	return CategoryStat{}, false
}

// ChoiceRow is one category of a multi-select distribution.
type ChoiceRow struct {
	Category    string             `json:"category"`
	Total       int                `json:"total"`
	Percentages map[string]float64 `json:"percentages"`
}

// ChoiceDistribution holds per-category choice percentages. Percentages are
// relative to respondents, so a row need not sum to 100.
type ChoiceDistribution struct {
	Column   string      `json:"column"`
	Question string      `json:"question"`
	Choices  []string    `json:"choices"`
	Rows     []ChoiceRow `json:"rows"`
}

// Row returns the row for category.
func (d ChoiceDistribution) Row(category string) (ChoiceRow, bool) {
	for _, r := range d.Rows {
		if r.Category == category {
			return r, true
		}
	}
	return ChoiceRow{}, false
}

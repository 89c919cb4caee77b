package views

import (
	"github.com/orgpulse/pulse/internal/chart"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/review"
)

// Option is one entry of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FilterColumn is a multi-select filter over one categorical column.
type FilterColumn struct {
	Column  string
	Options []Option
}

// DashboardData drives the dashboard page. Charts are fetched by
// static/dashboard.js from the JSON API using Query.
type DashboardData struct {
	Categories   []Option
	Scale        []Option
	MultiSelect  []Option
	Filters      []FilterColumn
	Tenure       []Option
	Respondents  int
	Query        string
	DatasetLabel string
}

// ReviewData drives the review page.
type ReviewData struct {
	Index     int
	Total     int
	Original  string
	Advanced  string
	Result    review.ResultView
	Vision    *chart.Config
	Workstyle *chart.Config
	Selected  model.Selection
	Feedback  string
	Error     string
}

// Position is the 1-based record number shown to the reviewer.
func (d ReviewData) Position() int { return d.Index + 1 }

// FeedbackSummary drives the admin feedback page.
type FeedbackSummary struct {
	Export   model.FeedbackExport
	Progress []model.ReviewProgress
	Error    string
}

package model

import "time"

// FeedbackExport is the top-level JSON structure for feedback export.
type FeedbackExport struct {
	GeneratedAt  time.Time             `json:"generated_at"`
	TotalRecords int                   `json:"total_records"`
	Judged       int                   `json:"judged"`
	Counts       map[Selection]int     `json:"counts"`
	Entries      []FeedbackExportEntry `json:"entries"`
}

// FeedbackExportEntry joins a judgment with the texts that were compared.
type FeedbackExportEntry struct {
	Index          int       `json:"index"`
	FitGrade       string    `json:"fit_grade"`
	SelectedOption Selection `json:"selected_option"`
	Feedback       string    `json:"feedback"`
	OriginalText   string    `json:"original_text"`
	AdvancedText   string    `json:"advanced_text"`
}

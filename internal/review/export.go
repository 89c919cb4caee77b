package review

import (
	"sort"
	"time"

	"github.com/orgpulse/pulse/internal/model"
)

// BuildExport joins judgments with the texts that were compared. Entries are
// ordered by index; entries pointing past the records keep empty texts.
func BuildExport(records []model.ReviewRecord, entries []model.FeedbackEntry, now time.Time) model.FeedbackExport {
	exp := model.FeedbackExport{
		GeneratedAt:  now.UTC(),
		TotalRecords: len(records),
		Judged:       len(entries),
		Counts:       map[model.Selection]int{model.SelectionOriginal: 0, model.SelectionAdvanced: 0},
		Entries:      make([]model.FeedbackExportEntry, 0, len(entries)),
	}
	sorted := append([]model.FeedbackEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for _, e := range sorted {
		exp.Counts[e.SelectedOption]++
		out := model.FeedbackExportEntry{
			Index:          e.Index,
			SelectedOption: e.SelectedOption,
			Feedback:       e.Feedback,
		}
		if e.Index >= 0 && e.Index < len(records) {
			rec := records[e.Index]
			out.FitGrade = rec.Result.SummaryResult.FitGrade
			out.OriginalText = PanelText(rec, model.SelectionOriginal)
			out.AdvancedText = PanelText(rec, model.SelectionAdvanced)
		}
		exp.Entries = append(exp.Entries, out)
	}
	return exp
}

package review

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/orgpulse/pulse/internal/model"
)

// Ledger is the shared side of a review run: the records under review and
// the judgment collection. Writes are serialized.
type Ledger struct {
	records []model.ReviewRecord
	store   FeedbackStore

	mu sync.Mutex
	// pending holds a merged collection whose write failed. It replaces the
	// stored copy as the base of the next write.
	pending []model.FeedbackEntry
}

// NewLedger creates a ledger over records persisted through store.
func NewLedger(records []model.ReviewRecord, store FeedbackStore) *Ledger {
	return &Ledger{records: records, store: store}
}

// Len returns the number of records under review.
func (l *Ledger) Len() int { return len(l.records) }

// Record returns the record at idx.
func (l *Ledger) Record(idx int) (model.ReviewRecord, bool) {
	if idx < 0 || idx >= len(l.records) {
		return model.ReviewRecord{}, false
	}
	return l.records[idx], true
}

// Records returns all records.
func (l *Ledger) Records() []model.ReviewRecord { return l.records }

// Entries returns the current collection, including an unsaved merge.
func (l *Ledger) Entries() ([]model.FeedbackEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.base()
}

func (l *Ledger) base() ([]model.FeedbackEntry, error) {
	if l.pending != nil {
		return append([]model.FeedbackEntry(nil), l.pending...), nil
	}
	return l.store.Load()
}

// Upsert replaces the entry with the same index or appends it, then writes
// the whole collection.
func (l *Ledger) Upsert(entry model.FeedbackEntry) ([]model.FeedbackEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.base()
	if err != nil {
		return nil, err
	}
	entries = Merge(entries, entry)
	if err := l.store.Save(entries); err != nil {
		l.pending = entries
		slog.Error("save feedback", "index", entry.Index, "error", err)
		return nil, err
	}
	l.pending = nil
	return entries, nil
}

// Merge returns entries with entry upserted by index.
func Merge(entries []model.FeedbackEntry, entry model.FeedbackEntry) []model.FeedbackEntry {
	out := append([]model.FeedbackEntry(nil), entries...)
	for i := range out {
		if out[i].Index == entry.Index {
			out[i] = entry
			return out
		}
	}
	return append(out, entry)
}

// Workflow is one reviewer's walk through the ledger.
type Workflow struct {
	ledger *Ledger
	cursor int
}

// NewWorkflow resumes at cursor; negative cursors start at 0.
func NewWorkflow(l *Ledger, cursor int) *Workflow {
	if cursor < 0 {
		cursor = 0
	}
	return &Workflow{ledger: l, cursor: cursor}
}

// Cursor returns the index of the next record to judge.
func (w *Workflow) Cursor() int { return w.cursor }

// State reports whether records remain.
func (w *Workflow) State() model.ReviewState {
	if w.cursor >= w.ledger.Len() {
		return model.StateComplete
	}
	return model.StateAwaitingJudgment
}

// Current returns the record at the cursor, or false when complete.
func (w *Workflow) Current() (model.ReviewRecord, bool) {
	if w.State() == model.StateComplete {
		return model.ReviewRecord{}, false
	}
	return w.ledger.Record(w.cursor)
}

// Submit records a judgment for idx and advances the cursor past it. On any
// error the cursor is unchanged.
func (w *Workflow) Submit(idx int, sel model.Selection, feedback string) (model.FeedbackEntry, error) {
	if w.State() == model.StateComplete {
		return model.FeedbackEntry{}, model.NewError(model.ErrReviewComplete, "all records have been reviewed", nil)
	}
	if _, ok := model.ParseSelection(string(sel)); !ok {
		return model.FeedbackEntry{}, &model.ValidationError{Field: "selected_option", Message: "choose Original or Advanced"}
	}
	if idx < 0 || idx >= w.ledger.Len() {
		return model.FeedbackEntry{}, &model.ValidationError{
			Field:   "index",
			Message: fmt.Sprintf("index %d outside [0, %d)", idx, w.ledger.Len()),
		}
	}

	entry := model.FeedbackEntry{Index: idx, SelectedOption: sel, Feedback: strings.TrimSpace(feedback)}
	if _, err := w.ledger.Upsert(entry); err != nil {
		return model.FeedbackEntry{}, err
	}
	w.cursor = idx + 1
	return entry, nil
}

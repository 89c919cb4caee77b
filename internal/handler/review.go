package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/orgpulse/pulse/internal/chart"
	"github.com/orgpulse/pulse/internal/handler/views"
	appI18n "github.com/orgpulse/pulse/internal/i18n"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/review"
)

// workflow resumes the signed-in reviewer's walk at their saved cursor.
func (h *Handler) workflow(r *http.Request) (*review.Workflow, error) {
	user := model.UserFromContext(r.Context())
	cursor, err := h.store.GetProgress(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return review.NewWorkflow(h.ledger, cursor), nil
}

func (h *Handler) reviewData(rec model.ReviewRecord) views.ReviewData {
	res := rec.Result
	return views.ReviewData{
		Index:     rec.Index,
		Total:     h.ledger.Len(),
		Original:  review.PanelText(rec, model.SelectionOriginal),
		Advanced:  review.PanelText(rec, model.SelectionAdvanced),
		Result:    review.Present(rec),
		Vision:    chart.ScoreRadar("Vision", res.VisionResult, review.ScoreAxes(res.VisionResult), "Vision", 0),
		Workstyle: chart.ScoreRadar("Workstyle", res.WorkstyleResult, review.ScoreAxes(res.WorkstyleResult), "Workstyle", 0),
	}
}

func (h *Handler) renderComplete(w http.ResponseWriter, r *http.Request, status int) {
	judged := 0
	if entries, err := h.ledger.Entries(); err == nil {
		judged = len(entries)
	} else {
		slog.Error("load feedback", "error", err)
	}
	render(w, r, status, views.ReviewCompletePage(h.ledger.Len(), judged))
}

func (h *Handler) handleReviewPage(w http.ResponseWriter, r *http.Request) {
	wf, err := h.workflow(r)
	if err != nil {
		slog.Error("load review progress", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rec, ok := wf.Current()
	if !ok {
		h.renderComplete(w, r, http.StatusOK)
		return
	}

	d := h.reviewData(rec)
	entries, err := h.ledger.Entries()
	if err != nil {
		d.Error = appI18n.Td(r.Context(), "SaveFailed", map[string]any{"Error": err.Error()})
	}
	for _, e := range entries {
		if e.Index == rec.Index {
			d.Selected = e.SelectedOption
			d.Feedback = e.Feedback
		}
	}
	render(w, r, http.StatusOK, views.ReviewPage(d))
}

func (h *Handler) handleReviewSubmit(w http.ResponseWriter, r *http.Request) {
	wf, err := h.workflow(r)
	if err != nil {
		slog.Error("load review progress", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sel := model.Selection(r.FormValue("selected_option"))
	feedback := r.FormValue("feedback")
	idx, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		idx = -1
	}

	entry, err := wf.Submit(idx, sel, feedback)
	if err != nil {
		h.renderSubmitError(w, r, wf, sel, feedback, err)
		return
	}

	user := model.UserFromContext(r.Context())
	if err := h.store.SetProgress(r.Context(), user.ID, wf.Cursor()); err != nil {
		slog.Error("save review progress", "user", user.Username, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("feedback submitted", "user", user.Username, "index", entry.Index, "selected", entry.SelectedOption)
	http.Redirect(w, r, h.path("/review"), http.StatusSeeOther)
}

// renderSubmitError re-renders the current record with the reviewer's input
// kept and the error shown inline.
func (h *Handler) renderSubmitError(w http.ResponseWriter, r *http.Request, wf *review.Workflow, sel model.Selection, feedback string, err error) {
	status := statusOf(err)
	if errors.Is(err, model.Code(model.ErrReviewComplete)) {
		h.renderComplete(w, r, status)
		return
	}
	rec, ok := wf.Current()
	if !ok {
		h.renderComplete(w, r, http.StatusConflict)
		return
	}

	d := h.reviewData(rec)
	d.Selected = sel
	d.Feedback = feedback
	var v *model.ValidationError
	switch {
	case errors.As(err, &v) && v.Field == "selected_option":
		d.Error = appI18n.T(r.Context(), "SelectOption")
	case errors.As(err, &v):
		d.Error = v.Error()
	default:
		d.Error = appI18n.Td(r.Context(), "SaveFailed", map[string]any{"Error": err.Error()})
	}
	render(w, r, status, views.ReviewPage(d))
}

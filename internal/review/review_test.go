package review

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgpulse/pulse/internal/model"
)

func comment(orig, adv string) model.Comment {
	return model.Comment{
		Original: []model.CommentResponse{{Response: orig}},
		Advanced: []model.CommentResponse{{Response: adv}},
	}
}

func testRecords(t *testing.T, n int) []model.ReviewRecord {
	t.Helper()
	results := make([]model.CandidateResult, n)
	cs := make([]model.Comment, n)
	for i := range results {
		results[i].SummaryResult.FitGrade = "보통"
		cs[i] = comment("원본. 문장", "개선. 문장")
	}
	recs, err := BuildRecords(results, cs, cs, cs)
	require.NoError(t, err)
	return recs
}

func newTestWorkflow(t *testing.T, n, cursor int) (*Workflow, *JSONFileStore) {
	t.Helper()
	store := NewJSONFileStore(filepath.Join(t.TempDir(), "feedback.json"))
	return NewWorkflow(NewLedger(testRecords(t, n), store), cursor), store
}

func TestBuildRecordsLengthMismatch(t *testing.T) {
	c := comment("a", "b")
	_, err := BuildRecords(make([]model.CandidateResult, 2), []model.Comment{c, c}, []model.Comment{c}, []model.Comment{c, c})
	assert.True(t, errors.Is(err, model.Code(model.ErrLengthMismatch)))
}

func TestBuildRecordsEmptyVariant(t *testing.T) {
	c := comment("a", "b")
	bad := model.Comment{Original: c.Original}
	_, err := BuildRecords(make([]model.CandidateResult, 1), []model.Comment{c}, []model.Comment{bad}, []model.Comment{c})
	assert.True(t, errors.Is(err, model.Code(model.ErrMalformed)))
	assert.Contains(t, err.Error(), "workstyle")
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}
	c := `[{"original":[{"response":"o"}],"advanced":[{"response":"a"}]}]`
	src := Sources{
		Dataset:   write("dataset.json", `[{"summaryResult":{"fitGrade":"우수","recruitentQuestions":{"2번":"B","1번":"A"},"fued":[],"turnOverFactors":["보상"]},"visionResult":{"도전":4}}]`),
		Vision:    write("vision.json", c),
		Workstyle: write("workstyle.json", c),
		Summary:   write("summary.json", c),
	}
	recs, err := LoadRecords(src)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "우수", recs[0].Result.SummaryResult.FitGrade)
	assert.Equal(t, 4.0, recs[0].Result.VisionResult["도전"])

	src.Summary = write("bad.json", "{")
	_, err = LoadRecords(src)
	assert.True(t, errors.Is(err, model.Code(model.ErrMalformed)))
}

func TestLoadResults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"summaryResult":{"fitGrade":"보통"}},{"summaryResult":{"fitGrade":"우수"}}]`), 0o644))

	results, err := LoadResults(p)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "우수", results[1].SummaryResult.FitGrade)

	_, err = LoadResults(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPanelText(t *testing.T) {
	rec := model.ReviewRecord{
		Vision:    comment("비전 원본. 둘째", "비전 개선"),
		Workstyle: comment("업무", "업무 개선"),
		Summary:   comment("요약.", "요약 개선"),
	}
	assert.Equal(t, "[Vision]\n비전 원본\n 둘째\n[Workstyle]\n업무\n[Summary]\n요약\n", PanelText(rec, model.SelectionOriginal))
	assert.True(t, strings.HasPrefix(PanelText(rec, model.SelectionAdvanced), "[Vision]\n비전 개선\n"))
}

func TestPresent(t *testing.T) {
	rec := model.ReviewRecord{Result: model.CandidateResult{SummaryResult: model.SummaryResult{
		FitGrade:             "우수",
		RecruitmentQuestions: map[string]string{"10. 끝": "c", "2. 중간": "b", "1. 처음": "a", "기타": "z"},
		TurnOverFactors:      []string{"보상", "관계"},
	}}}
	v := Present(rec)
	assert.Equal(t, ToneGood, v.FitTone)
	assert.Equal(t, []QuestionLine{{"1. 처음", "a"}, {"2. 중간", "b"}, {"10. 끝", "c"}, {"기타", "z"}}, v.Questions)
	assert.Equal(t, Factor{Text: "없음", Tone: ToneGood}, v.Fued)
	assert.Equal(t, Factor{Text: "보상, 관계", Tone: ToneBad}, v.TurnOver)

	assert.Equal(t, ToneNeutral, fitTone("보통"))
	assert.Equal(t, ToneMuted, fitTone("미흡"))
}

func TestSubmitAppendsAndAdvances(t *testing.T) {
	w, store := newTestWorkflow(t, 3, 0)

	entry, err := w.Submit(0, model.SelectionOriginal, "  좋음  ")
	require.NoError(t, err)
	assert.Equal(t, "좋음", entry.Feedback)
	assert.Equal(t, 1, w.Cursor())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.FeedbackEntry{{Index: 0, SelectedOption: model.SelectionOriginal, Feedback: "좋음"}}, got)
}

func TestSubmitOverwritesExistingIndex(t *testing.T) {
	w, store := newTestWorkflow(t, 3, 2)
	require.NoError(t, store.Save([]model.FeedbackEntry{{Index: 2, SelectedOption: model.SelectionOriginal, Feedback: "old"}}))

	_, err := w.Submit(2, model.SelectionAdvanced, "new")
	require.NoError(t, err)

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.SelectionAdvanced, got[0].SelectedOption)
	assert.Equal(t, "new", got[0].Feedback)
	assert.Equal(t, model.StateComplete, w.State())
}

func TestSubmitValidation(t *testing.T) {
	w, store := newTestWorkflow(t, 2, 0)

	_, err := w.Submit(0, model.SelectionNone, "x")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "selected_option", verr.Field)

	_, err = w.Submit(5, model.SelectionOriginal, "x")
	assert.True(t, errors.Is(err, model.Code(model.ErrValidation)))

	assert.Equal(t, 0, w.Cursor())
	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompleteRejectsSubmissions(t *testing.T) {
	w, _ := newTestWorkflow(t, 2, 0)
	for i := 0; i < 2; i++ {
		_, err := w.Submit(i, model.SelectionAdvanced, "")
		require.NoError(t, err)
	}
	assert.Equal(t, model.StateComplete, w.State())
	_, ok := w.Current()
	assert.False(t, ok)

	_, err := w.Submit(1, model.SelectionOriginal, "again")
	assert.True(t, errors.Is(err, model.Code(model.ErrReviewComplete)))
}

func TestResumeBeyondEnd(t *testing.T) {
	w, _ := newTestWorkflow(t, 2, 7)
	assert.Equal(t, model.StateComplete, w.State())
	_, ok := w.Current()
	assert.False(t, ok)
}

type failingStore struct {
	saved []model.FeedbackEntry
	fail  bool
	loads int
}

func (f *failingStore) Load() ([]model.FeedbackEntry, error) {
	f.loads++
	return append([]model.FeedbackEntry(nil), f.saved...), nil
}

func (f *failingStore) Save(entries []model.FeedbackEntry) error {
	if f.fail {
		return model.NewError(model.ErrPersistence, "disk full", nil)
	}
	f.saved = entries
	return nil
}

func TestPersistenceFailureRetainsMerge(t *testing.T) {
	store := &failingStore{fail: true}
	w := NewWorkflow(NewLedger(testRecords(t, 3), store), 0)

	_, err := w.Submit(0, model.SelectionOriginal, "a")
	assert.True(t, errors.Is(err, model.Code(model.ErrPersistence)))
	assert.Equal(t, 0, w.Cursor(), "cursor stays on failure")

	store.fail = false
	_, err = w.Submit(1, model.SelectionAdvanced, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads, "retry builds on the retained merge")
	assert.Equal(t, []int{0, 1}, []int{store.saved[0].Index, store.saved[1].Index})
}

func TestJSONFileStoreFormat(t *testing.T) {
	store := NewJSONFileStore(filepath.Join(t.TempDir(), "sub", "feedback.json"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Save([]model.FeedbackEntry{{Index: 1, SelectedOption: model.SelectionAdvanced, Feedback: "<좋음>"}}))
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    {\n        \"index\": 1,")
	assert.Contains(t, string(data), `"feedback": "<좋음>"`)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Advanced", raw[0]["selected_option"])
}

func TestJSONFileStoreRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"index":1}`), 0o644))
	_, err := NewJSONFileStore(path).Load()
	assert.True(t, errors.Is(err, model.Code(model.ErrPersistence)))

	require.NoError(t, os.WriteFile(path, []byte(`[{"index":`), 0o644))
	_, err = NewJSONFileStore(path).Load()
	assert.True(t, errors.Is(err, model.Code(model.ErrPersistence)))
}

func TestBuildExport(t *testing.T) {
	recs := testRecords(t, 3)
	entries := []model.FeedbackEntry{
		{Index: 2, SelectedOption: model.SelectionAdvanced, Feedback: "b"},
		{Index: 0, SelectedOption: model.SelectionAdvanced},
		{Index: 9, SelectedOption: model.SelectionOriginal},
	}
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	exp := BuildExport(recs, entries, now)

	assert.Equal(t, now, exp.GeneratedAt)
	assert.Equal(t, 3, exp.TotalRecords)
	assert.Equal(t, 3, exp.Judged)
	assert.Equal(t, 2, exp.Counts[model.SelectionAdvanced])
	assert.Equal(t, 1, exp.Counts[model.SelectionOriginal])
	assert.Equal(t, []int{0, 2, 9}, []int{exp.Entries[0].Index, exp.Entries[1].Index, exp.Entries[2].Index})
	assert.Equal(t, "보통", exp.Entries[0].FitGrade)
	assert.Contains(t, exp.Entries[0].AdvancedText, "개선\n 문장")
	assert.Empty(t, exp.Entries[2].OriginalText)
}

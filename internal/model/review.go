package model

// Selection is the comment variant a reviewer preferred.
type Selection string

const (
	SelectionNone     Selection = ""
	SelectionOriginal Selection = "Original"
	SelectionAdvanced Selection = "Advanced"
)

// ParseSelection accepts the two variant names; anything else is unset.
func ParseSelection(s string) (Selection, bool) {
	switch Selection(s) {
	case SelectionOriginal, SelectionAdvanced:
		return Selection(s), true
	}
	return SelectionNone, false
}

// FeedbackEntry is one persisted judgment. Index is unique within a collection.
type FeedbackEntry struct {
	Index          int       `json:"index"`
	SelectedOption Selection `json:"selected_option"`
	Feedback       string    `json:"feedback"`
}

// ReviewState is the workflow's position.
type ReviewState string

const (
	StateAwaitingJudgment ReviewState = "awaiting_judgment"
	StateComplete         ReviewState = "complete"
)

// CommentResponse is one generated text.
type CommentResponse struct {
	Response string `json:"response"`
}

// Comment carries the two generated variants under comparison.
type Comment struct {
	Original []CommentResponse `json:"original"`
	Advanced []CommentResponse `json:"advanced"`
}

// Variant returns the first response of the selected variant.
func (c Comment) Variant(s Selection) (string, bool) {
	list := c.Original
	if s == SelectionAdvanced {
		list = c.Advanced
	}
	if len(list) == 0 {
		return "", false
	}
	return list[0].Response, true
}

// SummaryResult is the assessment summary of one dataset entry.
type SummaryResult struct {
	FitGrade             string            `json:"fitGrade"`
	RecruitmentQuestions map[string]string `json:"recruitentQuestions"`
	Fued                 []string          `json:"fued"`
	TurnOverFactors      []string          `json:"turnOverFactors"`
}

// CandidateResult is one entry of the reviewed dataset.
type CandidateResult struct {
	SummaryResult   SummaryResult      `json:"summaryResult"`
	VisionResult    map[string]float64 `json:"visionResult,omitempty"`
	WorkstyleResult map[string]float64 `json:"workstyleResult,omitempty"`
}

// ReviewRecord is one unit of manual review.
type ReviewRecord struct {
	Index     int
	Result    CandidateResult
	Vision    Comment
	Workstyle Comment
	Summary   Comment
}

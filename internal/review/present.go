package review

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/orgpulse/pulse/internal/model"
)

// Tones used to color result values.
const (
	ToneGood    = "good"
	ToneNeutral = "neutral"
	ToneMuted   = "muted"
	ToneBad     = "bad"
)

// noneLabel replaces an empty factor list.
const noneLabel = "없음"

// PanelText joins the three comments of one variant into the text shown to
// the reviewer. Sentence periods become line breaks.
func PanelText(rec model.ReviewRecord, sel model.Selection) string {
	section := func(c model.Comment) string {
		s, _ := c.Variant(sel)
		return strings.ReplaceAll(s, ".", "\n")
	}
	return "[Vision]\n" + section(rec.Vision) +
		"\n[Workstyle]\n" + section(rec.Workstyle) +
		"\n[Summary]\n" + section(rec.Summary)
}

// QuestionLine is one recruitment question result.
type QuestionLine struct {
	Key   string
	Value string
}

// Factor is a joined factor list with its display tone.
type Factor struct {
	Text string
	Tone string
}

// ResultView is the assessment side of the review page.
type ResultView struct {
	FitGrade  string
	FitTone   string
	Questions []QuestionLine
	Fued      Factor
	TurnOver  Factor
}

// Present prepares the assessment result of rec for display.
func Present(rec model.ReviewRecord) ResultView {
	s := rec.Result.SummaryResult
	return ResultView{
		FitGrade:  s.FitGrade,
		FitTone:   fitTone(s.FitGrade),
		Questions: SortedQuestions(s.RecruitmentQuestions),
		Fued:      joinFactors(s.Fued),
		TurnOver:  joinFactors(s.TurnOverFactors),
	}
}

func fitTone(grade string) string {
	switch grade {
	case "우수":
		return ToneGood
	case "보통":
		return ToneNeutral
	default:
		return ToneMuted
	}
}

func joinFactors(factors []string) Factor {
	if len(factors) == 0 {
		return Factor{Text: noneLabel, Tone: ToneGood}
	}
	return Factor{Text: strings.Join(factors, ", "), Tone: ToneBad}
}

var leadingInt = regexp.MustCompile(`^\d+`)

// SortedQuestions orders recruitment questions by the number their key
// starts with. Keys without a number sort last, by key.
func SortedQuestions(qs map[string]string) []QuestionLine {
	lines := make([]QuestionLine, 0, len(qs))
	for k, v := range qs {
		lines = append(lines, QuestionLine{Key: k, Value: v})
	}
	num := func(k string) (int, bool) {
		n, err := strconv.Atoi(leadingInt.FindString(k))
		return n, err == nil
	}
	sort.Slice(lines, func(i, j int) bool {
		a, aok := num(lines[i].Key)
		b, bok := num(lines[j].Key)
		switch {
		case aok && bok && a != b:
			return a < b
		case aok != bok:
			return aok
		}
		return lines[i].Key < lines[j].Key
	})
	return lines
}

// ScoreAxes returns the keys of a score map in a stable order for radar axes.
func ScoreAxes(scores map[string]float64) []string {
	axes := make([]string, 0, len(scores))
	for k := range scores {
		axes = append(axes, k)
	}
	sort.Strings(axes)
	return axes
}

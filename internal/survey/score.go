package survey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/orgpulse/pulse/internal/model"
)

// scoreUnit is the suffix attached to rating cells ("4점").
const scoreUnit = "점"

// NormalizeScore parses a rating cell. Blank cells are missing (ok false,
// err nil). Text before the first "점" is the score, so "4점", "4점 (그렇다)"
// and "4" all yield 4. NaN and infinities are rejected.
func NormalizeScore(raw string) (score float64, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	if i := strings.Index(s, scoreUnit); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if !finite(v) {
		return 0, false, fmt.Errorf("score %q is not a finite number", raw)
	}
	return v, true, nil
}

// checkRange rejects scores outside the question's declared bounds. A
// question without ScaleMax accepts any finite score.
func checkRange(q model.Question, v float64) error {
	if q.ScaleMax == 0 {
		return nil
	}
	if v < float64(q.ScaleMin) || v > float64(q.ScaleMax) {
		return fmt.Errorf("score %g outside %d..%d", v, q.ScaleMin, q.ScaleMax)
	}
	return nil
}

// parseNumber recognizes plain numeric cells in non-question columns
// (age, tenure).
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

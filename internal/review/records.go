// Package review implements the manual comparison of generated comment
// variants: loading the paired inputs, presenting one record at a time and
// persisting judgments.
package review

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/orgpulse/pulse/internal/model"
)

// Sources names the four paired JSON arrays of a review run.
type Sources struct {
	Dataset   string
	Vision    string
	Workstyle string
	Summary   string
}

// LoadRecords reads the paired inputs and joins them by position.
func LoadRecords(src Sources) ([]model.ReviewRecord, error) {
	var (
		results                    []model.CandidateResult
		vision, workstyle, summary []model.Comment
	)
	for _, f := range []struct {
		path string
		dst  any
	}{
		{src.Dataset, &results},
		{src.Vision, &vision},
		{src.Workstyle, &workstyle},
		{src.Summary, &summary},
	} {
		if err := readJSON(f.path, f.dst); err != nil {
			return nil, err
		}
	}
	return BuildRecords(results, vision, workstyle, summary)
}

// BuildRecords joins the four arrays. All must have the same length and every
// comment must carry at least one response per variant.
func BuildRecords(results []model.CandidateResult, vision, workstyle, summary []model.Comment) ([]model.ReviewRecord, error) {
	n := len(results)
	if len(vision) != n || len(workstyle) != n || len(summary) != n {
		return nil, model.NewError(model.ErrLengthMismatch, fmt.Sprintf(
			"review inputs differ in length: dataset=%d vision=%d workstyle=%d summary=%d",
			n, len(vision), len(workstyle), len(summary)), nil)
	}
	records := make([]model.ReviewRecord, n)
	for i := range results {
		for _, c := range []struct {
			name    string
			comment model.Comment
		}{{"vision", vision[i]}, {"workstyle", workstyle[i]}, {"summary", summary[i]}} {
			if len(c.comment.Original) == 0 || len(c.comment.Advanced) == 0 {
				return nil, model.NewError(model.ErrMalformed,
					fmt.Sprintf("%s comment %d has an empty variant", c.name, i), nil)
			}
		}
		records[i] = model.ReviewRecord{
			Index:     i,
			Result:    results[i],
			Vision:    vision[i],
			Workstyle: workstyle[i],
			Summary:   summary[i],
		}
	}
	return records, nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return model.NewError(model.ErrMalformed, "parse "+path, err)
	}
	return nil
}

// LoadResults reads the assessment dataset alone, for comment generation.
func LoadResults(path string) ([]model.CandidateResult, error) {
	var results []model.CandidateResult
	if err := readJSON(path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

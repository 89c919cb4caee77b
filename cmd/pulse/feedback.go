package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orgpulse/pulse/internal/review"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Work with review judgments",
	}
	cmd.AddCommand(feedbackExportCmd())
	return cmd
}

func feedbackExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export judgments joined with the compared texts as JSON",
		RunE:  runFeedbackExport,
	}
	f := cmd.Flags()
	addReviewFlags(cmd)
	f.String("feedback", "feedback.json", "Feedback JSON file")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	for _, name := range []string{"dataset", "vision", "workstyle", "summary"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runFeedbackExport(cmd *cobra.Command, _ []string) error {
	v := setup(cmd)

	records, err := review.LoadRecords(reviewSources(v))
	if err != nil {
		return fmt.Errorf("load review inputs: %w", err)
	}
	entries, err := review.NewJSONFileStore(v.GetString("feedback")).Load()
	if err != nil {
		return err
	}
	exp := review.BuildExport(records, entries, time.Now())

	return writeJSONOutput(cmd, v.GetString("output"), exp, func() {
		slog.Info("exported feedback", "judged", exp.Judged, "total", exp.TotalRecords)
	})
}

// writeJSONOutput writes v with 4-space indent and unescaped HTML to path,
// or to stdout when path is "-" or empty.
func writeJSONOutput(cmd *cobra.Command, path string, v any, done func()) error {
	var w io.Writer
	if path == "" || path == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if done != nil {
		done()
	}
	return nil
}

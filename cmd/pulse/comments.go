package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/orgpulse/pulse/internal/llm"
	"github.com/orgpulse/pulse/internal/llm/prompts"
	"github.com/orgpulse/pulse/internal/review"
)

func commentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Generate assessment comments with an LLM",
	}
	cmd.AddCommand(commentsGenerateCmd())
	return cmd
}

func commentsGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate Original and Advanced comments for one section",
		Example: `  pulse comments generate --dataset dataset.json --section vision -o vision_comments.json`,
		RunE:    runCommentsGenerate,
	}
	f := cmd.Flags()
	f.String("dataset", "", "Assessment results JSON array")
	f.String("section", "", "Section to generate (vision, workstyle, summary)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	addLogFlags(cmd)
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func runCommentsGenerate(cmd *cobra.Command, _ []string) error {
	v := setup(cmd)
	ctx := cmd.Context()

	section := v.GetString("section")
	if !prompts.IsValidSection(section) {
		return fmt.Errorf("invalid section %q: want vision, workstyle or summary", section)
	}

	results, err := review.LoadResults(v.GetString("dataset"))
	if err != nil {
		return err
	}

	client, err := llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"))
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))

	comments, err := client.GenerateSection(ctx, prompts.Section(section), results, func(done, total int) {
		slog.Info("generated", "section", section, "done", done, "total", total)
	})
	if err != nil {
		return fmt.Errorf("generate %s comments: %w", section, err)
	}

	return writeJSONOutput(cmd, v.GetString("output"), comments, func() {
		slog.Info("wrote comments", "section", section, "count", len(comments))
	})
}

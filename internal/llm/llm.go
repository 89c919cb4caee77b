package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/orgpulse/pulse/internal/llm/prompts"
	"github.com/orgpulse/pulse/internal/model"
)

const userInstruction = "위 지침에 따라 코멘트만 작성하세요."

// chatAPI is the subset of the OpenAI client used here.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api         chatAPI
	model       string
	temperature float32
}

// New creates a new LLM client and loads the built-in prompts.
func New(baseURL, apiKey, modelName string) (*Client, error) {
	if err := prompts.Load(prompts.Templates); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(config),
		model:       modelName,
		temperature: 0.3,
	}, nil
}

// Ping checks that the endpoint answers and serves the configured model.
func (c *Client) Ping(ctx context.Context) error {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range list.Models {
		if m.ID == c.model {
			return nil
		}
	}
	slog.Warn("model not listed by endpoint", "model", c.model, "available", len(list.Models))
	return nil
}

// Comment generates one comment for result.
func (c *Client) Comment(ctx context.Context, s prompts.Section, v prompts.Variant, result model.CandidateResult) (string, error) {
	system, err := prompts.Build(s, v, result)
	if err != nil {
		return "", err
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: userInstruction},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM response", "section", s, "variant", v, "raw", text)
	if text == "" {
		return "", fmt.Errorf("LLM returned an empty comment")
	}
	return text, nil
}

// Progress is called after each generated record.
type Progress func(done, total int)

// GenerateSection produces the paired comments of one section for every
// result, in order. Generation stops at the first error.
func (c *Client) GenerateSection(ctx context.Context, s prompts.Section, results []model.CandidateResult, progress Progress) ([]model.Comment, error) {
	out := make([]model.Comment, 0, len(results))
	for i, r := range results {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		var cm model.Comment
		for _, v := range prompts.Variants {
			text, err := c.Comment(ctx, s, v, r)
			if err != nil {
				return out, fmt.Errorf("record %d %s/%s: %w", i, s, v, err)
			}
			resp := []model.CommentResponse{{Response: text}}
			if v == prompts.VariantOriginal {
				cm.Original = resp
			} else {
				cm.Advanced = resp
			}
		}
		out = append(out, cm)
		if progress != nil {
			progress(i+1, len(results))
		}
	}
	return out, nil
}

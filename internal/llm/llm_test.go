package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/orgpulse/pulse/internal/llm/prompts"
	"github.com/orgpulse/pulse/internal/model"
)

type fakeAPI struct {
	requests []openai.ChatCompletionRequest
	reply    string
	err      error
	models   []string
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "  " + f.reply + "  "}},
	}}, nil
}

func (f *fakeAPI) ListModels(context.Context) (openai.ModelsList, error) {
	var list openai.ModelsList
	for _, id := range f.models {
		list.Models = append(list.Models, openai.Model{ID: id})
	}
	return list, f.err
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	if err := prompts.Load(prompts.Templates); err != nil {
		t.Fatalf("prompts.Load: %v", err)
	}
	return &Client{api: api, model: "test-model"}
}

func testResult() model.CandidateResult {
	return model.CandidateResult{
		SummaryResult: model.SummaryResult{
			FitGrade:             "우수",
			RecruitmentQuestions: map[string]string{"2. 협업": "보통", "1. 도전": "높음"},
			TurnOverFactors:      []string{"보상"},
		},
		VisionResult:    map[string]float64{"도전": 4.5, "성장": 3},
		WorkstyleResult: map[string]float64{"협업": 2},
	}
}

func TestComment(t *testing.T) {
	api := &fakeAPI{reply: "훌륭합니다."}
	c := newTestClient(t, api)

	got, err := c.Comment(context.Background(), prompts.SectionVision, prompts.VariantAdvanced, testResult())
	if err != nil {
		t.Fatalf("Comment: %v", err)
	}
	if got != "훌륭합니다." {
		t.Errorf("Comment() = %q, want trimmed reply", got)
	}
	if len(api.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(api.requests))
	}
	system := api.requests[0].Messages[0].Content
	if !strings.Contains(system, "도전: 4.5") {
		t.Errorf("system prompt should contain vision scores, got:\n%s", system)
	}
	if api.requests[0].Model != "test-model" {
		t.Errorf("unexpected model %q", api.requests[0].Model)
	}
}

func TestCommentErrors(t *testing.T) {
	c := newTestClient(t, &fakeAPI{err: errors.New("boom")})
	if _, err := c.Comment(context.Background(), prompts.SectionSummary, prompts.VariantOriginal, testResult()); err == nil {
		t.Error("expected API error")
	}

	c = newTestClient(t, &fakeAPI{reply: ""})
	if _, err := c.Comment(context.Background(), prompts.SectionSummary, prompts.VariantOriginal, testResult()); err == nil {
		t.Error("expected error for empty comment")
	}
}

func TestGenerateSection(t *testing.T) {
	api := &fakeAPI{reply: "코멘트."}
	c := newTestClient(t, api)

	var calls []int
	comments, err := c.GenerateSection(context.Background(), prompts.SectionWorkstyle,
		[]model.CandidateResult{testResult(), testResult()},
		func(done, total int) { calls = append(calls, done) })
	if err != nil {
		t.Fatalf("GenerateSection: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if len(api.requests) != 4 {
		t.Errorf("expected 4 requests (2 records x 2 variants), got %d", len(api.requests))
	}
	for i, cm := range comments {
		if _, ok := cm.Variant(model.SelectionOriginal); !ok {
			t.Errorf("comment %d missing original", i)
		}
		if _, ok := cm.Variant(model.SelectionAdvanced); !ok {
			t.Errorf("comment %d missing advanced", i)
		}
	}
	if len(calls) != 2 || calls[1] != 2 {
		t.Errorf("unexpected progress calls %v", calls)
	}
}

func TestGenerateSectionCancelled(t *testing.T) {
	c := newTestClient(t, &fakeAPI{reply: "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GenerateSection(ctx, prompts.SectionVision, []model.CandidateResult{testResult()}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, &fakeAPI{models: []string{"other", "test-model"}})
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	c = newTestClient(t, &fakeAPI{err: errors.New("down")})
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected Ping error")
	}
}

package views

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/orgpulse/pulse/internal/chart"
	appI18n "github.com/orgpulse/pulse/internal/i18n"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/review"
)

func renderCtx(t *testing.T, u *model.User) context.Context {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer("en"))
	ctx = model.ContextWithBasePath(ctx, "/survey")
	ctx = model.ContextWithCSRFToken(ctx, "tok-123")
	if u != nil {
		ctx = model.ContextWithUser(ctx, u)
	}
	return ctx
}

func renderString(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("body missing %q", w)
		}
	}
}

func TestLoginPage(t *testing.T) {
	body := renderString(t, renderCtx(t, nil), LoginPage(`bad <password> & "name"`))

	assertContains(t, body,
		"<!doctype html>",
		`action="/survey/login"`,
		`<input type="hidden" name="csrf_token" value="tok-123">`,
		`href="/survey/static/pulse.css"`,
		"bad &lt;password&gt; &amp; &#34;name&#34;",
	)
	if strings.Contains(body, "/survey/logout") {
		t.Error("anonymous page should not offer logout")
	}
}

func TestLoginPageWithoutError(t *testing.T) {
	body := renderString(t, renderCtx(t, nil), LoginPage(""))
	if strings.Contains(body, `class="error"`) {
		t.Error("empty message should not render an error note")
	}
}

func TestNavByRole(t *testing.T) {
	reviewer := &model.User{Username: "kim", DisplayName: "Kim <R>", Role: model.UserRoleReviewer}
	body := renderString(t, renderCtx(t, reviewer), ReviewCompletePage(2, 2))
	assertContains(t, body, `href="/survey/review"`, "Kim &lt;R&gt;", "All records have been processed.", "2 records judged.")
	if strings.Contains(body, "/survey/admin/users") {
		t.Error("reviewer nav should not link admin pages")
	}

	admin := &model.User{Username: "root", DisplayName: "Root", Role: model.UserRoleAdmin}
	body = renderString(t, renderCtx(t, admin), ReviewCompletePage(2, 1))
	assertContains(t, body, `href="/survey/admin/users"`, `href="/survey/admin/feedback"`)
}

func TestReviewPage(t *testing.T) {
	d := ReviewData{
		Index:    0,
		Total:    3,
		Original: "<script>alert(1)</script>\n둘째 줄",
		Advanced: "[Vision] 개선",
		Result: review.ResultView{
			FitGrade:  "A",
			FitTone:   "good",
			Questions: []review.QuestionLine{{Key: "Q1", Value: "협업"}},
			Fued:      review.Factor{Text: "-", Tone: "muted"},
			TurnOver:  review.Factor{Text: "보상", Tone: "bad"},
		},
		Vision:   &chart.Config{ChartType: "radar", Title: "Vision"},
		Selected: model.SelectionAdvanced,
		Feedback: "메모 </textarea>",
		Error:    "disk full",
	}
	body := renderString(t, renderCtx(t, &model.User{Role: model.UserRoleReviewer}), ReviewPage(d))

	assertContains(t, body,
		"Record 1 of 3",
		`<progress value="0" max="3">`,
		"&lt;script&gt;alert(1)&lt;/script&gt;\n둘째 줄",
		"[Vision] 개선",
		`value="Advanced" checked>`,
		`value="Original">`,
		`<span class="tone" data-tone="good">A</span>`,
		"<li>Q1: 협업</li>",
		`data-tone="bad">보상</span>`,
		"메모 &lt;/textarea&gt;",
		`role="alert">disk full</p>`,
		`<script id="vision-data" type="application/json">`,
		`"chartType":"radar"`,
		`<script src="/survey/static/review.js"></script>`,
	)
	if strings.Contains(body, "<script>alert(1)") {
		t.Error("panel text must be escaped")
	}
}

func TestAdminUsersPage(t *testing.T) {
	users := []model.User{
		{ID: 7, Username: "kim", DisplayName: "김", Role: model.UserRoleReviewer, Active: true},
		{ID: 8, Username: "lee", DisplayName: "이", Role: model.UserRoleReviewer},
	}
	body := renderString(t, renderCtx(t, &model.User{Role: model.UserRoleAdmin}), AdminUsersPage(users, "created"))

	assertContains(t, body,
		`action="/survey/admin/users/7/toggle"`,
		`action="/survey/admin/users/8/toggle"`,
		"<td>kim</td><td>김</td><td>reviewer</td><td>✓</td>",
		"<td>lee</td><td>이</td><td>reviewer</td><td></td>",
		"<p>created</p>",
	)
}

func TestAdminFeedbackPage(t *testing.T) {
	s := FeedbackSummary{
		Export: model.FeedbackExport{
			TotalRecords: 4,
			Judged:       1,
			Counts:       map[model.Selection]int{model.SelectionAdvanced: 1},
			Entries: []model.FeedbackExportEntry{
				{Index: 2, FitGrade: "B", SelectedOption: model.SelectionAdvanced, Feedback: "<b>굿</b>"},
			},
		},
		Progress: []model.ReviewProgress{
			{Username: "kim", Cursor: 3, UpdatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)},
		},
	}
	body := renderString(t, renderCtx(t, &model.User{Role: model.UserRoleAdmin}), AdminFeedbackPage(s))

	assertContains(t, body,
		"1 record judged. / 4",
		"<tr><td>Original</td><td>0</td></tr><tr><td>Advanced</td><td>1</td></tr>",
		"<td>kim</td><td>3</td><td>2026-03-01 09:30</td>",
		"&lt;b&gt;굿&lt;/b&gt;",
		`href="/survey/admin/feedback/export"`,
	)
	if strings.Contains(body, "<b>굿</b>") {
		t.Error("feedback text must be escaped on the page")
	}
}

func TestDashboardPage(t *testing.T) {
	d := DashboardData{
		Categories:   []Option{{Value: "성별", Label: "성별", Selected: true}, {Value: "연령대", Label: "연령대"}},
		Scale:        []Option{{Value: "q1", Label: "리더의 동기부여"}},
		Filters:      []FilterColumn{{Column: "성별", Options: []Option{{Value: "여", Label: "여", Selected: true}, {Value: "남", Label: "남"}}}},
		Tenure:       []Option{{Value: "5", Label: "5년 미만"}},
		Respondents:  3,
		Query:        "category=성별&filter=성별:여",
		DatasetLabel: "responses.csv",
	}
	body := renderString(t, renderCtx(t, &model.User{Role: model.UserRoleReviewer}), DashboardPage(d))

	assertContains(t, body,
		"responses.csv · 3 respondents",
		`data-api="/survey/api"`,
		`data-query="category=성별&amp;filter=성별:여"`,
		`<option value="성별" selected>성별</option>`,
		`<option value="성별:여" selected>여</option>`,
		`<option value="성별:남">남</option>`,
		`<select id="scale-question"><option value="q1">리더의 동기부여</option></select>`,
		`<canvas id="scale-dist"></canvas>`,
		`<div id="multi-words"></div>`,
		`<script src="/survey/static/dashboard.js"></script>`,
	)
}

func TestAssets(t *testing.T) {
	for _, name := range []string{"pulse.css", "dashboard.js", "review.js"} {
		b, err := fs.ReadFile(Assets(), name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(b) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

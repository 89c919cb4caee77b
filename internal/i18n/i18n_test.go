package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		lang string
		id   string
		want string
	}{
		{"en", "Submit", "Submit"},
		{"en", "ReviewComplete", "All records have been processed."},
		{"ko", "Submit", "제출"},
		{"ko", "ReviewComplete", "모든 데이터를 처리했습니다."},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.id, func(t *testing.T) {
			ctx := initLang(t, tt.lang)
			if got := T(ctx, tt.id); got != tt.want {
				t.Errorf("T(%s) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "Respondents", 1); got != "1 respondent" {
		t.Errorf("Tp(Respondents, 1) = %q", got)
	}
	if got := Tp(ctx, "Respondents", 5); got != "5 respondents" {
		t.Errorf("Tp(Respondents, 5) = %q", got)
	}

	ctx = initLang(t, "ko")
	if got := Tp(ctx, "RecordsJudged", 3); got != "3건 평가 완료." {
		t.Errorf("Tp(RecordsJudged, 3) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "RecordN", map[string]any{"Index": 3, "Total": 10})
	if got != "Record 3 of 10" {
		t.Errorf("Td(RecordN) = %q, want 'Record 3 of 10'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestInitRejectsUnknownLanguage(t *testing.T) {
	if err := Init("not a tag!"); err == nil {
		t.Error("expected parse error")
	}
}

func TestMatch(t *testing.T) {
	initLang(t, "ko")
	if got := Match("en-US,en;q=0.9", "ko"); got != "en" {
		t.Errorf("Match(en-US) = %q, want en", got)
	}
	if got := Match("garbage;;", "ko"); got != "ko" {
		t.Errorf("Match(garbage) = %q, want default", got)
	}
}

func TestMiddlewareQueryOverride(t *testing.T) {
	initLang(t, "ko")
	var got string
	h := Middleware("ko")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Submit")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "제출" {
		t.Errorf("default language: got %q", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	if got != "Submit" {
		t.Errorf("lang=en override: got %q", got)
	}
}

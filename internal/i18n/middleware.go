package i18n

import "net/http"

// Middleware injects a localizer into every request context. The configured
// language wins unless the "lang" query parameter or cookie names another
// supported language.
func Middleware(lang string) func(http.Handler) http.Handler {
	def := NewLocalizer(lang)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := def
			if want := requested(r); want != "" && want != lang {
				loc = NewLocalizer(Match(want, lang))
			}
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}

func requested(r *http.Request) string {
	if q := r.URL.Query().Get("lang"); q != "" {
		return q
	}
	if c, err := r.Cookie("lang"); err == nil {
		return c.Value
	}
	return ""
}

package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/orgpulse/pulse/internal/handler/views"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/review"
	"github.com/orgpulse/pulse/internal/store"
	"github.com/orgpulse/pulse/internal/survey"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	data   *survey.Dataset
	ledger *review.Ledger
	config model.ServerConfig
}

// New creates a new Handler. Either the dataset or the ledger may be nil;
// the corresponding pages are then not served.
func New(s *store.Store, data *survey.Dataset, ledger *review.Ledger, cfg model.ServerConfig) (*Handler, error) {
	if s == nil {
		return nil, errors.New("handler: store is required")
	}
	if data == nil && ledger == nil {
		return nil, errors.New("handler: nothing to serve, load a survey or review inputs")
	}
	if data != nil && cfg.DefaultCategory != "" && !data.HasColumn(cfg.DefaultCategory) {
		slog.Warn("default category not in survey, falling back", "category", cfg.DefaultCategory)
		cfg.DefaultCategory = ""
	}
	return &Handler{store: s, data: data, ledger: ledger, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Handle("/static/*", http.StripPrefix(h.path("/static/"), http.FileServerFS(views.Assets())))

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.handleLogout)
			r.Get("/", h.handleIndex)
			if h.ledger != nil {
				r.Get("/review", h.handleReviewPage)
				r.Post("/review/submit", h.handleReviewSubmit)
			}

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(model.UserRoleAdmin))
				r.Get("/users", h.handleAdminUsersPage)
				r.Post("/users", h.handleCreateUser)
				r.Post("/users/{userID}/toggle", h.handleToggleUserActive)
				if h.ledger != nil {
					r.Get("/feedback", h.handleAdminFeedbackPage)
					r.Get("/feedback/export", h.handleFeedbackExport)
					r.Post("/progress/reset", h.handleResetProgress)
				}
			})
		})
	})

	if h.data != nil {
		r.Route("/api", func(r chi.Router) {
			r.Use(h.requireAPIAuth)
			r.Get("/columns", h.handleColumns)
			r.Get("/scale", h.handleScale)
			r.Get("/multiselect", h.handleMultiSelect)
			r.Get("/distribution", h.handleDistribution)
			r.Get("/radar", h.handleRadar)
			r.Get("/density", h.handleDensity)
			r.Get("/words", h.handleWords)
			r.Get("/describe", h.handleDescribe)
			r.Get("/crosstab", h.handleCrosstab)
			r.Get("/counts", h.handleCounts)
		})
	}
}

// BasePathMiddleware makes the configured URL prefix available to views.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if h.data == nil {
		http.Redirect(w, r, h.path("/review"), http.StatusSeeOther)
		return
	}
	h.handleDashboard(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// writeJSON encodes v before writing the header. Values that cannot be
// encoded, such as NaN, produce a 500 error body instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("encode response", "error", err)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = enc.Encode(errorBody{Error: "response could not be encoded"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("write response", "error", err)
	}
}

type errorBody struct {
	Error string          `json:"error"`
	Code  model.ErrorCode `json:"code,omitempty"`
	Field string          `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error(), Code: model.CodeOf(err)}
	var v *model.ValidationError
	if errors.As(err, &v) {
		body.Field = v.Field
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, body)
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch model.CodeOf(err) {
	case model.ErrValidation:
		return http.StatusUnprocessableEntity
	case model.ErrInvalidInput, model.ErrMalformed, model.ErrUnsupportedFormat, model.ErrMissingData:
		return http.StatusBadRequest
	case model.ErrReviewComplete:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

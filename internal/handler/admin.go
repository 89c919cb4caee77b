package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"

	"github.com/orgpulse/pulse/internal/handler/views"
	appI18n "github.com/orgpulse/pulse/internal/i18n"
	"github.com/orgpulse/pulse/internal/model"
	"github.com/orgpulse/pulse/internal/review"
)

func (h *Handler) handleAdminUsersPage(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, "")
}

func (h *Handler) renderUsers(w http.ResponseWriter, r *http.Request, msg string) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, http.StatusOK, views.AdminUsersPage(users, msg))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	displayName := r.FormValue("display_name")
	password := r.FormValue("password")
	role := model.UserRole(r.FormValue("role"))

	if username == "" || password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}
	if role != model.UserRoleAdmin {
		role = model.UserRoleReviewer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if displayName == "" {
		displayName = username
	}

	_, err = h.store.CreateUser(r.Context(), model.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err)
		http.Error(w, "failed to create user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("created user", "username", username, "role", role)
	h.renderUsers(w, r, appI18n.Td(r.Context(), "UserCreated", map[string]any{"Username": username}))
}

func (h *Handler) handleToggleUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	active, err := h.store.ToggleUserActive(r.Context(), id)
	if err != nil {
		slog.Error("failed to toggle user active", "id", id, "error", err)
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	slog.Info("user active toggled", "id", id, "active", active)

	http.Redirect(w, r, h.path("/admin/users"), http.StatusSeeOther)
}

func (h *Handler) handleAdminFeedbackPage(w http.ResponseWriter, r *http.Request) {
	var summary views.FeedbackSummary
	status := http.StatusOK

	entries, err := h.ledger.Entries()
	if err != nil {
		slog.Error("load feedback", "error", err)
		summary.Error = err.Error()
		status = statusOf(err)
	}
	summary.Export = review.BuildExport(h.ledger.Records(), entries, time.Now())

	summary.Progress, err = h.store.ListProgress(r.Context())
	if err != nil {
		slog.Error("list review progress", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render(w, r, status, views.AdminFeedbackPage(summary))
}

func (h *Handler) handleFeedbackExport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.Entries()
	if err != nil {
		writeError(w, err)
		return
	}
	exp := review.BuildExport(h.ledger.Records(), entries, time.Now())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="feedback_export.json"`)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(exp); err != nil {
		slog.Error("encode feedback export", "error", err)
	}
}

func (h *Handler) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetProgress(r.Context()); err != nil {
		slog.Error("reset review progress", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("review progress reset", "by", model.UserFromContext(r.Context()).Username)
	http.Redirect(w, r, h.path("/admin/feedback"), http.StatusSeeOther)
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/orgpulse/pulse/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, username string, role model.UserRole) int64 {
	t.Helper()
	id, err := s.CreateUser(context.Background(), model.User{
		Username:     username,
		DisplayName:  "User " + username,
		PasswordHash: "hash",
		Role:         role,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return id
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	count, err := s.UserCount(ctx)
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id := createTestUser(t, s, "kim", model.UserRoleReviewer)
	u, err := s.GetUserByUsername(ctx, "kim")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("expected user %d, got %+v", id, u)
	}
	if u.Role != model.UserRoleReviewer || !u.Active {
		t.Errorf("unexpected role/active: %q %v", u.Role, u.Active)
	}

	// Not found returns nil without error.
	missing, err := s.GetUserByID(ctx, 9999)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil user, got %+v", missing)
	}

	// Duplicate usernames are rejected.
	if _, err := s.CreateUser(ctx, model.User{Username: "kim", PasswordHash: "x", Role: model.UserRoleAdmin}); err == nil {
		t.Error("expected duplicate username error")
	}

	active, err := s.ToggleUserActive(ctx, id)
	if err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	u, _ = s.GetUserByID(ctx, id)
	if active || u.Active {
		t.Error("expected user to be inactive after toggle")
	}
	if _, err := s.ToggleUserActive(ctx, 9999); model.CodeOf(err) != model.ErrValidation {
		t.Errorf("toggle unknown user: expected validation error, got %v", err)
	}

	createTestUser(t, s, "lee", model.UserRoleAdmin)
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "kim" || users[1].Username != "lee" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestAuthSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	uid := createTestUser(t, s, "kim", model.UserRoleReviewer)

	token, err := s.CreateAuthSession(ctx, uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char token, got %d", len(token))
	}

	sess, err := s.GetAuthSession(ctx, token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != uid {
		t.Fatalf("expected session for user %d, got %+v", uid, sess)
	}

	if err := s.DeleteAuthSession(ctx, token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, _ = s.GetAuthSession(ctx, token)
	if sess != nil {
		t.Error("expected nil session after delete")
	}
}

func TestToggleUserActiveRules(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	admin := createTestUser(t, s, "admin", model.UserRoleAdmin)
	reviewer := createTestUser(t, s, "park", model.UserRoleReviewer)

	if _, err := s.ToggleUserActive(ctx, admin); model.CodeOf(err) != model.ErrValidation {
		t.Fatalf("expected last admin to be protected, got %v", err)
	}

	token, err := s.CreateAuthSession(ctx, reviewer)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if _, err := s.ToggleUserActive(ctx, reviewer); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if sess, _ := s.GetAuthSession(ctx, token); sess != nil {
		t.Error("deactivation should revoke sessions")
	}
	active, err := s.ToggleUserActive(ctx, reviewer)
	if err != nil || !active {
		t.Errorf("reactivate: active=%v err=%v", active, err)
	}

	second := createTestUser(t, s, "admin2", model.UserRoleAdmin)
	if _, err := s.ToggleUserActive(ctx, second); err != nil {
		t.Errorf("deactivating one of two admins: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	uid := createTestUser(t, s, "kim", model.UserRoleReviewer)

	stale, _ := s.CreateAuthSession(ctx, uid)
	fresh, _ := s.CreateAuthSession(ctx, uid)
	aging, _ := s.CreateAuthSession(ctx, uid)
	now := time.Now()
	if _, err := s.db.ExecContext(ctx, `UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, now.Add(-time.Minute), stale); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, now.Add(2*time.Hour), aging); err != nil {
		t.Fatal(err)
	}

	n, err := s.CleanupExpiredSessions(ctx)
	if err != nil || n != 1 {
		t.Fatalf("CleanupExpiredSessions = %d, %v; want 1", n, err)
	}
	if sess, _ := s.GetAuthSession(ctx, fresh); sess == nil {
		t.Error("fresh session should survive cleanup")
	}

	sess, err := s.GetAuthSession(ctx, aging)
	if err != nil || sess == nil {
		t.Fatalf("GetAuthSession(aging) = %+v, %v", sess, err)
	}
	if sess.ExpiresAt.Before(now.Add(authSessionTTL - time.Minute)) {
		t.Errorf("session in use should slide its expiry, got %v", sess.ExpiresAt)
	}
}

func TestReviewProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	kim := createTestUser(t, s, "kim", model.UserRoleReviewer)
	lee := createTestUser(t, s, "lee", model.UserRoleReviewer)

	// No saved cursor starts at zero.
	cur, err := s.GetProgress(ctx, kim)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if cur != 0 {
		t.Errorf("expected cursor 0, got %d", cur)
	}

	if err := s.SetProgress(ctx, kim, 3); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if err := s.SetProgress(ctx, kim, 4); err != nil {
		t.Fatalf("SetProgress update: %v", err)
	}
	if err := s.SetProgress(ctx, lee, 1); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	cur, _ = s.GetProgress(ctx, kim)
	if cur != 4 {
		t.Errorf("expected cursor 4, got %d", cur)
	}

	list, err := s.ListProgress(ctx)
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 progress rows, got %d", len(list))
	}

	if err := s.ResetProgress(ctx); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}
	cur, _ = s.GetProgress(ctx, kim)
	if cur != 0 {
		t.Errorf("expected cursor 0 after reset, got %d", cur)
	}
}

func TestImportedFileHash(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Missing file returns empty string.
	hash, err := s.GetImportedFileHash(ctx, "/data/vision.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash(ctx, "/data/vision.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	if err := s.SetImportedFileHash(ctx, "/data/vision.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash(ctx, "/data/vision.json")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}

func TestSyncReviewInputs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	uid := createTestUser(t, s, "kim", model.UserRoleReviewer)

	hashes := map[string]string{"dataset.json": "a", "vision.json": "b"}

	// First sight of the files is not a change.
	changed, err := s.SyncReviewInputs(ctx, hashes)
	if err != nil {
		t.Fatalf("SyncReviewInputs: %v", err)
	}
	if changed {
		t.Error("expected no change on first sync")
	}

	if err := s.SetProgress(ctx, uid, 5); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	// Same content keeps cursors.
	changed, _ = s.SyncReviewInputs(ctx, hashes)
	if changed {
		t.Error("expected no change for identical hashes")
	}
	if cur, _ := s.GetProgress(ctx, uid); cur != 5 {
		t.Errorf("expected cursor 5, got %d", cur)
	}

	// New content resets them.
	hashes["vision.json"] = "c"
	changed, err = s.SyncReviewInputs(ctx, hashes)
	if err != nil {
		t.Fatalf("SyncReviewInputs: %v", err)
	}
	if !changed {
		t.Error("expected change after new hash")
	}
	if cur, _ := s.GetProgress(ctx, uid); cur != 0 {
		t.Errorf("expected cursor reset to 0, got %d", cur)
	}
}

func TestMetadata(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.GetMetadata(ctx, "survey_fingerprint")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty value, got %q", v)
	}
	if err := s.SetMetadata(ctx, "survey_fingerprint", "f1"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	if err := s.SetMetadata(ctx, "survey_fingerprint", "f2"); err != nil {
		t.Fatalf("SetMetadata update: %v", err)
	}
	v, _ = s.GetMetadata(ctx, "survey_fingerprint")
	if v != "f2" {
		t.Errorf("expected 'f2', got %q", v)
	}
}

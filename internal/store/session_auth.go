package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/orgpulse/pulse/internal/model"
)

// A session lives for authSessionTTL after its last use. Expiry is pushed
// forward at most once per sessionRefresh so page loads stay read-only.
const (
	authSessionTTL = 24 * time.Hour
	sessionRefresh = time.Hour
)

// CreateAuthSession signs a user in and returns the session token.
func (s *Store) CreateAuthSession(ctx context.Context, userID int64) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	now := time.Now()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		token, userID, now, now.Add(authSessionTTL),
	); err != nil {
		return "", err
	}
	return token, nil
}

// GetAuthSession returns the live session for token, or nil when it is
// unknown or expired. Expired rows are removed on sight.
func (s *Store) GetAuthSession(ctx context.Context, token string) (*model.AuthSession, error) {
	var sess model.AuthSession
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM auth_sessions WHERE id = ?`, token,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.After(sess.ExpiresAt) {
		return nil, s.DeleteAuthSession(ctx, token)
	}
	if sess.ExpiresAt.Sub(now) < authSessionTTL-sessionRefresh {
		sess.ExpiresAt = now.Add(authSessionTTL)
		if _, err := s.db.ExecContext(ctx,
			`UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, sess.ExpiresAt, token,
		); err != nil {
			return nil, err
		}
	}
	return &sess, nil
}

// DeleteAuthSession removes a session token.
func (s *Store) DeleteAuthSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, token)
	return err
}

// CleanupExpiredSessions removes all expired auth sessions and reports how
// many were dropped.
func (s *Store) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

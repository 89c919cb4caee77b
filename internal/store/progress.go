package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/orgpulse/pulse/internal/model"
)

// GetProgress returns a reviewer's saved cursor; 0 when none is saved.
func (s *Store) GetProgress(ctx context.Context, userID int64) (int, error) {
	var cursor int
	err := s.db.QueryRowContext(ctx, `SELECT cursor FROM review_progress WHERE user_id = ?`, userID).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return cursor, err
}

// SetProgress saves a reviewer's cursor.
func (s *Store) SetProgress(ctx context.Context, userID int64, cursor int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_progress (user_id, cursor, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET cursor = excluded.cursor, updated_at = excluded.updated_at`,
		userID, cursor, time.Now(),
	)
	return err
}

// ListProgress returns every reviewer's cursor, most recent first.
func (s *Store) ListProgress(ctx context.Context) ([]model.ReviewProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.user_id, u.username, p.cursor, p.updated_at
		 FROM review_progress p JOIN users u ON u.id = p.user_id
		 ORDER BY p.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReviewProgress
	for rows.Next() {
		var p model.ReviewProgress
		if err := rows.Scan(&p.UserID, &p.Username, &p.Cursor, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ResetProgress rewinds every reviewer to the first record.
func (s *Store) ResetProgress(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM review_progress`)
	return err
}

package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// SetMetadata upserts a key-value pair.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// GetImportedFileHash returns the stored content hash for path, or "".
func (s *Store) GetImportedFileHash(ctx context.Context, path string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the content hash of path.
func (s *Store) SetImportedFileHash(ctx context.Context, path, hash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imported_files (path, hash, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, imported_at = excluded.imported_at`,
		path, hash, time.Now(),
	)
	return err
}

// SyncReviewInputs compares the fingerprints of the review input files with
// the stored ones. When any differ, every reviewer cursor is reset since old
// positions point into different records. It reports whether a reset happened.
func (s *Store) SyncReviewInputs(ctx context.Context, hashes map[string]string) (bool, error) {
	changed := false
	for path, hash := range hashes {
		stored, err := s.GetImportedFileHash(ctx, path)
		if err != nil {
			return false, err
		}
		if stored == hash {
			continue
		}
		if stored != "" {
			slog.Warn("review input changed", "path", path)
			changed = true
		}
		if err := s.SetImportedFileHash(ctx, path, hash); err != nil {
			return false, err
		}
	}
	if changed {
		if err := s.ResetProgress(ctx); err != nil {
			return false, err
		}
	}
	return changed, nil
}

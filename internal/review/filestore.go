package review

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/orgpulse/pulse/internal/model"
)

// FeedbackStore persists the whole judgment collection at once.
type FeedbackStore interface {
	Load() ([]model.FeedbackEntry, error)
	Save(entries []model.FeedbackEntry) error
}

// JSONFileStore keeps judgments in a JSON array file.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore returns a store backed by path. The file is created on the
// first Save.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// Path returns the backing file.
func (s *JSONFileStore) Path() string { return s.path }

// Load reads the collection. A missing file is an empty collection; a file
// that is not a JSON array is an error so it is never silently overwritten.
func (s *JSONFileStore) Load() ([]model.FeedbackEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.FeedbackEntry{}, nil
	}
	if err != nil {
		return nil, model.NewError(model.ErrPersistence, "read feedback "+s.path, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.FeedbackEntry{}, nil
	}
	if trimmed[0] != '[' {
		return nil, model.NewError(model.ErrPersistence,
			fmt.Sprintf("feedback file %s does not hold a JSON array", s.path), nil)
	}
	var entries []model.FeedbackEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, model.NewError(model.ErrPersistence, "parse feedback "+s.path, err)
	}
	if entries == nil {
		entries = []model.FeedbackEntry{}
	}
	return entries, nil
}

// Save replaces the file with entries, writing to a temporary file first.
func (s *JSONFileStore) Save(entries []model.FeedbackEntry) error {
	if entries == nil {
		entries = []model.FeedbackEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return model.NewError(model.ErrPersistence, "encode feedback", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.NewError(model.ErrPersistence, "create feedback dir", err)
	}
	tmp, err := os.CreateTemp(dir, ".feedback-*.json")
	if err != nil {
		return model.NewError(model.ErrPersistence, "create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return model.NewError(model.ErrPersistence, "write feedback", err)
	}
	if err := tmp.Close(); err != nil {
		return model.NewError(model.ErrPersistence, "write feedback", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return model.NewError(model.ErrPersistence, "replace feedback "+s.path, err)
	}
	return nil
}

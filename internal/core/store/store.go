// Package store persists review sessions as YAML inside the repository.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/revtui/revtui/internal/core/model"
)

// ErrSessionNotFound is returned by Load when no session file exists yet.
var ErrSessionNotFound = errors.New("session not found")

const (
	// DirName is the per-repository directory holding review state.
	DirName = ".revtui"
	// FileName is the session file inside DirName.
	FileName = "session.yaml"
)

// DefaultPath returns the session file path for a repository root.
func DefaultPath(root string) string {
	return filepath.Join(root, DirName, FileName)
}

// Store reads and writes review sessions at a fixed path.
type Store struct {
	path string
}

// New creates a store for the given session file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file path.
func (s *Store) Path() string { return s.path }

// Load reads the session file. A missing file yields ErrSessionNotFound so
// callers can distinguish "first run" from a corrupt or unreadable file.
func (s *Store) Load() (*model.ReviewSession, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session model.ReviewSession
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	if session.Files == nil {
		session.Files = make(map[string]*model.FileReview)
	}
	return &session, nil
}

// Save writes the session atomically: marshal to a temp file in the same
// directory, then rename over the target.
func (s *Store) Save(session *model.ReviewSession) error {
	session.Touch()

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close session file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Delete removes the session file. Missing files are not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

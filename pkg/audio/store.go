package audio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store manages the temporary audio artifacts produced by capture,
// transcoding, and synthesis. Every artifact lives in a single directory and
// is deleted as soon as its consumer is done with it; Sweep removes leftovers
// from a previous run.
//
// Store is safe for concurrent use — every method maps to independent
// filesystem operations on uniquely named files.
type Store struct {
	dir string
}

// NewStore creates the artifact directory if needed and returns a Store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("audio: artifact directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audio: create artifact directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// Create opens a new uniquely named artifact file. prefix groups related
// artifacts in directory listings (e.g. a user ID); ext is the extension
// without the dot.
func (s *Store) Create(prefix, ext string) (*os.File, error) {
	name := fmt.Sprintf("%s-%s.%s", prefix, uuid.NewString(), ext)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("audio: create artifact %q: %w", name, err)
	}
	return f, nil
}

// Write stores data as a new artifact and returns its path.
func (s *Store) Write(prefix, ext string, data []byte) (string, error) {
	f, err := s.Create(prefix, ext)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("audio: write artifact %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("audio: close artifact %q: %w", path, err)
	}
	return path, nil
}

// Remove deletes the artifact at path. Missing files are not an error —
// cleanup paths may race with an earlier removal.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("audio: remove artifact failed", "path", path, "error", err)
	}
}

// Sweep deletes every file in the artifact directory. Called once on startup
// to clear artifacts orphaned by a previous crash.
func (s *Store) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("audio: sweep artifact directory failed", "dir", s.dir, "error", err)
		return
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			slog.Warn("audio: sweep remove failed", "name", e.Name(), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("audio: swept stale artifacts", "dir", s.dir, "count", removed)
	}
}

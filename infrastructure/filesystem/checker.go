package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"reelnotes/domain/media"
	"reelnotes/domain/output"
)

// Store implements media.FileStore and output.FileWriter using the os package
type Store struct{}

// NewStore creates a new filesystem store
func NewStore() *Store {
	return &Store{}
}

// Exists returns true if the file exists
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes the file; a file that is already gone is not an error
func (s *Store) Remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// WriteFile writes text to path, replacing any existing content.
// Missing parent directories are created.
func (s *Store) WriteFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// Ensure Store implements the domain ports
var (
	_ media.FileStore   = (*Store)(nil)
	_ output.FileWriter = (*Store)(nil)
)

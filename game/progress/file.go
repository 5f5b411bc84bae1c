package progress

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps progress in a single file named Key inside a directory
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file store under dir, creating it if needed. An
// empty dir uses ~/.robo-path.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("progress: cannot expand home directory: %w", err)
		}
		dir = filepath.Join(home, ".robo-path")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("progress: cannot create directory %s: %w", dir, err)
	}

	return &FileStore{path: filepath.Join(dir, Key)}, nil
}

// Path returns the file holding the progress value
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLevel, nil
		}
		return 0, fmt.Errorf("progress: cannot read %s: %w", s.path, err)
	}
	return parseValue(string(data)), nil
}

func (s *FileStore) Save(ctx context.Context, level int) error {
	value, err := formatValue(level)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so a crash never leaves a half-written value
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("progress: cannot write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("progress: cannot replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Local implements Storage on the local filesystem. Writes are atomic
// (temp file + rename) so that a concurrently running watcher never
// observes a half-written document.
type Local struct {
	baseDir string
	mu      sync.RWMutex
}

// NewLocal creates a Local storage rooted at baseDir, creating the
// directory if it does not exist.
func NewLocal(baseDir string) (*Local, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base dir: %w", err)
	}
	return &Local{baseDir: abs}, nil
}

// BaseDir returns the absolute root of the store on disk.
func (l *Local) BaseDir() string {
	return l.baseDir
}

func (l *Local) resolve(path string) string {
	return filepath.Join(l.baseDir, filepath.Clean("/"+path))
}

func (l *Local) Read(_ context.Context, path string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, err := os.ReadFile(l.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (l *Local) Write(_ context.Context, path string, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.resolve(path)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (l *Local) List(_ context.Context, prefix string) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	dir := l.resolve(prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		paths = append(paths, strings.TrimPrefix(filepath.ToSlash(filepath.Join(prefix, entry.Name())), "/"))
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, err := os.Stat(l.resolve(path)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return true, nil
}

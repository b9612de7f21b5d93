package unit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Writer writes output files, skipping files whose content is unchanged so
// that mtime-based incremental builds do not recompile them. Safe for
// concurrent use.
type Writer struct {
	mu     sync.Mutex
	hashes map[string]uint64
}

// NewWriter creates a writer with an empty hash cache
func NewWriter() *Writer {
	return &Writer{hashes: make(map[string]uint64)}
}

// Write stores content at path, creating parent directories. It reports
// whether the file was actually written.
func (w *Writer) Write(path, content string) (bool, error) {
	sum := xxhash.Sum64String(content)

	w.mu.Lock()
	cached, ok := w.hashes[path]
	w.mu.Unlock()
	if ok && cached == sum {
		_, err := os.Stat(path)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if !ok {
		existing, err := os.ReadFile(path)
		if err == nil && xxhash.Sum64(existing) == sum {
			w.remember(path, sum)
			return false, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.remember(path, sum)
	return true, nil
}

func (w *Writer) remember(path string, sum uint64) {
	w.mu.Lock()
	w.hashes[path] = sum
	w.mu.Unlock()
}

package unit

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides which files below a project root are compilation units.
// Patterns are doublestar globs over slash-separated root-relative paths.
type Matcher struct {
	Include []string
	Exclude []string
	// Dest is the output directory, never treated as input
	Dest string
}

// Match reports whether the root-relative path rel is an input unit
func (m Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if m.Dest != "" {
		dest := filepath.ToSlash(filepath.Clean(m.Dest))
		if rel == dest || doublestar.MatchUnvalidated(dest+"/**", rel) {
			return false
		}
	}
	for _, pattern := range m.Exclude {
		if doublestar.MatchUnvalidated(pattern, rel) {
			return false
		}
	}
	for _, pattern := range m.Include {
		if doublestar.MatchUnvalidated(pattern, rel) {
			return true
		}
	}
	return false
}

// Validate rejects malformed glob patterns
func (m Matcher) Validate() error {
	for _, pattern := range append(append([]string(nil), m.Include...), m.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// Discover returns the root-relative paths of all units below root, sorted
func Discover(root string, m Matcher) ([]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && m.Dest != "" && filepath.Clean(rel) == filepath.Clean(m.Dest) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.Match(rel) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover units in %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Package utils provides small string and path helpers shared by the packages
package utils

import (
	"path"
	"strings"
)

// MakeReadable replaces newlines and tabs with visible marker glyphs
func MakeReadable(s string) string {
	s = strings.ReplaceAll(s, "\n", "⏷")
	s = strings.ReplaceAll(s, "\t", "⏵")
	return s
}

// Preview returns a readable, possibly truncated rendering of s.
// Strings of 20 bytes or more keep their first 8 and last 7 bytes.
func Preview(s string) string {
	if len(s) < 20 {
		return MakeReadable(s)
	}
	return MakeReadable(s[:8]) + " ... " + MakeReadable(s[len(s)-7:])
}

// SplitPath splits a C++ qualified name into parts
func SplitPath(path string) []string {
	if path == "" {
		return []string{}
	}

	// Handle global scope
	if path == "::" {
		return []string{}
	}

	// Remove leading/trailing ::
	path = strings.Trim(path, ":")

	if path == "" {
		return []string{}
	}

	return strings.Split(path, "::")
}

// JoinPath joins path parts into a C++ qualified name
func JoinPath(parts []string) string {
	if len(parts) == 0 {
		return "::"
	}

	return strings.Join(parts, "::")
}

// SubstituteSuffix replaces the extension of file with suffix (without dot).
// A file without extension gets the suffix appended.
func SubstituteSuffix(file, suffix string) string {
	ext := path.Ext(file)
	if ext == "" {
		return file + "." + suffix
	}
	return strings.TrimSuffix(file, ext) + "." + suffix
}

// IsValidCppIdentifier checks if a string is a valid C++ identifier
func IsValidCppIdentifier(name string) bool {
	if name == "" {
		return false
	}

	// Must start with letter or underscore
	if !isLetter(rune(name[0])) && name[0] != '_' {
		return false
	}

	// Rest must be letters, digits, or underscores
	for _, char := range name[1:] {
		if !isLetter(char) && !isDigit(char) && char != '_' {
			return false
		}
	}

	return true
}

// isLetter checks if a rune is a letter
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isDigit checks if a rune is a digit
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

package parser

import (
	"strings"
)

// isWordChar reports whether c belongs to an identifier run
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func isOpeningBracket(c byte) bool {
	return c == '{' || c == '(' || c == '['
}

func isClosingBracket(c byte) bool {
	return c == '}' || c == ')' || c == ']'
}

// scanner is a byte cursor over the raw input of one unit
type scanner struct {
	src string
	pos int
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.src)
}

// peek returns the byte at the cursor or 0 at end of input
func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) hasPrefix(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

// nextWord returns the identifier run starting at the cursor, "" if none
func (s *scanner) nextWord() string {
	end := s.pos
	for end < len(s.src) && isWordChar(s.src[end]) {
		end++
	}
	return s.src[s.pos:end]
}

// indexFrom returns the absolute index of sub at or after from, or -1
func (s *scanner) indexFrom(from int, sub string) int {
	if from > len(s.src) {
		return -1
	}
	i := strings.Index(s.src[from:], sub)
	if i < 0 {
		return -1
	}
	return from + i
}

// indexAnyFrom returns the absolute index of the first of chars at or after from, or -1
func (s *scanner) indexAnyFrom(from int, chars string) int {
	if from > len(s.src) {
		return -1
	}
	i := strings.IndexAny(s.src[from:], chars)
	if i < 0 {
		return -1
	}
	return from + i
}

// headerEnd is indexAnyFrom for a declaration header: matches inside
// line or block comments are skipped. An unterminated comment yields -1.
func (s *scanner) headerEnd(from int, chars string) int {
	for i := from; i < len(s.src); i++ {
		switch {
		case strings.HasPrefix(s.src[i:], "//"):
			nl := strings.IndexByte(s.src[i:], '\n')
			if nl < 0 {
				return -1
			}
			i += nl
		case strings.HasPrefix(s.src[i:], "/*"):
			end := strings.Index(s.src[i+2:], "*/")
			if end < 0 {
				return -1
			}
			i += end + 3
		case strings.IndexByte(chars, s.src[i]) >= 0:
			return i
		}
	}
	return -1
}

// lineEnd returns the index just past the next newline at or after from,
// or the end of input when there is none
func (s *scanner) lineEnd(from int) int {
	i := s.indexFrom(from, "\n")
	if i < 0 {
		return len(s.src)
	}
	return i + 1
}

// logicalLineEnd is lineEnd honouring backslash line continuation
func (s *scanner) logicalLineEnd(from int) int {
	for {
		nl := s.indexFrom(from, "\n")
		if nl < 0 {
			return len(s.src)
		}
		last := nl - 1
		if last >= from && s.src[last] == '\r' {
			last--
		}
		if last >= from && s.src[last] == '\\' {
			from = nl + 1
			continue
		}
		return nl + 1
	}
}

// lineColumn converts a byte offset into 1-based line and column
func lineColumn(src string, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	line := 1 + strings.Count(src[:offset], "\n")
	col := offset - strings.LastIndex(src[:offset], "\n")
	return line, col
}

package parser

import (
	"fmt"
	"io"
	"strings"

	"fastbuild/pkg/ast"
)

// recognizer tries to read one node at the cursor. It returns a nil node
// without error when the input at the cursor is not its construct.
type recognizer struct {
	name string
	read func(r *Reader) (ast.Node, error)
}

// recognizers in priority order, the first match wins
var recognizers = []recognizer{
	{"comment", (*Reader).readComment},
	{"string", (*Reader).readString},
	{"opening bracket", (*Reader).readOpeningBracket},
	{"closing bracket", (*Reader).readClosingBracket},
	{"preprocessor", (*Reader).readPreprocessor},
	{"namespace", (*Reader).readNamespace},
	{"class", (*Reader).readClass},
	{"access control", (*Reader).readAccessControl},
	{"word", (*Reader).readWord},
	{"command separator", (*Reader).readCommandSeparator},
	{"char", (*Reader).readChar},
}

// Reader turns raw source text into a stream of nodes. Containers are
// returned empty; the end of a container is signalled by an
// *ast.ClosingBracket.
type Reader struct {
	s scanner
}

// NewReader creates a reader positioned at the start of src
func NewReader(src string) *Reader {
	return &Reader{s: scanner{src: src}}
}

// Pos returns the current byte offset
func (r *Reader) Pos() int {
	return r.s.pos
}

// Next returns the next node, or io.EOF once the input is exhausted
func (r *Reader) Next() (ast.Node, error) {
	if r.s.atEnd() {
		return nil, io.EOF
	}

	start := r.s.pos
	for _, rec := range recognizers {
		n, err := rec.read(r)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		// Safeguard: every match must advance the cursor
		if r.s.pos <= start {
			return nil, r.fail(rec.name, start, ErrStuck, fmt.Sprintf("stuck at position %d", start))
		}
		return n, nil
	}

	return nil, r.fail("reader", start, ErrStuck, fmt.Sprintf("no recognizer matched %q", r.s.peek()))
}

// ReadAll drains the reader, mostly useful for tests and dumps
func (r *Reader) ReadAll() ([]ast.Node, error) {
	var nodes []ast.Node
	for {
		n, err := r.Next()
		if err == io.EOF {
			return nodes, nil
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

func (r *Reader) fail(phase string, offset int, kind error, msg string) error {
	line, col := lineColumn(r.s.src, offset)
	return &Error{Phase: phase, Offset: offset, Line: line, Column: col, Msg: msg, Err: kind}
}

// chunk emits the text between start and end and moves the cursor to end
func (r *Reader) chunk(category ast.Category, start, end int) *ast.Chunk {
	c := ast.NewChunk(category, r.s.src[start:end], start)
	r.s.pos = end
	return c
}

// readComment reads `/* ... */` or `//` through the end of the line
func (r *Reader) readComment() (ast.Node, error) {
	start := r.s.pos

	switch {
	case r.s.hasPrefix("/*"):
		end := r.s.indexFrom(start+2, "*/")
		if end < 0 {
			return nil, r.fail("comment", start, ErrUnterminated, "found unterminated comment")
		}
		return r.chunk(ast.CategoryMultilineComment, start, end+2), nil
	case r.s.hasPrefix("//"):
		return r.chunk(ast.CategorySinglelineComment, start, r.s.lineEnd(start+2)), nil
	}

	return nil, nil
}

// readString reads a '...' or "..." literal, skipping backslash escapes
func (r *Reader) readString() (ast.Node, error) {
	quote := r.s.peek()
	if quote != '\'' && quote != '"' {
		return nil, nil
	}

	start := r.s.pos
	pos := start + 1
	for {
		end := r.s.indexAnyFrom(pos, string(quote)+`\`)
		if end < 0 {
			return nil, r.fail("string", start, ErrUnterminated, "found unterminated string")
		}
		if r.s.src[end] == '\\' {
			if end+1 >= len(r.s.src) {
				return nil, r.fail("string", start, ErrUnterminated, "found unterminated string - EOF after escape")
			}
			pos = end + 2
			continue
		}
		return r.chunk(ast.CategoryString, start, end+1), nil
	}
}

func (r *Reader) readOpeningBracket() (ast.Node, error) {
	if !isOpeningBracket(r.s.peek()) {
		return nil, nil
	}

	start := r.s.pos
	bracket, err := ast.NewBracket(r.s.src[start:start+1], start)
	if err != nil {
		return nil, r.fail("opening bracket", start, ErrEmptyBracket, err.Error())
	}
	r.s.pos++
	return bracket, nil
}

func (r *Reader) readClosingBracket() (ast.Node, error) {
	c := r.s.peek()
	if !isClosingBracket(c) {
		return nil, nil
	}

	closing := &ast.ClosingBracket{Char: c, Start: r.s.pos}
	r.s.pos++
	return closing, nil
}

// readPreprocessor reads a directive through the end of its logical line
func (r *Reader) readPreprocessor() (ast.Node, error) {
	if r.s.peek() != '#' {
		return nil, nil
	}

	start := r.s.pos
	return r.chunk(ast.CategoryPreprocessor, start, r.s.logicalLineEnd(start+1)), nil
}

// readNamespace reads `namespace name {`. A `;` before the brace means an
// alias or using-directive, which is left to the word recognizer.
func (r *Reader) readNamespace() (ast.Node, error) {
	const keyword = "namespace"
	if r.s.nextWord() != keyword {
		return nil, nil
	}

	start := r.s.pos
	after := start + len(keyword)
	brace := r.s.headerEnd(after, ";{")
	if brace < 0 || r.s.src[brace] == ';' {
		return nil, nil
	}

	ns := &ast.Namespace{
		Scope: ast.Scope{Start: start},
		Name:  strings.TrimSpace(stripComments(r.s.src[after:brace])),
	}
	r.s.pos = brace + 1
	return ns, nil
}

// readClass reads `class name : spec {`. Forward declarations and
// template parameters (`template <class T>`) are left to the word recognizer.
func (r *Reader) readClass() (ast.Node, error) {
	const keyword = "class"
	if r.s.nextWord() != keyword {
		return nil, nil
	}

	start := r.s.pos
	after := start + len(keyword)
	brace := r.s.headerEnd(after, ";{")
	if brace < 0 || r.s.src[brace] == ';' {
		return nil, nil
	}

	name, spec := splitClassHeader(stripComments(r.s.src[after:brace]))
	if !isClassName(name) {
		return nil, nil
	}

	class := &ast.Class{
		Scope: ast.Scope{Start: start},
		Name:  name,
		Spec:  spec,
	}
	r.s.pos = brace + 1
	return class, nil
}

// stripComments replaces every comment in a header with a single space.
// The header must not end inside a comment.
func stripComments(header string) string {
	if !strings.Contains(header, "/") {
		return header
	}
	var b strings.Builder
	for i := 0; i < len(header); {
		switch {
		case strings.HasPrefix(header[i:], "//"):
			nl := strings.IndexByte(header[i:], '\n')
			if nl < 0 {
				nl = len(header) - i
			}
			i += nl
			b.WriteByte(' ')
		case strings.HasPrefix(header[i:], "/*"):
			end := strings.Index(header[i+2:], "*/")
			if end < 0 {
				end = len(header) - i - 4
			}
			i += end + 4
			b.WriteByte(' ')
		default:
			b.WriteByte(header[i])
			i++
		}
	}
	return b.String()
}

// splitClassHeader splits the text between `class` and `{` at the first
// single colon. A `::` scope operator does not split.
func splitClassHeader(header string) (name, spec string) {
	for i := 0; i < len(header); i++ {
		if header[i] != ':' {
			continue
		}
		if i+1 < len(header) && header[i+1] == ':' {
			i++
			continue
		}
		return strings.TrimSpace(header[:i]), strings.TrimSpace(header[i:])
	}
	return strings.TrimSpace(header), ""
}

// isClassName rejects name parts that are really the tail of a template
// parameter list or an expression
func isClassName(name string) bool {
	depth := 0
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return false
			}
		case ',', '=':
			if depth == 0 {
				return false
			}
		case '(', ')', '}', ';':
			return false
		}
	}
	return depth == 0
}

// readAccessControl reads `public:`, `protected:` or `private:` including
// anything up to the colon (e.g. `public slots:`)
func (r *Reader) readAccessControl() (ast.Node, error) {
	word := r.s.nextWord()
	if word != "private" && word != "protected" && word != "public" {
		return nil, nil
	}

	start := r.s.pos
	colon := r.s.indexFrom(start+len(word), ":")
	if colon < 0 || strings.ContainsAny(r.s.src[start+len(word):colon], ";{}()") {
		return nil, nil
	}

	return r.chunk(ast.CategoryAccessControl, start, colon+1), nil
}

func (r *Reader) readWord() (ast.Node, error) {
	word := r.s.nextWord()
	if word == "" {
		return nil, nil
	}

	start := r.s.pos
	return r.chunk(ast.CategoryWord, start, start+len(word)), nil
}

func (r *Reader) readCommandSeparator() (ast.Node, error) {
	if r.s.peek() != ';' {
		return nil, nil
	}

	start := r.s.pos
	return r.chunk(ast.CategoryCommandSeparator, start, start+1), nil
}

// readChar is the fallback, reading exactly one byte
func (r *Reader) readChar() (ast.Node, error) {
	if r.s.atEnd() {
		return nil, nil
	}

	start := r.s.pos
	return r.chunk(ast.CategoryChar, start, start+1), nil
}

// Package formatter renders an optimized tree into declaration text and
// out-of-line definition text
package formatter

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"fastbuild/pkg/ast"
)

var (
	// DefaultStripQualifiers are trailing words that are only legal inside a class body
	DefaultStripQualifiers = []string{"override"}
	// DefaultStripSpecifiers are return-type words that are only legal inside a class body
	DefaultStripSpecifiers = []string{"virtual", "static", "explicit"}
)

// Options controls which in-class-only words definitions drop
type Options struct {
	StripQualifiers []string
	StripSpecifiers []string
}

// Formatter renders trees in declaration or definition mode
type Formatter struct {
	stripQualifiers map[string]bool
	stripSpecifiers map[string]bool
}

// New creates a formatter with the default strip lists
func New() *Formatter {
	return NewWithOptions(Options{
		StripQualifiers: DefaultStripQualifiers,
		StripSpecifiers: DefaultStripSpecifiers,
	})
}

// NewWithOptions creates a formatter with explicit strip lists
func NewWithOptions(opts Options) *Formatter {
	return &Formatter{
		stripQualifiers: toSet(opts.StripQualifiers),
		stripSpecifiers: toSet(opts.StripSpecifiers),
	}
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// RenderDeclarations renders the header form: every function body is
// replaced by `;`
func (f *Formatter) RenderDeclarations(file *ast.File) string {
	var b strings.Builder
	f.render(&b, file, ast.Path{})
	return b.String()
}

// RenderDefinitions renders every function of the tree out of line, in
// discovery order
func (f *Formatter) RenderDefinitions(file *ast.File) string {
	var b strings.Builder
	for _, ref := range ast.CollectFunctions(file) {
		b.WriteString(f.RenderDefinition(ref))
	}
	return b.String()
}

// RenderDefinition renders one function qualified by its path, e.g.
// `void N::C::f() const{...}`. Access specifier and leading modifiers are
// declaration-only and omitted.
func (f *Formatter) RenderDefinition(ref ast.FunctionRef) string {
	var b strings.Builder
	fn := ref.Func

	for _, n := range fn.ReturnType {
		if isWordIn(n, f.stripSpecifiers) {
			continue
		}
		f.render(&b, n, ref.Path)
	}
	if len(ref.Path) > 0 {
		b.WriteString(ref.Path.String())
		b.WriteString("::")
	}
	b.WriteString(fn.Name)
	f.renderNodes(&b, fn.NameTail, ref.Path)
	f.render(&b, fn.Params, ref.Path)
	for _, n := range fn.Trailing {
		// source must not have in-class-only keywords like "override"
		if isWordIn(n, f.stripQualifiers) {
			continue
		}
		f.render(&b, n, ref.Path)
	}
	b.WriteString("{")
	f.renderNodes(&b, fn.Children(), ref.Path)
	b.WriteString("}")

	return b.String()
}

// render writes n in declaration mode
func (f *Formatter) render(b *strings.Builder, n ast.Node, path ast.Path) {
	switch n := n.(type) {
	case *ast.File:
		f.renderNodes(b, n.Children(), path)
	case *ast.Namespace:
		if n.Name == "" {
			b.WriteString("namespace {")
		} else {
			b.WriteString("namespace " + n.Name + " {")
		}
		f.renderNodes(b, n.Children(), path.With(ast.PathPart(n)))
		b.WriteString("}")
	case *ast.Class:
		b.WriteString("class " + n.Name)
		if n.Spec != "" {
			b.WriteString(" " + n.Spec)
		}
		b.WriteString(" {")
		f.renderNodes(b, n.Children(), path.With(ast.PathPart(n)))
		b.WriteString("}")
	case *ast.Bracket:
		b.WriteByte(n.Open)
		f.renderNodes(b, n.Children(), path)
		b.WriteByte(n.Close())
	case *ast.Property:
		f.renderNodes(b, n.Children(), path)
	case *ast.Function:
		f.renderDeclaration(b, n, path)
	case *ast.Chunk:
		b.WriteString(n.Text)
	case *ast.ClosingBracket:
		// never part of a finished tree
	}
}

func (f *Formatter) renderNodes(b *strings.Builder, nodes []ast.Node, path ast.Path) {
	for _, n := range nodes {
		f.render(b, n, path)
	}
}

// renderDeclaration writes the function head followed by `;`. Constructors
// (name equal to the enclosing class) drop their trailing part, which holds
// the member initializer list.
func (f *Formatter) renderDeclaration(b *strings.Builder, fn *ast.Function, path ast.Path) {
	f.renderNodes(b, fn.Leading, path)
	if fn.Access != nil {
		b.WriteString(fn.Access.Text)
	}
	f.renderNodes(b, fn.ReturnType, path)
	b.WriteString(fn.Name)
	f.renderNodes(b, fn.NameTail, path)
	f.render(b, fn.Params, path)
	if !IsConstructor(fn, path) {
		f.renderNodes(b, fn.Trailing, path)
	}
	b.WriteString(";")
}

// IsConstructor reports whether fn is named like its innermost enclosing scope
func IsConstructor(fn *ast.Function, path ast.Path) bool {
	return len(path) > 0 && fn.Name == path.Last()
}

func isWordIn(n ast.Node, words map[string]bool) bool {
	c, ok := n.(*ast.Chunk)
	return ok && c.Category == ast.CategoryWord && words[c.Text]
}

// FormatWithClang formats the code using clang-format. suffix picks the
// language mode, e.g. "hpp" or "cpp".
func (f *Formatter) FormatWithClang(code, suffix string) (string, error) {
	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "fastbuild-*."+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	// Write code to temp file
	if _, err := tmpFile.WriteString(code); err != nil {
		return "", fmt.Errorf("failed to write to temp file: %w", err)
	}
	tmpFile.Close()

	// Run clang-format
	cmd := exec.Command("clang-format", tmpFile.Name())
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("clang-format failed: %w", err)
	}

	return string(output), nil
}

// Package optimizer splits class bodies into members and decomposes members
// with inline bodies into function nodes.
package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"fastbuild/pkg/ast"
	"fastbuild/pkg/parser"
)

// ErrMalformedFunction marks a function-shaped span without parameter list or name
var ErrMalformedFunction = errors.New("function read failed")

// Optimize rewrites the children of every class below root into Property
// and Function nodes. Other containers are traversed unchanged.
func Optimize(root ast.Container) error {
	if class, ok := root.(*ast.Class); ok {
		if err := splitClass(class); err != nil {
			return err
		}
	}

	for _, child := range root.Children() {
		if sub, ok := child.(ast.Container); ok {
			if err := Optimize(sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func splitClass(class *ast.Class) error {
	spans := splitSpans(class.Children())
	members := make([]ast.Node, 0, len(spans))

	for _, span := range spans {
		member, err := convert(span)
		if err != nil {
			var perr *parser.Error
			if errors.As(err, &perr) {
				perr.Msg = fmt.Sprintf("%s in %s", perr.Msg, class.Describe())
			}
			return err
		}
		members = append(members, member)
	}

	class.SetChildren(members)
	return nil
}

// splitSpans cuts a class body after every `;` and every `{ ... }` block.
// A trailing span without terminator is kept, empty spans are not.
func splitSpans(children []ast.Node) [][]ast.Node {
	var spans [][]ast.Node
	var current []ast.Node

	for _, child := range children {
		current = append(current, child)
		if ast.IsBracket(child, '{') || ast.IsChunk(child, ast.CategoryCommandSeparator) {
			spans = append(spans, current)
			current = nil
		}
	}
	if len(current) > 0 {
		spans = append(spans, current)
	}

	return spans
}

// isFunction reports whether a span ends in a body and has a parameter list
func isFunction(span []ast.Node) bool {
	if len(span) == 0 || !ast.IsBracket(span[len(span)-1], '{') {
		return false
	}
	return paramsIndex(span) >= 0
}

// paramsIndex returns the index of the first `( ... )` bracket of the span
func paramsIndex(span []ast.Node) int {
	for i, n := range span {
		if ast.IsBracket(n, '(') {
			return i
		}
	}
	return -1
}

func convert(span []ast.Node) (ast.Node, error) {
	if !isFunction(span) {
		prop := &ast.Property{Scope: ast.Scope{Start: span[0].Offset(), Nodes: span}}
		return prop, nil
	}
	return decompose(span)
}

// decompose reads a function span from the back: body, trailing
// qualifiers, parameter list, name, return type, access specifier and
// leading modifiers. The span slice itself is never modified.
func decompose(span []ast.Node) (*ast.Function, error) {
	last := len(span) - 1
	body, ok := span[last].(*ast.Bracket)
	if !ok || !body.IsBody() {
		return nil, malformed(span, "body not found")
	}

	params := paramsIndex(span[:last])
	if params < 0 {
		return nil, malformed(span, "parameter list not found")
	}

	fn := &ast.Function{
		Scope:    ast.Scope{Start: span[0].Offset(), Nodes: body.Children()},
		Params:   span[params].(*ast.Bracket),
		Trailing: clone(span[params+1 : last]),
	}

	// read until first word (function name)
	name := params - 1
	for name >= 0 && !ast.IsChunk(span[name], ast.CategoryWord) {
		name--
	}
	if name < 0 {
		return nil, malformed(span, "name not found")
	}
	if op := conversionOperator(span, name); op >= 0 {
		name = op
	}
	fn.Name = span[name].(*ast.Chunk).Text
	fn.NameTail = clone(span[name+1 : params])

	head := clone(span[:name])
	head = takeTilde(fn, head)

	// read return value back to the access specifier
	access := len(head) - 1
	for access >= 0 && !ast.IsChunk(head[access], ast.CategoryAccessControl) {
		access--
	}
	if access >= 0 {
		fn.Leading = head[:access]
		fn.Access = head[access].(*ast.Chunk)
		fn.ReturnType = head[access+1:]
	} else {
		fn.ReturnType = head
	}

	return fn, nil
}

// conversionOperator returns the index of an `operator` keyword that the
// type words before the parameter list belong to (operator bool), or -1
func conversionOperator(span []ast.Node, name int) int {
	for i := name - 1; i >= 0; i-- {
		c, ok := span[i].(*ast.Chunk)
		if !ok {
			return -1
		}
		switch c.Category {
		case ast.CategoryWord:
			if c.Text == "operator" {
				return i
			}
		case ast.CategoryChar:
		default:
			return -1
		}
	}
	return -1
}

// takeTilde moves a `~` directly before the name into the name, so that
// destructors qualify as N::C::~C
func takeTilde(fn *ast.Function, head []ast.Node) []ast.Node {
	if len(head) == 0 {
		return head
	}
	prev, ok := head[len(head)-1].(*ast.Chunk)
	if !ok || prev.Category != ast.CategoryChar || !strings.HasSuffix(prev.Text, "~") {
		return head
	}

	fn.Name = "~" + fn.Name
	head = head[:len(head)-1]
	if rest := strings.TrimSuffix(prev.Text, "~"); rest != "" {
		head = append(head, ast.NewChunk(ast.CategoryChar, rest, prev.Start))
	}
	return head
}

func clone(nodes []ast.Node) []ast.Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]ast.Node, len(nodes))
	copy(out, nodes)
	return out
}

func malformed(span []ast.Node, msg string) error {
	offset := 0
	if len(span) > 0 {
		offset = span[0].Offset()
	}
	return &parser.Error{
		Phase:  "optimizer",
		Offset: offset,
		Msg:    "function read failed - " + msg,
		Err:    ErrMalformedFunction,
	}
}

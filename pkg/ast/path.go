package ast

import (
	"strings"

	"fastbuild/pkg/utils"
)

// Path is the sequence of enclosing namespace and class names, outermost first
type Path []string

// With returns a new path extended by part. The receiver is never modified,
// so sibling subtrees cannot observe each other's scopes.
func (p Path) With(part string) Path {
	if part == "" {
		return p
	}
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, part)
}

// Last returns the innermost name or "" for the global scope
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// String joins the path with `::`
func (p Path) String() string {
	return strings.Join(p, "::")
}

// PathPart returns the scope name a node contributes to the path of its children
func PathPart(n Node) string {
	switch n := n.(type) {
	case *Namespace:
		return n.Name
	case *Class:
		return ScopeName(n.Name)
	}
	return ""
}

// ScopeName extracts the name used for qualification from a class header
// name part: export macros before the name and a trailing `final` are dropped.
func ScopeName(header string) string {
	fields := strings.Fields(header)
	if len(fields) > 1 && fields[len(fields)-1] == "final" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// FunctionRef is a collected function together with its enclosing path
type FunctionRef struct {
	Func *Function
	Path Path
}

// QualifiedName returns the function name prefixed by its path
func (r FunctionRef) QualifiedName() string {
	if len(r.Path) == 0 {
		return r.Func.Name
	}
	return r.Path.String() + "::" + r.Func.Name
}

// CollectFunctions returns every function below root in discovery order
func CollectFunctions(root Container) []FunctionRef {
	var refs []FunctionRef
	collectFunctions(root, Path{}.With(PathPart(root)), &refs)
	return refs
}

func collectFunctions(c Container, path Path, refs *[]FunctionRef) {
	for _, child := range c.Children() {
		if fn, ok := child.(*Function); ok {
			*refs = append(*refs, FunctionRef{Func: fn, Path: path})
		}
		if sub, ok := child.(Container); ok {
			collectFunctions(sub, path.With(PathPart(child)), refs)
		}
	}
}

// FindFunction looks up a function by its qualified name (N::C::f).
// Leading `::` is ignored. It returns false when nothing matches.
func FindFunction(root Container, qualified string) (FunctionRef, bool) {
	want := utils.JoinPath(utils.SplitPath(qualified))
	for _, ref := range CollectFunctions(root) {
		if ref.QualifiedName() == want {
			return ref, true
		}
	}
	return FunctionRef{}, false
}

// Walk calls fn for every node below root in pre-order with its depth.
// Returning false from fn skips the node's children.
func Walk(root Container, fn func(n Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(c Container, depth int, fn func(n Node, depth int) bool) {
	for _, child := range c.Children() {
		if !fn(child, depth) {
			continue
		}
		if sub, ok := child.(Container); ok {
			walk(sub, depth+1, fn)
		}
	}
}

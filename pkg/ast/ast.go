// Package ast defines the node tree built by the fastbuild parser.
//
// The tree is a closed set of node types: leaf chunks of classified text and
// containers (file, namespace, class, bracket, property, function) that own an
// ordered list of children. Source order is significant everywhere.
package ast

import (
	"errors"
	"fmt"

	"fastbuild/pkg/utils"
)

// ErrEmptyBracket is returned when a bracket node is built from an empty token
var ErrEmptyBracket = errors.New("got zero sized bracket")

// Kind identifies the concrete type of a node
type Kind int

const (
	KindFile Kind = iota
	KindNamespace
	KindClass
	KindBracket
	KindProperty
	KindFunction
	KindChunk
	KindClosingBracket
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindBracket:
		return "bracket"
	case KindProperty:
		return "property"
	case KindFunction:
		return "function"
	case KindChunk:
		return "chunk"
	case KindClosingBracket:
		return "closing-bracket"
	default:
		return "unknown"
	}
}

// Category classifies the text of a leaf chunk
type Category int

const (
	CategoryMultilineComment Category = iota
	CategorySinglelineComment
	CategoryString
	CategoryPreprocessor
	CategoryWord
	CategoryAccessControl
	CategoryCommandSeparator
	CategoryChar
)

func (c Category) String() string {
	switch c {
	case CategoryMultilineComment:
		return "multiline-comment"
	case CategorySinglelineComment:
		return "singleline-comment"
	case CategoryString:
		return "string"
	case CategoryPreprocessor:
		return "preprocessor"
	case CategoryWord:
		return "word"
	case CategoryAccessControl:
		return "accessControl"
	case CategoryCommandSeparator:
		return "commandSeparator"
	case CategoryChar:
		return "char"
	default:
		return "unknown"
	}
}

// Node is implemented by every element of the tree
type Node interface {
	Kind() Kind
	// Offset is the byte offset in the source where the node starts
	Offset() int
	// Describe returns a one-line human readable description
	Describe() string
	node()
}

// Container is a node owning an ordered list of children
type Container interface {
	Node
	Children() []Node
	SetChildren(children []Node)
	Append(child Node)
}

// Scope carries the child list shared by all containers
type Scope struct {
	Start int
	Nodes []Node
}

func (s *Scope) Offset() int { return s.Start }

// Children returns the children in source order
func (s *Scope) Children() []Node { return s.Nodes }

// SetChildren replaces the child list
func (s *Scope) SetChildren(children []Node) { s.Nodes = children }

// Append adds a child at the end
func (s *Scope) Append(child Node) { s.Nodes = append(s.Nodes, child) }

func (s *Scope) node() {}

// File is the root container of one compilation unit
type File struct {
	Scope
	Name string
}

// NewFile creates an empty file root
func NewFile(name string) *File {
	return &File{Name: name}
}

func (f *File) Kind() Kind       { return KindFile }
func (f *File) Describe() string { return "file" }

// Namespace is a `namespace name { ... }` body
type Namespace struct {
	Scope
	Name string
}

func (n *Namespace) Kind() Kind       { return KindNamespace }
func (n *Namespace) Describe() string { return "namespace " + n.Name }

// Class is a `class name : spec { ... }` body
type Class struct {
	Scope
	Name string
	Spec string // inheritance clause including the leading colon, may be empty
}

func (c *Class) Kind() Kind { return KindClass }

func (c *Class) Describe() string {
	desc := "class " + c.Name
	if c.Spec != "" {
		desc += " | Properties: " + utils.Preview(c.Spec)
	}
	return desc
}

// Bracket is a generic container delimited by (), [] or {}
type Bracket struct {
	Scope
	Open byte
}

// NewBracket creates a bracket container from its opening token
func NewBracket(open string, offset int) (*Bracket, error) {
	if len(open) == 0 {
		return nil, ErrEmptyBracket
	}
	if closingFor(open[0]) == 0 {
		return nil, fmt.Errorf("not an opening bracket: %q", open)
	}
	return &Bracket{Scope: Scope{Start: offset}, Open: open[0]}, nil
}

// Close returns the lexical partner of the opening character
func (b *Bracket) Close() byte { return closingFor(b.Open) }

func (b *Bracket) Kind() Kind { return KindBracket }

func (b *Bracket) Describe() string {
	return fmt.Sprintf("bracket: %c ... %c", b.Open, b.Close())
}

// IsBody reports whether b is a `{ ... }` block
func (b *Bracket) IsBody() bool { return b.Open == '{' }

// IsParams reports whether b is a `( ... )` list
func (b *Bracket) IsParams() bool { return b.Open == '(' }

func closingFor(open byte) byte {
	switch open {
	case '{':
		return '}'
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return 0
}

// Property wraps one non-function class member verbatim
type Property struct {
	Scope
}

func (p *Property) Kind() Kind       { return KindProperty }
func (p *Property) Describe() string { return "property" }

// Function is a class member with an inline body. Children holds the
// contents of the body without its braces.
type Function struct {
	Scope
	Leading    []Node   // anything before the access specifier, e.g. template headers
	Access     *Chunk   // access specifier marker, nil when absent
	ReturnType []Node   // everything between the access specifier and the name
	Name       string   // name word, `~` included for destructors
	NameTail   []Node   // text between the name and the parameter list (operator symbols)
	Params     *Bracket // the parameter list
	Trailing   []Node   // everything between `)` and `{`, e.g. const, override, initializers
}

func (f *Function) Kind() Kind       { return KindFunction }
func (f *Function) Describe() string { return "function " + f.Name }

// Chunk is a leaf of classified source text
type Chunk struct {
	Category Category
	Text     string
	Start    int
}

// NewChunk creates a leaf chunk
func NewChunk(category Category, text string, offset int) *Chunk {
	return &Chunk{Category: category, Text: text, Start: offset}
}

func (c *Chunk) Kind() Kind  { return KindChunk }
func (c *Chunk) Offset() int { return c.Start }
func (c *Chunk) node()       {}

func (c *Chunk) Describe() string {
	return fmt.Sprintf("%s [%d] : %s", c.Category, len(c.Text), utils.Preview(c.Text))
}

// Merge appends other's text when both chunks are char chunks.
// It returns false and leaves c untouched otherwise.
func (c *Chunk) Merge(other Node) bool {
	o, ok := other.(*Chunk)
	if !ok || c.Category != CategoryChar || o.Category != CategoryChar {
		return false
	}
	c.Text += o.Text
	return true
}

// ClosingBracket signals the end of the innermost open container.
// It only exists in the reader's output and is never stored in a tree.
type ClosingBracket struct {
	Char  byte
	Start int
}

func (c *ClosingBracket) Kind() Kind       { return KindClosingBracket }
func (c *ClosingBracket) Offset() int      { return c.Start }
func (c *ClosingBracket) Describe() string { return fmt.Sprintf("Closing bracket: %c", c.Char) }
func (c *ClosingBracket) node()            {}

// IsOpener reports whether n opens a new container on the parser stack
func IsOpener(n Node) bool {
	switch n.(type) {
	case *Bracket, *Namespace, *Class:
		return true
	}
	return false
}

// ClosingChar returns the character that closes an opener
func ClosingChar(n Node) byte {
	switch n := n.(type) {
	case *Bracket:
		return n.Close()
	case *Namespace, *Class:
		return '}'
	}
	return 0
}

// IsChunk reports whether n is a chunk of the given category
func IsChunk(n Node, category Category) bool {
	c, ok := n.(*Chunk)
	return ok && c.Category == category
}

// IsBracket reports whether n is a bracket opened by open
func IsBracket(n Node, open byte) bool {
	b, ok := n.(*Bracket)
	return ok && b.Open == open
}

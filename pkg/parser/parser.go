// Package parser implements a from-scratch structural parser for C++
// compilation units. The Reader classifies raw text into nodes, the Parser
// assembles them into a tree with an explicit stack of open containers.
package parser

import (
	"errors"
	"fmt"
	"io"

	"fastbuild/pkg/ast"
)

// Parser builds the node tree of one compilation unit. A Parser holds no
// state between calls to Parse.
type Parser struct {
	reader *Reader
	stack  []ast.Container
	pushes int
	pops   int
}

// New creates a new parser instance
func New() *Parser {
	return &Parser{}
}

// Parse reads content into a tree rooted at a file node. The result is
// neither grouped nor optimized.
func (p *Parser) Parse(filename, content string) (*ast.File, error) {
	root := ast.NewFile(filename)
	p.reader = NewReader(content)
	p.stack = []ast.Container{root}
	p.pushes, p.pops = 0, 0

	for {
		n, err := p.reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Locate(err, filename, content)
		}
		if err := p.accept(n); err != nil {
			return nil, Locate(err, filename, content)
		}
	}

	if len(p.stack) > 1 {
		open := p.stack[len(p.stack)-1]
		err := &Error{
			Phase:  "parser",
			Offset: open.Offset(),
			Msg:    fmt.Sprintf("%s is never closed", open.Describe()),
			Err:    ErrUnbalanced,
		}
		return nil, Locate(err, filename, content)
	}

	return root, nil
}

// Balance returns how many containers the last Parse pushed and popped
func (p *Parser) Balance() (pushes, pops int) {
	return p.pushes, p.pops
}

// accept places one reader node into the tree
func (p *Parser) accept(n ast.Node) error {
	if closing, ok := n.(*ast.ClosingBracket); ok {
		return p.pop(closing)
	}

	p.top().Append(n)
	if ast.IsOpener(n) {
		p.stack = append(p.stack, n.(ast.Container))
		p.pushes++
	}
	return nil
}

func (p *Parser) pop(closing *ast.ClosingBracket) error {
	if len(p.stack) <= 1 {
		return &Error{
			Phase:  "parser",
			Offset: closing.Start,
			Msg:    fmt.Sprintf("unexpected %q without open container", closing.Char),
			Err:    ErrUnbalanced,
		}
	}

	top := p.top()
	if want := ast.ClosingChar(top); want != closing.Char {
		return &Error{
			Phase:  "parser",
			Offset: closing.Start,
			Msg:    fmt.Sprintf("expected %q to close %s, found %q", want, top.Describe(), closing.Char),
			Err:    ErrUnbalanced,
		}
	}

	p.stack = p.stack[:len(p.stack)-1]
	p.pops++
	return nil
}

func (p *Parser) top() ast.Container {
	return p.stack[len(p.stack)-1]
}

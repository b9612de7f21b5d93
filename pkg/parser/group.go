package parser

import (
	"fastbuild/pkg/ast"
)

// GroupChars merges runs of adjacent char chunks into one chunk, bottom-up
// through every container. Running it twice yields the same tree.
func GroupChars(c ast.Container) {
	children := c.Children()
	grouped := make([]ast.Node, 0, len(children))

	for _, child := range children {
		if sub, ok := child.(ast.Container); ok {
			GroupChars(sub)
		}

		if len(grouped) > 0 {
			if prev, ok := grouped[len(grouped)-1].(*ast.Chunk); ok && prev.Merge(child) {
				continue
			}
		}
		grouped = append(grouped, child)
	}

	c.SetChildren(grouped)
}

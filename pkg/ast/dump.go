package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one description line per node, indented by depth and
// numbered within its parent, e.g. `  (2) word [4] : void`.
func Dump(w io.Writer, root Container) error {
	return dump(w, root, 0)
}

func dump(w io.Writer, c Container, indent int) error {
	for i, child := range c.Children() {
		if _, err := fmt.Fprintf(w, "%s(%d) %s\n", strings.Repeat("  ", indent), i+1, child.Describe()); err != nil {
			return err
		}
		if sub, ok := child.(Container); ok {
			if err := dump(w, sub, indent+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// DumpNode is the JSON shape of a node
type DumpNode struct {
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	Offset      int        `json:"offset"`
	Children    []DumpNode `json:"children,omitempty"`
}

// ToDump converts a tree into its JSON shape
func ToDump(n Node) DumpNode {
	d := DumpNode{
		Kind:        n.Kind().String(),
		Description: n.Describe(),
		Offset:      n.Offset(),
	}
	if c, ok := n.(Container); ok {
		for _, child := range c.Children() {
			d.Children = append(d.Children, ToDump(child))
		}
	}
	return d
}

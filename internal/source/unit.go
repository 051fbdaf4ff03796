// Package source wraps the Tree-sitter TSX grammar behind the small surface
// the compiler needs: parse a unit, resolve a relative import, look up a
// declared type. Files are read through a billy.Filesystem so tests can run
// against an in-memory tree.
package source

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Unit is one parsed authoring source file.
type Unit struct {
	Path string
	Src  []byte

	tree *sitter.Tree
}

// Root returns the program node of the parsed tree.
func (u *Unit) Root() *sitter.Node {
	return u.tree.RootNode()
}

// Text returns the source text covered by n.
func (u *Unit) Text(n *sitter.Node) string {
	return n.Content(u.Src)
}

// Pos returns the 1-indexed position of n within this unit.
func (u *Unit) Pos(n *sitter.Node) Pos {
	p := n.StartPoint()
	return Pos{Path: u.Path, Line: p.Row + 1, Column: p.Column + 1}
}

// Pos is a source location. Line and Column are 1-indexed; the zero value
// means "unknown".
type Pos struct {
	Path   string
	Line   uint32
	Column uint32
}

func (p Pos) String() string {
	if p.Path == "" && p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Column)
}

// IsZero reports whether the position is unset.
func (p Pos) IsZero() bool {
	return p == Pos{}
}

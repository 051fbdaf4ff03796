package emit

import (
	"fmt"

	"github.com/agentic-research/promptc/internal/ir"
)

// inlines concatenates inline nodes. Text nodes arrive trimmed, so a
// single space is inserted between neighbors unless one side already
// supplies the boundary (whitespace, an open bracket, or leading
// punctuation on the right).
func inlines(ns []ir.Inline) string {
	var out string
	for _, n := range ns {
		chunk := inline(n)
		if chunk == "" {
			continue
		}
		if out != "" && needsSpace(out, chunk) {
			out += " "
		}
		out += chunk
	}
	return out
}

func inline(n ir.Inline) string {
	switch v := n.(type) {
	case *ir.Text:
		return v.Text
	case *ir.Bold:
		return "**" + inlines(v.Children) + "**"
	case *ir.Italic:
		return "*" + inlines(v.Children) + "*"
	case *ir.InlineCode:
		return "`" + v.Text + "`"
	case *ir.LineBreak:
		return "\\\n"
	case *ir.Link:
		return "[" + inlines(v.Children) + "](" + v.URL + ")"
	case *ir.VarRef:
		return v.Accessor()
	case *ir.FuncRef:
		return "{" + v.Name + "()}"
	default:
		panic(fmt.Sprintf("emit: unreachable inline kind %s", n.Kind()))
	}
}

func needsSpace(left, right string) bool {
	l := left[len(left)-1]
	switch l {
	case ' ', '\n', '\t', '(', '[':
		return false
	}
	switch right[0] {
	case '.', ',', ';', ':', '!', '?', ')', ']', ' ', '\n':
		return false
	}
	return true
}

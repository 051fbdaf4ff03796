// Package emit serializes the ir document model to Markdown text. The walk
// is depth-first; blocks are separated by exactly one blank line and no
// block renders a trailing blank line of its own. Kind switches are
// exhaustive: an unknown kind reaching the emitter means the transformer
// and the model disagree, which is a fatal internal inconsistency.
package emit

import (
	"fmt"
	"strings"

	"github.com/agentic-research/promptc/internal/ir"
)

// Emit renders the document: frontmatter fence first when present, then
// the body, ending in exactly one newline.
func Emit(doc *ir.Document) string {
	var sb strings.Builder
	if doc.Matter != nil {
		sb.WriteString(frontmatter(doc.Matter))
		if len(doc.Body) > 0 {
			sb.WriteString("\n")
		}
	}
	if body := blocks(doc.Body); body != "" {
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	return sb.String()
}

func blocks(bs []ir.Block) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		parts = append(parts, block(b))
	}
	return strings.Join(parts, "\n\n")
}

func block(b ir.Block) string {
	switch n := b.(type) {
	case *ir.Heading:
		return strings.Repeat("#", n.Level) + " " + inlines(n.Children)
	case *ir.Paragraph:
		return inlines(n.Children)
	case *ir.List:
		return list(n)
	case *ir.Blockquote:
		return prefixLines(blocks(n.Children), "> ", ">")
	case *ir.CodeBlock:
		return codeBlock(n)
	case *ir.ThematicBreak:
		return "---"
	case *ir.XMLBlock:
		return xmlBlock(n)
	case *ir.Raw:
		return n.Text
	case *ir.Conditional:
		return conditional(n)
	case *ir.Loop:
		return loop(n)
	case *ir.Break:
		return statusLine("Break", n.Status, n.Message)
	case *ir.Return:
		return statusLine("Return", n.Status, n.Message)
	case *ir.AskUser:
		return askUser(n)
	case *ir.SpawnAgent:
		return spawnAgent(n)
	case *ir.ReadFile:
		return readFile(n)
	case *ir.Table:
		return table(n)
	default:
		panic(fmt.Sprintf("emit: unreachable block kind %s", b.Kind()))
	}
}

// list renders items joined by single newlines. Ordered counters restart
// at 1 per list. The first block of an item carries the marker; every
// further line indents by the marker's column width (two columns for
// unordered markers).
func list(l *ir.List) string {
	var items []string
	for idx, item := range l.Items {
		marker := "- "
		if l.Ordered {
			marker = fmt.Sprintf("%d. ", idx+1)
		}
		indent := strings.Repeat(" ", len(marker))

		var sb strings.Builder
		for bi, b := range item.Children {
			rendered := block(b)
			if bi == 0 {
				sb.WriteString(marker)
				sb.WriteString(indentContinuation(rendered, indent))
				continue
			}
			if _, nested := b.(*ir.List); nested {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
			sb.WriteString(prefixLines(rendered, indent, ""))
		}
		items = append(items, sb.String())
	}
	return strings.Join(items, "\n")
}

// indentContinuation indents every line after the first.
func indentContinuation(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// prefixLines prefixes every line; blank lines get the trimmed prefix so
// no line carries trailing whitespace.
func prefixLines(s, prefix, blankPrefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = blankPrefix
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func codeBlock(n *ir.CodeBlock) string {
	var sb strings.Builder
	sb.WriteString("```")
	sb.WriteString(n.Lang)
	sb.WriteString("\n")
	if n.Content != "" {
		sb.WriteString(n.Content)
		if !strings.HasSuffix(n.Content, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("```")
	return sb.String()
}

func xmlBlock(n *ir.XMLBlock) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(n.Tag)
	for _, attr := range n.Attrs {
		fmt.Fprintf(&sb, " %s=%q", attr.Key, attr.Value)
	}
	sb.WriteString(">")
	if inner := blocks(n.Children); inner != "" {
		sb.WriteString("\n")
		sb.WriteString(inner)
		sb.WriteString("\n")
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteString(">")
	return sb.String()
}

func table(n *ir.Table) string {
	var sb strings.Builder
	row := func(cells []string) {
		sb.WriteString("|")
		for _, c := range cells {
			sb.WriteString(" ")
			sb.WriteString(c)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	row(n.Header)
	seps := make([]string, len(n.Header))
	for i := range seps {
		seps[i] = "---"
	}
	row(seps)
	for _, r := range n.Rows {
		row(r)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

package transform

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/ir"
	"github.com/agentic-research/promptc/internal/source"
)

func (t *Transformer) heading(n *sitter.Node, level int, sc *scope) (ir.Block, error) {
	children, err := t.transformInlines(wrapItems(elementChildren(n), sc))
	if err != nil {
		return nil, err
	}
	return &ir.Heading{Level: level, Children: children}, nil
}

// list requires every element child to be <li>; anything else is a hard
// error. Nested lists inside an item land as additional item children
// after the leading paragraph, which is what makes multi-level lists work.
func (t *Transformer) list(n *sitter.Node, ordered bool, sc *scope) (ir.Block, error) {
	out := &ir.List{Ordered: ordered}
	for _, child := range elementChildren(n) {
		switch child.Type() {
		case "jsx_text":
			if NormalizeText(sc.unit.Text(child)) != "" {
				return nil, diag.Newf(diag.CodeUnsupportedElement, sc.unit.Pos(child),
					"loose text inside a list; wrap it in <li>")
			}
		case "jsx_expression":
			if inner := innerExpression(child); inner != nil && inner.Type() != "comment" {
				return nil, diag.Newf(diag.CodeUnsupportedElement, sc.unit.Pos(child),
					"expression inside a list; every list child must be <li>")
			}
		case "jsx_element", "jsx_self_closing_element":
			tag := t.tagName(child, sc)
			if tag != "li" {
				return nil, diag.Newf(diag.CodeUnsupportedElement, sc.unit.Pos(child),
					"<%s> inside a list; every list child must be <li>", tag)
			}
			blocks, err := t.transformBlocks(elementChildren(child), sc)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, &ir.ListItem{Children: blocks})
		}
	}
	return out, nil
}

// codeBlock handles <pre>, with or without a nested <code>. The language
// comes from a className="language-xx" attribute on either element; content
// is taken verbatim, no normalization and no placeholder rewriting.
func (t *Transformer) codeBlock(n *sitter.Node, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(n, "pre", sc)
	if err != nil {
		return nil, err
	}
	lang, _, err := t.classLanguage(attrs)
	if err != nil {
		return nil, err
	}

	content := n
	for _, child := range elementChildren(n) {
		if isJSX(child) && t.tagName(child, sc) == "code" {
			content = child
			if lang == "" {
				inner, err := t.collectAttrs(child, "code", sc)
				if err != nil {
					return nil, err
				}
				lang, _, err = t.classLanguage(inner)
				if err != nil {
					return nil, err
				}
			}
			break
		}
	}
	return &ir.CodeBlock{Lang: lang, Content: trimCodeContent(t.rawContent(content, sc))}, nil
}

func (t *Transformer) classLanguage(a *attrs) (string, bool, error) {
	for _, key := range []string{"className", "class", "lang"} {
		val, ok, err := a.str(t, key)
		if err != nil {
			return "", true, err
		}
		if ok {
			return strings.TrimPrefix(val, "language-"), true, nil
		}
	}
	return "", false, nil
}

// namedBlock compiles the generic container into an XML block. The name
// attribute must be a legal identifier; without one the emitted tag falls
// back to the element's own tag name.
func (t *Transformer) namedBlock(n *sitter.Node, tag string, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(n, tag, sc)
	if err != nil {
		return nil, err
	}
	name, ok, err := attrs.str(t, "name")
	if err != nil {
		return nil, err
	}
	if !ok {
		name = strings.ToLower(tag)
	}
	if err := validateTagName(name, attrs.pos); err != nil {
		return nil, err
	}
	extra, err := attrs.rest(t, map[string]bool{"name": true})
	if err != nil {
		return nil, err
	}
	children, err := t.transformBlocks(elementChildren(n), sc)
	if err != nil {
		return nil, err
	}
	return &ir.XMLBlock{Tag: name, Attrs: extra, Children: children}, nil
}

// validateTagName enforces identifier rules for emitted XML tags: no
// leading digit, no reserved xml prefix, no whitespace, word characters
// plus hyphen only.
func validateTagName(name string, pos source.Pos) error {
	if name == "" {
		return diag.New(diag.CodeInvalidIdentifier, pos, "empty block name")
	}
	if name[0] >= '0' && name[0] <= '9' {
		return diag.Newf(diag.CodeInvalidIdentifier, pos, "block name %q starts with a digit", name)
	}
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		return diag.Newf(diag.CodeInvalidIdentifier, pos, "block name %q uses the reserved xml prefix", name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return diag.Newf(diag.CodeInvalidIdentifier, pos, "block name %q contains %q", name, r)
		}
	}
	return nil
}

// rawBlock compiles the Markdown passthrough element: literal text, outer
// whitespace trimmed, interior blank lines kept.
func (t *Transformer) rawBlock(n *sitter.Node, sc *scope) (ir.Block, error) {
	return &ir.Raw{Text: trimRawBlock(t.rawContent(n, sc))}, nil
}

// table compiles <Table headers={[...]} rows={[[...], ...]} />.
func (t *Transformer) table(n *sitter.Node, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(n, "Table", sc)
	if err != nil {
		return nil, err
	}
	header, ok, err := attrs.list(t, "headers")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, diag.New(diag.CodeMissingAttribute, attrs.pos,
			`missing required prop "headers" on <Table>`)
	}

	rowsNode, rowsScope := attrs.valueNode("rows")
	if rowsNode == nil {
		return nil, diag.New(diag.CodeMissingAttribute, attrs.pos,
			`missing required prop "rows" on <Table>`)
	}
	if rowsNode.Type() != "array" {
		return nil, diag.Newf(diag.CodeUnresolvableRef, attrs.pos,
			"rows must be an array of arrays, got %s", rowsNode.Type())
	}

	tbl := &ir.Table{Header: header}
	count := int(rowsNode.NamedChildCount())
	for i := 0; i < count; i++ {
		rowNode := rowsNode.NamedChild(i)
		if rowNode.Type() != "array" {
			return nil, diag.Newf(diag.CodeUnresolvableRef, rowsScope.unit.Pos(rowNode),
				"each table row must be an array, got %s", rowNode.Type())
		}
		var row []string
		cc := int(rowNode.NamedChildCount())
		for j := 0; j < cc; j++ {
			cell, err := t.literalText(rowNode.NamedChild(j), rowsScope)
			if err != nil {
				return nil, err
			}
			row = append(row, cell)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

// rawContent concatenates an element's literal content without any
// normalization: text children as written, string and template expression
// children as their literal value with substitutions left verbatim.
func (t *Transformer) rawContent(n *sitter.Node, sc *scope) string {
	u := sc.unit
	var sb strings.Builder
	for _, child := range elementChildren(n) {
		switch child.Type() {
		case "jsx_text":
			sb.WriteString(u.Text(child))
		case "jsx_expression":
			inner := innerExpression(child)
			if inner == nil {
				continue
			}
			switch inner.Type() {
			case "string":
				sb.WriteString(unquoteJS(u.Text(inner)))
			case "template_string":
				raw := u.Text(inner)
				sb.WriteString(strings.TrimSuffix(strings.TrimPrefix(raw, "`"), "`"))
			default:
				sb.WriteString(u.Text(inner))
			}
		}
	}
	return sb.String()
}

// trimCodeContent drops the cosmetic newline after the opening delimiter
// and the indentation of the closing one; everything between is preserved
// byte-for-byte.
func trimCodeContent(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimRight(s, " \t")
	return strings.TrimSuffix(s, "\n")
}

package transform

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/ir"
	"github.com/agentic-research/promptc/internal/source"
)

// transformInlines walks nodes in inline context. Each text node is
// whitespace-normalized on its own; runs are never merged across sibling
// elements, so formatting boundaries survive.
func (t *Transformer) transformInlines(items []inlineItem) ([]ir.Inline, error) {
	var out []ir.Inline
	for _, it := range items {
		n, sc := it.node, it.sc
		switch n.Type() {
		case "jsx_text":
			if text := NormalizeText(sc.unit.Text(n)); text != "" {
				out = append(out, &ir.Text{Text: text})
			}
		case "jsx_expression":
			inl, err := t.inlineExpression(n, sc)
			if err != nil {
				return nil, err
			}
			if inl != nil {
				out = append(out, inl)
			}
		case "jsx_element", "jsx_self_closing_element":
			inl, err := t.inlineElement(n, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, inl)
		}
	}
	return out, nil
}

func (t *Transformer) inlineElement(n *sitter.Node, sc *scope) (ir.Inline, error) {
	tag := t.tagName(n, sc)
	pos := sc.unit.Pos(n)

	switch tag {
	case "b", "strong":
		children, err := t.transformInlines(wrapItems(elementChildren(n), sc))
		if err != nil {
			return nil, err
		}
		return &ir.Bold{Children: children}, nil
	case "i", "em":
		children, err := t.transformInlines(wrapItems(elementChildren(n), sc))
		if err != nil {
			return nil, err
		}
		return &ir.Italic{Children: children}, nil
	case "code":
		return &ir.InlineCode{Text: t.rawContent(n, sc)}, nil
	case "br":
		return &ir.LineBreak{}, nil
	case "a":
		attrs, err := t.collectAttrs(n, tag, sc)
		if err != nil {
			return nil, err
		}
		url, err := attrs.require(t, "href")
		if err != nil {
			return nil, err
		}
		children, err := t.transformInlines(wrapItems(elementChildren(n), sc))
		if err != nil {
			return nil, err
		}
		return &ir.Link{URL: url, Children: children}, nil
	default:
		if t.reg.Known(tag) {
			return nil, diag.Newf(diag.CodeUnsupportedElement, pos,
				"block-level element <%s> is not allowed in inline context", tag)
		}
		return nil, diag.Newf(diag.CodeUnsupportedElement, pos,
			"unknown inline element <%s>", tag)
	}
}

// inlineExpression compiles one {expr} in inline context. Script variables
// become accessor references; props substitute their literal value;
// declared functions become callable references; anything else falls back
// to a {name} placeholder for the downstream interpreter.
func (t *Transformer) inlineExpression(n *sitter.Node, sc *scope) (ir.Inline, error) {
	inner := innerExpression(n)
	if inner == nil {
		return nil, nil
	}
	u := sc.unit

	switch inner.Type() {
	case "string":
		return &ir.Text{Text: NormalizeText(unquoteJS(u.Text(inner)))}, nil
	case "template_string":
		flat, err := t.flattenTemplate(inner, sc)
		if err != nil {
			return nil, err
		}
		return &ir.Text{Text: NormalizeText(flat)}, nil
	case "number", "true", "false":
		return &ir.Text{Text: u.Text(inner)}, nil
	case "identifier":
		name := u.Text(inner)
		if sc.isProp(name) {
			val, ok := sc.props[name]
			if !ok {
				return nil, diag.Newf(diag.CodeMissingAttribute, u.Pos(inner),
					"prop %q was not supplied at the call site", name)
			}
			return &ir.Text{Text: NormalizeText(val)}, nil
		}
		if t.binder.IsDeclared(name) {
			ref := ir.VarRef{Name: name}
			t.binder.Touch(ref)
			return &ref, nil
		}
		if source.FindComponent(u, name) != nil {
			return &ir.FuncRef{Name: name}, nil
		}
		return &ir.Text{Text: "{" + name + "}"}, nil
	case "member_expression":
		return t.memberInline(inner, sc)
	default:
		return &ir.Text{Text: "{" + u.Text(inner) + "}"}, nil
	}
}

// memberInline compiles a dotted access. A chain rooted at a script
// variable builds its reference with one Dot per traversed segment.
func (t *Transformer) memberInline(expr *sitter.Node, sc *scope) (ir.Inline, error) {
	u := sc.unit
	root, segments, ok := memberPath(expr, u)
	if !ok {
		return &ir.Text{Text: "{" + u.Text(expr) + "}"}, nil
	}

	if t.binder.IsDeclared(root) {
		ref := ir.VarRef{Name: root}
		for _, seg := range segments {
			ref = ref.Dot(seg)
		}
		t.binder.Touch(ref)
		return &ref, nil
	}
	if sc.param != "" && root == sc.param && len(segments) == 1 {
		name := segments[0]
		val, ok := sc.props[name]
		if !ok {
			return nil, diag.Newf(diag.CodeMissingAttribute, u.Pos(expr),
				"prop %q was not supplied at the call site", name)
		}
		return &ir.Text{Text: NormalizeText(val)}, nil
	}
	return &ir.Text{Text: "{" + u.Text(expr) + "}"}, nil
}

// memberPath flattens a member_expression chain into its root identifier
// and the ordered property segments. ok is false for computed or
// non-identifier roots.
func memberPath(expr *sitter.Node, u *source.Unit) (root string, segments []string, ok bool) {
	var segs []string
	n := expr
	for n.Type() == "member_expression" {
		prop := n.ChildByFieldName("property")
		if prop == nil {
			return "", nil, false
		}
		segs = append([]string{u.Text(prop)}, segs...)
		obj := n.ChildByFieldName("object")
		if obj == nil {
			return "", nil, false
		}
		n = obj
	}
	if n.Type() != "identifier" {
		return "", nil, false
	}
	return u.Text(n), segs, true
}

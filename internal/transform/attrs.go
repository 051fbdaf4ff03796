package transform

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/ir"
	"github.com/agentic-research/promptc/internal/source"
)

// attrEntry is one attribute value awaiting evaluation. A nil node is a
// bare attribute (truthy). The scope is kept per entry because spread
// sources may come from a different binding context than the element.
type attrEntry struct {
	node *sitter.Node
	sc   *scope
}

// attrs holds an element's attributes after spread merging, in first-seen
// declaration order with later values overriding earlier ones.
type attrs struct {
	keys []string
	vals map[string]attrEntry

	tag string
	pos source.Pos
}

// collectAttrs gathers explicit attributes and {...spread} expressions from
// the element's opening tag, merging left to right. A spread source must be
// a plain object literal bound under a simple identifier in the same unit;
// anything else is malformed.
func (t *Transformer) collectAttrs(elem *sitter.Node, tag string, sc *scope) (*attrs, error) {
	open := openTag(elem)
	a := &attrs{
		vals: make(map[string]attrEntry),
		tag:  tag,
		pos:  sc.unit.Pos(elem),
	}

	count := int(open.NamedChildCount())
	for i := 0; i < count; i++ {
		child := open.NamedChild(i)
		switch child.Type() {
		case "jsx_attribute":
			if child.NamedChildCount() == 0 {
				continue
			}
			key := sc.unit.Text(child.NamedChild(0))
			var value *sitter.Node
			if child.NamedChildCount() > 1 {
				value = child.NamedChild(1)
			}
			a.put(key, attrEntry{node: value, sc: sc})
		case "jsx_expression":
			inner := innerExpression(child)
			if inner == nil || inner.Type() != "spread_element" {
				continue
			}
			if err := t.mergeSpread(a, inner, sc); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}

func (t *Transformer) mergeSpread(a *attrs, spread *sitter.Node, sc *scope) error {
	pos := sc.unit.Pos(spread)
	if spread.NamedChildCount() == 0 {
		return diag.New(diag.CodeMalformedSpread, pos, "empty spread expression")
	}
	src := spread.NamedChild(0)
	if src.Type() != "identifier" {
		return diag.Newf(diag.CodeMalformedSpread, pos,
			"spread source must be an identifier bound to an object literal, got %s", src.Type())
	}
	name := sc.unit.Text(src)
	obj := source.FindObjectLiteral(sc.unit, name)
	if obj == nil {
		return diag.Newf(diag.CodeMalformedSpread, pos,
			"spread source %q is not a plain object literal binding", name)
	}

	count := int(obj.NamedChildCount())
	for i := 0; i < count; i++ {
		pair := obj.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}
		keyNode := pair.ChildByFieldName("key")
		valNode := pair.ChildByFieldName("value")
		if keyNode == nil || valNode == nil {
			continue
		}
		key := sc.unit.Text(keyNode)
		if keyNode.Type() == "string" {
			key = unquoteJS(key)
		}
		a.put(key, attrEntry{node: valNode, sc: sc})
	}
	return nil
}

func (a *attrs) put(key string, e attrEntry) {
	if _, exists := a.vals[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.vals[key] = e
}

func (a *attrs) has(key string) bool {
	_, ok := a.vals[key]
	return ok
}

// str evaluates the attribute as literal text. ok is false when absent.
func (a *attrs) str(t *Transformer, key string) (val string, ok bool, err error) {
	e, exists := a.vals[key]
	if !exists {
		return "", false, nil
	}
	v, err := t.literalText(e.node, e.sc)
	if err != nil {
		return "", true, err
	}
	return v, true, nil
}

// require evaluates a mandated attribute, failing with a missing-attribute
// error that names the prop and the element.
func (a *attrs) require(t *Transformer, key string) (string, error) {
	val, ok, err := a.str(t, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", diag.Newf(diag.CodeMissingAttribute, a.pos,
			"missing required prop %q on <%s>", key, a.tag)
	}
	return val, nil
}

// boolean evaluates an optional boolean attribute. Bare attributes count as
// true.
func (a *attrs) boolean(t *Transformer, key string, def bool) (bool, error) {
	val, ok, err := a.str(t, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return val != "false", nil
}

// list evaluates an array-valued attribute into its string elements.
func (a *attrs) list(t *Transformer, key string) (vals []string, ok bool, err error) {
	e, exists := a.vals[key]
	if !exists {
		return nil, false, nil
	}
	arr := unwrapValue(e.node)
	if arr == nil || arr.Type() != "array" {
		v, err := t.literalText(e.node, e.sc)
		if err != nil {
			return nil, true, err
		}
		return []string{v}, true, nil
	}
	count := int(arr.NamedChildCount())
	for i := 0; i < count; i++ {
		v, err := t.literalText(arr.NamedChild(i), e.sc)
		if err != nil {
			return nil, true, err
		}
		vals = append(vals, v)
	}
	return vals, true, nil
}

// valueNode returns the attribute's value node unwrapped from its
// {expression} container, or nil when absent.
func (a *attrs) valueNode(key string) (*sitter.Node, *scope) {
	e, exists := a.vals[key]
	if !exists {
		return nil, nil
	}
	return unwrapValue(e.node), e.sc
}

// rest returns the keys not consumed by the caller, preserving declaration
// order, evaluated to literal text.
func (a *attrs) rest(t *Transformer, consumed map[string]bool) ([]ir.Attr, error) {
	var out []ir.Attr
	for _, key := range a.keys {
		if consumed[key] {
			continue
		}
		e := a.vals[key]
		val, err := t.literalText(e.node, e.sc)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.Attr{Key: key, Value: val})
	}
	return out, nil
}

// unwrapValue strips jsx_expression and parenthesized wrappers.
func unwrapValue(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "jsx_expression":
			n = innerExpression(n)
		case "parenthesized_expression":
			if n.NamedChildCount() == 0 {
				return nil
			}
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return nil
}

// literalText evaluates a value node to its literal text. Script-variable
// references render as accessors; props substitute. Calls and arbitrary
// bindings are errors: dynamic prop values are not evaluated at compile
// time.
func (t *Transformer) literalText(n *sitter.Node, sc *scope) (string, error) {
	if n == nil {
		return "true", nil
	}
	n = unwrapValue(n)
	if n == nil {
		return "", nil
	}
	u := sc.unit

	switch n.Type() {
	case "string":
		return unquoteJS(u.Text(n)), nil
	case "template_string":
		return t.flattenTemplate(n, sc)
	case "number", "true", "false":
		return u.Text(n), nil
	case "identifier":
		name := u.Text(n)
		if sc.isProp(name) {
			return sc.props[name], nil
		}
		if t.binder.IsDeclared(name) {
			ref := ir.VarRef{Name: name}
			t.binder.Touch(ref)
			return ref.Accessor(), nil
		}
		return "", diag.Newf(diag.CodeUnresolvableRef, u.Pos(n),
			"%q is not a literal value, a prop, or a script variable", name)
	case "member_expression":
		root, segments, ok := memberPath(n, u)
		if !ok {
			return "", diag.Newf(diag.CodeUnresolvableRef, u.Pos(n),
				"computed expression %q is not supported as a value", u.Text(n))
		}
		if t.binder.IsDeclared(root) {
			ref := ir.VarRef{Name: root}
			for _, seg := range segments {
				ref = ref.Dot(seg)
			}
			t.binder.Touch(ref)
			return ref.Accessor(), nil
		}
		if sc.param != "" && root == sc.param && len(segments) == 1 {
			val, ok := sc.props[segments[0]]
			if !ok {
				return "", diag.Newf(diag.CodeMissingAttribute, u.Pos(n),
					"prop %q was not supplied at the call site", segments[0])
			}
			return val, nil
		}
		return "", diag.Newf(diag.CodeUnresolvableRef, u.Pos(n),
			"%q is not a literal value, a prop, or a script variable", u.Text(n))
	default:
		return "", diag.Newf(diag.CodeUnresolvableRef, u.Pos(n),
			"unsupported value expression (%s); only literals are compiled", n.Type())
	}
}

// flattenTemplate renders a template literal to text. Fragments come out
// verbatim, multi-line content included. Substitutions rooted at a script
// variable always render as accessors; the rest follow the configured
// interpolation mode: rewritten to {expr} placeholders, or kept as the
// host language wrote them.
func (t *Transformer) flattenTemplate(n *sitter.Node, sc *scope) (string, error) {
	u := sc.unit
	start := n.StartByte() + 1
	end := n.EndByte() - 1

	var sb strings.Builder
	cursor := start
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() != "template_substitution" {
			continue
		}
		sb.Write(u.Src[cursor:c.StartByte()])

		rendered, err := t.renderSubstitution(c, sc)
		if err != nil {
			return "", err
		}
		sb.WriteString(rendered)
		cursor = c.EndByte()
	}
	if cursor < end {
		sb.Write(u.Src[cursor:end])
	}
	return sb.String(), nil
}

func (t *Transformer) renderSubstitution(sub *sitter.Node, sc *scope) (string, error) {
	u := sc.unit
	if sub.NamedChildCount() == 0 {
		return "", nil
	}
	expr := sub.NamedChild(0)

	switch expr.Type() {
	case "identifier":
		name := u.Text(expr)
		if sc.isProp(name) {
			return sc.props[name], nil
		}
		if t.binder.IsDeclared(name) {
			ref := ir.VarRef{Name: name}
			t.binder.Touch(ref)
			return ref.Accessor(), nil
		}
	case "member_expression":
		if root, segments, ok := memberPath(expr, u); ok {
			if t.binder.IsDeclared(root) {
				ref := ir.VarRef{Name: root}
				for _, seg := range segments {
					ref = ref.Dot(seg)
				}
				t.binder.Touch(ref)
				return ref.Accessor(), nil
			}
			if sc.param != "" && root == sc.param && len(segments) == 1 {
				if val, ok := sc.props[segments[0]]; ok {
					return val, nil
				}
			}
		}
	}

	if t.opts.Interpolation == PreserveInterpolation {
		return u.Text(sub), nil
	}
	return "{" + u.Text(expr) + "}", nil
}

// unquoteJS strips the surrounding quotes of a string literal and resolves
// the common escapes.
func unquoteJS(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}

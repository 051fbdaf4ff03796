// Package transform walks a parsed component tree and produces the ir
// document model. Dispatch is by element tag against an injected Registry;
// composite components are inlined through the resolver; script-variable
// accesses are recorded in the binder. Any rule violation aborts the unit
// with a diag.Error; there is no partial output.
package transform

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/binder"
	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/ir"
	"github.com/agentic-research/promptc/internal/resolve"
	"github.com/agentic-research/promptc/internal/source"
)

// InterpolationMode selects how template-literal substitutions are written
// out: rewritten to the {name} placeholder syntax, or preserved as the host
// language wrote them.
type InterpolationMode int

const (
	NormalizeInterpolation InterpolationMode = iota
	PreserveInterpolation
)

type Options struct {
	Interpolation InterpolationMode
}

// Transformer compiles one unit. Build a fresh one per compilation; state
// (resolver chain, binder) is local to the unit.
type Transformer struct {
	reg      *Registry
	provider *source.Provider
	resolver *resolve.Resolver
	binder   *binder.Binder
	opts     Options
}

func New(reg *Registry, provider *source.Provider, b *binder.Binder, opts Options) *Transformer {
	return &Transformer{
		reg:      reg,
		provider: provider,
		resolver: resolve.New(provider),
		binder:   b,
		opts:     opts,
	}
}

// scope is the lexical context a component-tree node is transformed in: the
// owning unit plus, inside a composite body, the props environment and the
// call-site children to splice for {children}.
type scope struct {
	unit      *source.Unit
	param     string
	props     map[string]string
	propNames map[string]bool

	children      []*sitter.Node
	childrenScope *scope
}

func (sc *scope) isProp(name string) bool {
	return sc.propNames != nil && sc.propNames[name]
}

// Transform compiles the unit's root element into a document.
func (t *Transformer) Transform(unit *source.Unit) (*ir.Document, error) {
	root, err := rootElement(unit)
	if err != nil {
		return nil, err
	}
	for _, name := range source.ScriptBindings(unit) {
		t.binder.Declare(name)
	}

	sc := &scope{unit: unit}
	tag := t.tagName(root, sc)

	if t.reg.Roots[tag] {
		matter, err := t.buildMatter(root, tag, sc)
		if err != nil {
			return nil, err
		}
		body, err := t.transformBlocks(elementChildren(root), sc)
		if err != nil {
			return nil, err
		}
		return &ir.Document{Matter: matter, Body: body}, nil
	}

	body, err := t.transformBlocks([]*sitter.Node{root}, sc)
	if err != nil {
		return nil, err
	}
	return &ir.Document{Body: body}, nil
}

// rootElement finds the unit's top-level component tree: either a default
// export or a bare expression statement.
func rootElement(unit *source.Unit) (*sitter.Node, error) {
	root := unit.Root()
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := root.NamedChild(i)
		var expr *sitter.Node
		switch stmt.Type() {
		case "expression_statement":
			if stmt.NamedChildCount() > 0 {
				expr = stmt.NamedChild(0)
			}
		case "export_statement":
			expr = stmt.ChildByFieldName("value")
			if expr == nil {
				expr = stmt.ChildByFieldName("declaration")
			}
			if expr == nil {
				// Grammar revisions disagree on the field name, so fall back
				// to scanning for the exported expression.
				cc := int(stmt.NamedChildCount())
				for j := 0; j < cc; j++ {
					c := stmt.NamedChild(j)
					if isJSX(c) || c.Type() == "parenthesized_expression" {
						expr = c
						break
					}
				}
			}
		}
		for expr != nil && expr.Type() == "parenthesized_expression" {
			if expr.NamedChildCount() == 0 {
				break
			}
			expr = expr.NamedChild(0)
		}
		if expr != nil && isJSX(expr) {
			return expr, nil
		}
	}
	return nil, diag.Newf(diag.CodeUnsupportedElement,
		source.Pos{Path: unit.Path, Line: 1, Column: 1},
		"unit has no root element")
}

func isJSX(n *sitter.Node) bool {
	switch n.Type() {
	case "jsx_element", "jsx_self_closing_element":
		return true
	default:
		return false
	}
}

// openTag returns the node carrying the element's name and attributes.
func openTag(elem *sitter.Node) *sitter.Node {
	if elem.Type() == "jsx_self_closing_element" {
		return elem
	}
	if open := elem.ChildByFieldName("open_tag"); open != nil {
		return open
	}
	count := int(elem.NamedChildCount())
	for i := 0; i < count; i++ {
		c := elem.NamedChild(i)
		if c.Type() == "jsx_opening_element" {
			return c
		}
	}
	return elem
}

func (t *Transformer) tagName(elem *sitter.Node, sc *scope) string {
	open := openTag(elem)
	if name := open.ChildByFieldName("name"); name != nil {
		return sc.unit.Text(name)
	}
	return ""
}

// elementChildren returns the jsx children between the open and close tags.
func elementChildren(elem *sitter.Node) []*sitter.Node {
	if elem.Type() == "jsx_self_closing_element" {
		return nil
	}
	var out []*sitter.Node
	count := int(elem.NamedChildCount())
	for i := 0; i < count; i++ {
		c := elem.NamedChild(i)
		switch c.Type() {
		case "jsx_opening_element", "jsx_closing_element":
			continue
		}
		out = append(out, c)
	}
	return out
}

// inlineItem is one node queued for an implicit paragraph, carrying the
// scope it must be transformed in (spliced children keep their caller's).
type inlineItem struct {
	node *sitter.Node
	sc   *scope
}

// transformBlocks walks sibling nodes in block context. Runs of text,
// expressions, and inline marks group into implicit paragraphs; block
// elements flush the run. If/Else pairing happens here: an Else must be the
// immediately following element sibling of its If.
func (t *Transformer) transformBlocks(nodes []*sitter.Node, sc *scope) ([]ir.Block, error) {
	var blocks []ir.Block
	var run []inlineItem

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		inlines, err := t.transformInlines(run)
		run = nil
		if err != nil {
			return err
		}
		if len(inlines) > 0 {
			blocks = append(blocks, &ir.Paragraph{Children: inlines})
		}
		return nil
	}

	i := 0
	for i < len(nodes) {
		n := nodes[i]
		switch n.Type() {
		case "jsx_text":
			if NormalizeText(sc.unit.Text(n)) != "" {
				run = append(run, inlineItem{n, sc})
			}
			i++
		case "jsx_expression":
			if t.isChildrenSplice(n, sc) {
				if err := flush(); err != nil {
					return nil, err
				}
				spliced, err := t.transformBlocks(sc.children, sc.childrenScope)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, spliced...)
			} else if !emptyExpression(n) {
				run = append(run, inlineItem{n, sc})
			}
			i++
		case "jsx_element", "jsx_self_closing_element":
			tag := t.tagName(n, sc)
			if t.reg.Inline(tag) {
				run = append(run, inlineItem{n, sc})
				i++
				continue
			}
			if err := flush(); err != nil {
				return nil, err
			}
			if tag == "If" {
				elseNode, next := adjacentElse(t, nodes, i, sc)
				b, err := t.conditional(n, elseNode, sc)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, b)
				i = next
				continue
			}
			bs, err := t.blockElement(n, tag, sc)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, bs...)
			i++
		default:
			// Comments and stray grammar nodes carry no content.
			i++
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// adjacentElse returns the Else element immediately following index i
// (whitespace-only text between them is ignored), plus the index to resume
// iteration at. An Else separated by content stays in place and fails later
// as an orphan.
func adjacentElse(t *Transformer, nodes []*sitter.Node, i int, sc *scope) (*sitter.Node, int) {
	j := i + 1
	for j < len(nodes) {
		n := nodes[j]
		if n.Type() == "jsx_text" && NormalizeText(sc.unit.Text(n)) == "" {
			j++
			continue
		}
		if isJSX(n) && t.tagName(n, sc) == "Else" {
			return n, j + 1
		}
		break
	}
	return nil, i + 1
}

// blockElement dispatches one block-context element. Composite expansion
// may splice several sibling blocks, hence the slice return.
func (t *Transformer) blockElement(n *sitter.Node, tag string, sc *scope) ([]ir.Block, error) {
	pos := sc.unit.Pos(n)

	one := func(b ir.Block, err error) ([]ir.Block, error) {
		if err != nil {
			return nil, err
		}
		return []ir.Block{b}, nil
	}

	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return one(t.heading(n, int(tag[1]-'0'), sc))
	case "p":
		inlines, err := t.transformInlines(wrapItems(elementChildren(n), sc))
		if err != nil {
			return nil, err
		}
		return []ir.Block{&ir.Paragraph{Children: inlines}}, nil
	case "ul":
		return one(t.list(n, false, sc))
	case "ol":
		return one(t.list(n, true, sc))
	case "blockquote":
		children, err := t.transformBlocks(elementChildren(n), sc)
		if err != nil {
			return nil, err
		}
		return []ir.Block{&ir.Blockquote{Children: children}}, nil
	case "pre":
		return one(t.codeBlock(n, sc))
	case "hr":
		return []ir.Block{&ir.ThematicBreak{}}, nil
	case "Block":
		return one(t.namedBlock(n, tag, sc))
	case "Markdown":
		return one(t.rawBlock(n, sc))
	case "Table":
		return one(t.table(n, sc))
	case "Loop":
		return one(t.loop(n, sc))
	case "Break":
		return one(t.breakNode(n, sc))
	case "Return":
		return one(t.returnNode(n, sc))
	case "AskUser":
		return one(t.askUser(n, sc))
	case "SpawnAgent":
		return one(t.spawnAgent(n, sc))
	case "ReadFile":
		return one(t.readFile(n, sc))
	case "Else":
		return nil, diag.New(diag.CodeUnsupportedElement, pos,
			"<Else> must immediately follow its <If>")
	case "li":
		return nil, diag.New(diag.CodeUnsupportedElement, pos,
			"<li> is only valid directly inside <ul> or <ol>")
	case "Command", "Agent":
		return nil, diag.Newf(diag.CodeUnsupportedElement, pos,
			"<%s> must be the document root", tag)
	default:
		if isComponentName(tag) {
			return t.expandComposite(n, tag, sc)
		}
		return nil, diag.Newf(diag.CodeUnsupportedElement, pos, "unknown element <%s>", tag)
	}
}

// expandComposite inlines a user-defined component at its call site. The
// body is transformed in the defining unit's scope, with the call-site
// attributes as props and the call-site children available for {children}.
func (t *Transformer) expandComposite(n *sitter.Node, tag string, sc *scope) ([]ir.Block, error) {
	pos := sc.unit.Pos(n)

	exp, err := t.resolver.Resolve(sc.unit, tag, pos)
	if err != nil {
		return nil, err
	}
	attrs, err := t.collectAttrs(n, tag, sc)
	if err != nil {
		return nil, err
	}

	props := make(map[string]string, len(attrs.keys))
	for _, key := range attrs.keys {
		val, err := t.literalText(attrs.vals[key].node, attrs.vals[key].sc)
		if err != nil {
			return nil, diag.Newf(diag.CodeUnresolvableRef, pos,
				"prop %q of <%s> is not a literal value; computed props are not supported", key, tag).WithCause(err)
		}
		props[key] = val
	}

	bodyScope := &scope{
		unit:          exp.Unit,
		param:         exp.Param,
		props:         props,
		propNames:     set(exp.PropNames...),
		children:      elementChildren(n),
		childrenScope: sc,
	}

	if err := t.resolver.Enter(exp, pos); err != nil {
		return nil, err
	}
	defer t.resolver.Exit()

	return t.transformBlocks(exp.Body, bodyScope)
}

// isChildrenSplice reports whether the expression is {children} or
// {props.children} inside a composite body.
func (t *Transformer) isChildrenSplice(n *sitter.Node, sc *scope) bool {
	if sc.childrenScope == nil {
		return false
	}
	inner := innerExpression(n)
	if inner == nil {
		return false
	}
	switch inner.Type() {
	case "identifier":
		name := sc.unit.Text(inner)
		return name == "children" && (sc.isProp("children") || sc.param == "")
	case "member_expression":
		obj := inner.ChildByFieldName("object")
		prop := inner.ChildByFieldName("property")
		return obj != nil && prop != nil &&
			obj.Type() == "identifier" && sc.unit.Text(obj) == sc.param &&
			sc.unit.Text(prop) == "children"
	}
	return false
}

func innerExpression(jsxExpr *sitter.Node) *sitter.Node {
	if jsxExpr.NamedChildCount() == 0 {
		return nil
	}
	inner := jsxExpr.NamedChild(0)
	for inner != nil && inner.Type() == "parenthesized_expression" && inner.NamedChildCount() > 0 {
		inner = inner.NamedChild(0)
	}
	return inner
}

func emptyExpression(jsxExpr *sitter.Node) bool {
	return innerExpression(jsxExpr) == nil
}

func wrapItems(nodes []*sitter.Node, sc *scope) []inlineItem {
	items := make([]inlineItem, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, inlineItem{n, sc})
	}
	return items
}

func isComponentName(tag string) bool {
	if tag == "" {
		return false
	}
	r := []rune(tag)[0]
	return unicode.IsUpper(r) && !strings.Contains(tag, ".")
}

package resolve

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/source"
)

// paramShape inspects the composite's first parameter. A plain identifier
// means property accesses go through that name (props.title); an object
// pattern means the prop names are in scope directly.
func paramShape(comp *source.Component) (param string, propNames []string) {
	params := comp.Fn.ChildByFieldName("parameters")
	if params == nil || params.NamedChildCount() == 0 {
		return "", nil
	}
	first := params.NamedChild(0)
	// required_parameter wraps the pattern; arrow shorthand may not.
	pattern := first.ChildByFieldName("pattern")
	if pattern == nil {
		pattern = first
	}
	switch pattern.Type() {
	case "identifier":
		return comp.Unit.Text(pattern), nil
	case "object_pattern":
		count := int(pattern.NamedChildCount())
		for i := 0; i < count; i++ {
			p := pattern.NamedChild(i)
			switch p.Type() {
			case "shorthand_property_identifier_pattern", "shorthand_property_identifier":
				propNames = append(propNames, comp.Unit.Text(p))
			case "pair_pattern":
				if k := p.ChildByFieldName("key"); k != nil {
					propNames = append(propNames, comp.Unit.Text(k))
				}
			}
		}
		return "", propNames
	default:
		return "", nil
	}
}

// bodyRoots extracts the component-tree roots the composite returns. A
// fragment return contributes each of its children as a sibling root.
func bodyRoots(comp *source.Component) ([]*sitter.Node, error) {
	var expr *sitter.Node

	switch comp.Fn.Type() {
	case "arrow_function":
		body := comp.Fn.ChildByFieldName("body")
		if body == nil {
			return nil, errors.New("arrow component has no body")
		}
		if body.Type() == "statement_block" {
			expr = returnedExpression(body)
		} else {
			expr = body
		}
	case "function_declaration", "function_expression":
		body := comp.Fn.ChildByFieldName("body")
		if body == nil {
			return nil, errors.New("function component has no body")
		}
		expr = returnedExpression(body)
	default:
		return nil, errors.New("declaration is not a function")
	}
	if expr == nil {
		return nil, errors.New("component has no return value")
	}

	for expr.Type() == "parenthesized_expression" {
		if expr.NamedChildCount() == 0 {
			return nil, errors.New("component returns an empty expression")
		}
		expr = expr.NamedChild(0)
	}

	switch expr.Type() {
	case "jsx_element", "jsx_self_closing_element":
		return []*sitter.Node{expr}, nil
	case "jsx_fragment":
		var roots []*sitter.Node
		count := int(expr.NamedChildCount())
		for i := 0; i < count; i++ {
			roots = append(roots, expr.NamedChild(i))
		}
		return roots, nil
	default:
		return nil, errors.New("component does not return a component tree")
	}
}

func returnedExpression(block *sitter.Node) *sitter.Node {
	count := int(block.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := block.NamedChild(i)
		if stmt.Type() != "return_statement" {
			continue
		}
		if stmt.NamedChildCount() > 0 {
			return stmt.NamedChild(0)
		}
		return nil
	}
	return nil
}

package transform

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/ir"
)

// buildMatter compiles a Command or Agent root's attributes into the
// frontmatter record. Name and description are mandatory on both; the
// error names whichever prop is absent. Attribute values may come from
// literals or object-literal spreads, merged left to right.
func (t *Transformer) buildMatter(root *sitter.Node, tag string, sc *scope) (*ir.Frontmatter, error) {
	attrs, err := t.collectAttrs(root, tag, sc)
	if err != nil {
		return nil, err
	}
	name, err := attrs.require(t, "name")
	if err != nil {
		return nil, err
	}
	description, err := attrs.require(t, "description")
	if err != nil {
		return nil, err
	}

	matter := &ir.Frontmatter{Name: name, Description: description}
	consumed := map[string]bool{"name": true, "description": true}

	switch tag {
	case "Command":
		matter.Kind = ir.MatterCommand
		tools, ok, err := attrs.list(t, "allowedTools")
		if err != nil {
			return nil, err
		}
		if ok {
			matter.AllowedTools = tools
			consumed["allowedTools"] = true
		}
	case "Agent":
		matter.Kind = ir.MatterAgent
		for key, dst := range map[string]*string{
			"tools":     &matter.Tools,
			"color":     &matter.Color,
			"inputType": &matter.InputType,
		} {
			val, ok, err := attrs.str(t, key)
			if err != nil {
				return nil, err
			}
			if ok {
				*dst = val
				consumed[key] = true
			}
		}
	}

	extra, err := attrs.rest(t, consumed)
	if err != nil {
		return nil, err
	}
	matter.Extra = extra
	return matter, nil
}

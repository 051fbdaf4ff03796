package transform

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/ir"
)

// spawnAgent compiles the delegation directive. Exactly one of prompt or
// input must be supplied; an input payload declared with inputType is
// checked against that type's required fields here, at compile time.
func (t *Transformer) spawnAgent(n *sitter.Node, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(n, "SpawnAgent", sc)
	if err != nil {
		return nil, err
	}

	agent, err := attrs.require(t, "agent")
	if err != nil {
		return nil, err
	}
	model, err := attrs.require(t, "model")
	if err != nil {
		return nil, err
	}
	description, err := attrs.require(t, "description")
	if err != nil {
		return nil, err
	}

	hasPrompt := attrs.has("prompt")
	hasInput := attrs.has("input")
	switch {
	case hasPrompt && hasInput:
		return nil, diag.New(diag.CodeExclusiveAttributes, attrs.pos,
			`<SpawnAgent> accepts "prompt" or "input", not both`)
	case !hasPrompt && !hasInput:
		return nil, diag.New(diag.CodeMissingAttribute, attrs.pos,
			`<SpawnAgent> requires either "prompt" or "input"`)
	}

	out := &ir.SpawnAgent{Agent: agent, Model: model, Description: description}

	if typeName, ok, err := attrs.str(t, "inputType"); err != nil {
		return nil, err
	} else if ok {
		out.InputType = typeName
	}

	if hasPrompt {
		prompt, err := attrs.require(t, "prompt")
		if err != nil {
			return nil, err
		}
		out.Prompt = prompt
		out.HasPrompt = true
	} else {
		input, err := t.spawnInput(attrs, out.InputType, sc)
		if err != nil {
			return nil, err
		}
		out.Input = input
	}

	out.Instructions = NormalizeText(t.rawContent(n, sc))
	return out, nil
}

// spawnInput evaluates the input object literal and, when a type was
// declared, verifies every one of its required fields is present. All
// missing fields are reported in a single error; optional fields are
// exempt. Without a declared type the payload is accepted as-is.
func (t *Transformer) spawnInput(attrs *attrs, typeName string, sc *scope) ([]ir.Attr, error) {
	obj, objScope := attrs.valueNode("input")
	if obj == nil || obj.Type() != "object" {
		return nil, diag.New(diag.CodeUnresolvableRef, attrs.pos,
			`<SpawnAgent> input must be an object literal`)
	}

	var fields []ir.Attr
	seen := make(map[string]bool)
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
		key := objScope.unit.Text(keyNode)
		if keyNode.Type() == "string" {
			key = unquoteJS(key)
		}
		val, err := t.literalText(valNode, objScope)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ir.Attr{Key: key, Value: val})
		seen[key] = true
	}

	if typeName == "" {
		return fields, nil
	}

	info, err := t.provider.ResolveType(sc.unit, typeName)
	if err != nil {
		return nil, diag.Newf(diag.CodeUnresolvableRef, attrs.pos,
			"input type %s: %v", typeName, err).WithCause(err)
	}
	var missing []string
	for _, field := range info.Required() {
		if !seen[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, diag.Newf(diag.CodeTypeContract, attrs.pos,
			"input for type %s is missing required field(s): %s",
			typeName, strings.Join(missing, ", "))
	}
	return fields, nil
}

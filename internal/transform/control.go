package transform

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/ir"
)

// Control-flow elements compile to instruction nodes; the compiler stores
// condition and bound text verbatim and never evaluates any of it.

// conditional compiles an <If> and, when present, the Else element that
// immediately follows it as a sibling.
func (t *Transformer) conditional(ifNode, elseNode *sitter.Node, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(ifNode, "If", sc)
	if err != nil {
		return nil, err
	}
	condition, err := attrs.require(t, "condition")
	if err != nil {
		return nil, err
	}
	then, err := t.transformBlocks(elementChildren(ifNode), sc)
	if err != nil {
		return nil, err
	}
	out := &ir.Conditional{Condition: condition, Then: then}
	if elseNode != nil {
		alt, err := t.transformBlocks(elementChildren(elseNode), sc)
		if err != nil {
			return nil, err
		}
		out.HasElse = true
		out.Else = alt
	}
	return out, nil
}

func (t *Transformer) loop(n *sitter.Node, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(n, "Loop", sc)
	if err != nil {
		return nil, err
	}
	limit, _, err := attrs.str(t, "max")
	if err != nil {
		return nil, err
	}
	counter, _, err := attrs.str(t, "counter")
	if err != nil {
		return nil, err
	}
	// The counter is visible to the body as a script variable.
	t.binder.Declare(counter)

	body, err := t.transformBlocks(elementChildren(n), sc)
	if err != nil {
		return nil, err
	}
	return &ir.Loop{Limit: limit, Counter: counter, Body: body}, nil
}

func (t *Transformer) breakNode(n *sitter.Node, sc *scope) (ir.Block, error) {
	status, message, err := t.statusMessage(n, "Break", sc)
	if err != nil {
		return nil, err
	}
	return &ir.Break{Status: status, Message: message}, nil
}

func (t *Transformer) returnNode(n *sitter.Node, sc *scope) (ir.Block, error) {
	status, message, err := t.statusMessage(n, "Return", sc)
	if err != nil {
		return nil, err
	}
	return &ir.Return{Status: status, Message: message}, nil
}

func (t *Transformer) statusMessage(n *sitter.Node, tag string, sc *scope) (status, message string, err error) {
	attrs, err := t.collectAttrs(n, tag, sc)
	if err != nil {
		return "", "", err
	}
	status, _, err = attrs.str(t, "status")
	if err != nil {
		return "", "", err
	}
	message, _, err = attrs.str(t, "message")
	if err != nil {
		return "", "", err
	}
	if message == "" {
		message = NormalizeText(t.rawContent(n, sc))
	}
	return status, message, nil
}

func (t *Transformer) askUser(n *sitter.Node, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(n, "AskUser", sc)
	if err != nil {
		return nil, err
	}
	prompt, err := attrs.require(t, "prompt")
	if err != nil {
		return nil, err
	}
	as, err := attrs.require(t, "as")
	if err != nil {
		return nil, err
	}
	options, _, err := attrs.list(t, "options")
	if err != nil {
		return nil, err
	}
	t.binder.Declare(as)
	return &ir.AskUser{Prompt: prompt, Options: options, As: as}, nil
}

func (t *Transformer) readFile(n *sitter.Node, sc *scope) (ir.Block, error) {
	attrs, err := t.collectAttrs(n, "ReadFile", sc)
	if err != nil {
		return nil, err
	}
	path, err := attrs.require(t, "path")
	if err != nil {
		return nil, err
	}
	as, err := attrs.require(t, "as")
	if err != nil {
		return nil, err
	}
	required, err := attrs.boolean(t, "required", true)
	if err != nil {
		return nil, err
	}
	t.binder.Declare(as)
	return &ir.ReadFile{Path: path, As: as, Required: required}, nil
}

// Package resolve locates user-authored composite components (plain
// functions returning component trees, declared locally or imported) and
// prepares them for inlining by the transformer. Resolution keeps an
// explicit chain of visited unit#symbol identities, so circular references
// are reported as errors instead of overflowing the stack.
package resolve

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/source"
)

// Resolver expands composites for one compilation. Not safe for concurrent
// use; each compilation builds its own.
type Resolver struct {
	provider *source.Provider

	chain   []string
	inChain map[string]bool
}

func New(provider *source.Provider) *Resolver {
	return &Resolver{
		provider: provider,
		inChain:  make(map[string]bool),
	}
}

// Expansion is a located composite, split into the parts the transformer
// needs to inline it: the parameter shape and the returned body roots.
type Expansion struct {
	// Name is the composite's name at the call site.
	Name string
	// Unit is the defining unit; the body is transformed in its context.
	Unit *source.Unit
	// Param is the props parameter identifier, empty when the parameter is
	// destructured (or absent).
	Param string
	// PropNames are the destructured prop names, nil when Param is used.
	PropNames []string
	// Body holds the returned component-tree roots. A fragment return
	// yields several siblings, spliced in order at the call site.
	Body []*sitter.Node

	key string
}

// Resolve locates the composite visible under name from the calling unit.
// Same-file declarations win over imports of the same name.
func (r *Resolver) Resolve(from *source.Unit, name string, pos source.Pos) (*Expansion, error) {
	if c := source.FindComponent(from, name); c != nil {
		return r.expand(c, name, pos)
	}

	imp, ok := source.FindImport(from, name)
	if !ok {
		return nil, diag.Newf(diag.CodeUnsupportedElement, pos, "unknown element <%s>", name)
	}
	if !strings.HasPrefix(imp.Spec, "./") && !strings.HasPrefix(imp.Spec, "../") {
		return nil, diag.Newf(diag.CodeUnresolvableRef, pos,
			"component %s imported from %q: only relative imports are resolvable", name, imp.Spec)
	}
	target, err := r.provider.ResolveImport(from, imp.Spec)
	if err != nil {
		return nil, diag.Newf(diag.CodeUnresolvableRef, pos, "component %s: %v", name, err).WithCause(err)
	}

	var comp *source.Component
	if imp.Exported == "" {
		comp = source.DefaultExport(target)
	} else {
		comp = source.FindComponent(target, imp.Exported)
		if comp != nil && !comp.Exported {
			return nil, diag.Newf(diag.CodeUnresolvableRef, pos,
				"component %s is declared in %s but not exported", imp.Exported, target.Path)
		}
	}
	if comp == nil {
		return nil, diag.Newf(diag.CodeUnresolvableRef, pos,
			"component %s not found in %s", name, target.Path)
	}
	return r.expand(comp, name, pos)
}

// Enter pushes the expansion onto the active resolution chain, failing when
// the same unit#symbol identity is already on it. Callers must pair every
// successful Enter with Exit.
func (r *Resolver) Enter(exp *Expansion, pos source.Pos) error {
	if r.inChain[exp.key] {
		return diag.Newf(diag.CodeCircularRef, pos,
			"circular component reference: %s", strings.Join(append(r.chain, exp.key), " -> "))
	}
	r.chain = append(r.chain, exp.key)
	r.inChain[exp.key] = true
	return nil
}

// Exit pops the most recent Enter.
func (r *Resolver) Exit() {
	if len(r.chain) == 0 {
		return
	}
	key := r.chain[len(r.chain)-1]
	r.chain = r.chain[:len(r.chain)-1]
	delete(r.inChain, key)
}

func (r *Resolver) expand(comp *source.Component, name string, pos source.Pos) (*Expansion, error) {
	exp := &Expansion{
		Name: name,
		Unit: comp.Unit,
		key:  comp.Unit.Path + "#" + componentKeyName(comp, name),
	}
	exp.Param, exp.PropNames = paramShape(comp)

	body, err := bodyRoots(comp)
	if err != nil {
		return nil, diag.Newf(diag.CodeUnresolvableRef, pos,
			"component %s in %s: %v", name, comp.Unit.Path, err).WithCause(err)
	}
	exp.Body = body
	return exp, nil
}

func componentKeyName(comp *source.Component, fallback string) string {
	if comp.Name != "" {
		return comp.Name
	}
	return fallback
}

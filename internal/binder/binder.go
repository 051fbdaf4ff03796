// Package binder tracks script variables: bindings over values produced by
// an external execution environment. The compiler never evaluates them; it
// only records which names are declared and which property paths are
// accessed, so the emitter can render stable $NAME.path accessors.
package binder

import "github.com/agentic-research/promptc/internal/ir"

// Binder accumulates declarations and accesses for one compiled unit.
type Binder struct {
	declared map[string]bool
	order    []string
	accesses []ir.VarRef
}

func New() *Binder {
	return &Binder{declared: make(map[string]bool)}
}

// Declare registers name as a script variable. Declaring the same name
// twice is a no-op; later directives may rebind a name and the reference
// syntax does not change.
func (b *Binder) Declare(name string) {
	if name == "" || b.declared[name] {
		return
	}
	b.declared[name] = true
	b.order = append(b.order, name)
}

// IsDeclared reports whether name is a known script variable.
func (b *Binder) IsDeclared(name string) bool {
	return b.declared[name]
}

// Touch records one access. The ref is stored as given; VarRef is a value
// type so the caller's copy cannot change underneath us.
func (b *Binder) Touch(ref ir.VarRef) {
	b.accesses = append(b.accesses, ref)
}

// Declared returns the declared names in declaration order.
func (b *Binder) Declared() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Accesses returns every recorded access in document order.
func (b *Binder) Accesses() []ir.VarRef {
	out := make([]ir.VarRef, len(b.accesses))
	copy(out, b.accesses)
	return out
}

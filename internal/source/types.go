package source

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// TypeInfo is the field list of a declared interface type, as much of it as
// spawn-input validation needs.
type TypeInfo struct {
	Name   string
	Fields []TypeField
}

// TypeField is one property signature. Optional fields carry the `?` marker
// and are exempt from required-field checks.
type TypeField struct {
	Name     string
	Optional bool
}

// Required returns the names of the non-optional fields, in declaration
// order.
func (t *TypeInfo) Required() []string {
	var out []string
	for _, f := range t.Fields {
		if !f.Optional {
			out = append(out, f.Name)
		}
	}
	return out
}

// ResolveType locates the interface declaration for name: first in u itself,
// then through u's named imports. Returns an error when no declaration is
// reachable.
func (pr *Provider) ResolveType(u *Unit, name string) (*TypeInfo, error) {
	if ti := localInterface(u, name); ti != nil {
		return ti, nil
	}
	if imp, ok := FindImport(u, name); ok {
		target, err := pr.ResolveImport(u, imp.Spec)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		want := imp.Exported
		if want == "" {
			want = name
		}
		if ti := localInterface(target, want); ti != nil {
			return ti, nil
		}
		return nil, fmt.Errorf("type %s not declared in %s", want, target.Path)
	}
	return nil, fmt.Errorf("type %s not declared in %s", name, u.Path)
}

func localInterface(u *Unit, name string) *TypeInfo {
	root := u.Root()
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "export_statement" {
			if d := stmt.ChildByFieldName("declaration"); d != nil {
				stmt = d
			}
		}
		if stmt.Type() != "interface_declaration" {
			continue
		}
		n := stmt.ChildByFieldName("name")
		if n == nil || u.Text(n) != name {
			continue
		}
		return interfaceInfo(u, name, stmt)
	}
	return nil
}

func interfaceInfo(u *Unit, name string, decl *sitter.Node) *TypeInfo {
	ti := &TypeInfo{Name: name}
	body := decl.ChildByFieldName("body")
	if body == nil {
		return ti
	}
	count := int(body.NamedChildCount())
	for i := 0; i < count; i++ {
		sig := body.NamedChild(i)
		if sig.Type() != "property_signature" {
			continue
		}
		fieldName := sig.ChildByFieldName("name")
		if fieldName == nil {
			continue
		}
		ti.Fields = append(ti.Fields, TypeField{
			Name:     u.Text(fieldName),
			Optional: hasKeywordChild(sig, "?"),
		})
	}
	return ti
}

package source

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Component is a user-authored composite: a function (declaration or arrow)
// returning a component tree.
type Component struct {
	Name string
	Unit *Unit
	// Fn is a function_declaration, function_expression, or arrow_function.
	Fn *sitter.Node
	// Exported reports whether the declaration is reachable from other units.
	Exported bool
}

// Import records one imported binding in a unit.
type Import struct {
	// Local is the name the binding is visible under in the importing unit.
	Local string
	// Exported is the name in the source unit; empty for a default import.
	Exported string
	// Spec is the import path as written.
	Spec string
}

// FindComponent looks up a function-like declaration by name in u's top
// level, including ones wrapped in export statements. Returns nil when no
// declaration of that name exists.
func FindComponent(u *Unit, name string) *Component {
	root := u.Root()
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := root.NamedChild(i)
		decl := stmt
		exported := false
		if stmt.Type() == "export_statement" {
			if d := stmt.ChildByFieldName("declaration"); d != nil {
				decl = d
				exported = true
			} else {
				continue
			}
		}
		if c := componentFromDecl(u, decl, name, exported); c != nil {
			return c
		}
	}
	return nil
}

// DefaultExport returns the unit's default-exported component, resolving a
// `export default Name` indirection through the local declaration.
func DefaultExport(u *Unit) *Component {
	root := u.Root()
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "export_statement" || !hasKeywordChild(stmt, "default") {
			continue
		}
		if d := stmt.ChildByFieldName("declaration"); d != nil {
			if d.Type() == "function_declaration" {
				name := ""
				if n := d.ChildByFieldName("name"); n != nil {
					name = u.Text(n)
				}
				return &Component{Name: name, Unit: u, Fn: d, Exported: true}
			}
		}
		v := stmt.ChildByFieldName("value")
		if v == nil {
			// Older grammar revisions attach the exported expression as a
			// plain named child instead of a field.
			cc := int(stmt.NamedChildCount())
			for j := 0; j < cc; j++ {
				c := stmt.NamedChild(j)
				switch c.Type() {
				case "arrow_function", "function_expression", "identifier":
					v = c
				}
				if v != nil {
					break
				}
			}
		}
		if v != nil {
			switch v.Type() {
			case "arrow_function", "function_expression":
				return &Component{Unit: u, Fn: v, Exported: true}
			case "identifier":
				if c := FindComponent(u, u.Text(v)); c != nil {
					c.Exported = true
					return c
				}
			}
		}
	}
	return nil
}

// Imports collects every import binding declared in u.
func Imports(u *Unit) []Import {
	var out []Import
	root := u.Root()
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "import_statement" {
			continue
		}
		src := stmt.ChildByFieldName("source")
		if src == nil {
			continue
		}
		spec := unquote(u.Text(src))

		clause := namedChildOfType(stmt, "import_clause")
		if clause == nil {
			continue
		}
		cc := int(clause.NamedChildCount())
		for j := 0; j < cc; j++ {
			part := clause.NamedChild(j)
			switch part.Type() {
			case "identifier": // default import
				out = append(out, Import{Local: u.Text(part), Spec: spec})
			case "named_imports":
				nc := int(part.NamedChildCount())
				for k := 0; k < nc; k++ {
					spec2 := part.NamedChild(k)
					if spec2.Type() != "import_specifier" {
						continue
					}
					name := spec2.ChildByFieldName("name")
					if name == nil {
						continue
					}
					imp := Import{Exported: u.Text(name), Local: u.Text(name), Spec: spec}
					if alias := spec2.ChildByFieldName("alias"); alias != nil {
						imp.Local = u.Text(alias)
					}
					out = append(out, imp)
				}
			}
		}
	}
	return out
}

// FindImport returns the import binding visible under local, if any.
func FindImport(u *Unit, local string) (Import, bool) {
	for _, imp := range Imports(u) {
		if imp.Local == local {
			return imp, true
		}
	}
	return Import{}, false
}

// FindObjectLiteral returns the object-literal value of a top-level
// `const name = {...}` binding. Anything else (a call, a non-object value,
// a missing binding) returns nil; spread resolution treats that as
// malformed.
func FindObjectLiteral(u *Unit, name string) *sitter.Node {
	decl := findVariableDeclarator(u, name)
	if decl == nil {
		return nil
	}
	v := decl.ChildByFieldName("value")
	if v == nil || v.Type() != "object" {
		return nil
	}
	return v
}

// ScriptBindings returns the names of top-level `const X = script(...)`
// bindings, in declaration order. These are the unit's script variables:
// values produced by an external execution environment, referenced but
// never evaluated here.
func ScriptBindings(u *Unit) []string {
	var out []string
	root := u.Root()
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "export_statement" {
			if d := stmt.ChildByFieldName("declaration"); d != nil {
				stmt = d
			}
		}
		if stmt.Type() != "lexical_declaration" {
			continue
		}
		dc := int(stmt.NamedChildCount())
		for j := 0; j < dc; j++ {
			decl := stmt.NamedChild(j)
			if decl.Type() != "variable_declarator" {
				continue
			}
			v := decl.ChildByFieldName("value")
			if v == nil || v.Type() != "call_expression" {
				continue
			}
			fn := v.ChildByFieldName("function")
			if fn == nil || fn.Type() != "identifier" || u.Text(fn) != "script" {
				continue
			}
			if n := decl.ChildByFieldName("name"); n != nil {
				out = append(out, u.Text(n))
			}
		}
	}
	return out
}

func componentFromDecl(u *Unit, decl *sitter.Node, name string, exported bool) *Component {
	switch decl.Type() {
	case "function_declaration":
		n := decl.ChildByFieldName("name")
		if n != nil && u.Text(n) == name {
			return &Component{Name: name, Unit: u, Fn: decl, Exported: exported}
		}
	case "lexical_declaration":
		dc := int(decl.NamedChildCount())
		for j := 0; j < dc; j++ {
			vd := decl.NamedChild(j)
			if vd.Type() != "variable_declarator" {
				continue
			}
			n := vd.ChildByFieldName("name")
			if n == nil || u.Text(n) != name {
				continue
			}
			v := vd.ChildByFieldName("value")
			if v == nil {
				return nil
			}
			if v.Type() == "arrow_function" || v.Type() == "function_expression" {
				return &Component{Name: name, Unit: u, Fn: v, Exported: exported}
			}
		}
	}
	return nil
}

func findVariableDeclarator(u *Unit, name string) *sitter.Node {
	root := u.Root()
	count := int(root.NamedChildCount())
	for i := 0; i < count; i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "export_statement" {
			if d := stmt.ChildByFieldName("declaration"); d != nil {
				stmt = d
			}
		}
		if stmt.Type() != "lexical_declaration" && stmt.Type() != "variable_declaration" {
			continue
		}
		dc := int(stmt.NamedChildCount())
		for j := 0; j < dc; j++ {
			vd := stmt.NamedChild(j)
			if vd.Type() != "variable_declarator" {
				continue
			}
			if n := vd.ChildByFieldName("name"); n != nil && u.Text(n) == name {
				return vd
			}
		}
	}
	return nil
}

func namedChildOfType(n *sitter.Node, typ string) *sitter.Node {
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func hasKeywordChild(n *sitter.Node, kw string) bool {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if n.Child(i).Type() == kw {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

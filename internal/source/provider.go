package source

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// Provider parses authoring units and resolves imports between them. One
// Provider serves one compilation; the unit arena below caches parses only
// for its lifetime, so nothing leaks across compilations.
type Provider struct {
	fs    billy.Filesystem
	units map[string]*Unit
}

// NewProvider returns a Provider reading through fs.
func NewProvider(fs billy.Filesystem) *Provider {
	return &Provider{
		fs:    fs,
		units: make(map[string]*Unit),
	}
}

// Load reads and parses the unit at p, reusing an earlier parse of the same
// path within this Provider's lifetime.
func (pr *Provider) Load(p string) (*Unit, error) {
	clean := path.Clean(p)
	if u, ok := pr.units[clean]; ok {
		return u, nil
	}
	src, err := util.ReadFile(pr.fs, clean)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", clean, err)
	}
	u, err := pr.Parse(clean, src)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Parse parses src as TSX and validates that the tree is free of syntax
// errors. The unit joins the Provider's arena under p.
func (pr *Provider) Parse(p string, src []byte) (*Unit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsx.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	u := &Unit{Path: p, Src: src, tree: tree}

	root := tree.RootNode()
	if root.HasError() {
		if errNode := firstErrorNode(root); errNode != nil {
			return nil, &SyntaxError{Pos: u.Pos(errNode)}
		}
		return nil, &SyntaxError{Pos: Pos{Path: p, Line: 1, Column: 1}}
	}

	pr.units[p] = u
	return u, nil
}

// ResolveImport resolves spec relative to the importing unit. Only relative
// paths are accepted; package-style specifiers have no source in the
// authored project.
func (pr *Provider) ResolveImport(from *Unit, spec string) (*Unit, error) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return nil, fmt.Errorf("import %q: only relative imports are resolvable", spec)
	}
	base := path.Join(path.Dir(from.Path), spec)

	candidates := []string{base}
	if path.Ext(base) == "" {
		candidates = []string{base + ".tsx", base + ".jsx", base + ".ts"}
	}
	var lastErr error
	for _, c := range candidates {
		u, err := pr.Load(c)
		if err == nil {
			return u, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("import %q from %s: %w", spec, from.Path, lastErr)
}

// SyntaxError reports the first ERROR node tree-sitter left in a parse.
type SyntaxError struct {
	Pos Pos
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error", e.Pos)
}

// firstErrorNode walks depth-first for the first ERROR or MISSING node so
// the error message can carry a useful position.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// Package compiler ties the pipeline together: load a unit through the
// source provider, transform it, emit Markdown. Each compilation builds
// fresh provider/binder/transformer state, so units can be compiled in
// parallel by an external caller; nothing is cached across calls.
package compiler

import (
	"log/slog"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/agentic-research/promptc/internal/binder"
	"github.com/agentic-research/promptc/internal/emit"
	"github.com/agentic-research/promptc/internal/ir"
	"github.com/agentic-research/promptc/internal/source"
	"github.com/agentic-research/promptc/internal/transform"
)

// Options controls one Compiler's behavior.
type Options struct {
	// Interpolation selects the template-substitution emission mode.
	Interpolation transform.InterpolationMode
	// OutDir, when set, collects artifacts there instead of beside the
	// sources.
	OutDir string
}

// Compiler compiles authoring units to Markdown artifacts.
type Compiler struct {
	fs   billy.Filesystem
	log  *slog.Logger
	reg  *transform.Registry
	opts Options
}

func New(fs billy.Filesystem, log *slog.Logger, opts Options) *Compiler {
	if log == nil {
		log = slog.Default()
	}
	return &Compiler{
		fs:   fs,
		log:  log,
		reg:  transform.DefaultRegistry(),
		opts: opts,
	}
}

// Artifact is one compiled unit.
type Artifact struct {
	SourcePath string
	OutPath    string
	Content    string
	Doc        *ir.Document
	// Vars are the script variables the unit declared, in order.
	Vars []string
	// Accesses are the script-variable property paths the unit references,
	// in document order.
	Accesses []ir.VarRef
}

// CompileFile compiles the unit at p.
func (c *Compiler) CompileFile(p string) (*Artifact, error) {
	provider := source.NewProvider(c.fs)
	unit, err := provider.Load(p)
	if err != nil {
		return nil, err
	}
	return c.compile(unit, provider)
}

// CompileSource compiles in-memory source, attributed to p for positions
// and import resolution.
func (c *Compiler) CompileSource(p string, src []byte) (*Artifact, error) {
	provider := source.NewProvider(c.fs)
	unit, err := provider.Parse(p, src)
	if err != nil {
		return nil, err
	}
	return c.compile(unit, provider)
}

func (c *Compiler) compile(unit *source.Unit, provider *source.Provider) (*Artifact, error) {
	b := binder.New()
	tr := transform.New(c.reg, provider, b, transform.Options{Interpolation: c.opts.Interpolation})

	doc, err := tr.Transform(unit)
	if err != nil {
		return nil, err
	}
	art := &Artifact{
		SourcePath: unit.Path,
		OutPath:    c.outPath(unit.Path, doc),
		Content:    emit.Emit(doc),
		Doc:        doc,
		Vars:       b.Declared(),
		Accesses:   b.Accesses(),
	}
	c.log.Debug("compiled unit",
		"source", art.SourcePath,
		"out", art.OutPath,
		"script_vars", len(art.Vars),
		"var_accesses", len(art.Accesses))
	return art, nil
}

// outPath derives the artifact path: the frontmatter name when declared,
// else the source base name, with a .md extension.
func (c *Compiler) outPath(src string, doc *ir.Document) string {
	base := strings.TrimSuffix(path.Base(src), path.Ext(src))
	if doc.Matter != nil && doc.Matter.Name != "" {
		base = doc.Matter.Name
	}
	dir := path.Dir(src)
	if c.opts.OutDir != "" {
		dir = c.opts.OutDir
	}
	return path.Join(dir, base+".md")
}

// CompileAll compiles every unit matched by patterns. One failing unit
// does not stop the batch; errors come back alongside the artifacts and
// the caller decides whether that fails the run.
func (c *Compiler) CompileAll(patterns []string) ([]*Artifact, []error) {
	files, err := c.Discover(patterns)
	if err != nil {
		return nil, []error{err}
	}
	var (
		arts []*Artifact
		errs []error
	)
	for _, f := range files {
		art, err := c.CompileFile(f)
		if err != nil {
			c.log.Error("compile failed", "source", f, "error", err)
			errs = append(errs, err)
			continue
		}
		arts = append(arts, art)
	}
	return arts, errs
}

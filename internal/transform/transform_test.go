package transform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/promptc/internal/binder"
	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/ir"
	"github.com/agentic-research/promptc/internal/source"
)

// compileFiles parses the given files in a memory filesystem and transforms
// the entry unit.
func compileFiles(t *testing.T, files map[string]string, entry string, opts Options) (*ir.Document, error) {
	t.Helper()
	fs := memfs.New()
	for p, content := range files {
		require.NoError(t, util.WriteFile(fs, p, []byte(content), 0o644))
	}
	provider := source.NewProvider(fs)
	unit, err := provider.Load(entry)
	require.NoError(t, err)

	tr := New(DefaultRegistry(), provider, binder.New(), opts)
	return tr.Transform(unit)
}

func compileOne(t *testing.T, src string) (*ir.Document, error) {
	t.Helper()
	return compileFiles(t, map[string]string{"/cmd.tsx": src}, "/cmd.tsx", Options{})
}

func requireCode(t *testing.T, err error, code string) *diag.Error {
	t.Helper()
	require.Error(t, err)
	var de *diag.Error
	require.True(t, errors.As(err, &de), "expected diag.Error, got %T: %v", err, err)
	assert.Equal(t, code, de.Code)
	return de
}

func TestHeadingLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		doc, err := compileOne(t, fmt.Sprintf("<h%d>Title text</h%d>", level, level))
		require.NoError(t, err)
		require.Len(t, doc.Body, 1)
		h, ok := doc.Body[0].(*ir.Heading)
		require.True(t, ok, "expected heading, got %T", doc.Body[0])
		assert.Equal(t, level, h.Level)
		require.Len(t, h.Children, 1)
		assert.Equal(t, &ir.Text{Text: "Title text"}, h.Children[0])
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  hello   world ", "hello world"},
		{"a\n\t b", "a b"},
		{"already normalized", "already normalized"},
		{"", ""},
	}
	for _, tc := range cases {
		got := NormalizeText(tc.in)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, got, NormalizeText(got), "normalization must be idempotent")
	}
}

func TestTextRunsNotMergedAcrossElements(t *testing.T) {
	doc, err := compileOne(t, "<p>left <b>mid</b> right</p>")
	require.NoError(t, err)
	p := doc.Body[0].(*ir.Paragraph)
	require.Len(t, p.Children, 3)
	assert.Equal(t, &ir.Text{Text: "left"}, p.Children[0])
	assert.IsType(t, &ir.Bold{}, p.Children[1])
	assert.Equal(t, &ir.Text{Text: "right"}, p.Children[2])
}

func TestOrderedListKeepsOrder(t *testing.T) {
	doc, err := compileOne(t, "<ol><li>A</li><li>B</li><li>C</li></ol>")
	require.NoError(t, err)
	l := doc.Body[0].(*ir.List)
	assert.True(t, l.Ordered)
	require.Len(t, l.Items, 3)
	for i, want := range []string{"A", "B", "C"} {
		p := l.Items[i].Children[0].(*ir.Paragraph)
		assert.Equal(t, &ir.Text{Text: want}, p.Children[0])
	}
}

func TestListRejectsNonItemChildren(t *testing.T) {
	_, err := compileOne(t, "<ul><li>ok</li><p>not ok</p></ul>")
	requireCode(t, err, diag.CodeUnsupportedElement)

	_, err = compileOne(t, "<ul>loose text</ul>")
	requireCode(t, err, diag.CodeUnsupportedElement)

	_, err = compileOne(t, `<ul><li>kept</li>{"stray expression"}</ul>`)
	de := requireCode(t, err, diag.CodeUnsupportedElement)
	assert.Contains(t, de.Message, "list")
}

func TestNestedListBecomesItemChild(t *testing.T) {
	doc, err := compileOne(t, "<ul><li>outer<ul><li>inner</li></ul></li></ul>")
	require.NoError(t, err)
	l := doc.Body[0].(*ir.List)
	require.Len(t, l.Items, 1)
	require.Len(t, l.Items[0].Children, 2)
	assert.IsType(t, &ir.Paragraph{}, l.Items[0].Children[0])
	nested, ok := l.Items[0].Children[1].(*ir.List)
	require.True(t, ok, "nested list should follow the leading paragraph")
	require.Len(t, nested.Items, 1)
}

func TestCommandFrontmatterRequiredProps(t *testing.T) {
	_, err := compileOne(t, `<Command description="d"><p>x</p></Command>`)
	de := requireCode(t, err, diag.CodeMissingAttribute)
	assert.Contains(t, de.Message, `"name"`)

	_, err = compileOne(t, `<Command name="n"><p>x</p></Command>`)
	de = requireCode(t, err, diag.CodeMissingAttribute)
	assert.Contains(t, de.Message, `"description"`)

	doc, err := compileOne(t, `<Command name="n" description="d"><p>x</p></Command>`)
	require.NoError(t, err)
	require.NotNil(t, doc.Matter)
	assert.Equal(t, ir.MatterCommand, doc.Matter.Kind)
	assert.Equal(t, "n", doc.Matter.Name)
	assert.Equal(t, "d", doc.Matter.Description)
}

func TestAgentFrontmatterFields(t *testing.T) {
	doc, err := compileOne(t,
		`<Agent name="reviewer" description="Reviews diffs" tools="Read, Grep" color="cyan" inputType="ReviewInput" priority="high"><p>x</p></Agent>`)
	require.NoError(t, err)
	m := doc.Matter
	require.NotNil(t, m)
	assert.Equal(t, ir.MatterAgent, m.Kind)
	assert.Equal(t, "Read, Grep", m.Tools)
	assert.Equal(t, "cyan", m.Color)
	assert.Equal(t, "ReviewInput", m.InputType)
	require.Len(t, m.Extra, 1)
	assert.Equal(t, ir.Attr{Key: "priority", Value: "high"}, m.Extra[0])
}

func TestSpreadAttributesMergeLeftToRight(t *testing.T) {
	src := `
const base = { name: "base", description: "from spread", model: "sonnet" };
export default <Command {...base} description="explicit wins"><p>x</p></Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	assert.Equal(t, "base", doc.Matter.Name)
	assert.Equal(t, "explicit wins", doc.Matter.Description)
	require.Len(t, doc.Matter.Extra, 1)
	assert.Equal(t, ir.Attr{Key: "model", Value: "sonnet"}, doc.Matter.Extra[0])
}

func TestSpreadFromCallExpressionRejected(t *testing.T) {
	src := `
const base = makeProps();
export default <Command {...base} name="n" description="d"><p>x</p></Command>;
`
	_, err := compileOne(t, src)
	requireCode(t, err, diag.CodeMalformedSpread)
}

func TestNamedBlockIdentifierRules(t *testing.T) {
	doc, err := compileOne(t, `<Block name="context" priority="1"><p>x</p></Block>`)
	require.NoError(t, err)
	xb := doc.Body[0].(*ir.XMLBlock)
	assert.Equal(t, "context", xb.Tag)
	assert.Equal(t, []ir.Attr{{Key: "priority", Value: "1"}}, xb.Attrs)

	for _, bad := range []string{"1context", "xmlthing", "has space"} {
		_, err := compileOne(t, fmt.Sprintf(`<Block name=%q><p>x</p></Block>`, bad))
		requireCode(t, err, diag.CodeInvalidIdentifier)
	}
}

func TestNamedBlockDefaultsToOwnTag(t *testing.T) {
	doc, err := compileOne(t, `<Block><p>x</p></Block>`)
	require.NoError(t, err)
	assert.Equal(t, "block", doc.Body[0].(*ir.XMLBlock).Tag)
}

func TestUnknownBlockAndInlineElements(t *testing.T) {
	_, err := compileOne(t, `<div>nope</div>`)
	de := requireCode(t, err, diag.CodeUnsupportedElement)
	assert.Contains(t, de.Message, "<div>")

	_, err = compileOne(t, `<p>text <span>nope</span></p>`)
	de = requireCode(t, err, diag.CodeUnsupportedElement)
	assert.Contains(t, de.Message, "inline")

	_, err = compileOne(t, `<p>text <ul><li>x</li></ul></p>`)
	de = requireCode(t, err, diag.CodeUnsupportedElement)
	assert.Contains(t, de.Message, "inline context")
}

func TestConditionalWithAdjacentElse(t *testing.T) {
	src := `
<Command name="n" description="d">
  <If condition="the build failed">
    <p>Fix it.</p>
  </If>
  <Else>
    <p>Ship it.</p>
  </Else>
</Command>
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	require.Len(t, doc.Body, 1)
	cond := doc.Body[0].(*ir.Conditional)
	assert.Equal(t, "the build failed", cond.Condition)
	require.Len(t, cond.Then, 1)
	assert.True(t, cond.HasElse)
	require.Len(t, cond.Else, 1)
}

func TestEmptyElseKeepsAlternateBranch(t *testing.T) {
	src := `
<Command name="n" description="d">
  <If condition="c"><p>a</p></If>
  <Else>
  </Else>
</Command>
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	require.Len(t, doc.Body, 1)
	cond := doc.Body[0].(*ir.Conditional)
	assert.True(t, cond.HasElse)
	assert.Empty(t, cond.Else)

	noElse, err := compileOne(t, `
<Command name="n" description="d">
  <If condition="c"><p>a</p></If>
</Command>
`)
	require.NoError(t, err)
	assert.False(t, noElse.Body[0].(*ir.Conditional).HasElse)
}

func TestOrphanElseRejected(t *testing.T) {
	src := `
<Command name="n" description="d">
  <If condition="c"><p>a</p></If>
  <p>between</p>
  <Else><p>b</p></Else>
</Command>
`
	_, err := compileOne(t, src)
	de := requireCode(t, err, diag.CodeUnsupportedElement)
	assert.Contains(t, de.Message, "Else")
}

func TestLoopDeclaresCounter(t *testing.T) {
	src := `
<Command name="n" description="d">
  <Loop max="5" counter="attempt">
    <p>Attempt {attempt} of 5.</p>
  </Loop>
</Command>
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	loop := doc.Body[0].(*ir.Loop)
	assert.Equal(t, "5", loop.Limit)
	assert.Equal(t, "attempt", loop.Counter)
	p := loop.Body[0].(*ir.Paragraph)
	var foundRef bool
	for _, inl := range p.Children {
		if ref, ok := inl.(*ir.VarRef); ok {
			foundRef = true
			assert.Equal(t, "attempt", ref.Name)
			assert.Empty(t, ref.Path)
		}
	}
	assert.True(t, foundRef, "counter reference should compile to a VarRef")
}

func TestReadFileRequiresPathAndBinding(t *testing.T) {
	_, err := compileOne(t, `<ReadFile as="CFG" />`)
	de := requireCode(t, err, diag.CodeMissingAttribute)
	assert.Contains(t, de.Message, `"path"`)

	_, err = compileOne(t, `<ReadFile path="cfg.json" />`)
	de = requireCode(t, err, diag.CodeMissingAttribute)
	assert.Contains(t, de.Message, `"as"`)

	doc, err := compileOne(t, `<ReadFile path="logs/*.txt" as="LOGS" required={false} />`)
	require.NoError(t, err)
	rf := doc.Body[0].(*ir.ReadFile)
	assert.Equal(t, "logs/*.txt", rf.Path)
	assert.Equal(t, "LOGS", rf.As)
	assert.False(t, rf.Required)
}

func TestAskUserBindsAnswer(t *testing.T) {
	src := `
<Command name="n" description="d">
  <AskUser prompt="Proceed?" options={["yes", "no"]} as="ANSWER" />
  <p>You said {ANSWER}.</p>
</Command>
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	ask := doc.Body[0].(*ir.AskUser)
	assert.Equal(t, []string{"yes", "no"}, ask.Options)
	assert.Equal(t, "ANSWER", ask.As)

	p := doc.Body[1].(*ir.Paragraph)
	var ref *ir.VarRef
	for _, inl := range p.Children {
		if r, ok := inl.(*ir.VarRef); ok {
			ref = r
		}
	}
	require.NotNil(t, ref)
	assert.Equal(t, "ANSWER", ref.Name)
}

func TestScriptVariablePathAccess(t *testing.T) {
	src := `
const CTX = script("kubectl get deploy -o json");
export default <Command name="n" description="d">
  <p>Phase: {CTX.status.phase}</p>
</Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	p := doc.Body[0].(*ir.Paragraph)
	var ref *ir.VarRef
	for _, inl := range p.Children {
		if r, ok := inl.(*ir.VarRef); ok {
			ref = r
		}
	}
	require.NotNil(t, ref)
	assert.Equal(t, "CTX", ref.Name)
	assert.Equal(t, []string{"status", "phase"}, ref.Path)
}

func TestSpawnAgentPromptInputExclusive(t *testing.T) {
	_, err := compileOne(t,
		`<SpawnAgent agent="a" model="m" description="d" prompt="x" input={{ topic: "y" }} />`)
	requireCode(t, err, diag.CodeExclusiveAttributes)

	_, err = compileOne(t, `<SpawnAgent agent="a" model="m" description="d" />`)
	requireCode(t, err, diag.CodeMissingAttribute)
}

func TestSpawnAgentInputTypeValidation(t *testing.T) {
	const withType = `
interface ResearchInput {
  topic: string;
  depth: number;
  audience?: string;
}
export default <SpawnAgent agent="researcher" model="opus" description="d"
  inputType="ResearchInput" input={{ topic: "go", %s }} />;
`
	_, err := compileOne(t, fmt.Sprintf(withType, `audience: "devs"`))
	de := requireCode(t, err, diag.CodeTypeContract)
	assert.Contains(t, de.Message, "depth")
	assert.NotContains(t, de.Message, "audience")

	doc, err := compileOne(t, fmt.Sprintf(withType, `depth: 2`))
	require.NoError(t, err)
	spawn := doc.Body[0].(*ir.SpawnAgent)
	assert.Equal(t, "ResearchInput", spawn.InputType)
	assert.False(t, spawn.HasPrompt)
}

func TestSpawnAgentWithoutTypeSkipsValidation(t *testing.T) {
	doc, err := compileOne(t,
		`<SpawnAgent agent="a" model="m" description="d" input={{ anything: "goes" }} />`)
	require.NoError(t, err)
	spawn := doc.Body[0].(*ir.SpawnAgent)
	assert.Equal(t, []ir.Attr{{Key: "anything", Value: "goes"}}, spawn.Input)
}

func TestTemplateLiteralInterpolationModes(t *testing.T) {
	src := "<ReadFile path={`logs/${name}.txt`} as=\"LOG\" />"

	doc, err := compileFiles(t, map[string]string{"/u.tsx": src}, "/u.tsx", Options{})
	require.NoError(t, err)
	assert.Equal(t, "logs/{name}.txt", doc.Body[0].(*ir.ReadFile).Path)

	doc, err = compileFiles(t, map[string]string{"/u.tsx": src}, "/u.tsx",
		Options{Interpolation: PreserveInterpolation})
	require.NoError(t, err)
	assert.Equal(t, "logs/${name}.txt", doc.Body[0].(*ir.ReadFile).Path)
}

func TestTemplateLiteralScriptVarAlwaysAccessor(t *testing.T) {
	src := "const ENV = script(\"env\");\n" +
		"export default <ReadFile path={`${ENV.workdir}/cfg.yaml`} as=\"CFG\" />;"
	for _, mode := range []InterpolationMode{NormalizeInterpolation, PreserveInterpolation} {
		doc, err := compileFiles(t, map[string]string{"/u.tsx": src}, "/u.tsx", Options{Interpolation: mode})
		require.NoError(t, err)
		assert.Equal(t, "$ENV.workdir/cfg.yaml", doc.Body[0].(*ir.ReadFile).Path)
	}
}

func TestCodeBlockPreservesContent(t *testing.T) {
	src := "<pre><code className=\"language-go\">{`func main() {\n\tprintln(\"hi\")\n}`}</code></pre>"
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	cb := doc.Body[0].(*ir.CodeBlock)
	assert.Equal(t, "go", cb.Lang)
	assert.Equal(t, "func main() {\n\tprintln(\"hi\")\n}", cb.Content)
}

func TestMarkdownRawPassthrough(t *testing.T) {
	src := "<Markdown>{`First line.\n\nAfter a blank line.\n`}</Markdown>"
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	raw := doc.Body[0].(*ir.Raw)
	assert.Equal(t, "First line.\n\nAfter a blank line.", raw.Text)
}

func TestTableFromAttrs(t *testing.T) {
	src := `<Table headers={["Tool", "Use"]} rows={[["Read", "files"], ["Grep", "search"]]} />`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	tbl := doc.Body[0].(*ir.Table)
	assert.Equal(t, []string{"Tool", "Use"}, tbl.Header)
	assert.Equal(t, [][]string{{"Read", "files"}, {"Grep", "search"}}, tbl.Rows)
}

func TestLinkRequiresHref(t *testing.T) {
	_, err := compileOne(t, `<p><a>docs</a></p>`)
	requireCode(t, err, diag.CodeMissingAttribute)

	doc, err := compileOne(t, `<p><a href="https://example.com">docs</a></p>`)
	require.NoError(t, err)
	link := doc.Body[0].(*ir.Paragraph).Children[0].(*ir.Link)
	assert.Equal(t, "https://example.com", link.URL)
}

func TestNestedRootRejected(t *testing.T) {
	_, err := compileOne(t, `<Command name="n" description="d"><Command name="x" description="y" /></Command>`)
	de := requireCode(t, err, diag.CodeUnsupportedElement)
	assert.Contains(t, de.Message, "document root")
}

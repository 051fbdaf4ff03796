package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/promptc/internal/diag"
	"github.com/agentic-research/promptc/internal/ir"
)

func firstParagraphText(t *testing.T, b ir.Block) string {
	t.Helper()
	p, ok := b.(*ir.Paragraph)
	require.True(t, ok, "expected paragraph, got %T", b)
	require.NotEmpty(t, p.Children)
	txt, ok := p.Children[0].(*ir.Text)
	require.True(t, ok, "expected text, got %T", p.Children[0])
	return txt.Text
}

func TestLocalCompositeExpansion(t *testing.T) {
	src := `
function Steps() {
  return <ol><li>Plan</li><li>Execute</li></ol>;
}
export default <Command name="n" description="d">
  <Steps />
</Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	require.Len(t, doc.Body, 1)
	l := doc.Body[0].(*ir.List)
	assert.True(t, l.Ordered)
	require.Len(t, l.Items, 2)
}

func TestCompositePropSubstitution(t *testing.T) {
	src := `
const Warning = ({ level }) => (
  <blockquote><p>Severity: {level}</p></blockquote>
);
export default <Command name="n" description="d">
  <Warning level="high" />
</Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	bq := doc.Body[0].(*ir.Blockquote)
	assert.Equal(t, "Severity: high", firstParagraphText(t, bq.Children[0]))
}

func TestCompositePropsParamStyle(t *testing.T) {
	src := `
function Banner(props) {
  return <h2>{props.title}</h2>;
}
export default <Command name="n" description="d">
  <Banner title="Setup" />
</Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	h := doc.Body[0].(*ir.Heading)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, &ir.Text{Text: "Setup"}, h.Children[0])
}

func TestCompositeMissingPropRejected(t *testing.T) {
	src := `
const Warning = ({ level }) => <p>{level}</p>;
export default <Command name="n" description="d">
  <Warning />
</Command>;
`
	_, err := compileOne(t, src)
	requireCode(t, err, diag.CodeMissingAttribute)
}

func TestCompositeComputedPropRejected(t *testing.T) {
	src := `
const Warning = ({ level }) => <p>{level}</p>;
export default <Command name="n" description="d">
  <Warning level={compute()} />
</Command>;
`
	_, err := compileOne(t, src)
	requireCode(t, err, diag.CodeUnresolvableRef)
}

func TestCompositeChildrenSplice(t *testing.T) {
	src := `
const Section = ({ children }) => (
  <Block name="section">
    {children}
  </Block>
);
export default <Command name="n" description="d">
  <Section>
    <p>Spliced body.</p>
  </Section>
</Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	xb := doc.Body[0].(*ir.XMLBlock)
	assert.Equal(t, "section", xb.Tag)
	require.Len(t, xb.Children, 1)
	assert.Equal(t, "Spliced body.", firstParagraphText(t, xb.Children[0]))
}

func TestCompositeChildrenScopeIsCallSite(t *testing.T) {
	// {answer} inside the spliced children must resolve against the
	// caller's bindings, not the composite's props.
	src := `
const Wrap = ({ children }) => (
  <Block name="wrap">
    {children}
  </Block>
);
export default <Command name="n" description="d">
  <AskUser prompt="?" as="ANSWER" />
  <Wrap>
    <p>{ANSWER}</p>
  </Wrap>
</Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	xb := doc.Body[1].(*ir.XMLBlock)
	p := xb.Children[0].(*ir.Paragraph)
	ref, ok := p.Children[0].(*ir.VarRef)
	require.True(t, ok, "expected VarRef, got %T", p.Children[0])
	assert.Equal(t, "ANSWER", ref.Name)
}

func TestCompositeFragmentBody(t *testing.T) {
	src := `
const Pair = () => (
  <>
    <p>First.</p>
    <p>Second.</p>
  </>
);
export default <Command name="n" description="d">
  <Pair />
</Command>;
`
	doc, err := compileOne(t, src)
	require.NoError(t, err)
	require.Len(t, doc.Body, 2)
	assert.Equal(t, "First.", firstParagraphText(t, doc.Body[0]))
	assert.Equal(t, "Second.", firstParagraphText(t, doc.Body[1]))
}

func TestImportedCompositeNamedExport(t *testing.T) {
	files := map[string]string{
		"/shared/warning.tsx": `
export const Warning = ({ text }) => <blockquote><p>{text}</p></blockquote>;
`,
		"/cmd.tsx": `
import { Warning } from "./shared/warning";
export default <Command name="n" description="d">
  <Warning text="careful" />
</Command>;
`,
	}
	doc, err := compileFiles(t, files, "/cmd.tsx", Options{})
	require.NoError(t, err)
	bq := doc.Body[0].(*ir.Blockquote)
	assert.Equal(t, "careful", firstParagraphText(t, bq.Children[0]))
}

func TestImportedCompositeDefaultExport(t *testing.T) {
	files := map[string]string{
		"/parts/footer.tsx": `
export default function Footer() {
  return <p>End of instructions.</p>;
}
`,
		"/cmd.tsx": `
import Footer from "./parts/footer.tsx";
export default <Command name="n" description="d">
  <Footer />
</Command>;
`,
	}
	doc, err := compileFiles(t, files, "/cmd.tsx", Options{})
	require.NoError(t, err)
	assert.Equal(t, "End of instructions.", firstParagraphText(t, doc.Body[0]))
}

func TestImportedCompositeAliased(t *testing.T) {
	files := map[string]string{
		"/parts/note.tsx": `
export const Note = () => <p>A note.</p>;
`,
		"/cmd.tsx": `
import { Note as Reminder } from "./parts/note";
export default <Command name="n" description="d">
  <Reminder />
</Command>;
`,
	}
	doc, err := compileFiles(t, files, "/cmd.tsx", Options{})
	require.NoError(t, err)
	assert.Equal(t, "A note.", firstParagraphText(t, doc.Body[0]))
}

func TestNonRelativeImportRejected(t *testing.T) {
	files := map[string]string{
		"/cmd.tsx": `
import { Widget } from "some-package";
export default <Command name="n" description="d">
  <Widget />
</Command>;
`,
	}
	_, err := compileFiles(t, files, "/cmd.tsx", Options{})
	requireCode(t, err, diag.CodeUnresolvableRef)
}

func TestUnknownCompositeRejected(t *testing.T) {
	_, err := compileOne(t, `<Command name="n" description="d"><Nowhere /></Command>`)
	de := requireCode(t, err, diag.CodeUnsupportedElement)
	assert.Contains(t, de.Message, "<Nowhere>")
}

func TestSelfCycleRejected(t *testing.T) {
	src := `
const Echo = () => <Block name="echo"><Echo /></Block>;
export default <Command name="n" description="d">
  <Echo />
</Command>;
`
	_, err := compileOne(t, src)
	de := requireCode(t, err, diag.CodeCircularRef)
	assert.Contains(t, de.Message, "Echo")
}

func TestCrossUnitCycleRejected(t *testing.T) {
	files := map[string]string{
		"/a.tsx": `
import { B } from "./b";
export const A = () => <Block name="a"><B /></Block>;
`,
		"/b.tsx": `
import { A } from "./a";
export const B = () => <Block name="b"><A /></Block>;
`,
		"/cmd.tsx": `
import { A } from "./a";
export default <Command name="n" description="d">
  <A />
</Command>;
`,
	}
	_, err := compileFiles(t, files, "/cmd.tsx", Options{})
	requireCode(t, err, diag.CodeCircularRef)
}

func TestDiamondReuseIsNotACycle(t *testing.T) {
	// The same composite used twice as siblings must expand twice.
	files := map[string]string{
		"/leaf.tsx": `
export const Leaf = () => <p>leaf</p>;
`,
		"/cmd.tsx": `
import { Leaf } from "./leaf";
export default <Command name="n" description="d">
  <Leaf />
  <Leaf />
</Command>;
`,
	}
	doc, err := compileFiles(t, files, "/cmd.tsx", Options{})
	require.NoError(t, err)
	require.Len(t, doc.Body, 2)
}

func TestUnexportedImportRejected(t *testing.T) {
	files := map[string]string{
		"/parts/hidden.tsx": `
const Hidden = () => <p>secret</p>;
`,
		"/cmd.tsx": `
import { Hidden } from "./parts/hidden";
export default <Command name="n" description="d">
  <Hidden />
</Command>;
`,
	}
	_, err := compileFiles(t, files, "/cmd.tsx", Options{})
	requireCode(t, err, diag.CodeUnresolvableRef)
}

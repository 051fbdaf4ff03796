package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStringsAreTotal(t *testing.T) {
	for _, k := range Kinds() {
		assert.NotContains(t, k.String(), "unknown", "kind %d has no name", int(k))
	}
	assert.Contains(t, Kind(9999).String(), "unknown")
}

func TestNodeKindsMatchTheirTypes(t *testing.T) {
	cases := []struct {
		node Node
		kind Kind
	}{
		{&Document{}, KindDocument},
		{&Heading{}, KindHeading},
		{&Paragraph{}, KindParagraph},
		{&List{}, KindList},
		{&ListItem{}, KindListItem},
		{&Blockquote{}, KindBlockquote},
		{&CodeBlock{}, KindCodeBlock},
		{&ThematicBreak{}, KindThematicBreak},
		{&XMLBlock{}, KindXMLBlock},
		{&Raw{}, KindRaw},
		{&Text{}, KindText},
		{&Bold{}, KindBold},
		{&Italic{}, KindItalic},
		{&InlineCode{}, KindInlineCode},
		{&LineBreak{}, KindLineBreak},
		{&Link{}, KindLink},
		{&Conditional{}, KindConditional},
		{&Loop{}, KindLoop},
		{&Break{}, KindBreak},
		{&Return{}, KindReturn},
		{&AskUser{}, KindAskUser},
		{&SpawnAgent{}, KindSpawnAgent},
		{&ReadFile{}, KindReadFile},
		{&Table{}, KindTable},
		{&VarRef{}, KindVarRef},
		{&FuncRef{}, KindFuncRef},
	}
	seen := make(map[Kind]bool, len(cases))
	for _, tc := range cases {
		assert.Equal(t, tc.kind, tc.node.Kind())
		seen[tc.kind] = true
	}
	assert.Len(t, seen, len(Kinds()), "every kind has a node type")
}

func TestVarRefDotIsPure(t *testing.T) {
	base := VarRef{Name: "CTX"}
	a := base.Dot("status")
	b := a.Dot("phase")

	assert.Empty(t, base.Path, "Dot must not mutate the receiver")
	assert.Equal(t, []string{"status"}, a.Path)
	assert.Equal(t, []string{"status", "phase"}, b.Path)
}

func TestVarRefAccessor(t *testing.T) {
	assert.Equal(t, "$CTX", (&VarRef{Name: "CTX"}).Accessor())
	assert.Equal(t, "$CTX.status.phase",
		(&VarRef{Name: "CTX", Path: []string{"status", "phase"}}).Accessor())
}

func TestFrontmatterKindString(t *testing.T) {
	assert.Equal(t, "command", MatterCommand.String())
	assert.Equal(t, "agent", MatterAgent.String())
}

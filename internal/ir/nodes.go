// Package ir defines the document model produced by the transformer and
// consumed by the emitter. A tree is built once per compiled unit, is not
// mutated after construction, and is discarded after emission. Every node is
// owned by exactly one parent; nothing is shared across units.
package ir

// Node is any member of the document model.
type Node interface {
	Kind() Kind
}

// Block is a node that occupies vertical space in the emitted document.
type Block interface {
	Node
	block()
}

// Inline is a node that flows inside a block's text content.
type Inline interface {
	Node
	inline()
}

// Document is the root of one compiled unit. Matter, when present, always
// precedes Body and never nests.
type Document struct {
	Matter *Frontmatter
	Body   []Block
}

func (*Document) Kind() Kind { return KindDocument }

// Heading is a Markdown heading, Level 1 through 6.
type Heading struct {
	Level    int
	Children []Inline
}

type Paragraph struct {
	Children []Inline
}

// List holds one or more items. Ordered lists restart numbering at 1; the
// counter is never carried across sibling lists.
type List struct {
	Ordered bool
	Items   []*ListItem
}

// ListItem holds one or more blocks. The first block carries the item
// marker; any further blocks (including nested lists) indent under it.
type ListItem struct {
	Children []Block
}

type Blockquote struct {
	Children []Block
}

// CodeBlock preserves Content byte-for-byte; no whitespace normalization.
type CodeBlock struct {
	Lang    string
	Content string
}

type ThematicBreak struct{}

// XMLBlock emits as literal angle-bracket open/close tags around its
// children. Tag has already passed identifier validation; Attrs keep
// declaration order.
type XMLBlock struct {
	Tag      string
	Attrs    []Attr
	Children []Block
}

// Attr is one serialized key="value" pair.
type Attr struct {
	Key   string
	Value string
}

// Raw is pre-formatted passthrough text. Outer whitespace is trimmed at
// construction; interior blank lines survive.
type Raw struct {
	Text string
}

// Text is literal inline text, whitespace-normalized at construction: runs
// of whitespace collapsed to one space, ends trimmed.
type Text struct {
	Text string
}

type Bold struct {
	Children []Inline
}

type Italic struct {
	Children []Inline
}

// InlineCode content is not normalized.
type InlineCode struct {
	Text string
}

type LineBreak struct{}

type Link struct {
	URL      string
	Children []Inline
}

func (*Heading) Kind() Kind       { return KindHeading }
func (*Paragraph) Kind() Kind     { return KindParagraph }
func (*List) Kind() Kind          { return KindList }
func (*ListItem) Kind() Kind      { return KindListItem }
func (*Blockquote) Kind() Kind    { return KindBlockquote }
func (*CodeBlock) Kind() Kind     { return KindCodeBlock }
func (*ThematicBreak) Kind() Kind { return KindThematicBreak }
func (*XMLBlock) Kind() Kind      { return KindXMLBlock }
func (*Raw) Kind() Kind           { return KindRaw }
func (*Text) Kind() Kind          { return KindText }
func (*Bold) Kind() Kind          { return KindBold }
func (*Italic) Kind() Kind        { return KindItalic }
func (*InlineCode) Kind() Kind    { return KindInlineCode }
func (*LineBreak) Kind() Kind     { return KindLineBreak }
func (*Link) Kind() Kind          { return KindLink }

func (*Heading) block()       {}
func (*Paragraph) block()     {}
func (*List) block()          {}
func (*Blockquote) block()    {}
func (*CodeBlock) block()     {}
func (*ThematicBreak) block() {}
func (*XMLBlock) block()      {}
func (*Raw) block()           {}

func (*Text) inline()       {}
func (*Bold) inline()       {}
func (*Italic) inline()     {}
func (*InlineCode) inline() {}
func (*LineBreak) inline()  {}
func (*Link) inline()       {}

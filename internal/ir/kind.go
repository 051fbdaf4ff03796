package ir

import "fmt"

// Kind discriminates every node in the compiled document model. The set is
// closed: switches over Kind carry a panicking default arm so a new variant
// cannot be added without updating every consumer.
type Kind int

const (
	KindDocument Kind = iota
	KindHeading
	KindParagraph
	KindList
	KindListItem
	KindBlockquote
	KindCodeBlock
	KindThematicBreak
	KindXMLBlock
	KindRaw
	KindText
	KindBold
	KindItalic
	KindInlineCode
	KindLineBreak
	KindLink
	KindConditional
	KindLoop
	KindBreak
	KindReturn
	KindAskUser
	KindSpawnAgent
	KindReadFile
	KindTable
	KindVarRef
	KindFuncRef
)

var kindNames = map[Kind]string{
	KindDocument:      "Document",
	KindHeading:       "Heading",
	KindParagraph:     "Paragraph",
	KindList:          "List",
	KindListItem:      "ListItem",
	KindBlockquote:    "Blockquote",
	KindCodeBlock:     "CodeBlock",
	KindThematicBreak: "ThematicBreak",
	KindXMLBlock:      "XMLBlock",
	KindRaw:           "Raw",
	KindText:          "Text",
	KindBold:          "Bold",
	KindItalic:        "Italic",
	KindInlineCode:    "InlineCode",
	KindLineBreak:     "LineBreak",
	KindLink:          "Link",
	KindConditional:   "Conditional",
	KindLoop:          "Loop",
	KindBreak:         "Break",
	KindReturn:        "Return",
	KindAskUser:       "AskUser",
	KindSpawnAgent:    "SpawnAgent",
	KindReadFile:      "ReadFile",
	KindTable:         "Table",
	KindVarRef:        "VarRef",
	KindFuncRef:       "FuncRef",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("<unknown kind %d>", int(k))
}

// Kinds returns every variant, in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, 0, len(kindNames))
	for k := KindDocument; k <= KindFuncRef; k++ {
		ks = append(ks, k)
	}
	return ks
}

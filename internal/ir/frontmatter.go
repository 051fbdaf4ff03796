package ir

// MatterKind distinguishes the two document roots that carry metadata.
type MatterKind int

const (
	MatterCommand MatterKind = iota
	MatterAgent
)

func (m MatterKind) String() string {
	switch m {
	case MatterCommand:
		return "command"
	case MatterAgent:
		return "agent"
	default:
		return "<unknown matter kind>"
	}
}

// Frontmatter is the structured metadata header of a compiled unit. Name and
// Description are always set; the transformer rejects roots without them.
// AllowedTools applies to commands, Tools/Color/InputType to agents. Extra
// holds author-supplied custom fields in declaration order.
type Frontmatter struct {
	Kind        MatterKind
	Name        string
	Description string

	AllowedTools []string

	Tools     string
	Color     string
	InputType string

	Extra []Attr
}

package transform

// Registry is the recognized element vocabulary, split into the three
// disjoint sets the transformer dispatches on. It is injected rather than
// referenced as package state so tests can shrink or extend the vocabulary.
type Registry struct {
	// Roots are the document-root tags that carry frontmatter.
	Roots map[string]bool
	// Content are the document primitives, block and inline.
	Content map[string]bool
	// Control are the orchestration directives.
	Control map[string]bool

	inline map[string]bool
}

// DefaultRegistry returns the fixed vocabulary the compiler ships with.
func DefaultRegistry() *Registry {
	return &Registry{
		Roots: set("Command", "Agent"),
		Content: set(
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "ul", "ol", "li", "blockquote", "pre", "hr",
			"Block", "Markdown", "Table",
			"b", "strong", "i", "em", "code", "a", "br",
		),
		Control: set("If", "Else", "Loop", "Break", "Return", "AskUser", "SpawnAgent", "ReadFile"),
		inline:  set("b", "strong", "i", "em", "code", "a", "br"),
	}
}

// Known reports whether tag belongs to any of the three sets.
func (r *Registry) Known(tag string) bool {
	return r.Roots[tag] || r.Content[tag] || r.Control[tag]
}

// Inline reports whether tag is an inline mark.
func (r *Registry) Inline(tag string) bool {
	return r.inline[tag]
}

func set(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}

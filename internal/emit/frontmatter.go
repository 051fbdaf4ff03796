package emit

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentic-research/promptc/internal/ir"
)

// frontmatter renders the fenced metadata header. Field order is fixed for
// the known fields and follows declaration order for custom ones; array
// fields always come out in block hyphen-list style.
func frontmatter(m *ir.Frontmatter) string {
	ms := yaml.MapSlice{
		{Key: "name", Value: m.Name},
		{Key: "description", Value: m.Description},
	}
	switch m.Kind {
	case ir.MatterCommand:
		if len(m.AllowedTools) > 0 {
			ms = append(ms, yaml.MapItem{Key: "allowed-tools", Value: m.AllowedTools})
		}
	case ir.MatterAgent:
		if m.Tools != "" {
			ms = append(ms, yaml.MapItem{Key: "tools", Value: m.Tools})
		}
		if m.Color != "" {
			ms = append(ms, yaml.MapItem{Key: "color", Value: m.Color})
		}
		if m.InputType != "" {
			ms = append(ms, yaml.MapItem{Key: "input-type", Value: m.InputType})
		}
	}
	for _, attr := range m.Extra {
		ms = append(ms, yaml.MapItem{Key: kebab(attr.Key), Value: attr.Value})
	}

	encoded, err := yaml.Marshal(ms)
	if err != nil {
		// MapSlice of strings cannot fail to marshal; treat it like any
		// other internal inconsistency.
		panic(fmt.Sprintf("emit: frontmatter marshal: %v", err))
	}
	return "---\n" + string(encoded) + "---\n"
}

// kebab converts a camelCase attribute key to the kebab-case frontmatter
// convention (argumentHint -> argument-hint). Already-kebab keys pass
// through.
func kebab(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

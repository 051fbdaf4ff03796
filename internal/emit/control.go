package emit

import (
	"fmt"
	"strings"

	"github.com/agentic-research/promptc/internal/ir"
)

// Control-flow nodes render as bolded instruction lines for the downstream
// interpreter; none of this is executable structure.

func conditional(n *ir.Conditional) string {
	var sb strings.Builder
	sb.WriteString("**If ")
	sb.WriteString(n.Condition)
	sb.WriteString(":**")
	if inner := blocks(n.Then); inner != "" {
		sb.WriteString("\n\n")
		sb.WriteString(inner)
	}
	if n.HasElse {
		sb.WriteString("\n\n**Otherwise:**")
		if inner := blocks(n.Else); inner != "" {
			sb.WriteString("\n\n")
			sb.WriteString(inner)
		}
	}
	return sb.String()
}

func loop(n *ir.Loop) string {
	var sb strings.Builder
	switch {
	case n.Limit != "" && n.Counter != "":
		fmt.Fprintf(&sb, "**Repeat (up to %s times, counter $%s):**", n.Limit, n.Counter)
	case n.Limit != "":
		fmt.Fprintf(&sb, "**Repeat (up to %s times):**", n.Limit)
	case n.Counter != "":
		fmt.Fprintf(&sb, "**Repeat (counter $%s):**", n.Counter)
	default:
		sb.WriteString("**Repeat:**")
	}
	if inner := blocks(n.Body); inner != "" {
		sb.WriteString("\n\n")
		sb.WriteString(inner)
	}
	return sb.String()
}

func statusLine(verb, status, message string) string {
	head := verb
	if status != "" {
		head = fmt.Sprintf("%s (%s)", verb, status)
	}
	if message == "" {
		return "**" + head + ".**"
	}
	return "**" + head + ":** " + message
}

func askUser(n *ir.AskUser) string {
	var sb strings.Builder
	sb.WriteString("**Ask the user:** ")
	sb.WriteString(n.Prompt)
	if len(n.Options) > 0 {
		sb.WriteString("\n")
		for _, opt := range n.Options {
			sb.WriteString("\n- ")
			sb.WriteString(opt)
		}
	}
	fmt.Fprintf(&sb, "\n\nStore the answer as $%s.", n.As)
	return sb.String()
}

func spawnAgent(n *ir.SpawnAgent) string {
	var sb strings.Builder
	sb.WriteString("<spawn-agent")
	fmt.Fprintf(&sb, " agent=%q model=%q", n.Agent, n.Model)
	if n.InputType != "" {
		fmt.Fprintf(&sb, " input-type=%q", n.InputType)
	}
	sb.WriteString(">\n")
	sb.WriteString(n.Description)
	sb.WriteString("\n")
	if n.HasPrompt {
		sb.WriteString("\nPrompt:\n")
		sb.WriteString(n.Prompt)
		sb.WriteString("\n")
	} else {
		sb.WriteString("\nInput:\n")
		for _, field := range n.Input {
			fmt.Fprintf(&sb, "- %s: %s\n", field.Key, field.Value)
		}
	}
	if n.Instructions != "" {
		sb.WriteString("\n")
		sb.WriteString(n.Instructions)
		sb.WriteString("\n")
	}
	sb.WriteString("</spawn-agent>")
	return sb.String()
}

func readFile(n *ir.ReadFile) string {
	if n.Required {
		return fmt.Sprintf("**Read `%s` into $%s.**", n.Path, n.As)
	}
	return fmt.Sprintf("**Read `%s` into $%s (optional; continue if it is missing).**", n.Path, n.As)
}

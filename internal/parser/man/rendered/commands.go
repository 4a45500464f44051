package rendered

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// ParseCommandsSection extracts subcommand rows from COMMANDS-style sections.
// Rows look like "clone   Clone a repository" or "clone - Clone a repository".
func ParseCommandsSection(section *Section) []candidate.Subcommand {
	var out []candidate.Subcommand
	seen := map[string]bool{}

	for _, line := range section.Lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" || strings.HasPrefix(trimmed, "-") {
			continue
		}

		name, description := splitCommandRow(trimmed)
		if !looksLikeCommandName(name) {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		sub := schema.NewSubcommand(name)
		sub.Description = description
		out = append(out, candidate.NewSubcommand(sub,
			candidate.SingleSpan(line.Index), "man-rendered-commands", 0.83))
	}

	return out
}

func splitCommandRow(row string) (name, description string) {
	if head, rest, ok := strings.Cut(row, "\t"); ok {
		return strings.TrimSpace(head), strings.TrimSpace(rest)
	}
	if head, rest, ok := strings.Cut(row, "  "); ok {
		return strings.TrimSpace(head), strings.TrimSpace(rest)
	}
	if head, rest, ok := strings.Cut(row, " - "); ok {
		return strings.TrimSpace(head), strings.TrimSpace(rest)
	}
	return row, ""
}

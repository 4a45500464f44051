package rendered

import (
	"sort"
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

const synopsisCutset = "[]<>{}(),;"

// ParseSynopsisFlags extracts flag candidates token-by-token from SYNOPSIS
// lines. Pipe- or comma-joined aliases inside one token are split apart.
func ParseSynopsisFlags(section *Section) []candidate.Flag {
	var out []candidate.Flag
	seen := map[string]bool{}

	for _, line := range section.Lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			continue
		}

		tokens := strings.Fields(trimmed)
		for i := range tokens {
			tokens[i] = strings.Trim(tokens[i], synopsisCutset)
		}

		for idx, token := range tokens {
			if !strings.HasPrefix(token, "-") {
				continue
			}

			for _, alias := range splitFlagAliases(token) {
				name := alias
				inlineValue := false
				// "=VALUE" and "[=VALUE]" both mark an inline value.
				if cut := strings.IndexAny(alias, "=["); cut >= 0 {
					name = alias[:cut]
					inlineValue = true
				}

				var flag schema.FlagSchema
				if strings.HasPrefix(name, "--") {
					flag = schema.BooleanFlag("", name)
				} else {
					// All single-dash forms stay short-style to avoid
					// invalid long names like "-foo".
					flag = schema.BooleanFlag(name, "")
				}

				if inlineValue {
					flag.TakesValue = true
					flag.ValueType = schema.ValueType{Kind: schema.ValueString}
				} else if idx+1 < len(tokens) && looksLikeValuePlaceholder(tokens[idx+1]) {
					flag.TakesValue = true
					flag.ValueType = InferValueType(tokens[idx+1])
				}

				key := flag.CanonicalName()
				if key == "" || key == "unknown" || seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, candidate.NewFlag(flag,
					candidate.SingleSpan(line.Index), "man-rendered-synopsis-flags", 0.70))
			}
		}
	}

	return out
}

// ParseSynopsisArgs extracts positional-argument candidates from SYNOPSIS
// lines. The leading unbracketed command token is skipped, brackets mark
// optional, and "..." marks repeatable.
func ParseSynopsisArgs(section *Section) []candidate.Arg {
	var out []candidate.Arg
	seen := map[string]bool{}

	// Subcommand names are pre-computed from the joined synopsis so that
	// continuation lines, which lack the root command token, still filter.
	subcommands := synopsisSubcommandHeads(joinSynopsisText(section))

	for _, line := range section.Lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			continue
		}

		for idx, raw := range strings.Fields(trimmed) {
			if strings.HasPrefix(raw, "-") {
				continue
			}
			bracketed := strings.ContainsAny(raw, "[<{")
			token := normalizeSynopsisToken(raw)
			if token == "" || strings.HasPrefix(token, "-") {
				continue
			}

			// Synopsis lines are usually "<command> [args...]"; the
			// unbracketed leading token is the command itself.
			if idx == 0 && !bracketed {
				continue
			}

			if !looksLikeArgToken(token) {
				continue
			}
			name := strings.ToLower(token)
			if subcommands[name] || seen[name] {
				continue
			}
			seen[name] = true

			arg := schema.OptionalArg(name, InferValueType(token))
			arg.Required = !strings.Contains(raw, "[")
			arg.Multiple = strings.Contains(raw, "...")
			out = append(out, candidate.NewArg(arg,
				candidate.SingleSpan(line.Index), "man-rendered-synopsis-args", 0.75))
		}
	}

	return out
}

// ParseSynopsisSubcommands recognizes pipe-separated verb alternatives in the
// synopsis ("apt-get install ... | remove ... | update").
func ParseSynopsisSubcommands(section *Section) []candidate.Subcommand {
	names := synopsisSubcommandHeads(joinSynopsisText(section))
	spanIndex := 0
	if len(section.Lines) > 0 {
		spanIndex = section.Lines[0].Index
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	out := make([]candidate.Subcommand, 0, len(sorted))
	for _, name := range sorted {
		out = append(out, candidate.NewSubcommand(schema.NewSubcommand(name),
			candidate.SingleSpan(spanIndex), "man-rendered-synopsis-subcommands", 0.78))
	}
	return out
}

func looksLikeArgToken(token string) bool {
	hasAlnum := false
	for _, ch := range token {
		if isAlphanumeric(ch) {
			hasAlnum = true
			continue
		}
		if ch != '_' && ch != '-' && ch != '.' {
			return false
		}
	}
	return hasAlnum
}

func looksLikeValuePlaceholder(token string) bool {
	cleaned := normalizeSynopsisToken(token)
	return cleaned != "" && looksLikeArgToken(cleaned)
}

func normalizeSynopsisToken(raw string) string {
	// Ellipses can sit inside or outside the brackets ("[FILE]...", "[FILE...]").
	token := strings.Trim(strings.TrimSuffix(raw, "..."), synopsisCutset)
	token = strings.TrimSuffix(token, "...")
	return strings.TrimSpace(strings.Trim(token, synopsisCutset))
}

func splitFlagAliases(token string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(token, func(ch rune) bool {
		return ch == '|' || ch == ','
	}) {
		part = strings.TrimSpace(part)
		if part != "" && strings.HasPrefix(part, "-") {
			out = append(out, part)
		}
	}
	return out
}

// synopsisSubcommandHeads finds the first plausible command token of each
// pipe-separated segment. At least two distinct candidates are required so
// that synopsis lines using pipes only for flag alternatives do not produce
// false subcommands.
func synopsisSubcommandHeads(line string) map[string]bool {
	out := map[string]bool{}
	if !strings.Contains(line, "|") {
		return out
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return out
	}
	root := normalizeSynopsisToken(fields[0])
	if !looksLikeCommandName(root) {
		return out
	}
	rootLower := strings.ToLower(root)

	for _, segment := range strings.Split(line, "|") {
		skipNext := false
		for _, raw := range strings.Fields(segment) {
			if skipNext {
				skipNext = false
				continue
			}
			token := normalizeSynopsisToken(raw)
			if token == "" {
				continue
			}
			tokenLower := strings.ToLower(token)
			if tokenLower == rootLower {
				continue
			}
			if strings.HasPrefix(token, "-") {
				// A bare flag without an inline value consumes the next
				// token as its operand ("-e pattern").
				if !strings.Contains(raw, "=") && !strings.Contains(raw, "]") {
					skipNext = true
				}
				continue
			}
			if strings.ContainsAny(raw, "<>[") ||
				!looksLikeCommandName(token) ||
				isPlaceholderCommandToken(tokenLower) {
				continue
			}
			out[tokenLower] = true
			break
		}
	}

	if len(out) < 2 {
		return map[string]bool{}
	}
	return out
}

func joinSynopsisText(section *Section) string {
	parts := make([]string, 0, len(section.Lines))
	for _, line := range section.Lines {
		if trimmed := strings.TrimSpace(line.Text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

func looksLikeCommandName(token string) bool {
	if token == "" {
		return false
	}
	first := rune(token[0])
	if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return false
	}
	for _, ch := range token {
		if !isAlphanumeric(ch) && ch != '-' && ch != '_' {
			return false
		}
	}
	return true
}

func isPlaceholderCommandToken(token string) bool {
	switch token {
	case "command", "commands", "cmd", "subcommand", "option", "options":
		return true
	default:
		return false
	}
}

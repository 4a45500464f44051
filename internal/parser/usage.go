package parser

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

func isUsageLine(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "usage:") ||
		strings.HasPrefix(lower, "or:") ||
		strings.HasPrefix(lower, "usage is ") ||
		strings.Contains(lower, ": usage is ")
}

// usageIntroPayload converts any recognized usage intro line to a canonical
// "usage: ..." payload, or reports false.
func usageIntroPayload(trimmed string) (string, bool) {
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "usage:") || strings.HasPrefix(lower, "or:") {
		return trimmed, true
	}
	if i := strings.Index(lower, "usage is "); i >= 0 {
		return "usage: " + strings.TrimSpace(trimmed[i+len("usage is "):]), true
	}
	return "", false
}

// looksLikeUsageSynopsisStart matches intro-less synopsis lines such as
// "zip [-options] [-b path] zipfile list" where the head token is the
// command itself.
func looksLikeUsageSynopsisStart(trimmed string) bool {
	if trimmed == "" || strings.HasPrefix(trimmed, "-") {
		return false
	}
	if !strings.Contains(trimmed, "--") && !strings.Contains(trimmed, " -") {
		return false
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false
	}
	head := strings.Trim(fields[0], ":`'\"(){}")
	if head == "" {
		return false
	}
	if !strings.Contains(trimmed, "[") && len(fields) > 4 {
		return false
	}
	for _, ch := range head {
		if !isASCIIAlphanumeric(ch) {
			switch ch {
			case '_', '-', '.', '/', '+', ':':
			default:
				return false
			}
		}
	}
	return true
}

func looksLikeUsageSynopsisContinuation(trimmed string) bool {
	if trimmed == "" || strings.HasSuffix(trimmed, ".") {
		return false
	}
	if strings.Contains(trimmed, "[") || strings.Contains(trimmed, "--") ||
		looksLikeFlagRowStart(trimmed) {
		return true
	}
	fields := strings.Fields(trimmed)
	if len(fields) > 2 {
		return false
	}
	for _, field := range fields {
		for _, ch := range field {
			if !isASCIIAlphanumeric(ch) {
				switch ch {
				case '_', '-', '.', '<', '>', '[', ']':
				default:
					return false
				}
			}
		}
	}
	return true
}

// collectUsageLikeText gathers all synopsis text: explicit usage intros,
// intro-less synopsis starts, and their indented continuations.
func collectUsageLikeText(lines []candidate.Line) []string {
	var collected []string
	inSynopsis := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			inSynopsis = false
			continue
		}

		if payload, ok := usageIntroPayload(trimmed); ok {
			collected = append(collected, payload)
			inSynopsis = true
			continue
		}
		if looksLikeUsageSynopsisStart(trimmed) {
			collected = append(collected, trimmed)
			inSynopsis = true
			continue
		}

		indented := strings.HasPrefix(line.Text, " ") || strings.HasPrefix(line.Text, "\t")
		if inSynopsis && indented && looksLikeUsageSynopsisContinuation(trimmed) {
			collected = append(collected, trimmed)
			continue
		}
		inSynopsis = false
	}

	return collected
}

// collectUsageIndices returns the line indices of "usage:" blocks including
// indented continuation lines.
func collectUsageIndices(lines []candidate.Line) []int {
	var indices []int
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i].Text)
		if !strings.HasPrefix(strings.ToLower(trimmed), "usage:") {
			continue
		}
		indices = append(indices, lines[i].Index)
		for j := i + 1; j < len(lines); j++ {
			text := lines[j].Text
			if strings.TrimSpace(text) == "" {
				break
			}
			if !strings.HasPrefix(text, " ") && !strings.HasPrefix(text, "\t") {
				break
			}
			indices = append(indices, lines[j].Index)
			i = j
		}
	}
	return indices
}

// parseNpmStyleCommands parses the "All commands:" comma-list block emitted
// by npm-style CLIs.
func (p *HelpParser) parseNpmStyleCommands(lines []candidate.Line) ([]schema.SubcommandSchema, []int) {
	var subcommands []schema.SubcommandSchema
	var recognized []int
	seen := make(map[string]bool)
	inBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Text)
		lower := strings.ToLower(trimmed)

		if strings.HasPrefix(lower, "all commands:") {
			inBlock = true
			recognized = append(recognized, line.Index)
			rest := strings.TrimSpace(trimmed[len("all commands:"):])
			if rest != "" {
				trimmed = rest
			} else {
				continue
			}
		}
		if !inBlock {
			continue
		}
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, ",") {
			inBlock = false
			continue
		}
		if !looksLikeCommandListLine(trimmed) {
			continue
		}
		recognized = append(recognized, line.Index)
		for _, raw := range strings.Split(trimmed, ",") {
			name := strings.TrimSpace(raw)
			if name != "" && isValidCommandName(name) && !seen[name] {
				seen[name] = true
				subcommands = append(subcommands, schema.NewSubcommand(name))
			}
		}
	}

	return subcommands, recognized
}

func looksLikeCommandListLine(trimmed string) bool {
	if !strings.Contains(trimmed, ",") {
		return false
	}
	for _, raw := range strings.Split(trimmed, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if !isValidCommandName(name) {
			return false
		}
	}
	return true
}

// parseSectionlessFlags parses every flag-looking row regardless of section
// membership. GNU tools often list flags with no section header at all.
func (p *HelpParser) parseSectionlessFlags(lines []candidate.Line) ([]schema.FlagSchema, []int) {
	var flags []schema.FlagSchema
	var recognized []int

	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Text)
		if !looksLikeFlagRowStart(trimmed) {
			continue
		}
		parsed := p.parseFlagEntriesFromLine(trimmed)
		if len(parsed) == 0 {
			continue
		}
		flags = append(flags, parsed...)
		recognized = append(recognized, line.Index)
	}

	return flags, recognized
}

// parseUsageCompactFlags extracts flags packed into a usage synopsis:
// bracket groups, brace alternations, inline mentions, and short clusters.
func (p *HelpParser) parseUsageCompactFlags(lines []candidate.Line) []schema.FlagSchema {
	var flags []schema.FlagSchema

	for _, text := range collectUsageLikeText(lines) {
		for _, m := range bracketGroupRE.FindAllStringSubmatch(text, -1) {
			group := strings.TrimSpace(m[1])
			tokens := strings.Fields(group)
			if len(tokens) == 0 {
				continue
			}
			first := tokens[0]
			switch {
			case strings.HasPrefix(first, "--"):
				long := normalizeLongFlagToken(first)
				if long == "" {
					continue
				}
				flag := schema.FlagSchema{Long: long, ValueType: schema.ValueType{Kind: schema.ValueBool}}
				if strings.Contains(first, "=") || strings.Contains(first, "<") ||
					(len(tokens) > 1 && !strings.HasPrefix(tokens[1], "-")) {
					flag.TakesValue = true
					flag.ValueType = schema.ValueType{Kind: schema.ValueString}
				}
				flags = append(flags, flag)
			case strings.HasPrefix(first, "-") && len(first) == 2:
				flag := schema.FlagSchema{Short: first, ValueType: schema.ValueType{Kind: schema.ValueBool}}
				if len(tokens) > 1 && !strings.HasPrefix(tokens[1], "-") {
					flag.TakesValue = true
					flag.ValueType = schema.ValueType{Kind: schema.ValueString}
				}
				flags = append(flags, flag)
			case strings.HasPrefix(first, "-") && !strings.HasPrefix(first, "--") &&
				!strings.Contains(first, "="):
				// Short cluster like [-abc] expands to one switch per letter.
				cluster := first[1:]
				valid := true
				for _, ch := range cluster {
					if !isASCIIAlphanumeric(ch) {
						valid = false
						break
					}
				}
				if !valid {
					continue
				}
				for _, ch := range cluster {
					flags = append(flags, schema.FlagSchema{
						Short:     "-" + string(ch),
						ValueType: schema.ValueType{Kind: schema.ValueBool},
					})
				}
			}
		}

		for _, m := range braceGroupRE.FindAllStringSubmatch(text, -1) {
			group := m[1]
			if !strings.Contains(group, "|") || !strings.Contains(group, "-") {
				continue
			}
			var groupFlags []schema.FlagSchema
			for _, alt := range strings.Split(group, "|") {
				if flag, ok := parseUsageFlagAtom(strings.TrimSpace(alt)); ok {
					groupFlags = append(groupFlags, flag)
				}
			}
			// "{-V|--version}" is one flag with a short alias.
			if len(groupFlags) == 2 && !groupFlags[0].TakesValue && !groupFlags[1].TakesValue {
				short, long := groupFlags[0], groupFlags[1]
				if short.Short != "" && short.Long == "" && long.Long != "" && long.Short == "" {
					flags = append(flags, schema.FlagSchema{
						Short:     short.Short,
						Long:      long.Long,
						ValueType: schema.ValueType{Kind: schema.ValueBool},
					})
					continue
				}
			}
			flags = append(flags, groupFlags...)
		}

		for _, m := range inlineLongFlagRE.FindAllStringSubmatch(text, -1) {
			long := normalizeLongFlagToken(m[1])
			if long == "" {
				continue
			}
			flags = append(flags, schema.FlagSchema{Long: long, ValueType: schema.ValueType{Kind: schema.ValueBool}})
		}
		for _, m := range inlineShortFlagRE.FindAllStringSubmatch(text, -1) {
			if flag, ok := parseUsageFlagAtom(m[1]); ok {
				flags = append(flags, flag)
			}
		}
	}

	return dedupeFlags(flags)
}

// parseUsagePositionals extracts positional arguments from synopsis text,
// skipping flag tokens, grammar productions, and subcommand placeholders.
func (p *HelpParser) parseUsagePositionals(lines []candidate.Line, hasSubcommands bool) []schema.ArgSchema {
	var args []schema.ArgSchema
	seen := make(map[string]bool)

	for _, text := range collectUsageLikeText(lines) {
		payload := text
		if i := strings.Index(strings.ToLower(payload), "usage:"); i >= 0 {
			payload = payload[i+len("usage:"):]
		}
		grammarText := strings.Contains(text, ":=")

		fields := strings.Fields(payload)
		for i, raw := range fields {
			if i == 0 && !strings.HasPrefix(raw, "[") && !strings.HasPrefix(raw, "<") &&
				!strings.HasPrefix(raw, "-") {
				// Skip the command token itself.
				continue
			}
			token := raw
			if strings.HasPrefix(token, "-") || strings.Contains(token, "=") ||
				strings.Contains(token, "|") {
				continue
			}

			required := !strings.HasPrefix(token, "[")
			multiple := strings.Contains(token, "...")
			cleaned := strings.Trim(token, "[]<>(){}")
			cleaned = strings.TrimSuffix(cleaned, "...")
			cleaned = strings.Trim(cleaned, ",;:")
			if cleaned == "" || strings.HasPrefix(cleaned, "-") {
				continue
			}

			allUpper := true
			for _, ch := range cleaned {
				if !isASCIIUpper(ch) && ch != '_' && !isASCIIDigit(ch) {
					allUpper = false
					break
				}
			}
			lowerWithDigit := false
			if !allUpper {
				hasLower, hasDigit := false, false
				valid := true
				for _, ch := range cleaned {
					if ch >= 'a' && ch <= 'z' {
						hasLower = true
					} else if isASCIIDigit(ch) {
						hasDigit = true
					} else if ch != '_' && ch != '-' && ch != '.' {
						valid = false
						break
					}
				}
				lowerWithDigit = valid && hasLower && !hasDigit
			}
			placeholderShape := strings.HasPrefix(token, "<") || strings.HasPrefix(token, "[") ||
				allUpper || lowerWithDigit
			if !placeholderShape {
				continue
			}
			if grammarText && allUpper {
				continue
			}
			lower := strings.ToLower(cleaned)
			if hasSubcommands && (lower == "command" || lower == "subcommand" || lower == "cmd") {
				continue
			}
			if isPlaceholderKeyword(cleaned) {
				continue
			}
			if !looksLikeArgumentName(cleaned) {
				continue
			}

			key := strings.ToLower(cleaned)
			if seen[key] {
				continue
			}
			seen[key] = true
			args = append(args, schema.ArgSchema{
				Name:      cleaned,
				ValueType: inferArgumentValueType(cleaned),
				Required:  required,
				Multiple:  multiple,
			})
		}
	}

	return args
}

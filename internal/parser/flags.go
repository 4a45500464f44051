package parser

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/schema"
)

// parseFlagEntriesFromLine parses all flag definitions from one row. A single
// row may pack several entries ("-a ...   -b ...") or encode a compact short
// cluster ("-abc or -d  meaning").
func (p *HelpParser) parseFlagEntriesFromLine(line string) []schema.FlagSchema {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if !looksLikeFlagRowStart(trimmed) {
		if flag, ok := p.parseCompactOptionRowAsFlag(trimmed); ok {
			return []schema.FlagSchema{flag}
		}
		return nil
	}

	if flags := p.parseCompactShortClusterFlags(trimmed); len(flags) > 0 {
		return flags
	}

	var flags []schema.FlagSchema
	for _, entry := range splitPackedOptionEntries(trimmed) {
		if flag, ok := p.parseFlagLine(entry); ok {
			flags = append(flags, flag)
		}
	}
	return flags
}

// parseCompactOptionRowAsFlag handles single-letter option tables without a
// dash prefix, as printed by tools like tar in its compact mode.
func (p *HelpParser) parseCompactOptionRowAsFlag(trimmed string) (schema.FlagSchema, bool) {
	left, description, ok := splitTwoColumns(trimmed)
	if !ok {
		return schema.FlagSchema{}, false
	}
	if len(left) != 1 || !isASCIIAlphanumeric(rune(left[0])) {
		return schema.FlagSchema{}, false
	}
	if strings.TrimSpace(description) == "" {
		return schema.FlagSchema{}, false
	}

	return schema.FlagSchema{
		Short:       "-" + left,
		Description: sanitizeDescriptionText(description),
		ValueType:   schema.ValueType{Kind: schema.ValueBool},
	}, true
}

// parseCompactShortClusterFlags expands rows like "-abc or -d  description"
// where a cluster of single-letter switches shares one description.
func (p *HelpParser) parseCompactShortClusterFlags(trimmed string) []schema.FlagSchema {
	left, description, ok := splitTwoColumns(trimmed)
	if !ok {
		return nil
	}
	if !strings.Contains(left, " or -") {
		return nil
	}

	description = sanitizeDescriptionText(description)
	valueHint := strings.Contains(strings.ToLower(description), "=") ||
		strings.Contains(left, "=")

	var flags []schema.FlagSchema
	for _, raw := range strings.Split(left, " or ") {
		segment := strings.TrimSpace(raw)
		if segment == "" || !strings.HasPrefix(segment, "-") {
			continue
		}
		if isCompactShortCluster(segment) {
			for _, ch := range segment[1:] {
				flags = append(flags, schema.FlagSchema{
					Short:       "-" + string(ch),
					Description: description,
					ValueType:   schema.ValueType{Kind: schema.ValueBool},
				})
			}
			continue
		}
		if flag, ok := p.parseFlagLine(segment + "  " + description); ok {
			if valueHint {
				flag.TakesValue = true
				if flag.ValueType.Kind == schema.ValueBool {
					flag.ValueType = schema.ValueType{Kind: schema.ValueString}
				}
			}
			flags = append(flags, flag)
		}
	}
	return flags
}

func isCompactShortCluster(segment string) bool {
	if !strings.HasPrefix(segment, "-") || strings.HasPrefix(segment, "--") {
		return false
	}
	body := segment[1:]
	if len(body) < 2 {
		return false
	}
	for _, ch := range body {
		if !isASCIIAlphanumeric(ch) {
			return false
		}
	}
	return true
}

// splitPackedOptionEntries splits a row where multiple flag definitions are
// separated by wide whitespace runs before each new "-" token.
func splitPackedOptionEntries(trimmed string) []string {
	var entries []string
	start := 0
	i := 0
	for i < len(trimmed) {
		if trimmed[i] == ' ' {
			runStart := i
			for i < len(trimmed) && trimmed[i] == ' ' {
				i++
			}
			if i-runStart >= 2 && i < len(trimmed) && trimmed[i] == '-' {
				segment := strings.TrimSpace(trimmed[start:runStart])
				if segment != "" && looksLikeFlagRowStart(segment) && !strings.Contains(segment, "  ") {
					entries = append(entries, segment)
					start = i
				}
			}
			continue
		}
		i++
	}
	tail := strings.TrimSpace(trimmed[start:])
	if tail != "" {
		entries = append(entries, tail)
	}
	if len(entries) == 0 {
		return []string{trimmed}
	}
	return entries
}

// parseFlagLine parses one flag definition row into a schema. The definition
// column may carry a short form, long form, or both, with a value
// placeholder.
func (p *HelpParser) parseFlagLine(line string) (schema.FlagSchema, bool) {
	trimmed := strings.TrimSpace(line)
	definition := trimmed
	description := ""
	if left, right, ok := splitTwoColumns(trimmed); ok {
		if !strings.HasPrefix(strings.TrimSpace(right), "-") {
			definition = left
			description = right
		}
	}

	flag := schema.FlagSchema{ValueType: schema.ValueType{Kind: schema.ValueBool}}

	if m := combinedFlagRE.FindStringSubmatch(definition); m != nil {
		flag.Short = normalizeFlagToken(m[1], &flag)
		flag.Long = normalizeFlagToken(m[2], &flag)
	} else if m := longFlagRE.FindStringSubmatch(definition); m != nil {
		flag.Long = normalizeFlagToken(m[1], &flag)
	} else if m := singleDashWordFlagRE.FindStringSubmatch(definition); m != nil {
		flag.Short = normalizeFlagToken(m[1], &flag)
	} else if m := shortFlagRE.FindStringSubmatch(definition); m != nil {
		flag.Short = normalizeFlagToken(m[1], &flag)
	} else {
		return schema.FlagSchema{}, false
	}
	if flag.Short == "" && flag.Long == "" {
		return schema.FlagSchema{}, false
	}

	if flagWithValueRE.MatchString(definition) {
		flag.TakesValue = true
		flag.ValueType = p.inferValueType(trimmed)
	} else if strings.Contains(definition, "=") || strings.Contains(definition, "<") {
		flag.TakesValue = true
		flag.ValueType = schema.ValueType{Kind: schema.ValueString}
	}

	if description != "" {
		flag.Description = sanitizeDescriptionText(description)
		conflicts, requires := extractFlagRelationships(flag.Description)
		flag.ConflictsWith = conflicts
		flag.Requires = requires
	}

	if inferMultipleFlagOccurrences(definition, flag.Description) {
		flag.Multiple = true
	}

	stripSelfReferences(&flag)
	return flag, true
}

// normalizeFlagToken cleans one flag token: trailing separators, the "[no-]"
// negation infix, and repetition ellipses. Repetition marks set Multiple on
// the owning flag.
func normalizeFlagToken(token string, flag *schema.FlagSchema) string {
	cleaned := strings.Trim(token, ",; ")
	cleaned = strings.Replace(cleaned, "--[no-]", "--", 1)
	if strings.HasSuffix(cleaned, "...") {
		cleaned = strings.TrimSuffix(cleaned, "...")
		if flag != nil {
			flag.Multiple = true
		}
	}
	for strings.HasSuffix(cleaned, ".") && !strings.HasPrefix(cleaned, "--") {
		cleaned = strings.TrimSuffix(cleaned, ".")
		if flag != nil {
			flag.Multiple = true
		}
	}
	return strings.Trim(cleaned, ",; ")
}

// extractFlagRelationships scans a flag description for conflict and
// requirement phrasing and returns referenced flag tokens. Tokens are
// attributed to the clause of the phrase they follow, so one description
// can require one flag and conflict with another.
func extractFlagRelationships(description string) (conflicts, requires []string) {
	clauses := relationClauses(description,
		[]string{
			"requires ", "require ", "must be used with", "only with",
			"equivalent to specifying both",
		},
		[]string{
			"conflict", "cannot be used with", "mutually exclusive",
			"incompatible with", "overrides ",
		})

	for _, clause := range clauses {
		for _, ref := range flagRefRE.FindAllString(clause.text, -1) {
			cleaned := normalizeFlagToken(ref, nil)
			if cleaned == "" {
				continue
			}
			if clause.conflict {
				if !containsString(conflicts, cleaned) {
					conflicts = append(conflicts, cleaned)
				}
			} else if !containsString(requires, cleaned) {
				requires = append(requires, cleaned)
			}
		}
	}

	return conflicts, requires
}

// inferMultipleFlagOccurrences reports whether the flag can be passed more
// than once, from either the definition syntax or the description prose.
func inferMultipleFlagOccurrences(definition, description string) bool {
	if strings.Contains(definition, "...") {
		if strings.Contains(definition, "<") || strings.Contains(definition, "[") ||
			strings.Contains(definition, "=") || len(strings.Fields(definition)) == 1 {
			return true
		}
	}

	lower := strings.ToLower(description)
	phrases := []string{
		"multiple times", "more than once", "repeatable",
		"can be used multiple times", "may be repeated",
	}
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func stripSelfReferences(flag *schema.FlagSchema) {
	strip := func(list []string) []string {
		var out []string
		for _, ref := range list {
			if ref == flag.Short || ref == flag.Long {
				continue
			}
			out = append(out, ref)
		}
		return out
	}
	flag.ConflictsWith = strip(flag.ConflictsWith)
	flag.Requires = strip(flag.Requires)
}

// trimValueSuffix cuts a flag token at the first value marker.
func trimValueSuffix(token string) string {
	for i, ch := range token {
		if ch == '[' || ch == '<' || ch == '=' {
			return token[:i]
		}
	}
	return token
}

// normalizeLongFlagToken cleans a "--flag" usage token, handling the "[no-]"
// infix and any attached value placeholder. Returns "" when the remainder is
// too short to be a real long flag.
func normalizeLongFlagToken(token string) string {
	cleaned := token
	if strings.HasPrefix(cleaned, "--[no-]") {
		cleaned = "--" + cleaned[len("--[no-]"):]
	}
	cleaned = trimValueSuffix(cleaned)
	if len(cleaned) <= 2 {
		return ""
	}
	return cleaned
}

// parseUsageFlagAtom parses one token from a usage synopsis into a flag
// schema, or reports false when the token is not a flag.
func parseUsageFlagAtom(token string) (schema.FlagSchema, bool) {
	cleaned := strings.Trim(token, "{}(),;")
	if cleaned == "" || !strings.HasPrefix(cleaned, "-") {
		return schema.FlagSchema{}, false
	}

	if strings.HasPrefix(cleaned, "--") {
		long := normalizeLongFlagToken(cleaned)
		if long == "" {
			return schema.FlagSchema{}, false
		}
		flag := schema.FlagSchema{Long: long, ValueType: schema.ValueType{Kind: schema.ValueBool}}
		if strings.Contains(cleaned, "=") || strings.Contains(cleaned, "<") {
			flag.TakesValue = true
			flag.ValueType = schema.ValueType{Kind: schema.ValueString}
		}
		return flag, true
	}

	if cleaned == "-" {
		return schema.FlagSchema{}, false
	}

	// "-V[ersion]" style expands to the short letter alone.
	if len(cleaned) >= 2 && isASCIIAlphanumeric(rune(cleaned[1])) {
		if len(cleaned) == 2 {
			return schema.FlagSchema{Short: cleaned, ValueType: schema.ValueType{Kind: schema.ValueBool}}, true
		}
		if cleaned[2] == '[' {
			return schema.FlagSchema{Short: cleaned[:2], ValueType: schema.ValueType{Kind: schema.ValueBool}}, true
		}
	}

	body := cleaned[1:]
	for _, ch := range body {
		if !isASCIIAlphanumeric(ch) && ch != '-' {
			return schema.FlagSchema{}, false
		}
	}
	return schema.FlagSchema{Short: cleaned, ValueType: schema.ValueType{Kind: schema.ValueBool}}, true
}

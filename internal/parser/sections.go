package parser

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

type sectionKind int

const (
	sectionSubcommands sectionKind = iota
	sectionFlags
	sectionOptions
	sectionArguments
)

// sectionEntry is one content line bucketed under a typed section header.
type sectionEntry struct {
	Index int
	Text  string
}

// sectionBuckets holds the lines of every recognized typed section plus the
// header line indices themselves.
type sectionBuckets struct {
	HeaderIndices []int
	Subcommands   []sectionEntry
	Flags         []sectionEntry
	Options       []sectionEntry
	Arguments     []sectionEntry
}

// identifySections walks the help output once and buckets content lines under
// the typed section that precedes them. Any unrecognized "X:" header
// terminates the current section.
func (p *HelpParser) identifySections(lines []candidate.Line) sectionBuckets {
	var buckets sectionBuckets
	current := sectionKind(-1)
	inSection := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			continue
		}

		if kind, ok := p.detectSectionHeader(trimmed); ok {
			buckets.HeaderIndices = append(buckets.HeaderIndices, line.Index)
			current = kind
			inSection = true
			continue
		}

		if strings.HasSuffix(trimmed, ":") && !strings.HasPrefix(trimmed, "-") && len(trimmed) < 40 {
			inSection = false
			continue
		}

		if !inSection {
			continue
		}
		entry := sectionEntry{Index: line.Index, Text: trimmed}
		switch current {
		case sectionSubcommands:
			buckets.Subcommands = append(buckets.Subcommands, entry)
		case sectionFlags:
			buckets.Flags = append(buckets.Flags, entry)
		case sectionOptions:
			buckets.Options = append(buckets.Options, entry)
		case sectionArguments:
			buckets.Arguments = append(buckets.Arguments, entry)
		}
	}

	return buckets
}

func (p *HelpParser) detectSectionHeader(trimmed string) (sectionKind, bool) {
	if subcommandsSectionRE.MatchString(trimmed) {
		return sectionSubcommands, true
	}
	lower := strings.ToLower(trimmed)
	if strings.HasSuffix(trimmed, ":") && len(trimmed) <= 64 && looksLikeSubcommandSectionHeader(lower) {
		return sectionSubcommands, true
	}
	if strings.HasSuffix(trimmed, ":") && strings.Contains(lower, "option") {
		return sectionOptions, true
	}
	if strings.HasSuffix(trimmed, ":") && strings.Contains(lower, "flag") {
		return sectionFlags, true
	}
	if flagsSectionRE.MatchString(trimmed) {
		return sectionFlags, true
	}
	if optionsSectionRE.MatchString(trimmed) {
		return sectionOptions, true
	}
	if argumentsSectionRE.MatchString(trimmed) {
		return sectionArguments, true
	}
	return 0, false
}

func looksLikeSubcommandSectionHeader(lower string) bool {
	positives := []string{
		"command", "commands", "subcommand", "subcommands",
		"action", "actions", "workflow", "task", "tasks",
	}
	found := false
	for _, needle := range positives {
		if strings.Contains(lower, needle) {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	negatives := []string{
		"variable", "option", "flag", "argument", "example", "column", "field",
		"property", "setting", "key", "keyboard",
	}
	for _, needle := range negatives {
		if strings.Contains(lower, needle) {
			return false
		}
	}
	return true
}

// parseSubcommands extracts subcommand rows from section content lines.
// It handles two-column rows, "name - description" rows, comma-separated
// command lists, and alias forms like "build, b".
func (p *HelpParser) parseSubcommands(lines []string) []schema.SubcommandSchema {
	var subcommands []schema.SubcommandSchema
	seen := make(map[string]bool)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "-") {
			continue
		}

		// npm-style "All commands" list can be comma-separated with no descriptions.
		if looksLikeCommandListLine(trimmed) {
			for _, token := range strings.Split(trimmed, ",") {
				name := strings.TrimSpace(token)
				if isValidCommandName(name) && !seen[name] {
					seen[name] = true
					subcommands = append(subcommands, schema.NewSubcommand(name))
				}
			}
			continue
		}

		namePart := trimmed
		description := ""
		if head, desc, ok := splitDashSeparator(trimmed); ok {
			namePart, description = head, desc
		} else if head, desc, ok := splitTwoColumns(trimmed); ok {
			namePart, description = head, desc
		}
		namePart = p.normalizeSubcommandNamePart(namePart)
		if namePart == "" {
			continue
		}

		// Support alias forms such as "build, b".
		var names []string
		for _, raw := range strings.Split(namePart, ",") {
			name := strings.TrimSpace(raw)
			if isValidCommandName(name) && isPlausibleSubcommandName(name) {
				names = append(names, name)
			}
		}

		if len(names) == 0 {
			for _, name := range parseSubcommandNameCandidates(namePart) {
				if isValidCommandName(name) && isPlausibleSubcommandName(name) {
					names = append(names, name)
				}
			}
		}
		if len(names) == 0 {
			continue
		}

		primary := names[0]
		if seen[primary] {
			continue
		}
		seen[primary] = true

		sub := schema.NewSubcommand(primary)
		if description != "" {
			sub.Description = sanitizeDescriptionText(description)
		}
		sub.Aliases = names[1:]
		subcommands = append(subcommands, sub)
	}

	return subcommands
}

// normalizeSubcommandNamePart strips a leading invocation of the command
// itself ("git clone" -> "clone") using the full command first, then its base
// token.
func (p *HelpParser) normalizeSubcommandNamePart(namePart string) string {
	trimmed := strings.TrimSpace(namePart)
	if trimmed == "" {
		return trimmed
	}

	fullCommand := strings.TrimSpace(p.command)
	if rest, ok := stripCommandInvocationPrefix(trimmed, fullCommand); ok && rest != "" {
		return rest
	}

	baseCommand := fullCommand
	if fields := strings.Fields(p.command); len(fields) > 0 {
		baseCommand = fields[0]
	}
	if baseCommand != fullCommand {
		if rest, ok := stripCommandInvocationPrefix(trimmed, baseCommand); ok && rest != "" {
			return rest
		}
	}

	return trimmed
}

func stripCommandInvocationPrefix(value, prefix string) (string, bool) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", false
	}

	rest, ok := strings.CutPrefix(value, prefix)
	if !ok {
		return "", false
	}
	if rest == "" {
		return "", true
	}
	if rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimLeft(rest, " \t"), true
}

// parseSubcommandNameCandidates handles rows like "start UNIT..." where the
// first token is the real command and the rest is usage placeholder syntax.
// Returns nil when any segment looks like prose.
func parseSubcommandNameCandidates(namePart string) []string {
	var candidates []string

	for _, raw := range strings.Split(namePart, ",") {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			continue
		}
		if isValidCommandName(segment) {
			candidates = append(candidates, segment)
			continue
		}

		fields := strings.Fields(segment)
		if len(fields) == 0 {
			return nil
		}
		first := fields[0]
		if !isValidCommandName(first) {
			return nil
		}

		tail := strings.TrimSpace(segment[len(first):])
		if tail == "" || looksLikeArgumentPlaceholder(tail) {
			candidates = append(candidates, first)
			continue
		}

		return nil
	}

	return candidates
}

func looksLikeArgumentPlaceholder(value string) bool {
	if value == "" {
		return false
	}

	hasPlaceholderMarkers := strings.Contains(value, "...") ||
		strings.Contains(value, "<") ||
		strings.Contains(value, ">") ||
		strings.Contains(value, "[")
	if !hasPlaceholderMarkers {
		// Without explicit placeholder markers, only accept tails that are
		// placeholder-like (e.g. "UNIT", "PATH FILE") and reject prose.
		for _, ch := range value {
			if ch >= 'a' && ch <= 'z' {
				return false
			}
		}
		hasUpper := false
		for _, ch := range value {
			if isASCIIUpper(ch) {
				hasUpper = true
				break
			}
		}
		if !hasUpper {
			return false
		}
	}

	for _, ch := range value {
		if isASCIIAlphanumeric(ch) || ch == ' ' || ch == '\t' {
			continue
		}
		switch ch {
		case '_', '-', '.', '[', ']', '<', '>', '/', ':', '|', '+', '?':
		default:
			return false
		}
	}
	return true
}

// parseArgumentsSection extracts positional arguments from section content.
func (p *HelpParser) parseArgumentsSection(lines []string) []schema.ArgSchema {
	var positional []schema.ArgSchema
	seen := make(map[string]bool)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || looksLikeFlagRowStart(trimmed) {
			continue
		}

		left := trimmed
		description := ""
		if nameCol, descCol, ok := splitTwoColumns(trimmed); ok {
			left = nameCol
			description = sanitizeDescriptionText(descCol)
		}

		for _, arg := range parseArgumentTokens(left) {
			if arg.Description == "" {
				arg.Description = description
			}
			if arg.ValueType.Kind == schema.ValueString && arg.Description != "" {
				arg.ValueType = p.inferValueType(arg.Description)
			}
			key := strings.ToLower(arg.Name)
			if !seen[key] {
				seen[key] = true
				positional = append(positional, arg)
			}
		}
	}

	return positional
}

// parseArgumentTokens splits a left column into positional argument schemas.
// Bracketed tokens are optional, "..." marks repetition.
func parseArgumentTokens(value string) []schema.ArgSchema {
	var args []schema.ArgSchema

	for _, raw := range strings.Fields(value) {
		token := strings.Trim(raw, ",;:")
		if token == "" || strings.HasPrefix(token, "-") || token == "|" || token == "or" {
			continue
		}

		multiple := strings.Contains(token, "...")
		required := !strings.HasPrefix(token, "[")

		cleaned := strings.Trim(token, "[]<>(){}")
		cleaned = strings.TrimLeft(cleaned, "+")
		cleaned = strings.TrimSuffix(cleaned, "...")
		cleaned = strings.Trim(cleaned, ",;:")

		if cleaned == "" || strings.HasPrefix(cleaned, "-") {
			continue
		}
		if isPlaceholderKeyword(cleaned) {
			continue
		}
		if !looksLikeArgumentName(cleaned) {
			continue
		}
		if strings.HasSuffix(raw, "...") {
			multiple = true
		}

		args = append(args, schema.ArgSchema{
			Name:      cleaned,
			ValueType: inferArgumentValueType(cleaned),
			Required:  required,
			Multiple:  multiple,
		})
	}

	return args
}

func inferArgumentValueType(name string) schema.ValueType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "file"):
		return schema.ValueType{Kind: schema.ValueFile}
	case strings.Contains(lower, "dir"), strings.Contains(lower, "path"):
		return schema.ValueType{Kind: schema.ValueDirectory}
	case strings.Contains(lower, "url"), strings.Contains(lower, "uri"):
		return schema.ValueType{Kind: schema.ValueURL}
	case strings.Contains(lower, "num"), strings.Contains(lower, "count"), strings.Contains(lower, "size"):
		return schema.ValueType{Kind: schema.ValueNumber}
	}
	return schema.ValueType{Kind: schema.ValueString}
}

func isPlaceholderKeyword(token string) bool {
	switch strings.ToLower(token) {
	case "options", "option", "flags", "flag", "args", "arguments",
		"usage", "command", "subcommand", "commands":
		return true
	}
	return false
}

func looksLikeArgumentName(token string) bool {
	if token == "" || len(token) > 64 {
		return false
	}
	for _, ch := range token {
		if !isASCIIAlphanumeric(ch) && ch != '_' && ch != '-' && ch != '.' {
			return false
		}
	}
	return true
}

func isValidCommandName(value string) bool {
	if value == "" || len(value) >= 50 {
		return false
	}
	for _, ch := range value {
		if !isASCIIAlphanumeric(ch) && ch != '-' && ch != '_' {
			return false
		}
	}
	return true
}

func isPlausibleSubcommandName(value string) bool {
	token := strings.TrimSpace(value)
	if token == "" {
		return false
	}
	if looksLikeNonCommandValueToken(token) {
		return false
	}
	allUpper := true
	for _, ch := range token {
		if !isASCIIUpper(ch) {
			allUpper = false
			break
		}
	}
	if allUpper {
		return false
	}
	if isASCIIUpper(rune(token[0])) {
		return false
	}
	switch strings.ToLower(token) {
	case "usage", "options", "option", "flags", "flag",
		"arguments", "argument", "commands", "command", "examples", "example":
		return false
	}
	return true
}

package parser

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// parseTwoColumnSubcommands extracts subcommands from generic two-column
// blocks that never announced themselves with a typed section header. Blocks
// are accumulated row by row and flushed when something ends them; a block
// must have at least two rows and must not look like a keybinding table.
func (p *HelpParser) parseTwoColumnSubcommands(lines []candidate.Line) ([]schema.SubcommandSchema, []int) {
	var subcommands []schema.SubcommandSchema
	var recognized []int
	seen := make(map[string]bool)

	var blockRows []string
	var blockIndices []int
	blockHeader := ""

	flush := func() {
		defer func() {
			blockRows = nil
			blockIndices = nil
		}()
		if len(blockRows) < 2 {
			return
		}
		if blockHeader != "" && isNonCommandBlockHeader(blockHeader) {
			return
		}
		if blockLooksLikeKeybindingTable(blockRows) {
			return
		}
		for _, sub := range p.parseSubcommands(blockRows) {
			if !seen[sub.Name] {
				seen[sub.Name] = true
				subcommands = append(subcommands, sub)
			}
		}
		recognized = append(recognized, blockIndices...)
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			flush()
			blockHeader = ""
			continue
		}
		if _, ok := p.detectSectionHeader(trimmed); ok {
			flush()
			blockHeader = ""
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			flush()
			continue
		}
		if isBlockHeader(trimmed) {
			flush()
			blockHeader = trimmed
			continue
		}

		left, _, ok := splitTwoColumns(trimmed)
		if !ok {
			left, _, ok = splitDashSeparator(trimmed)
		}
		if ok && isGenericSubcommandNameColumn(left, blockHeader) {
			blockRows = append(blockRows, trimmed)
			blockIndices = append(blockIndices, line.Index)
			continue
		}
		flush()
	}
	flush()

	return subcommands, recognized
}

func isBlockHeader(trimmed string) bool {
	if strings.HasSuffix(trimmed, ":") && len(trimmed) < 64 {
		return true
	}
	lower := strings.ToLower(trimmed)
	return strings.Contains(lower, "summary of") && strings.Contains(lower, "commands")
}

// isNonCommandBlockHeader rejects blocks whose header announces values,
// variables, or other non-command tables. Command-like needles win when both
// kinds appear.
func isNonCommandBlockHeader(header string) bool {
	lower := strings.ToLower(header)
	if strings.Contains(lower, "summary of") && strings.Contains(lower, "commands") {
		return true
	}

	commandNeedles := []string{"command", "subcommand", "action", "task", "workflow"}
	for _, needle := range commandNeedles {
		if strings.Contains(lower, needle) {
			return false
		}
	}

	valueNeedles := []string{
		"value", "values", "column", "columns", "field", "fields",
		"variable", "variables", "environment", "format", "formats",
		"style", "styles", "attribute", "attributes", "modifiers",
		"setting", "settings", "key", "keys",
	}
	for _, needle := range valueNeedles {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// blockLooksLikeKeybindingTable reports whether a two-column block describes
// key bindings rather than subcommands, either by explicit key markers or by
// a majority of short-key rows.
func blockLooksLikeKeybindingTable(rows []string) bool {
	shortKeyRows := 0
	for _, row := range rows {
		left, right, ok := splitTwoColumns(strings.TrimSpace(row))
		if !ok {
			continue
		}
		if hasExplicitKeyMarkers(left) || hasExplicitKeyMarkers(right) {
			return true
		}
		if looksLikeShortKeyColumn(left) {
			shortKeyRows++
		}
	}
	return len(rows) >= 4 && shortKeyRows*2 >= len(rows)
}

func hasExplicitKeyMarkers(text string) bool {
	if strings.Contains(text, "^") {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "esc") ||
		strings.Contains(lower, "ctrl") ||
		strings.Contains(lower, "arrow") ||
		strings.Contains(lower, "backspace") ||
		strings.Contains(lower, "delete")
}

func looksLikeShortKeyColumn(left string) bool {
	if strings.Contains(left, ",") {
		return false
	}
	tokens := strings.Fields(left)
	if len(tokens) == 0 {
		return false
	}
	hasAlpha := false
	for _, token := range tokens {
		if len(token) > 3 {
			return false
		}
		for _, ch := range token {
			if isASCIIAlpha(ch) {
				hasAlpha = true
			}
			if !isASCIIAlphanumeric(ch) && ch != '^' && ch != '-' && ch != ':' {
				return false
			}
		}
	}
	return hasAlpha || strings.Contains(left, "^") || strings.Contains(left, "-")
}

// looksLikeKeybindingRow classifies one two-column row as a key binding.
func looksLikeKeybindingRow(trimmed string) bool {
	left, right, ok := splitTwoColumns(trimmed)
	if !ok {
		return false
	}

	leftLower := strings.ToLower(left)
	if strings.Contains(leftLower, "esc-") || strings.Contains(leftLower, "ctrl") ||
		strings.Contains(leftLower, "arrow") || strings.Contains(left, "^") {
		return true
	}

	tokens := strings.Fields(left)
	if len(tokens) >= 3 {
		allShortKeys := true
		for _, token := range tokens {
			if len(token) > 3 {
				allShortKeys = false
				break
			}
			for _, ch := range token {
				if !isASCIIAlphanumeric(ch) && ch != '^' && ch != '-' && ch != ':' {
					allShortKeys = false
					break
				}
			}
		}
		if allShortKeys {
			return true
		}
	}

	rightLower := strings.ToLower(right)
	verbs := []string{
		"display", "forward", "backward", "exit", "repaint", "repeat",
		"edit", "move cursor", "go to", "print version",
	}
	hasVerb := false
	for _, verb := range verbs {
		if strings.Contains(rightLower, verb) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}
	for _, token := range tokens {
		if len(token) > 2 {
			return false
		}
		for _, ch := range token {
			if !isASCIIAlphanumeric(ch) {
				return false
			}
		}
	}
	return len(tokens) > 0
}

// looksLikeKeybindingDocument reports whether the whole help output is a key
// binding reference (e.g. less's help screen), where command extraction would
// only produce noise.
func looksLikeKeybindingDocument(lines []candidate.Line) bool {
	hits := 0
	for _, line := range lines {
		lower := strings.ToLower(line.Text)
		if strings.Contains(lower, "esc-") || strings.Contains(lower, "ctrl-") ||
			strings.Contains(line.Text, "^") ||
			strings.Contains(lower, "leftarrow") || strings.Contains(lower, "rightarrow") {
			hits++
		}
		if strings.Contains(lower, "summary of less commands") {
			return true
		}
	}
	return hits >= 8
}

// parseDenseCommandGridSubcommands extracts subcommands from multi-column
// grids under a "Commands"-like header (openssl style). When a primary
// section exists, auxiliary sections (digests, ciphers, ...) are recognized
// for coverage but contribute no candidates.
func (p *HelpParser) parseDenseCommandGridSubcommands(lines []candidate.Line) ([]schema.SubcommandSchema, []int, bool) {
	type gridSection struct {
		primary bool
		tokens  []string
		indices []int
	}

	var sections []gridSection
	var current *gridSection
	inGrid := false
	denseRowSeen := false

	flush := func() {
		if current != nil && denseRowSeen && len(current.tokens) >= 3 {
			sections = append(sections, *current)
		}
		current = nil
		inGrid = false
		denseRowSeen = false
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" {
			continue
		}

		if primary, ok := classifyDenseCommandGridHeader(trimmed); ok {
			flush()
			current = &gridSection{primary: primary}
			inGrid = true
			continue
		}
		if !inGrid {
			continue
		}
		if _, ok := p.detectSectionHeader(trimmed); ok {
			flush()
			continue
		}
		if isBlockHeader(trimmed) || strings.HasPrefix(strings.ToLower(trimmed), "usage:") {
			flush()
			continue
		}

		tokens := parseDenseCommandGridRow(trimmed)
		if tokens == nil {
			flush()
			continue
		}
		if len(tokens) >= 2 {
			denseRowSeen = true
		} else if !denseRowSeen {
			flush()
			continue
		}
		current.tokens = append(current.tokens, tokens...)
		current.indices = append(current.indices, line.Index)
	}
	flush()

	if len(sections) == 0 {
		return nil, nil, false
	}

	primaryAvailable := false
	for _, section := range sections {
		if section.primary {
			primaryAvailable = true
			break
		}
	}

	var subcommands []schema.SubcommandSchema
	var recognized []int
	seen := make(map[string]bool)
	hasPrimary := false
	for _, section := range sections {
		recognized = append(recognized, section.indices...)
		if primaryAvailable && !section.primary {
			continue
		}
		if section.primary {
			hasPrimary = true
		}
		for _, token := range section.tokens {
			if !seen[token] {
				seen[token] = true
				subcommands = append(subcommands, schema.NewSubcommand(token))
			}
		}
	}

	return subcommands, recognized, hasPrimary
}

// classifyDenseCommandGridHeader reports whether a line is a grid header and
// whether the section it opens holds first-class commands rather than an
// auxiliary listing.
func classifyDenseCommandGridHeader(trimmed string) (primary bool, ok bool) {
	if strings.HasPrefix(trimmed, "-") {
		return false, false
	}
	header := strings.TrimSuffix(trimmed, ":")
	if i := strings.Index(strings.ToLower(header), " (note"); i >= 0 {
		header = header[:i]
	}
	lower := strings.ToLower(header)
	if !strings.Contains(lower, "command") {
		return false, false
	}
	if strings.Contains(lower, "summary of") {
		return false, false
	}
	if len(strings.Fields(header)) > 5 {
		return false, false
	}

	auxiliary := []string{
		"hash", "digest", "cipher", "algorithm", "algorithms",
		"provider", "providers", "legacy", "deprecated",
		"debug", "diagnostic", "completion", "completions",
	}
	for _, needle := range auxiliary {
		if strings.Contains(lower, needle) {
			return false, true
		}
	}
	return true, true
}

// parseDenseCommandGridRow returns all grid tokens on a row, or nil when any
// column fails the command-name checks.
func parseDenseCommandGridRow(trimmed string) []string {
	var tokens []string
	for _, raw := range columnBreakRE.Split(trimmed, -1) {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if !isValidCommandName(token) || !isPlausibleSubcommandName(token) {
			return nil
		}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// isSubcommandNameColumn validates a left column for section-scoped
// two-column command rows.
func isSubcommandNameColumn(left string) bool {
	switch strings.ToLower(strings.TrimSpace(left)) {
	case "usage", "options", "flags", "commands", "all commands",
		"arguments", "examples", "example":
		return false
	}
	if strings.HasPrefix(left, "-") {
		return false
	}
	for _, raw := range strings.Split(left, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			return false
		}
		if allDots(name) {
			continue
		}
		if !isValidCommandName(name) {
			return false
		}
	}
	return true
}

// isGenericSubcommandNameColumn is the stricter variant used outside typed
// sections, where plain two-column prose must not be mistaken for commands.
func isGenericSubcommandNameColumn(left, blockHeader string) bool {
	if !isSubcommandNameColumn(left) {
		return false
	}
	if blockHeader != "" && isNonCommandBlockHeader(blockHeader) {
		return false
	}

	sawLowercase := false
	for _, raw := range strings.Split(left, ",") {
		name := strings.TrimSpace(raw)
		if name == "" || name == "_" {
			return false
		}
		if looksLikePlaceholderSubcommandToken(name) {
			return false
		}
		if looksLikeNonCommandValueToken(name) {
			return false
		}
		first := rune(name[0])
		if !(first >= 'a' && first <= 'z') {
			return false
		}
		for _, ch := range name {
			if ch >= 'a' && ch <= 'z' {
				sawLowercase = true
				break
			}
		}
	}
	return sawLowercase
}

func looksLikePlaceholderSubcommandToken(token string) bool {
	if token == "" || token == "_" {
		return true
	}
	allDigit := true
	for _, ch := range token {
		if !isASCIIDigit(ch) {
			allDigit = false
			break
		}
	}
	if allDigit {
		return true
	}
	if strings.HasSuffix(token, "...") {
		return true
	}
	if len(token) <= 4 {
		allUpperish := true
		for _, ch := range token {
			if !isASCIIUpper(ch) && !isASCIIDigit(ch) && ch != '-' {
				allUpperish = false
				break
			}
		}
		if allUpperish {
			return true
		}
	}
	return false
}

// looksLikeNonCommandValueToken matches tokens that belong to value tables
// (quoting styles, time styles, when-values) rather than command lists.
func looksLikeNonCommandValueToken(token string) bool {
	switch strings.ToLower(token) {
	case "none", "off", "numbered", "existing", "simple", "never", "nil",
		"all", "auto", "always", "default", "older", "warn", "warn-nopipe",
		"exit", "exit-nopipe", "once", "pages", "or", "while", "gnu",
		"report", "full":
		return true
	}
	return false
}

func allDots(token string) bool {
	if token == "" {
		return false
	}
	for _, ch := range token {
		if ch != '.' {
			return false
		}
	}
	return true
}

// parseNamedSettingRows extracts setting names from stty-style tables where
// each row is "name  same as ...". Gated to the stty base command since the
// shape is otherwise indistinguishable from value tables.
func (p *HelpParser) parseNamedSettingRows(lines []candidate.Line) ([]schema.SubcommandSchema, []int) {
	base := p.command
	if fields := strings.Fields(p.command); len(fields) > 0 {
		base = fields[0]
	}
	if base != "stty" {
		return nil, nil
	}

	var subcommands []schema.SubcommandSchema
	var recognized []int
	seen := make(map[string]bool)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Text)
		left, right, ok := splitTwoColumns(trimmed)
		if !ok {
			continue
		}
		if strings.ContainsAny(left, "- \t") || !isValidCommandName(left) {
			continue
		}
		hasLower := false
		valid := true
		for _, ch := range left {
			if isASCIIUpper(ch) || isASCIIDigit(ch) {
				valid = false
				break
			}
			if ch >= 'a' && ch <= 'z' {
				hasLower = true
			}
		}
		if !valid || !hasLower {
			continue
		}
		rightLower := strings.ToLower(right)
		if !strings.HasPrefix(rightLower, "same as") &&
			!strings.HasPrefix(rightLower, "print ") &&
			!strings.HasPrefix(rightLower, "set ") &&
			!strings.HasPrefix(rightLower, "tell ") {
			continue
		}
		if seen[left] {
			continue
		}
		seen[left] = true
		sub := schema.NewSubcommand(left)
		sub.Description = sanitizeDescriptionText(right)
		subcommands = append(subcommands, sub)
		recognized = append(recognized, line.Index)
	}

	return subcommands, recognized
}

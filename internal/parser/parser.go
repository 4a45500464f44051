// Package parser turns captured --help output into a structured command
// schema. Extraction runs in staged passes: format classification, section
// bucketing, layout-specific strategies, and a confidence gate that keeps
// low-quality findings out of the final schema.
package parser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/parser/man"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// HelpParser extracts a command schema from one help-output capture. It is
// single-use: construct, call Parse once, then read warnings and diagnostics.
type HelpParser struct {
	command        string
	rawOutput      string
	detectedFormat schema.HelpFormat
	warnings       []string
	diagnostics    ParseDiagnostics
	logger         *zap.Logger
}

// New creates a parser for the given command's help output.
func New(command, rawOutput string) *HelpParser {
	return &HelpParser{
		command:        command,
		rawOutput:      rawOutput,
		detectedFormat: schema.FormatUnknown,
		logger:         zap.NewNop(),
	}
}

// NewWithLogger creates a parser that logs stage progress.
func NewWithLogger(command, rawOutput string, logger *zap.Logger) *HelpParser {
	p := New(command, rawOutput)
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Warnings returns everything noteworthy the parse produced, in order.
func (p *HelpParser) Warnings() []string { return p.warnings }

// Diagnostics returns coverage and strategy information for the last parse.
func (p *HelpParser) Diagnostics() *ParseDiagnostics { return &p.diagnostics }

// DetectedFormat returns the classified help-output format.
func (p *HelpParser) DetectedFormat() schema.HelpFormat { return p.detectedFormat }

// Parse runs the full extraction pipeline and returns the schema, or nil for
// empty input.
func (p *HelpParser) Parse() *schema.CommandSchema {
	if strings.TrimSpace(p.rawOutput) == "" {
		p.warnings = append(p.warnings, "Empty help output")
		return nil
	}

	normalized := NormalizeHelpOutput(p.rawOutput)
	lines := ToIndexedLines(normalized)
	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.Text
	}

	formatScores := ClassifyFormats(texts)
	p.detectedFormat = formatScores[0].Format
	p.logger.Debug("classified help output",
		zap.String("command", p.command),
		zap.Stringer("format", p.detectedFormat),
		zap.Float64("score", formatScores[0].Score))

	result := schema.New(p.command, schema.SourceHelpCommand)
	result.Version = p.extractVersion(lines)
	result.Description = p.extractDescription(lines)

	recognized := make(map[int]bool)
	var parsersUsed []string

	buckets := p.identifySections(lines)
	for _, idx := range buckets.HeaderIndices {
		recognized[idx] = true
	}
	keybindingDoc := looksLikeKeybindingDocument(lines)

	manDetected := p.detectedFormat == schema.FormatMan
	plan := rankedStrategyNames(formatScores, manDetected)
	parsersUsed = append(parsersUsed, "strategy-plan:"+strings.Join(plan, "+"))
	strategies := []Strategy{
		&sectionStrategy{p: p},
		&npmStrategy{p: p},
		&gnuStrategy{p: p},
		&usageStrategy{p: p},
	}
	var manStrategy *man.Strategy
	if manDetected {
		manStrategy = man.NewStrategy()
		strategies = append([]Strategy{manStrategy}, strategies...)
	}
	for _, s := range strategies {
		parsersUsed = append(parsersUsed, "strategy-registered:"+s.Name())
	}

	var flagCandidates []candidate.Flag
	var subcommandCandidates []candidate.Subcommand
	var argCandidates []candidate.Arg

	if manStrategy != nil {
		bundle := manStrategy.CollectAll(lines)
		flagCandidates = append(flagCandidates, bundle.Flags...)
		subcommandCandidates = append(subcommandCandidates, bundle.Subcommands...)
		argCandidates = append(argCandidates, bundle.Args...)
		for _, idx := range bundle.RecognizedIndices() {
			recognized[idx] = true
		}
	}

	if usageIdxs := collectUsageIndices(lines); len(usageIdxs) > 0 {
		parsersUsed = append(parsersUsed, "usage-lines")
		for _, idx := range usageIdxs {
			recognized[idx] = true
		}
	}

	// Stage 1: typed sections.
	if cands := p.sectionSubcommandCandidates(buckets.Subcommands); len(cands) > 0 {
		parsersUsed = append(parsersUsed, "section-subcommands")
		subcommandCandidates = append(subcommandCandidates, cands...)
	}
	if cands := p.sectionFlagCandidates(buckets.Flags, "section-flags", sectionFlagConfidence); len(cands) > 0 {
		parsersUsed = append(parsersUsed, "section-flags")
		flagCandidates = append(flagCandidates, cands...)
	}
	if cands := p.sectionFlagCandidates(buckets.Options, "section-options", sectionOptionConfidence); len(cands) > 0 {
		parsersUsed = append(parsersUsed, "section-options")
		flagCandidates = append(flagCandidates, cands...)
	}
	if cands := p.sectionArgCandidates(buckets.Arguments); len(cands) > 0 {
		parsersUsed = append(parsersUsed, "section-arguments")
		argCandidates = append(argCandidates, cands...)
	}
	markSpans(recognized, flagSpans(flagCandidates), subSpans(subcommandCandidates), argSpans(argCandidates))

	// Stage 2: fallback subcommand layouts, tried only while no earlier pass
	// yielded anything.
	if len(subcommandCandidates) == 0 {
		subs, idxs := p.parseNpmStyleCommands(lines)
		if len(subs) > 0 {
			parsersUsed = append(parsersUsed, "npm-command-list")
			for _, sub := range subs {
				subcommandCandidates = append(subcommandCandidates,
					candidate.NewSubcommand(sub, candidate.UnknownSpan(), "npm-command-list", npmCommandConfidence))
			}
			for _, idx := range idxs {
				recognized[idx] = true
			}
		}
	}
	if len(subcommandCandidates) == 0 && !keybindingDoc {
		subs, idxs, primary := p.parseDenseCommandGridSubcommands(lines)
		if len(subs) > 0 {
			parsersUsed = append(parsersUsed, "dense-command-grid-subcommands")
			conf := denseGridConfidence
			if primary {
				conf = denseGridPrimaryConfidence
			}
			for _, sub := range subs {
				subcommandCandidates = append(subcommandCandidates,
					candidate.NewSubcommand(sub, candidate.UnknownSpan(), "dense-command-grid-subcommands", conf))
			}
			for _, idx := range idxs {
				recognized[idx] = true
			}
		}
	}
	if len(subcommandCandidates) == 0 && !keybindingDoc &&
		len(buckets.Subcommands) == 0 && len(buckets.Arguments) == 0 {
		subs, idxs := p.parseTwoColumnSubcommands(lines)
		if len(subs) > 0 {
			parsersUsed = append(parsersUsed, "generic-two-column-subcommands")
			for _, sub := range subs {
				subcommandCandidates = append(subcommandCandidates,
					candidate.NewSubcommand(sub, candidate.UnknownSpan(), "generic-two-column-subcommands", twoColumnConfidence))
			}
			for _, idx := range idxs {
				recognized[idx] = true
			}
		}
	} else if keybindingDoc {
		parsersUsed = append(parsersUsed, "generic-two-column-skipped:keybinding-doc")
	}
	if subs, idxs := p.parseNamedSettingRows(lines); len(subs) > 0 {
		parsersUsed = append(parsersUsed, "named-setting-rows")
		for _, sub := range subs {
			subcommandCandidates = append(subcommandCandidates,
				candidate.NewSubcommand(sub, candidate.UnknownSpan(), "named-setting-rows", namedSettingConfidence))
		}
		for _, idx := range idxs {
			recognized[idx] = true
		}
	}

	// Stage 3: sectionless flags top up whatever sections produced; usage
	// reconstruction only fills a complete void.
	if flags, idxs := p.parseSectionlessFlags(lines); len(flags) > 0 {
		parsersUsed = append(parsersUsed, "gnu-sectionless-flags")
		for _, flag := range flags {
			flagCandidates = append(flagCandidates,
				candidate.NewFlag(flag, candidate.UnknownSpan(), "gnu-sectionless-flags", gnuSectionlessConfidence))
		}
		for _, idx := range idxs {
			recognized[idx] = true
		}
	}
	if len(flagCandidates) == 0 {
		if flags := p.parseUsageCompactFlags(lines); len(flags) > 0 {
			parsersUsed = append(parsersUsed, "usage-compact-flags")
			for _, flag := range flags {
				flagCandidates = append(flagCandidates,
					candidate.NewFlag(flag, candidate.UnknownSpan(), "usage-compact-flags", usageFlagConfidence))
			}
		}
	}
	if len(argCandidates) == 0 {
		hasSubcommands := len(subcommandCandidates) > 0
		if args := p.parseUsagePositionals(lines, hasSubcommands); len(args) > 0 {
			parsersUsed = append(parsersUsed, "usage-positionals")
			for _, arg := range args {
				argCandidates = append(argCandidates,
					candidate.NewArg(arg, candidate.UnknownSpan(), "usage-positionals", usagePositionalConfidence))
			}
		}
	}

	filterHits := countFilterHits(lines)
	subcommandCandidates, subDrops := filterSubcommandCandidates(subcommandCandidates)
	argCandidates, argDrops := filterArgCandidates(argCandidates)
	filterHits += subDrops + argDrops

	flagGate := mergeFlagCandidates(flagCandidates, HighConfidenceThreshold)
	subGate := mergeSubcommandCandidates(subcommandCandidates, HighConfidenceThreshold)
	argGate := mergeArgCandidates(argCandidates, HighConfidenceThreshold)
	result.GlobalFlags = flagGate.Accepted
	result.Subcommands = subGate.Accepted
	result.Positional = argGate.Accepted

	applyFlagRelationships(result.GlobalFlags)
	for _, errText := range validateSubcommandHierarchy(p.command, result.Subcommands) {
		p.warnings = append(p.warnings, "Subcommand hierarchy validation: "+errText)
	}

	var hintIdxs []int
	result.GlobalFlags, hintIdxs = p.applyFlagChoiceHints(lines, result.GlobalFlags)
	for _, idx := range hintIdxs {
		recognized[idx] = true
	}
	result.GlobalFlags, hintIdxs = p.applyChoiceTableHints(lines, result.GlobalFlags)
	for _, idx := range hintIdxs {
		recognized[idx] = true
	}

	result.GlobalFlags = dedupeFlags(result.GlobalFlags)
	result.Subcommands = dedupeSubcommands(result.Subcommands)
	result.Positional = dedupeArgs(result.Positional)
	schema.Finalize(result)

	result.Confidence = p.calculateConfidence(result)

	gateDiag := candidateDiagnostics{
		MediumFlags:             flagGate.MediumConfidence,
		DiscardedFlags:          flagGate.Discarded,
		MediumSubcommands:       subGate.MediumConfidence,
		DiscardedSubcommands:    subGate.Discarded,
		MediumArgs:              argGate.MediumConfidence,
		DiscardedArgs:           argGate.Discarded,
		FalsePositiveFilterHits: filterHits,
	}
	p.warnings = append(p.warnings, gateDiag.warnings()...)

	result = gateSchema(result)
	p.diagnostics = p.buildDiagnostics(lines, recognized, formatScores, parsersUsed, result.Confidence)
	p.logger.Debug("parsed help output",
		zap.String("command", p.command),
		zap.Int("flags", len(result.GlobalFlags)),
		zap.Int("subcommands", len(result.Subcommands)),
		zap.Int("positional", len(result.Positional)),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("coverage", p.diagnostics.Coverage()))
	return result
}

func markSpans(recognized map[int]bool, spanLists ...[]candidate.Span) {
	for _, spans := range spanLists {
		for _, span := range spans {
			if span.IsUnknown() {
				continue
			}
			for i := span.LineStart; i <= span.LineEnd; i++ {
				recognized[i] = true
			}
		}
	}
}

func flagSpans(cands []candidate.Flag) []candidate.Span {
	spans := make([]candidate.Span, 0, len(cands))
	for _, c := range cands {
		spans = append(spans, c.Span)
	}
	return spans
}

func subSpans(cands []candidate.Subcommand) []candidate.Span {
	spans := make([]candidate.Span, 0, len(cands))
	for _, c := range cands {
		spans = append(spans, c.Span)
	}
	return spans
}

func argSpans(cands []candidate.Arg) []candidate.Span {
	spans := make([]candidate.Span, 0, len(cands))
	for _, c := range cands {
		spans = append(spans, c.Span)
	}
	return spans
}

// filterSubcommandCandidates drops names that pattern-match known
// false-positive shapes and reports how many were dropped.
func filterSubcommandCandidates(cands []candidate.Subcommand) ([]candidate.Subcommand, int) {
	var kept []candidate.Subcommand
	drops := 0
	for _, c := range cands {
		if isPlaceholderToken(c.Name) || isEnvVarRow(c.Name) ||
			isKeybindingRow(c.Name) || isProseHeader(c.Name) {
			drops++
			continue
		}
		kept = append(kept, c)
	}
	return kept, drops
}

func filterArgCandidates(cands []candidate.Arg) ([]candidate.Arg, int) {
	var kept []candidate.Arg
	drops := 0
	for _, c := range cands {
		if isPlaceholderToken(c.Name) {
			drops++
			continue
		}
		kept = append(kept, c)
	}
	return kept, drops
}

// extractVersion scans the banner lines for a version number. Only the first
// few lines are trusted; numbers deeper in the output are usually examples.
func (p *HelpParser) extractVersion(lines []candidate.Line) string {
	base := p.command
	if fields := strings.Fields(p.command); len(fields) > 0 {
		base = fields[0]
	}

	for i, line := range lines {
		if i >= 5 {
			break
		}
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)

		if strings.Contains(lower, strings.ToLower(base)) {
			if m := versionNumberRE.FindStringSubmatch(text); m != nil {
				return m[1]
			}
		}
		if strings.Contains(lower, "version") || strings.Contains(lower, " v") {
			if m := versionNumberRE.FindStringSubmatch(text); m != nil {
				return m[1]
			}
		}
		if m := bannerVersionRE.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractDescription picks the first prose line near the top of the output
// that is not usage syntax, a section header, or a table row.
func (p *HelpParser) extractDescription(lines []candidate.Line) string {
	base := p.command
	if fields := strings.Fields(p.command); len(fields) > 0 {
		base = fields[0]
	}
	for i, line := range lines {
		if i >= 10 {
			break
		}
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" || isUsageLine(trimmed) {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "examples:") || strings.HasPrefix(lower, "example:") {
			continue
		}
		if strings.HasSuffix(trimmed, ":") {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "[") ||
			strings.HasPrefix(trimmed, "<") {
			continue
		}
		// Banner lines ("myapp 1.2.3") are version, not description.
		if fields := strings.Fields(trimmed); len(fields) > 0 &&
			strings.EqualFold(fields[0], base) {
			continue
		}
		if left, _, ok := splitTwoColumns(trimmed); ok {
			if looksLikeCommandToken(left) || looksLikeFlagRowStart(left) {
				continue
			}
		}
		if len(trimmed) > 10 && !strings.Contains(trimmed, "--") &&
			!strings.Contains(trimmed, "[") && !strings.Contains(trimmed, "]") &&
			!strings.Contains(trimmed, "...") {
			return sanitizeDescriptionText(trimmed)
		}
	}
	return ""
}

// sanitizeDescriptionText strips table artifacts from a description column:
// dot leaders, trailing "--  note" sentinels, and run-on whitespace.
func sanitizeDescriptionText(text string) string {
	cleaned := dotLeaderPrefixRE.ReplaceAllString(text, "")
	cleaned = inlineDoubleDashSentinelRE.ReplaceAllString(cleaned, "")
	cleaned = multiWhitespaceRE.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// inferValueType guesses the value type from placeholder words in a flag
// definition row.
func (p *HelpParser) inferValueType(line string) schema.ValueType {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "file"):
		return schema.ValueType{Kind: schema.ValueFile}
	case strings.Contains(lower, "dir"), strings.Contains(lower, "directory"):
		return schema.ValueType{Kind: schema.ValueDirectory}
	case strings.Contains(lower, "url"), strings.Contains(lower, "uri"):
		return schema.ValueType{Kind: schema.ValueURL}
	case strings.Contains(lower, "number"), strings.Contains(lower, "count"),
		strings.Contains(lower, "num"):
		return schema.ValueType{Kind: schema.ValueNumber}
	}
	if m := choiceValuesRE.FindStringSubmatch(line); m != nil {
		var choices []string
		for _, raw := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == ',' || r == '|'
		}) {
			if choice := strings.TrimSpace(raw); choice != "" {
				choices = append(choices, choice)
			}
		}
		if len(choices) > 0 {
			return schema.Choice(choices)
		}
	}
	return schema.ValueType{Kind: schema.ValueString}
}

// calculateConfidence scores the overall schema from what was found.
func (p *HelpParser) calculateConfidence(s *schema.CommandSchema) float64 {
	confidence := 0.5
	if len(s.Subcommands) > 0 {
		confidence += 0.2
	}
	if len(s.GlobalFlags) > 3 {
		confidence += 0.15
	}
	if len(s.Positional) > 0 {
		confidence += 0.1
	}
	if p.detectedFormat != schema.FormatUnknown {
		confidence += 0.1
	}
	if s.Description != "" {
		confidence += 0.05
	}
	return candidate.Clamp(confidence)
}

// buildDiagnostics computes coverage over relevant lines and tags the run
// with a confidence disposition.
func (p *HelpParser) buildDiagnostics(lines []candidate.Line, recognized map[int]bool,
	formatScores []FormatScore, parsersUsed []string, confidence float64) ParseDiagnostics {

	relevant := 0
	recognizedCount := 0
	var unresolved []string
	for _, line := range lines {
		if !isRelevantLine(strings.TrimSpace(line.Text)) {
			continue
		}
		relevant++
		if recognized[line.Index] {
			recognizedCount++
		} else {
			unresolved = append(unresolved, line.Text)
		}
	}

	if len(parsersUsed) == 0 {
		parsersUsed = []string{"none"}
	}
	switch {
	case confidence >= 0.85:
		parsersUsed = append(parsersUsed, "confidence:auto-accept")
	case confidence >= 0.65:
		parsersUsed = append(parsersUsed, "confidence:draft")
	default:
		parsersUsed = append(parsersUsed, "confidence:reject")
	}

	return ParseDiagnostics{
		FormatScores:    formatScores,
		ParsersUsed:     parsersUsed,
		RelevantLines:   relevant,
		RecognizedLines: recognizedCount,
		UnresolvedLines: unresolved,
	}
}

// isRelevantLine decides whether a line counts toward coverage: it must look
// like structure (usage, header, flag row, table row) rather than prose or
// decoration.
func isRelevantLine(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "---") ||
		strings.HasPrefix(trimmed, "-<") || strings.HasPrefix(trimmed, "--<") {
		return false
	}
	if lineOfDashesRE.MatchString(trimmed) {
		return false
	}
	if looksLikeKeybindingRow(trimmed) {
		return false
	}
	return isUsageLine(trimmed) ||
		looksLikeUsageSynopsisStart(trimmed) ||
		isSectionHeaderLine(trimmed) ||
		looksLikeFlagRowStart(trimmed) ||
		looksLikeStructuredTwoColumn(trimmed) ||
		looksLikeCommaCommandList(trimmed)
}

func isSectionHeaderLine(trimmed string) bool {
	if subcommandsSectionRE.MatchString(trimmed) || flagsSectionRE.MatchString(trimmed) ||
		optionsSectionRE.MatchString(trimmed) || argumentsSectionRE.MatchString(trimmed) {
		return true
	}
	if !strings.HasSuffix(trimmed, ":") {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, needle := range []string{"command", "action", "option", "flag", "argument"} {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

func looksLikeStructuredTwoColumn(trimmed string) bool {
	left, right, ok := splitTwoColumns(trimmed)
	if !ok {
		return false
	}
	if strings.Contains(right, ":=") || left == "-" {
		return false
	}
	if strings.HasPrefix(left, "-") {
		return looksLikeFlagRowStart(left)
	}
	tokens := strings.Split(left, ",")
	allNonCommandValues := true
	for _, raw := range tokens {
		name := strings.TrimSpace(raw)
		if name == "" {
			return false
		}
		if !looksLikeNonCommandValueToken(name) {
			allNonCommandValues = false
		}
		if !looksLikeCommandToken(name) {
			return false
		}
	}
	if allNonCommandValues {
		return false
	}
	return !strings.HasPrefix(strings.TrimSpace(right), ":")
}

func looksLikeCommaCommandList(trimmed string) bool {
	if !strings.Contains(trimmed, ",") {
		return false
	}
	for _, raw := range strings.Split(trimmed, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if !looksLikeCommandToken(name) {
			return false
		}
	}
	return true
}

// looksLikeCommandToken is the strict per-token check used by relevance
// heuristics: lowercase concrete command names only.
func looksLikeCommandToken(token string) bool {
	if token == "" || strings.HasPrefix(token, "-") || token == "_" {
		return false
	}
	if allDots(token) {
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
		return false
	}
	if looksLikePlaceholderSubcommandToken(token) || looksLikeNonCommandValueToken(token) {
		return false
	}
	for _, ch := range token {
		if ch == ' ' || ch == '\t' || isASCIIUpper(ch) {
			return false
		}
	}
	return isValidCommandName(token)
}

// dedupeFlags merges duplicate flag entries produced by different passes. A
// later entry enriches the first one that shares a short or long form.
func dedupeFlags(flags []schema.FlagSchema) []schema.FlagSchema {
	var deduped []schema.FlagSchema
	for _, flag := range flags {
		merged := false
		for i := range deduped {
			if flagsOverlap(&deduped[i], &flag) {
				mergeFlags(&deduped[i], &flag)
				merged = true
				break
			}
		}
		if !merged {
			deduped = append(deduped, flag)
		}
	}
	return deduped
}

func flagsOverlap(a, b *schema.FlagSchema) bool {
	if a.Long != "" && b.Long != "" {
		return a.Long == b.Long
	}
	if a.Short != "" && b.Short != "" {
		return a.Short == b.Short
	}
	return false
}

func mergeFlags(target, incoming *schema.FlagSchema) {
	if target.Short == "" {
		target.Short = incoming.Short
	}
	if target.Long == "" {
		target.Long = incoming.Long
	}
	if incoming.TakesValue {
		target.TakesValue = true
		if target.ValueType.Kind == schema.ValueBool || target.ValueType.Kind == schema.ValueString {
			target.ValueType = incoming.ValueType
		}
	}
	incomingDesc := sanitizeDescriptionText(incoming.Description)
	if len(incomingDesc) > len(target.Description) {
		target.Description = incomingDesc
	}
	if incoming.Multiple {
		target.Multiple = true
	}
	target.ConflictsWith = mergeStringList(target.ConflictsWith, incoming.ConflictsWith)
	target.Requires = mergeStringList(target.Requires, incoming.Requires)
}

func mergeStringList(target, incoming []string) []string {
	for _, value := range incoming {
		if !containsString(target, value) {
			target = append(target, value)
		}
	}
	return target
}

func dedupeSubcommands(subs []schema.SubcommandSchema) []schema.SubcommandSchema {
	seen := make(map[string]bool)
	var deduped []schema.SubcommandSchema
	for _, sub := range subs {
		if seen[sub.Name] {
			continue
		}
		seen[sub.Name] = true
		deduped = append(deduped, sub)
	}
	return deduped
}

func dedupeArgs(args []schema.ArgSchema) []schema.ArgSchema {
	var deduped []schema.ArgSchema
	index := make(map[string]int)
	for _, arg := range args {
		key := strings.ToLower(arg.Name)
		if i, ok := index[key]; ok {
			if arg.Required {
				deduped[i].Required = true
			}
			if arg.Multiple {
				deduped[i].Multiple = true
			}
			if deduped[i].ValueType.Kind == schema.ValueString && arg.ValueType.Kind != schema.ValueString {
				deduped[i].ValueType = arg.ValueType
			}
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, arg)
	}
	return deduped
}

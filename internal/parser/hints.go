package parser

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// applyFlagChoiceHints handles the inline form where a "Valid arguments for
// -D:" header is followed by a single comma-separated line of choices.
func (p *HelpParser) applyFlagChoiceHints(lines []candidate.Line, flags []schema.FlagSchema) ([]schema.FlagSchema, []int) {
	var recognized []int

	for i := 0; i < len(lines); i++ {
		m := validArgumentsForRE.FindStringSubmatch(strings.TrimSpace(lines[i].Text))
		if m == nil {
			continue
		}
		flagToken := m[1]
		if !strings.HasPrefix(flagToken, "-") {
			continue
		}

		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j].Text) == "" {
			j++
		}
		if j >= len(lines) {
			continue
		}
		valueLine := strings.TrimSpace(lines[j].Text)
		if !strings.Contains(valueLine, ",") {
			continue
		}

		var choices []string
		for _, raw := range strings.Split(valueLine, ",") {
			choice := strings.TrimSpace(raw)
			if choice != "" && isValidCommandName(choice) {
				choices = append(choices, choice)
			}
		}
		if len(choices) == 0 {
			continue
		}

		found := false
		for k := range flags {
			if flags[k].Short == flagToken || flags[k].Long == flagToken {
				flags[k].TakesValue = true
				flags[k].ValueType = schema.Choice(choices)
				found = true
				break
			}
		}
		if !found {
			flags = append(flags, schema.FlagSchema{
				Short:       flagToken,
				Description: "Valid arguments for " + flagToken,
				TakesValue:  true,
				ValueType:   schema.Choice(choices),
			})
		}
		recognized = append(recognized, lines[i].Index, lines[j].Index)
	}

	return flags, recognized
}

type choiceTarget struct {
	flagToken   string
	placeholder string
}

// applyChoiceTableHints handles multi-row value tables introduced by headers
// like "WHEN is one of the following:" or "possible values", attaching the
// parsed choices to the flag the table describes.
func (p *HelpParser) applyChoiceTableHints(lines []candidate.Line, flags []schema.FlagSchema) ([]schema.FlagSchema, []int) {
	var recognized []int

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i].Text)
		target, ok := classifyChoiceTableHeader(lines, i, trimmed)
		if !ok {
			continue
		}

		var choices []string
		var rowIndices []int
		started := false
		j := i + 1
		for ; j < len(lines); j++ {
			rowTrimmed := strings.TrimSpace(lines[j].Text)
			if rowTrimmed == "" {
				if started {
					break
				}
				continue
			}
			if isUsageLine(rowTrimmed) || strings.HasPrefix(rowTrimmed, "-") {
				break
			}
			if _, isHeader := p.detectSectionHeader(rowTrimmed); isHeader {
				break
			}
			left, _, twoCol := splitTwoColumns(rowTrimmed)
			if !twoCol {
				break
			}
			rowChoices := parseChoiceTokens(left)
			if len(rowChoices) == 0 {
				break
			}
			started = true
			choices = append(choices, rowChoices...)
			rowIndices = append(rowIndices, lines[j].Index)
		}
		if len(choices) < 2 {
			continue
		}

		idx := -1
		if target.flagToken != "" {
			for k := range flags {
				if flags[k].Short == target.flagToken || flags[k].Long == target.flagToken {
					idx = k
					break
				}
			}
		} else if target.placeholder != "" {
			idx = resolveFlagForPlaceholder(lines, i, target.placeholder, flags)
		}
		if idx < 0 {
			continue
		}

		flags[idx].TakesValue = true
		if flags[idx].ValueType.Kind == schema.ValueChoice {
			merged := flags[idx].ValueType.Choices
			existing := make(map[string]bool, len(merged))
			for _, choice := range merged {
				existing[choice] = true
			}
			for _, choice := range choices {
				if !existing[choice] {
					existing[choice] = true
					merged = append(merged, choice)
				}
			}
			flags[idx].ValueType = schema.Choice(merged)
		} else {
			flags[idx].ValueType = schema.Choice(choices)
		}
		recognized = append(recognized, lines[i].Index)
		recognized = append(recognized, rowIndices...)
	}

	return flags, recognized
}

func classifyChoiceTableHeader(lines []candidate.Line, idx int, trimmed string) (choiceTarget, bool) {
	if m := validArgumentsForRE.FindStringSubmatch(trimmed); m != nil {
		token := normalizeFlagToken(m[1], nil)
		if token != "" {
			return choiceTarget{flagToken: token}, true
		}
	}
	if m := placeholderValuesRE.FindStringSubmatch(trimmed); m != nil {
		return choiceTarget{placeholder: m[1]}, true
	}
	if m := placeholderDeterminesRE.FindStringSubmatch(trimmed); m != nil {
		return choiceTarget{placeholder: m[1]}, true
	}
	if genericValuesHeaderRE.MatchString(trimmed) {
		// A generic header carries no target; scan nearby lines for one.
		for back := 1; back <= 3; back++ {
			if idx-back < 0 {
				break
			}
			prev := strings.TrimSpace(lines[idx-back].Text)
			if m := placeholderValuesRE.FindStringSubmatch(prev); m != nil {
				return choiceTarget{placeholder: m[1]}, true
			}
			if m := placeholderDeterminesRE.FindStringSubmatch(prev); m != nil {
				return choiceTarget{placeholder: m[1]}, true
			}
			if m := validArgumentsForRE.FindStringSubmatch(prev); m != nil {
				if token := normalizeFlagToken(m[1], nil); token != "" {
					return choiceTarget{flagToken: token}, true
				}
			}
		}
		return choiceTarget{}, true
	}
	return choiceTarget{}, false
}

// parseChoiceTokens splits a table left column into choice values.
func parseChoiceTokens(left string) []string {
	var choices []string
	for _, raw := range strings.Split(left, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			return nil
		}
		allDigit := true
		for _, ch := range token {
			if !isASCIIDigit(ch) {
				allDigit = false
			}
			if !isASCIIAlphanumeric(ch) && ch != '_' && ch != '-' && ch != '.' {
				return nil
			}
		}
		if allDigit {
			return nil
		}
		if looksLikePlaceholderSubcommandToken(token) {
			return nil
		}
		choices = append(choices, token)
	}
	return choices
}

// resolveFlagForPlaceholder finds the flag a placeholder like WHEN refers to:
// first by the placeholder appearing in a flag name or description, then by a
// flag reference in the lines just above the table header. Ambiguity resolves
// to no match.
func resolveFlagForPlaceholder(lines []candidate.Line, headerIdx int, placeholder string, flags []schema.FlagSchema) int {
	lower := strings.ToLower(placeholder)

	matched := -1
	multiple := false
	for k := range flags {
		if !flags[k].TakesValue {
			continue
		}
		name := strings.TrimPrefix(flags[k].Long, "--")
		if strings.Contains(strings.ToLower(name), lower) ||
			strings.Contains(strings.ToLower(flags[k].Description), lower) {
			if matched >= 0 {
				multiple = true
				break
			}
			matched = k
		}
	}
	if matched >= 0 && !multiple {
		return matched
	}

	matched = -1
	multiple = false
	start := headerIdx - 3
	if start < 0 {
		start = 0
	}
	for i := start; i <= headerIdx && i < len(lines); i++ {
		for _, ref := range flagRefRE.FindAllString(lines[i].Text, -1) {
			token := normalizeFlagToken(ref, nil)
			if token == "" {
				continue
			}
			for k := range flags {
				if flags[k].Short == token || flags[k].Long == token {
					if matched >= 0 && matched != k {
						multiple = true
					}
					matched = k
				}
			}
		}
	}
	if matched >= 0 && !multiple {
		return matched
	}
	return -1
}

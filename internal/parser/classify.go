package parser

import (
	"sort"
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/parser/man/detect"
	"github.com/ex1tium/cmdschema/internal/parser/man/rendered"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// FormatScore is a weighted vote for one help-output format.
type FormatScore struct {
	Format schema.HelpFormat
	Score  float64
}

// ClassifyFormats scores the help output against every known format and
// returns the scores sorted descending. Ties keep declaration order, so the
// ordering is deterministic.
func ClassifyFormats(lines []string) []FormatScore {
	scores := []FormatScore{
		{Format: schema.FormatClap},
		{Format: schema.FormatCobra},
		{Format: schema.FormatGnu},
		{Format: schema.FormatArgparse},
		{Format: schema.FormatDocopt},
		{Format: schema.FormatBsd},
		{Format: schema.FormatMan},
		{Format: schema.FormatUnknown, Score: 0.05},
	}

	output := strings.Join(lines, "\n")
	for i := range scores {
		switch scores[i].Format {
		case schema.FormatClap:
			if strings.Contains(output, "USAGE:") {
				scores[i].Score += 0.35
			}
			if strings.Contains(output, "FLAGS:") {
				scores[i].Score += 0.25
			}
			if strings.Contains(output, "OPTIONS:") {
				scores[i].Score += 0.2
			}
			if strings.Contains(output, "SUBCOMMANDS:") || strings.Contains(output, "Commands:") {
				scores[i].Score += 0.2
			}
		case schema.FormatCobra:
			if strings.Contains(output, "Available Commands:") {
				scores[i].Score += 0.5
			}
			if strings.Contains(output, `Use "`) && strings.Contains(output, "--help") {
				scores[i].Score += 0.35
			}
			if strings.Contains(output, "Flags:") {
				scores[i].Score += 0.15
			}
		case schema.FormatGnu:
			if strings.Contains(output, "Usage:") {
				scores[i].Score += 0.25
			}
			if strings.Contains(output, "--help") {
				scores[i].Score += 0.2
			}
			if strings.Contains(output, "--version") {
				scores[i].Score += 0.2
			}
			for _, line := range lines {
				if strings.HasPrefix(strings.TrimLeft(line, " \t"), "-") {
					scores[i].Score += 0.2
					break
				}
			}
		case schema.FormatArgparse:
			if strings.Contains(output, "positional arguments:") {
				scores[i].Score += 0.45
			}
			if strings.Contains(output, "optional arguments:") {
				scores[i].Score += 0.45
			}
		case schema.FormatDocopt:
			if strings.HasPrefix(output, "Usage:") {
				scores[i].Score += 0.75
			}
		case schema.FormatBsd:
			if strings.Contains(output, "SYNOPSIS") || strings.Contains(output, "DESCRIPTION") {
				scores[i].Score += 0.45
			}
		case schema.FormatMan:
			scores[i].Score += scoreManFormat(lines)
		}
	}

	// Stable sort keeps declaration order across equal scores.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

func scoreManFormat(lines []string) float64 {
	rawMacroCount := 0
	for i, line := range lines {
		if i >= 20 {
			break
		}
		if isRoffMacroLine(line) {
			rawMacroCount++
		}
	}

	hasMdocMarkers := false
	hasManMarkers := false
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, ".dt ") || strings.HasPrefix(lower, ".dd ") || strings.HasPrefix(lower, ".sh ") {
			hasMdocMarkers = true
		}
		if strings.HasPrefix(lower, ".th ") || strings.HasPrefix(lower, ".sh ") || strings.HasPrefix(lower, ".tp") {
			hasManMarkers = true
		}
	}

	var score float64
	if rawMacroCount >= 3 {
		score = 0.95
	} else if rawMacroCount >= 2 {
		score = 0.90
	}
	if score > 0 {
		if hasMdocMarkers {
			score += 0.05
		}
		if hasManMarkers {
			score += 0.05
		}
		return candidate.Clamp(score)
	}

	renderedHeaderHits := 0
	for i, line := range lines {
		if i >= 12 {
			break
		}
		if detect.LooksLikeTitleLine(strings.TrimSpace(line)) {
			renderedHeaderHits++
		}
	}

	sectionHits := 0
	for _, line := range lines {
		if _, ok := rendered.NormalizeSectionName(strings.TrimSpace(line)); ok {
			sectionHits++
		}
	}

	if renderedHeaderHits > 0 {
		score += 0.80
	}
	if sectionHits > 4 {
		sectionHits = 4
	}
	score += float64(sectionHits) * 0.10
	return candidate.Clamp(score)
}

// isRoffMacroLine is looser than detect.IsMacroLine: a control char plus one
// alphabetic character is enough for classifier scoring.
func isRoffMacroLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 2 {
		return false
	}
	if trimmed[0] != '.' && trimmed[0] != '\'' {
		return false
	}
	return isASCIIAlpha(rune(trimmed[1]))
}

// isPlaceholderToken reports whether text is a generic usage placeholder like
// COMMAND or FILE rather than a concrete name.
func isPlaceholderToken(text string) bool {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "COMMAND", "FILE", "PATH", "URL", "ARG", "OPTION", "SUBCOMMAND", "CMD", "ARGS", "OPTIONS":
		return true
	}
	return false
}

// isEnvVarRow reports whether a line looks like an environment variable
// assignment row (e.g. `export FOO=bar` or `MY_VAR=value`).
func isEnvVarRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "export ") {
		return true
	}

	left, _, ok := strings.Cut(trimmed, "=")
	if !ok {
		return false
	}
	key := strings.TrimSpace(left)
	if key == "" {
		return false
	}
	for _, ch := range key {
		if !isASCIIUpper(ch) && !isASCIIDigit(ch) && ch != '_' {
			return false
		}
	}
	return true
}

// isKeybindingRow reports whether a line contains keybinding syntax
// (Ctrl+, ^, Esc-, arrow keys).
func isKeybindingRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.Contains(trimmed, "Ctrl+") || strings.Contains(trimmed, "ctrl+") || strings.Contains(trimmed, "^") {
		return true
	}
	lower := strings.ToLower(trimmed)
	return strings.Contains(lower, "esc-") ||
		strings.Contains(lower, "arrow") ||
		strings.Contains(lower, "backspace") ||
		strings.Contains(lower, "delete")
}

// isProseHeader matches table-like prose headers such as "name  description".
func isProseHeader(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "name  description", "name description",
		"command  description", "command description",
		"option  description", "option description":
		return true
	}
	return false
}

// countFilterHits counts lines matching any hard-negative filter.
func countFilterHits(lines []candidate.Line) int {
	hits := 0
	for _, line := range lines {
		if isEnvVarRow(line.Text) || isKeybindingRow(line.Text) || isProseHeader(line.Text) {
			hits++
		}
	}
	return hits
}

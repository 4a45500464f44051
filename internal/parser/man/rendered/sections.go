// Package rendered extracts candidates from already-typeset manual pages:
// plain text with NAME/SYNOPSIS/OPTIONS/COMMANDS headers but no roff macros.
package rendered

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/parser/man/detect"
)

// Section is one canonical man-page section with the lines it owns.
type Section struct {
	Name      string
	StartLine int
	EndLine   int
	Lines     []candidate.Line
}

// NormalizeSectionName collapses whitespace, strips a trailing colon, and
// uppercases the line; it returns ok=false unless the result is one of the
// canonical section names.
func NormalizeSectionName(line string) (string, bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(line), ":")
	if trimmed == "" || len(trimmed) > 48 {
		return "", false
	}

	upper := strings.ToUpper(strings.Join(strings.Fields(trimmed), " "))
	switch upper {
	case "NAME", "SYNOPSIS", "DESCRIPTION", "OPTIONS", "COMMAND OPTIONS",
		"GLOBAL OPTIONS", "COMMANDS", "SUBCOMMANDS", "ARGUMENTS",
		"EXAMPLES", "EXIT STATUS":
		return upper, true
	default:
		return "", false
	}
}

// LooksLikeSectionHeader reports whether the line is a canonical section
// header.
func LooksLikeSectionHeader(line string) bool {
	_, ok := NormalizeSectionName(line)
	return ok
}

// NormalizeLines prepares rendered output for section parsing: running page
// headers and footers are dropped and indentation continuations are joined
// onto the option or two-column row that started them.
func NormalizeLines(lines []candidate.Line) []candidate.Line {
	out := make([]candidate.Line, 0, len(lines))

	for _, line := range lines {
		trimmedEnd := strings.TrimRight(line.Text, " \t")
		trimmed := strings.TrimSpace(trimmedEnd)

		if shouldDropHeaderFooter(trimmed) {
			continue
		}

		if trimmed == "" {
			out = append(out, candidate.Line{Index: line.Index})
			continue
		}

		if strings.HasPrefix(line.Text, " ") || strings.HasPrefix(line.Text, "\t") {
			if len(out) > 0 && shouldJoinContinuation(out[len(out)-1].Text, trimmed) {
				out[len(out)-1].Text += " " + trimmed
				continue
			}
		}

		out = append(out, candidate.Line{Index: line.Index, Text: trimmedEnd})
	}

	return out
}

func shouldDropHeaderFooter(trimmed string) bool {
	if trimmed == "" {
		return false
	}

	allDigits := true
	for _, ch := range trimmed {
		if ch < '0' || ch > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}

	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, " git manual ") || strings.Contains(lower, "general commands manual") {
		return true
	}

	return detect.LooksLikeTitleLine(trimmed)
}

func shouldJoinContinuation(previous, continuation string) bool {
	prev := strings.TrimSpace(previous)
	if prev == "" || continuation == "" {
		return false
	}
	if LooksLikeSectionHeader(continuation) {
		return false
	}

	prevStartsOption := strings.HasPrefix(prev, "-")
	prevHasTwoColumns := strings.Contains(prev, "  ") || strings.Contains(prev, "\t")
	continuationStartsOption := strings.HasPrefix(continuation, "-")

	return (prevStartsOption || prevHasTwoColumns) && !continuationStartsOption
}

// IdentifySections splits normalized rendered lines into canonical sections.
// Text before the first recognized header is discarded.
func IdentifySections(lines []candidate.Line) []Section {
	var sections []Section
	var currentName string
	var currentStart int
	var currentLines []candidate.Line

	flush := func() {
		if currentName != "" && len(currentLines) > 0 {
			sections = append(sections, Section{
				Name:      currentName,
				StartLine: currentStart,
				EndLine:   currentLines[len(currentLines)-1].Index,
				Lines:     currentLines,
			})
		}
		currentLines = nil
	}

	for _, line := range lines {
		if name, ok := NormalizeSectionName(strings.TrimSpace(line.Text)); ok {
			flush()
			currentName = name
			currentStart = line.Index
			continue
		}
		if currentName != "" {
			currentLines = append(currentLines, line)
		}
	}
	flush()

	return sections
}

package parser

import (
	"regexp"
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
)

var (
	ansiRE       = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	overstrikeRE = regexp.MustCompile(`.\x08`)
)

// NormalizeHelpOutput cleans raw terminal-captured help text: ANSI CSI
// sequences are stripped, backspace overstrike pairs (bold/underline in
// rendered man pages) are removed until none remain, line endings are
// unified, and wrapped flag/subcommand rows are rejoined onto the line that
// started them.
func NormalizeHelpOutput(raw string) string {
	cleaned := ansiRE.ReplaceAllString(raw, "")
	for overstrikeRE.MatchString(cleaned) {
		cleaned = overstrikeRE.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	cleaned = strings.ReplaceAll(cleaned, "\r", "\n")

	split := strings.Split(cleaned, "\n")
	if len(split) > 0 && split[len(split)-1] == "" {
		split = split[:len(split)-1]
	}

	var normalized []string
	for _, line := range split {
		trimmedEnd := strings.TrimRight(line, " \t")
		trimmedStart := strings.TrimLeft(trimmedEnd, " \t")

		if trimmedEnd == "" {
			normalized = append(normalized, "")
			continue
		}

		if strings.HasPrefix(line, " ") && !strings.HasSuffix(trimmedStart, ":") &&
			joinsPreviousLine(normalized, trimmedStart) {
			normalized[len(normalized)-1] += " " + trimmedStart
			continue
		}

		normalized = append(normalized, trimmedEnd)
	}

	return strings.Join(normalized, "\n")
}

// joinsPreviousLine decides whether an indented line is a wrap continuation
// of the previous line rather than a new entry of its own.
func joinsPreviousLine(normalized []string, continuation string) bool {
	if len(normalized) == 0 {
		return false
	}
	prev := strings.TrimSpace(normalized[len(normalized)-1])
	if prev == "" {
		return false
	}

	prevIsFlag := looksLikeFlagRowStart(prev)
	prevIsTwoColumnSubcommand := false
	if left, _, ok := splitTwoColumns(prev); ok {
		prevIsTwoColumnSubcommand = !strings.HasPrefix(left, "-") &&
			left != "" && isASCIIAlphanumeric(rune(left[0]))
	}
	startsNewFlagRow := looksLikeFlagRowStart(continuation) && !strings.Contains(continuation, ";")
	startsSubcommand := looksLikeSubcommandEntry(continuation)

	if !prevIsFlag && !prevIsTwoColumnSubcommand {
		return false
	}
	if strings.HasSuffix(prev, ":") && !prevIsFlag {
		return false
	}
	if startsSubcommand && !prevIsFlag {
		return false
	}
	return !startsNewFlagRow
}

// ToIndexedLines splits normalized text into indexed lines. Blank lines are
// preserved as empty entries so source spans stay stable.
func ToIndexedLines(normalized string) []candidate.Line {
	if normalized == "" {
		return nil
	}
	raw := strings.Split(normalized, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	lines := make([]candidate.Line, 0, len(raw))
	for i, text := range raw {
		lines = append(lines, candidate.Line{Index: i, Text: text})
	}
	return lines
}

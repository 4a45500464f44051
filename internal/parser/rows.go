package parser

import (
	"regexp"
	"strings"
)

var columnBreakRE = regexp.MustCompile(`\t+| {2,}`)

// looksLikeFlagRowStart reports whether a trimmed line begins a flag
// definition row.
func looksLikeFlagRowStart(trimmed string) bool {
	rest, ok := strings.CutPrefix(trimmed, "-")
	if !ok || rest == "" {
		return false
	}

	if long, ok := strings.CutPrefix(rest, "-"); ok {
		return long != "" && isASCIIAlphanumeric(rune(long[0]))
	}

	runes := []rune(rest)
	if runes[0] == ' ' || runes[0] == '\t' {
		return false
	}

	// "-20 ..." is often prose/ranges, not a flag row.
	if isASCIIDigit(runes[0]) && len(runes) > 1 && isASCIIDigit(runes[1]) {
		return false
	}

	return true
}

// splitTwoColumns splits a line on the first run of tabs or 2+ spaces into a
// trimmed left and right column. Returns ok=false when either side is empty.
func splitTwoColumns(line string) (string, string, bool) {
	loc := columnBreakRE.FindStringIndex(line)
	if loc == nil {
		return "", "", false
	}
	left := strings.TrimSpace(line[:loc[0]])
	right := strings.TrimSpace(line[loc[1]:])
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

// splitDashSeparator splits "name - description" rows.
func splitDashSeparator(line string) (string, string, bool) {
	head, tail, ok := strings.Cut(line, " - ")
	if !ok {
		return "", "", false
	}
	left := strings.TrimSpace(head)
	right := strings.TrimSpace(tail)
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

// looksLikeSubcommandEntry recognizes "build, b    Build package" two-column
// rows and "access, adduser, audit" style comma lists.
func looksLikeSubcommandEntry(trimmed string) bool {
	if trimmed == "" || !isASCIIAlphanumeric(rune(trimmed[0])) {
		return false
	}

	if strings.Contains(trimmed, "  ") {
		return true
	}

	parts := strings.Split(trimmed, ",")
	sawPart := false
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sawPart = true
		for _, ch := range part {
			if !isASCIIAlphanumeric(ch) && ch != '-' && ch != '_' {
				return false
			}
		}
	}
	return sawPart
}

func isASCIIAlphanumeric(ch rune) bool {
	return isASCIIDigit(ch) || isASCIIAlpha(ch)
}

func isASCIIAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isASCIIDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isASCIIUpper(ch rune) bool {
	return ch >= 'A' && ch <= 'Z'
}

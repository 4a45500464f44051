// Package detect classifies man-page input: raw roff (mdoc or legacy man
// macro dialect) versus already-rendered manual output.
package detect

import "strings"

// Format identifies which man-page dialect was detected.
type Format int

const (
	// FormatNone means the input is not man-page material.
	FormatNone Format = iota
	// FormatMdoc is BSD mdoc macro source (.Dt/.Sh/.Fl ...).
	FormatMdoc
	// FormatMan is legacy man macro source (.TH/.SH/.TP ...).
	FormatMan
	// FormatRendered is already-typeset plain-text manual output.
	FormatRendered
)

func (f Format) String() string {
	switch f {
	case FormatMdoc:
		return "mdoc"
	case FormatMan:
		return "man"
	case FormatRendered:
		return "rendered"
	default:
		return "none"
	}
}

// IsMacroLine reports whether the line looks like a roff macro invocation:
// a control char `.` or `'` followed by two alphabetic characters.
func IsMacroLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	runes := []rune(trimmed)
	if len(runes) < 3 {
		return false
	}
	if runes[0] != '.' && runes[0] != '\'' {
		return false
	}
	return isASCIIAlpha(runes[1]) && isASCIIAlpha(runes[2])
}

// StartsWithMacro reports whether a lowercased line starts with the given
// macro name followed by whitespace or end-of-line.
func StartsWithMacro(line, name string) bool {
	rest, ok := strings.CutPrefix(line, name)
	if !ok {
		return false
	}
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n'
}

// IsRawRoff reports whether at least two of the first twenty lines are roff
// macro lines.
func IsRawRoff(lines []string) bool {
	count := 0
	for i, line := range lines {
		if i >= 20 {
			break
		}
		if IsMacroLine(line) {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// DetectRoffVariant classifies raw roff input as mdoc or legacy man by the
// macro families present in the first 64 lines. When both families appear it
// prefers whichever title macro (.Dt over .TH) is present, defaulting to man.
// Returns FormatNone when the input is not raw roff at all.
func DetectRoffVariant(lines []string) Format {
	if !IsRawRoff(lines) {
		if IsRenderedPage(lines) {
			return FormatRendered
		}
		return FormatNone
	}

	var hasMdoc, hasMan, hasDt bool
	for i, line := range lines {
		if i >= 64 {
			break
		}
		lower := strings.ToLower(strings.TrimLeft(line, " \t"))

		// .Sh/.Ss are shared by both dialects and count for each side.
		mdoc := hasAnyPrefix(lower, ".dt ", ".dd ", ".sh ", ".ss ", ".fl ", ".ar ")
		man := hasAnyPrefix(lower, ".th ", ".sh ", ".ss ", ".ip ") || strings.HasPrefix(lower, ".tp")

		hasMdoc = hasMdoc || mdoc
		hasMan = hasMan || man
		hasDt = hasDt || strings.HasPrefix(lower, ".dt ")
	}

	switch {
	case hasMdoc && hasMan:
		// Prefer whichever title macro is present; .Dt wins over .TH.
		if hasDt {
			return FormatMdoc
		}
		return FormatMan
	case hasMdoc:
		return FormatMdoc
	case hasMan:
		return FormatMan
	default:
		return FormatNone
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// LooksLikeTitleLine matches a rendered man-page title banner token such as
// GIT-REBASE(1) or STAT(1), including full banner lines where the token is
// repeated around a manual label.
func LooksLikeTitleLine(trimmed string) bool {
	if trimmed == "" {
		return false
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false
	}
	first := fields[0]
	if !strings.HasSuffix(first, ")") {
		return false
	}
	parenIdx := strings.LastIndex(first, "(")
	if parenIdx <= 0 {
		return false
	}
	name := first[:parenIdx]
	section := first[parenIdx+1 : len(first)-1]
	if name == "" || section == "" {
		return false
	}
	for _, ch := range name {
		if !isASCIIAlphanumeric(ch) && !strings.ContainsRune("-_.+", ch) {
			return false
		}
	}
	for _, ch := range section {
		if !isASCIIAlphanumeric(ch) {
			return false
		}
	}
	return true
}

// IsRenderedPage applies the rendered-man-page heuristic: a title banner in
// the first 12 lines is sufficient on its own; otherwise the page must show a
// NAME line, a SYNOPSIS line, and at least one options/description/commands
// header within the first 200 lines.
func IsRenderedPage(lines []string) bool {
	for i, line := range lines {
		if i >= 12 {
			break
		}
		if LooksLikeTitleLine(strings.TrimSpace(line)) {
			return true
		}
	}

	var hasName, hasSynopsis, hasBody bool
	for i, line := range lines {
		if i >= 200 {
			break
		}
		switch strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(line), ":")) {
		case "NAME":
			hasName = true
		case "SYNOPSIS":
			hasSynopsis = true
		case "OPTIONS", "COMMAND OPTIONS", "GLOBAL OPTIONS", "DESCRIPTION", "COMMANDS":
			hasBody = true
		}
	}
	return hasName && hasSynopsis && hasBody
}

func isASCIIAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isASCIIAlphanumeric(ch rune) bool {
	return isASCIIAlpha(ch) || (ch >= '0' && ch <= '9')
}

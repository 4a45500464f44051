package rendered

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// ParseOptionsSection extracts flags from an OPTIONS section at the standard
// confidence.
func ParseOptionsSection(section *Section) []candidate.Flag {
	return ParseOptionsSectionWith(section, "man-rendered-options", 0.88)
}

// ParseOptionsSectionWith extracts `-x, --long[=VALUE]  description` rows
// with an explicit strategy label and confidence.
func ParseOptionsSectionWith(section *Section, strategy string, confidence float64) []candidate.Flag {
	var out []candidate.Flag
	seen := map[string]bool{}

	for _, line := range section.Lines {
		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" || !strings.HasPrefix(trimmed, "-") {
			continue
		}

		definition, description := splitDefinitionAndDescription(trimmed)
		flag, ok := parseFlagDefinition(definition, description)
		if !ok {
			continue
		}

		key := flag.CanonicalName()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		if description != "" {
			flag.Description = description
		}

		out = append(out, candidate.NewFlag(flag, candidate.SingleSpan(line.Index), strategy, confidence))
	}

	return out
}

// HasOptionLikeLines reports whether any line in the section starts a flag
// definition.
func HasOptionLikeLines(section *Section) bool {
	for _, line := range section.Lines {
		if strings.HasPrefix(strings.TrimLeft(line.Text, " \t"), "-") {
			return true
		}
	}
	return false
}

func splitDefinitionAndDescription(line string) (string, string) {
	if left, right, ok := strings.Cut(line, "\t"); ok {
		return strings.TrimSpace(left), strings.TrimSpace(right)
	}
	if left, right, ok := strings.Cut(line, "  "); ok {
		return strings.TrimSpace(left), strings.TrimSpace(right)
	}
	return line, ""
}

func parseFlagDefinition(definition, description string) (schema.FlagSchema, bool) {
	hasValueHint := strings.Contains(definition, "=") ||
		containsValuePlaceholder(definition) ||
		containsValuePlaceholder(description)

	var short, long string
	hasInlineValue := false

	parts := strings.FieldsFunc(definition, func(ch rune) bool {
		return ch == ',' || ch == '|' || ch == ' ' || ch == '\t'
	})
	for _, part := range parts {
		part = strings.Trim(part, `[]<>()"'`)
		if !strings.HasPrefix(part, "-") {
			continue
		}

		// Expand --[no-]foo to the positive form.
		if rest, ok := strings.CutPrefix(part, "--[no-]"); ok {
			part = "--" + rest
		}

		name := part
		if head, _, ok := strings.Cut(part, "="); ok {
			name = head
			hasInlineValue = true
		} else if pos := strings.IndexAny(part, "<[("); pos >= 0 {
			name = part[:pos]
			hasInlineValue = true
		}
		name = strings.TrimRight(name, "]>[.,()")

		if body, ok := strings.CutPrefix(name, "--"); ok {
			// Long body must start with a letter and stay within the
			// alphanumeric/hyphen/underscore/dot alphabet; rejects "---"
			// rails and ASCII art.
			if long == "" && isValidLongBody(body) {
				long = name
			}
		} else if body := name[1:]; body != "" && isValidShortBody(body) && short == "" {
			short = name
		}
	}

	if short == "" && long == "" {
		return schema.FlagSchema{}, false
	}

	flag := schema.BooleanFlag(short, long)
	if hasInlineValue || hasValueHint {
		flag.TakesValue = true
		flag.ValueType = InferValueType(description)
	}
	return flag, true
}

// containsValuePlaceholder reports whether the text holds an uppercase value
// placeholder like FILE or OUT_DIR, skipping flag-like tokens so uppercase
// flags (-C, --FOO) are not mistaken for placeholders.
func containsValuePlaceholder(text string) bool {
	for _, token := range strings.Fields(text) {
		if strings.HasPrefix(strings.TrimLeft(token, "<>[](),;"), "-") {
			continue
		}
		normalized := strings.Trim(token, "<>[](),;")
		if len(normalized) <= 1 {
			continue
		}
		allUpper := true
		for _, ch := range normalized {
			if !(ch >= 'A' && ch <= 'Z') && ch != '_' && ch != '-' {
				allUpper = false
				break
			}
		}
		if allUpper {
			return true
		}
	}
	return false
}

func isValidLongBody(body string) bool {
	if body == "" {
		return false
	}
	first := rune(body[0])
	if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return false
	}
	for _, ch := range body {
		if !isAlphanumeric(ch) && ch != '-' && ch != '_' && ch != '.' {
			return false
		}
	}
	return true
}

func isValidShortBody(body string) bool {
	for _, ch := range body {
		if !isAlphanumeric(ch) && ch != '?' {
			return false
		}
	}
	return true
}

func isAlphanumeric(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// InferValueType maps description keywords to a value type.
func InferValueType(text string) schema.ValueType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "file") || strings.Contains(lower, "path"):
		return schema.ValueType{Kind: schema.ValueFile}
	case strings.Contains(lower, "dir"):
		return schema.ValueType{Kind: schema.ValueDirectory}
	case strings.Contains(lower, "url"):
		return schema.ValueType{Kind: schema.ValueURL}
	case strings.Contains(lower, "num") || strings.Contains(lower, "count"):
		return schema.ValueType{Kind: schema.ValueNumber}
	default:
		return schema.ValueType{Kind: schema.ValueString}
	}
}

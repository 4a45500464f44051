package roff

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// MdocDocument is the parsed shape of a BSD mdoc page. Title and section come
// from .Dt, sections from .Sh boundaries in document order.
type MdocDocument struct {
	Title    string
	Section  string
	Sections []MdocSection
}

type MdocSection struct {
	Name    string
	Content []MdocElement
}

type mdocElementKind int

const (
	mdocFlag mdocElementKind = iota
	mdocArg
	mdocCommand
	mdocText
	mdocParagraph
)

// MdocElement is one captured item: a flag or arg marker, a subcommand name,
// free text, or a paragraph boundary.
type MdocElement struct {
	Kind     mdocElementKind
	Value    string
	Optional bool
	Line     int
}

// ParseMdoc walks mdoc macro tokens into a document. Unknown macros are kept
// as text so descriptions stay intact; the parser never fails.
func ParseMdoc(tokens []Token) *MdocDocument {
	doc := &MdocDocument{}
	currentSection := "UNKNOWN"
	listDepth := 0

	for _, token := range tokens {
		switch token.Kind {
		case TokenMacro:
			switch strings.ToLower(token.Name) {
			case "dt":
				if len(token.Args) > 0 {
					doc.Title = token.Args[0]
				}
				if len(token.Args) > 1 {
					doc.Section = token.Args[1]
				}
			case "sh":
				title := strings.ToUpper(strings.TrimSpace(strings.Join(token.Args, " ")))
				if title != "" {
					currentSection = title
				}
				doc.section(currentSection)
			case "ss":
				if len(token.Args) > 0 {
					doc.push(currentSection, MdocElement{
						Kind: mdocText, Value: strings.Join(token.Args, " "), Line: token.Line,
					})
				}
			case "bl":
				listDepth++
			case "el":
				if listDepth > 0 {
					listDepth--
				}
			case "it":
				if listDepth == 0 {
					continue
				}
				for _, element := range parseItemElements(token.Args, token.Line) {
					doc.push(currentSection, element)
				}
			case "fl":
				if len(token.Args) == 0 {
					continue
				}
				if name, ok := normalizeMdocFlagName(token.Args[0]); ok {
					doc.push(currentSection, MdocElement{Kind: mdocFlag, Value: name, Line: token.Line})
				}
			case "ar":
				if len(token.Args) > 0 {
					doc.push(currentSection, MdocElement{
						Kind: mdocArg, Value: normalizeMdocArgName(token.Args[0]), Line: token.Line,
					})
				}
			case "cm", "ic":
				if len(token.Args) > 0 {
					doc.push(currentSection, MdocElement{
						Kind: mdocCommand, Value: strings.TrimSpace(token.Args[0]), Line: token.Line,
					})
				}
			case "op":
				if len(token.Args) < 2 {
					continue
				}
				switch strings.ToLower(token.Args[0]) {
				case "fl":
					if name, ok := normalizeMdocFlagName(token.Args[1]); ok {
						doc.push(currentSection, MdocElement{
							Kind: mdocFlag, Value: name, Optional: true, Line: token.Line,
						})
					}
				case "ar":
					doc.push(currentSection, MdocElement{
						Kind: mdocArg, Value: normalizeMdocArgName(token.Args[1]), Optional: true, Line: token.Line,
					})
				}
			case "nd":
				if len(token.Args) > 0 {
					doc.push(currentSection, MdocElement{
						Kind: mdocText, Value: strings.TrimSpace(strings.Join(token.Args, " ")), Line: token.Line,
					})
				}
			case "pp":
				doc.push(currentSection, MdocElement{Kind: mdocParagraph, Line: token.Line})
			default:
				if len(token.Args) > 0 {
					doc.push(currentSection, MdocElement{
						Kind: mdocText, Value: strings.Join(token.Args, " "), Line: token.Line,
					})
				}
			}
		case TokenText:
			if strings.TrimSpace(token.Text) != "" {
				doc.push(currentSection, MdocElement{
					Kind: mdocText, Value: strings.TrimSpace(token.Text), Line: token.Line,
				})
			}
		case TokenNewline:
		}
	}

	return doc
}

// ExtractMdocFlags pulls flag candidates from every section. Flags found in
// OPTION sections score higher than those found elsewhere.
func ExtractMdocFlags(doc *MdocDocument) []candidate.Flag {
	var out []candidate.Flag
	seen := map[string]bool{}

	for si := range doc.Sections {
		section := &doc.Sections[si]
		confidence := 0.9
		if strings.Contains(strings.ToUpper(section.Name), "OPTION") {
			confidence = 0.95
		}

		for idx, element := range section.Content {
			if element.Kind != mdocFlag {
				continue
			}
			flag, ok := flagFromName(element.Value)
			if !ok {
				continue
			}
			key := flag.CanonicalName()
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			if idx+1 < len(section.Content) && section.Content[idx+1].Kind == mdocArg {
				flag.TakesValue = true
				flag.ValueType = schema.ValueType{Kind: schema.ValueString}
			}
			flag.Description = nextTextDescription(section.Content, idx+1)

			out = append(out, candidate.NewFlag(flag,
				candidate.SingleSpan(element.Line), "man-roff-mdoc-options", confidence))
		}
	}

	return out
}

// ExtractMdocArgs pulls positional candidates from SYNOPSIS and USAGE
// sections, deduplicated by lowercase name.
func ExtractMdocArgs(doc *MdocDocument) []candidate.Arg {
	var out []candidate.Arg
	seen := map[string]bool{}

	for si := range doc.Sections {
		section := &doc.Sections[si]
		upper := strings.ToUpper(section.Name)
		if !strings.Contains(upper, "SYNOPSIS") && !strings.Contains(upper, "USAGE") {
			continue
		}

		for _, element := range section.Content {
			if element.Kind != mdocArg {
				continue
			}
			name := normalizeMdocArgName(element.Value)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true

			valueType := inferRoffValueType(name)
			var arg schema.ArgSchema
			if element.Optional {
				arg = schema.OptionalArg(name, valueType)
			} else {
				arg = schema.RequiredArg(name, valueType)
			}
			out = append(out, candidate.NewArg(arg,
				candidate.SingleSpan(element.Line), "man-roff-mdoc-synopsis", 0.93))
		}
	}

	return out
}

// ExtractMdocSubcommands pulls subcommand candidates from COMMANDS-like
// sections, deduplicated case-insensitively.
func ExtractMdocSubcommands(doc *MdocDocument) []candidate.Subcommand {
	var out []candidate.Subcommand
	seen := map[string]bool{}

	for si := range doc.Sections {
		section := &doc.Sections[si]
		if !strings.Contains(strings.ToUpper(section.Name), "COMMAND") {
			continue
		}

		for _, element := range section.Content {
			if element.Kind != mdocCommand {
				continue
			}
			if !looksLikeRoffCommandName(element.Value) {
				continue
			}
			key := strings.ToLower(element.Value)
			if seen[key] {
				continue
			}
			seen[key] = true

			out = append(out, candidate.NewSubcommand(schema.NewSubcommand(element.Value),
				candidate.SingleSpan(element.Line), "man-roff-mdoc-commands", 0.92))
		}
	}

	return out
}

func (doc *MdocDocument) section(name string) *MdocSection {
	for i := range doc.Sections {
		if doc.Sections[i].Name == name {
			return &doc.Sections[i]
		}
	}
	doc.Sections = append(doc.Sections, MdocSection{Name: name})
	return &doc.Sections[len(doc.Sections)-1]
}

func (doc *MdocDocument) push(sectionName string, element MdocElement) {
	section := doc.section(sectionName)
	section.Content = append(section.Content, element)
}

// parseItemElements flattens an .It list-item argument vector like
// "Fl v Ar file" into flag/arg/command elements.
func parseItemElements(args []string, line int) []MdocElement {
	var out []MdocElement
	idx := 0
	itemOptional := len(args) > 0 && strings.EqualFold(args[0], "op")
	if itemOptional {
		idx = 1
	}
	pendingOptional := false

	for idx < len(args) {
		switch strings.ToLower(args[idx]) {
		case "op":
			pendingOptional = true
			idx++
			continue
		case "fl":
			if idx+1 < len(args) {
				if name, ok := normalizeMdocFlagName(args[idx+1]); ok {
					out = append(out, MdocElement{
						Kind: mdocFlag, Value: name,
						Optional: itemOptional || pendingOptional, Line: line,
					})
				}
			}
			idx += 2
		case "ar":
			if idx+1 < len(args) {
				if name := normalizeMdocArgName(args[idx+1]); name != "" {
					out = append(out, MdocElement{
						Kind: mdocArg, Value: name,
						Optional: itemOptional || pendingOptional, Line: line,
					})
				}
			}
			idx += 2
		case "cm", "ic":
			if idx+1 < len(args) {
				if name := strings.TrimSpace(args[idx+1]); name != "" {
					out = append(out, MdocElement{Kind: mdocCommand, Value: name, Line: line})
				}
			}
			idx += 2
		default:
			raw := strings.TrimSpace(args[idx])
			if strings.HasPrefix(raw, "-") {
				if name, ok := normalizeMdocFlagName(raw); ok {
					out = append(out, MdocElement{
						Kind: mdocFlag, Value: name,
						Optional: itemOptional || pendingOptional, Line: line,
					})
				}
			}
			idx++
		}
		pendingOptional = false
	}

	return out
}

func normalizeMdocFlagName(raw string) (string, bool) {
	token := strings.Trim(strings.TrimSpace(raw), `",[](){}`)
	if token == "" {
		return "", false
	}
	if strings.HasPrefix(token, "-") {
		return token, true
	}
	for _, ch := range token {
		if !isASCIILetter(ch) && !isASCIIDigit(ch) {
			return "", false
		}
	}
	return "-" + token, true
}

func flagFromName(name string) (schema.FlagSchema, bool) {
	if strings.HasPrefix(name, "--") {
		return schema.BooleanFlag("", name), true
	}
	if strings.HasPrefix(name, "-") {
		// Single-dash forms stay short-style to avoid invalid long names
		// like "-foo".
		return schema.BooleanFlag(name, ""), true
	}
	return schema.FlagSchema{}, false
}

func normalizeMdocArgName(raw string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(raw), `<>[]{}"'`))
}

func nextTextDescription(elements []MdocElement, start int) string {
	for _, element := range elements[min(start, len(elements)):] {
		switch element.Kind {
		case mdocText:
			if trimmed := strings.TrimSpace(element.Value); trimmed != "" {
				return trimmed
			}
		case mdocFlag, mdocParagraph:
			return ""
		}
	}
	return ""
}

func looksLikeRoffCommandName(value string) bool {
	if value == "" || !isASCIILetter(rune(value[0])) {
		return false
	}
	for _, ch := range value {
		if !isASCIILetter(ch) && !isASCIIDigit(ch) && ch != '-' && ch != '_' {
			return false
		}
	}
	return true
}

func inferRoffValueType(text string) schema.ValueType {
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

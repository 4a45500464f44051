package roff

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// ManDocument is the parsed shape of a legacy man-macro page.
type ManDocument struct {
	Title    string
	Section  string
	Sections []ManSection
}

type ManSection struct {
	Name    string
	Content []ManElement
}

type manElementKind int

const (
	manTagged manElementKind = iota
	manIndented
	manText
	manParagraph
)

// ManElement is one captured item. Tagged elements come from .TP definition
// rows, indented ones from .IP rows.
type ManElement struct {
	Kind        manElementKind
	Tag         string
	HasTag      bool
	Description string
	Value       string
	Line        int
}

type taggedState struct {
	startLine int
	pending   bool
	awaitTag  bool
	tag       string
}

// ParseMan walks legacy man macro tokens into a document. A .TP macro opens a
// pending tagged paragraph whose tag is the next rendered line and whose
// description is the line after that.
func ParseMan(tokens []Token) *ManDocument {
	doc := &ManDocument{}
	currentSection := "UNKNOWN"
	var state taggedState

	for _, token := range tokens {
		switch token.Kind {
		case TokenMacro:
			switch strings.ToUpper(token.Name) {
			case "TH":
				if len(token.Args) > 0 {
					doc.Title = token.Args[0]
				}
				if len(token.Args) > 1 {
					doc.Section = token.Args[1]
				}
			case "SH":
				flushTagged(doc, currentSection, &state, "")
				title := strings.ToUpper(strings.Trim(strings.TrimSpace(strings.Join(token.Args, " ")), `"`))
				if title != "" {
					currentSection = title
				}
				doc.section(currentSection)
			case "TP":
				flushTagged(doc, currentSection, &state, "")
				state = taggedState{startLine: token.Line, pending: true, awaitTag: true}
			case "IP":
				flushTagged(doc, currentSection, &state, "")
				element := ManElement{Kind: manIndented, Line: token.Line}
				if len(token.Args) > 0 {
					element.Tag = strings.Trim(token.Args[0], `"`)
					element.HasTag = true
				}
				if len(token.Args) > 1 {
					element.Value = strings.Trim(strings.Join(token.Args[1:], " "), `"`)
				}
				doc.push(currentSection, element)
			case "PP", "P":
				flushTagged(doc, currentSection, &state, "")
				doc.push(currentSection, ManElement{Kind: manParagraph, Line: token.Line})
			case "B", "I", "BR", "BI", "RB", "RI":
				rendered := strings.TrimSpace(strings.Join(token.Args, " "))
				if rendered == "" {
					continue
				}
				switch {
				case state.awaitTag && state.tag == "":
					state.tag = rendered
					state.awaitTag = false
				case state.pending:
					flushTagged(doc, currentSection, &state, rendered)
				default:
					doc.push(currentSection, ManElement{Kind: manText, Value: rendered, Line: token.Line})
				}
			default:
				if len(token.Args) == 0 {
					continue
				}
				rendered := strings.TrimSpace(strings.Join(token.Args, " "))
				if state.pending {
					flushTagged(doc, currentSection, &state, rendered)
				} else {
					doc.push(currentSection, ManElement{Kind: manText, Value: rendered, Line: token.Line})
				}
			}
		case TokenText:
			value := strings.TrimSpace(token.Text)
			if value == "" {
				continue
			}
			switch {
			case state.awaitTag && state.tag == "":
				state.tag = value
				state.awaitTag = false
			case state.pending:
				flushTagged(doc, currentSection, &state, value)
			default:
				doc.push(currentSection, ManElement{Kind: manText, Value: value, Line: token.Line})
			}
		case TokenNewline:
		}
	}

	flushTagged(doc, currentSection, &state, "")
	return doc
}

// ExtractManFlags reads tagged and indented rows out of OPTIONS and SYNOPSIS
// sections.
func ExtractManFlags(doc *ManDocument) []candidate.Flag {
	var out []candidate.Flag
	seen := map[string]bool{}

	for si := range doc.Sections {
		section := &doc.Sections[si]
		upper := strings.ToUpper(section.Name)
		if !strings.Contains(upper, "OPTION") && !strings.Contains(upper, "SYNOPSIS") {
			continue
		}

		for _, element := range section.Content {
			tag, description, ok := definitionRow(element)
			if !ok {
				continue
			}
			for _, flag := range parseManFlagDefs(tag, description) {
				key := flag.CanonicalName()
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, candidate.NewFlag(flag,
					candidate.SingleSpan(element.Line), "man-roff-man-options", 0.94))
			}
		}
	}

	return out
}

// ExtractManArgs tokenizes SYNOPSIS content into positional candidates.
func ExtractManArgs(doc *ManDocument) []candidate.Arg {
	var out []candidate.Arg
	seen := map[string]bool{}

	for si := range doc.Sections {
		section := &doc.Sections[si]
		if !strings.Contains(strings.ToUpper(section.Name), "SYNOPSIS") {
			continue
		}

		for _, element := range section.Content {
			var text string
			switch element.Kind {
			case manText:
				text = element.Value
			case manIndented:
				text = element.Value
			case manTagged:
				text = element.Tag + " " + element.Description
			default:
				continue
			}
			out = append(out, parseSynopsisArgs(text, element.Line, seen)...)
		}
	}

	return out
}

// ExtractManSubcommands reads definition rows out of COMMANDS-like sections.
func ExtractManSubcommands(doc *ManDocument) []candidate.Subcommand {
	var out []candidate.Subcommand
	seen := map[string]bool{}

	for si := range doc.Sections {
		section := &doc.Sections[si]
		if !strings.Contains(strings.ToUpper(section.Name), "COMMAND") {
			continue
		}

		for _, element := range section.Content {
			tag, description, ok := definitionRow(element)
			if !ok {
				continue
			}
			fields := strings.Fields(tag)
			if len(fields) == 0 {
				continue
			}
			token := fields[0]
			if !looksLikeRoffCommandName(token) {
				continue
			}
			key := strings.ToLower(token)
			if seen[key] {
				continue
			}
			seen[key] = true

			sub := schema.NewSubcommand(token)
			sub.Description = strings.TrimSpace(description)
			out = append(out, candidate.NewSubcommand(sub,
				candidate.SingleSpan(element.Line), "man-roff-man-commands", 0.91))
		}
	}

	return out
}

func definitionRow(element ManElement) (tag, description string, ok bool) {
	switch element.Kind {
	case manTagged:
		return element.Tag, element.Description, true
	case manIndented:
		if element.HasTag {
			return element.Tag, element.Value, true
		}
	}
	return "", "", false
}

func (doc *ManDocument) section(name string) *ManSection {
	for i := range doc.Sections {
		if doc.Sections[i].Name == name {
			return &doc.Sections[i]
		}
	}
	doc.Sections = append(doc.Sections, ManSection{Name: name})
	return &doc.Sections[len(doc.Sections)-1]
}

func (doc *ManDocument) push(sectionName string, element ManElement) {
	section := doc.section(sectionName)
	section.Content = append(section.Content, element)
}

// flushTagged closes a pending .TP row. Rows that never received a tag are
// discarded.
func flushTagged(doc *ManDocument, sectionName string, state *taggedState, description string) {
	if state.pending {
		if tag := strings.TrimSpace(state.tag); tag != "" {
			doc.push(sectionName, ManElement{
				Kind:        manTagged,
				Tag:         tag,
				Description: strings.TrimSpace(description),
				Line:        state.startLine,
			})
		}
	}
	*state = taggedState{}
}

// parseManFlagDefs merges every dash-prefixed alias in a definition row into
// one flag.
func parseManFlagDefs(definition, description string) []schema.FlagSchema {
	var parts []string
	for _, part := range strings.FieldsFunc(definition, func(ch rune) bool {
		return ch == ',' || ch == '|' || ch == ' ' || ch == '\t'
	}) {
		part = strings.Trim(strings.TrimSpace(part), `"'[]()`)
		if strings.HasPrefix(part, "-") {
			parts = append(parts, part)
		}
	}

	valueHint := strings.Contains(definition, "=") ||
		hasUppercasePlaceholder(definition) ||
		strings.Contains(description, "=") ||
		hasUppercasePlaceholder(description)

	var short, long string
	inlineValue := false
	for _, part := range parts {
		name := part
		if head, _, ok := strings.Cut(part, "="); ok {
			name = head
			inlineValue = true
		}
		if strings.HasPrefix(name, "--") {
			if long == "" {
				long = name
			}
		} else if short == "" {
			// Single-dash forms stay short-style to avoid invalid long
			// names like "-foo".
			short = name
		}
	}

	if short == "" && long == "" {
		return nil
	}

	flag := schema.BooleanFlag(short, long)
	if inlineValue || valueHint {
		flag.TakesValue = true
		flag.ValueType = inferRoffValueType(description)
	}
	flag.Description = strings.TrimSpace(description)
	return []schema.FlagSchema{flag}
}

func hasUppercasePlaceholder(text string) bool {
	for _, token := range strings.Fields(text) {
		if len(token) <= 1 {
			continue
		}
		allUpper := true
		for _, ch := range token {
			if ch < 'A' || ch > 'Z' {
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

func parseSynopsisArgs(text string, line int, seen map[string]bool) []candidate.Arg {
	var out []candidate.Arg

	for idx, raw := range strings.Fields(text) {
		if strings.HasPrefix(raw, "-") {
			continue
		}

		bracketed := strings.ContainsAny(raw, "[<{")
		multiple := strings.Contains(raw, "...")
		token := normalizeManSynopsisToken(raw)
		if token == "" {
			continue
		}

		// The leading unbracketed token is the command itself, not an arg.
		if idx == 0 && !bracketed {
			continue
		}
		if !looksLikeSynopsisArgToken(token) {
			continue
		}

		name := strings.ToLower(token)
		if seen[name] {
			continue
		}
		seen[name] = true

		valueType := inferRoffValueType(token)
		var arg schema.ArgSchema
		if strings.Contains(raw, "[") {
			arg = schema.OptionalArg(name, valueType)
		} else {
			arg = schema.RequiredArg(name, valueType)
		}
		arg.Multiple = multiple
		out = append(out, candidate.NewArg(arg,
			candidate.SingleSpan(line), "man-roff-man-synopsis", 0.92))
	}

	return out
}

func normalizeManSynopsisToken(raw string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.Trim(raw, `[]<>{}"',;`), "..."))
}

func looksLikeSynopsisArgToken(token string) bool {
	hasAlnum := false
	for _, ch := range token {
		if isASCIILetter(ch) || isASCIIDigit(ch) {
			hasAlnum = true
			continue
		}
		if ch != '_' && ch != '-' && ch != '.' {
			return false
		}
	}
	return hasAlnum
}

// Package roff tokenizes and parses raw roff macro source, covering both the
// BSD mdoc and legacy man macro families.
package roff

import (
	"strings"
	"unicode"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
)

type TokenKind int

const (
	TokenMacro TokenKind = iota
	TokenText
	TokenNewline
)

// Token is one lexed source line. Macro tokens carry the macro name and its
// arguments, text tokens carry the escape-decoded line body.
type Token struct {
	Kind TokenKind
	Name string
	Args []string
	Text string
	Line int
}

// Tokenize lexes roff source line by line. Comments and blank lines become
// newline tokens so paragraph structure survives.
func Tokenize(lines []candidate.Line) []Token {
	tokens := make([]Token, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimRight(line.Text, "\n")
		if strings.TrimSpace(trimmed) == "" || isComment(trimmed) {
			tokens = append(tokens, Token{Kind: TokenNewline, Line: line.Index})
			continue
		}

		if name, args, ok := parseMacroLine(trimmed); ok {
			tokens = append(tokens, Token{Kind: TokenMacro, Name: name, Args: args, Line: line.Index})
			continue
		}
		tokens = append(tokens, Token{
			Kind: TokenText,
			Text: strings.TrimSpace(DecodeEscapes(trimmed)),
			Line: line.Index,
		})
	}

	return tokens
}

// isComment reports a roff comment control sequence (`.\"` or `'\"`).
func isComment(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return len(trimmed) >= 2 && (trimmed[0] == '.' || trimmed[0] == '\'') && trimmed[1] == '"'
}

func parseMacroLine(line string) (string, []string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return "", nil, false
	}
	control := trimmed[0]
	if control != '.' && control != '\'' {
		return "", nil, false
	}

	rest := strings.TrimLeft(trimmed[1:], " \t")
	if rest == "" {
		return "", nil, false
	}

	first := rune(rest[0])
	if !isASCIILetter(first) {
		return "", nil, false
	}
	if len(rest) > 1 {
		second := rune(rest[1])
		if !isASCIILetter(second) && !isASCIIDigit(second) && !unicode.IsSpace(second) {
			return "", nil, false
		}
	}

	name := strings.Fields(rest)[0]
	return name, parseMacroArgs(rest[len(name):]), true
}

// parseMacroArgs splits macro arguments, honoring double-quoted spans and
// backslash-escaped spaces and quotes.
func parseMacroArgs(input string) []string {
	var out []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if current.Len() > 0 {
			out = append(out, DecodeEscapes(current.String()))
			current.Reset()
		}
	}

	runes := []rune(strings.TrimSpace(input))
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == '\\':
			if i+1 >= len(runes) {
				i = len(runes)
				break
			}
			i++
			switch runes[i] {
			case ' ':
				current.WriteRune(' ')
			case '"':
				current.WriteRune('"')
			default:
				current.WriteRune('\\')
				current.WriteRune(runes[i])
			}
		case unicode.IsSpace(ch) && !inQuotes:
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return out
}

func isASCIILetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isASCIIDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

package roff

import (
	"strings"
	"testing"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/parser/man/detect"
	"github.com/ex1tium/cmdschema/internal/schema"
)

func tokenizeSource(source string) []Token {
	raw := strings.Split(source, "\n")
	lines := make([]candidate.Line, 0, len(raw))
	for i, text := range raw {
		lines = append(lines, candidate.Line{Index: i, Text: text})
	}
	return Tokenize(lines)
}

func TestDecodeEscapes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`\fB--help\fR`, "--help"},
		{`path\ with\ space`, "path with space"},
		{`\f[B]bold\f[R] text`, "bold text"},
		{`\f(BIword`, "word"},
		{`a\-b`, "a-b"},
		{`a\\b`, `a\b`},
		{`a\&b`, "ab"},
		{`a\(embz`, "az"},
	}
	for _, tc := range cases {
		if got := DecodeEscapes(tc.in); got != tc.want {
			t.Fatalf("DecodeEscapes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseMacroArgsHandlesQuotes(t *testing.T) {
	args := parseMacroArgs(`--flag "value with spaces" ARG`)
	if len(args) != 3 || args[0] != "--flag" || args[1] != "value with spaces" || args[2] != "ARG" {
		t.Fatalf("args = %v", args)
	}
}

func TestTokenizeDetectsMacros(t *testing.T) {
	tokens := tokenizeSource(".TH TEST 1\n.SH NAME\ntext\n.\\\" comment")
	if tokens[0].Kind != TokenMacro || tokens[0].Name != "TH" {
		t.Fatalf("token 0 = %+v", tokens[0])
	}
	if tokens[0].Args[0] != "TEST" || tokens[0].Args[1] != "1" {
		t.Fatalf("TH args = %v", tokens[0].Args)
	}
	if tokens[2].Kind != TokenText || tokens[2].Text != "text" {
		t.Fatalf("token 2 = %+v", tokens[2])
	}
	if tokens[3].Kind != TokenNewline {
		t.Fatalf("comment should lex as newline, got %+v", tokens[3])
	}
}

func TestParseMdocListEmitsFlagAndSubcommand(t *testing.T) {
	tokens := tokenizeSource(
		".Sh OPTIONS\n" +
			".Bl -tag\n" +
			".It Fl v Ar file\n" +
			".El\n" +
			".Sh COMMANDS\n" +
			".Bl -tag\n" +
			".It Cm sync\n" +
			".El")
	doc := ParseMdoc(tokens)

	flags := ExtractMdocFlags(doc)
	var verbose *candidate.Flag
	for i := range flags {
		if flags[i].Short == "-v" {
			verbose = &flags[i]
		}
	}
	if verbose == nil {
		t.Fatalf("missing -v in %v", flags)
	}
	if !verbose.TakesValue {
		t.Fatal("-v followed by an Ar marker should take a value")
	}
	if verbose.Confidence != 0.95 || verbose.Strategy != "man-roff-mdoc-options" {
		t.Fatalf("provenance = %s/%v", verbose.Strategy, verbose.Confidence)
	}

	subs := ExtractMdocSubcommands(doc)
	if len(subs) != 1 || subs[0].Name != "sync" {
		t.Fatalf("subcommands = %v", subs)
	}
}

func TestParseMdocOptionalArgFromOp(t *testing.T) {
	tokens := tokenizeSource(
		".Sh SYNOPSIS\n" +
			".Bl -tag\n" +
			".It Op Ar path\n" +
			".El")
	args := ExtractMdocArgs(ParseMdoc(tokens))
	if len(args) != 1 {
		t.Fatalf("arg count = %d", len(args))
	}
	if args[0].Name != "path" || args[0].Required {
		t.Fatalf("arg = %+v", args[0].ArgSchema)
	}
	if args[0].ValueType.Kind != schema.ValueFile {
		t.Fatalf("path should infer a file value, got %v", args[0].ValueType.Kind)
	}
}

func TestParseMdocItOutsideListIgnored(t *testing.T) {
	tokens := tokenizeSource(".Sh OPTIONS\n.It Fl v")
	if flags := ExtractMdocFlags(ParseMdoc(tokens)); len(flags) != 0 {
		t.Fatalf("It outside Bl/El emitted %v", flags)
	}
}

func TestParseManTaggedParagraphs(t *testing.T) {
	tokens := tokenizeSource(
		".TH GREP 1\n" +
			".SH OPTIONS\n" +
			".TP\n" +
			".B \\-i, \\-\\-ignore\\-case\n" +
			"Ignore case distinctions in patterns.\n" +
			".TP\n" +
			".B \\-m NUM\n" +
			"Stop after NUM matching lines.")
	doc := ParseMan(tokens)
	if doc.Title != "GREP" || doc.Section != "1" {
		t.Fatalf("TH metadata = %q/%q", doc.Title, doc.Section)
	}

	flags := ExtractManFlags(doc)
	if len(flags) != 2 {
		t.Fatalf("flag count = %d, want 2", len(flags))
	}

	ignoreCase := flags[0]
	if ignoreCase.Short != "-i" || ignoreCase.Long != "--ignore-case" {
		t.Fatalf("alias merge = %+v", ignoreCase.FlagSchema)
	}
	if ignoreCase.Description != "Ignore case distinctions in patterns." {
		t.Fatalf("description = %q", ignoreCase.Description)
	}
	if ignoreCase.Confidence != 0.94 || ignoreCase.Strategy != "man-roff-man-options" {
		t.Fatalf("provenance = %s/%v", ignoreCase.Strategy, ignoreCase.Confidence)
	}

	maxCount := flags[1]
	if maxCount.Short != "-m" {
		t.Fatalf("second flag = %+v", maxCount.FlagSchema)
	}
	if !maxCount.TakesValue {
		t.Fatal("-m NUM should take a value")
	}
}

func TestParseManSynopsisArgs(t *testing.T) {
	tokens := tokenizeSource(
		".SH SYNOPSIS\n" +
			"grep [OPTION...] PATTERNS [FILE...]")
	args := ExtractManArgs(ParseMan(tokens))

	byName := map[string]candidate.Arg{}
	for _, a := range args {
		byName[a.Name] = a
	}
	if _, ok := byName["grep"]; ok {
		t.Fatal("command token must not become an arg")
	}
	patterns, ok := byName["patterns"]
	if !ok {
		t.Fatalf("missing patterns in %v", args)
	}
	if !patterns.Required {
		t.Fatal("unbracketed PATTERNS must be required")
	}
	file, ok := byName["file"]
	if !ok {
		t.Fatalf("missing file in %v", args)
	}
	if file.Required || !file.Multiple {
		t.Fatalf("file = %+v", file.ArgSchema)
	}
}

func TestParseManCommandsSection(t *testing.T) {
	tokens := tokenizeSource(
		".SH COMMANDS\n" +
			".TP\n" +
			".B clone\n" +
			"Clone a repository.\n" +
			".TP\n" +
			".B fetch\n" +
			"Download objects and refs.")
	subs := ExtractManSubcommands(ParseMan(tokens))
	if len(subs) != 2 {
		t.Fatalf("subcommand count = %d", len(subs))
	}
	if subs[0].Name != "clone" || subs[0].Description != "Clone a repository." {
		t.Fatalf("clone = %+v", subs[0].SubcommandSchema)
	}
	if subs[0].Confidence != 0.91 || subs[0].Strategy != "man-roff-man-commands" {
		t.Fatalf("provenance = %s/%v", subs[0].Strategy, subs[0].Confidence)
	}
}

func TestParseCandidatesDispatch(t *testing.T) {
	mdoc := tokenizeSource(".Sh OPTIONS\n.Bl -tag\n.It Fl q\n.El")
	got := ParseCandidates(detect.FormatMdoc, mdoc)
	if len(got.Flags) != 1 || got.Flags[0].Short != "-q" {
		t.Fatalf("mdoc dispatch flags = %v", got.Flags)
	}

	man := tokenizeSource(".SH OPTIONS\n.TP\n.B \\-q\nQuiet mode.")
	got = ParseCandidates(detect.FormatMan, man)
	if len(got.Flags) != 1 || got.Flags[0].Short != "-q" {
		t.Fatalf("man dispatch flags = %v", got.Flags)
	}

	if got = ParseCandidates(detect.FormatRendered, man); len(got.Flags) != 0 {
		t.Fatal("rendered format must yield nothing from the roff path")
	}
}

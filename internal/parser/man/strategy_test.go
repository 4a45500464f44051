package man

import (
	"strings"
	"testing"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/parser/man/detect"
)

func toLines(text string) []candidate.Line {
	raw := strings.Split(text, "\n")
	lines := make([]candidate.Line, 0, len(raw))
	for i, t := range raw {
		lines = append(lines, candidate.Line{Index: i, Text: t})
	}
	return lines
}

func TestCollectAllRawMdoc(t *testing.T) {
	bundle := NewStrategy().CollectAll(toLines(
		".Dd January 1, 2024\n" +
			".Dt LS 1\n" +
			".Sh OPTIONS\n" +
			".Bl -tag\n" +
			".It Fl a\n" +
			"Include hidden entries.\n" +
			".El"))
	if bundle.Format != detect.FormatMdoc {
		t.Fatalf("format = %v", bundle.Format)
	}
	if !bundle.HasEntities() || len(bundle.Flags) != 1 || bundle.Flags[0].Short != "-a" {
		t.Fatalf("flags = %v", bundle.Flags)
	}
}

func TestCollectAllRawMan(t *testing.T) {
	bundle := NewStrategy().CollectAll(toLines(
		".TH TAR 1\n" +
			".SH OPTIONS\n" +
			".TP\n" +
			".B \\-x\n" +
			"Extract files from an archive."))
	if bundle.Format != detect.FormatMan {
		t.Fatalf("format = %v", bundle.Format)
	}
	if len(bundle.Flags) != 1 || bundle.Flags[0].Short != "-x" {
		t.Fatalf("flags = %v", bundle.Flags)
	}
}

func TestCollectAllRenderedPage(t *testing.T) {
	bundle := NewStrategy().CollectAll(toLines(
		"GIT(1)                        Git Manual\n" +
			"\n" +
			"NAME\n" +
			"       git - the stupid content tracker\n" +
			"\n" +
			"SYNOPSIS\n" +
			"       git [--version] [--help] <command> [<args>]\n" +
			"\n" +
			"OPTIONS\n" +
			"       -v, --version  Print the version\n"))
	if bundle.Format != detect.FormatRendered {
		t.Fatalf("format = %v", bundle.Format)
	}
	found := false
	for _, f := range bundle.Flags {
		if f.Long == "--version" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing --version in %v", bundle.Flags)
	}
}

func TestCollectAllEmptyRoffFallsThroughToRendered(t *testing.T) {
	// Raw roff macros but no extractable sections; the page still shows a
	// rendered-style body below, which the fallback picks up.
	bundle := NewStrategy().CollectAll(toLines(
		".TH EMPTY 1\n" +
			".SH AUTHORS\n" +
			"Nobody.\n" +
			"NAME\n" +
			"       empty - nothing\n" +
			"SYNOPSIS\n" +
			"       empty [FILE]\n" +
			"OPTIONS\n" +
			"       -z  Do nothing\n"))
	if bundle.Format != detect.FormatRendered {
		t.Fatalf("format = %v", bundle.Format)
	}
	if len(bundle.Flags) != 1 || bundle.Flags[0].Short != "-z" {
		t.Fatalf("flags = %v", bundle.Flags)
	}
}

func TestCollectAllNonManInput(t *testing.T) {
	bundle := NewStrategy().CollectAll(toLines(
		"Usage: tool [options]\n" +
			"  -h, --help  Show help\n"))
	if bundle.Format != detect.FormatNone || bundle.HasEntities() {
		t.Fatalf("plain help text should produce nothing, got %+v", bundle)
	}
}

func TestCollectAllMemoizesByContent(t *testing.T) {
	s := NewStrategy()
	lines := toLines(".TH TAR 1\n.SH OPTIONS\n.TP\n.B \\-x\nExtract.")
	first := s.CollectAll(lines)
	second := s.CollectAll(lines)
	if first != second {
		t.Fatal("same content must return the memoized bundle")
	}
	third := s.CollectAll(toLines(".TH CP 1\n.SH OPTIONS\n.TP\n.B \\-r\nRecurse."))
	if third == first {
		t.Fatal("different content must re-parse")
	}
	if len(third.Flags) != 1 || third.Flags[0].Short != "-r" {
		t.Fatalf("flags after memo refresh = %v", third.Flags)
	}
}

func TestRecognizedIndicesSkipsUnknownSpans(t *testing.T) {
	bundle := &CandidateBundle{}
	bundle.Flags = append(bundle.Flags,
		candidate.Flag{Span: candidate.Span{LineStart: 3, LineEnd: 4}},
		candidate.Flag{Span: candidate.Span{LineStart: 0, LineEnd: 0}},
	)
	bundle.Args = append(bundle.Args,
		candidate.Arg{Span: candidate.Span{LineStart: 4, LineEnd: 4}},
	)
	got := bundle.RecognizedIndices()
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("indices = %v", got)
	}
}

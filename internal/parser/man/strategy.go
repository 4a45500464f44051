// Package man extracts command-schema candidates from man pages, both raw
// roff macro source and rendered terminal output.
package man

import (
	"sort"
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/parser/man/detect"
	"github.com/ex1tium/cmdschema/internal/parser/man/rendered"
	"github.com/ex1tium/cmdschema/internal/parser/man/roff"
)

// CandidateBundle is everything one pass over a man page produced, plus the
// dialect that produced it.
type CandidateBundle struct {
	Flags       []candidate.Flag
	Subcommands []candidate.Subcommand
	Args        []candidate.Arg
	Format      detect.Format
}

// HasEntities reports whether the bundle carries at least one candidate.
func (b *CandidateBundle) HasEntities() bool {
	return len(b.Flags) > 0 || len(b.Subcommands) > 0 || len(b.Args) > 0
}

// RecognizedIndices returns the sorted, deduplicated line indices covered by
// candidate spans. Unknown spans are skipped.
func (b *CandidateBundle) RecognizedIndices() []int {
	marked := map[int]bool{}
	mark := func(span candidate.Span) {
		if span.IsUnknown() {
			return
		}
		for i := span.LineStart; i <= span.LineEnd; i++ {
			marked[i] = true
		}
	}
	for _, f := range b.Flags {
		mark(f.Span)
	}
	for _, s := range b.Subcommands {
		mark(s.Span)
	}
	for _, a := range b.Args {
		mark(a.Span)
	}

	out := make([]int, 0, len(marked))
	for i := range marked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Strategy is the man-page extraction strategy. Collection is memoized on
// page content because each capability call walks the same document.
type Strategy struct {
	memoKey    string
	memoBundle *CandidateBundle
}

func NewStrategy() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Name() string { return "man" }

func (s *Strategy) CollectFlags(lines []candidate.Line) []candidate.Flag {
	return s.CollectAll(lines).Flags
}

func (s *Strategy) CollectSubcommands(lines []candidate.Line) []candidate.Subcommand {
	return s.CollectAll(lines).Subcommands
}

func (s *Strategy) CollectArgs(lines []candidate.Line) []candidate.Arg {
	return s.CollectAll(lines).Args
}

// CollectAll detects the dialect and runs the matching parser. Raw roff that
// parses to zero entities falls through to the rendered parser.
func (s *Strategy) CollectAll(lines []candidate.Line) *CandidateBundle {
	key := contentKey(lines)
	if s.memoBundle != nil && s.memoKey == key {
		return s.memoBundle
	}

	bundle := collect(lines)
	s.memoKey = key
	s.memoBundle = bundle
	return bundle
}

func collect(lines []candidate.Line) *CandidateBundle {
	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.Text
	}

	variant := detect.DetectRoffVariant(texts)

	if variant == detect.FormatMdoc || variant == detect.FormatMan {
		tokens := roff.Tokenize(lines)
		if len(tokens) > 0 {
			parsed := roff.ParseCandidates(variant, tokens)
			bundle := &CandidateBundle{
				Flags:       parsed.Flags,
				Subcommands: parsed.Subcommands,
				Args:        parsed.Args,
				Format:      variant,
			}
			if bundle.HasEntities() {
				return bundle
			}
		}
	}

	if variant == detect.FormatRendered || detect.IsRenderedPage(texts) {
		parsed := rendered.ParseCandidates(lines)
		return &CandidateBundle{
			Flags:       parsed.Flags,
			Subcommands: parsed.Subcommands,
			Args:        parsed.Args,
			Format:      detect.FormatRendered,
		}
	}

	return &CandidateBundle{Format: detect.FormatNone}
}

func contentKey(lines []candidate.Line) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

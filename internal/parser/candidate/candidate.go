// Package candidate holds the intermediate extraction types shared by the
// help parser and its strategies. Candidates mirror the schema kinds but add
// provenance: the source line span, the strategy that produced them, and a
// confidence score. They live only within one parse invocation.
package candidate

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/schema"
)

// Line is one normalized help-text line with its original index.
type Line struct {
	Index int
	Text  string
}

// Span is an inclusive range of normalized input line indices.
type Span struct {
	LineStart int
	LineEnd   int
}

// SingleSpan covers exactly one line.
func SingleSpan(line int) Span {
	return Span{LineStart: line, LineEnd: line}
}

// UnknownSpan marks a candidate with no traceable source line.
func UnknownSpan() Span {
	return Span{}
}

// IsUnknown reports whether the span carries no source information.
func (s Span) IsUnknown() bool {
	return s.LineStart == 0 && s.LineEnd == 0
}

// Flag is a provisional flag extraction.
type Flag struct {
	schema.FlagSchema
	Span       Span
	Strategy   string
	Confidence float64
}

// NewFlag wraps a flag schema with provenance.
func NewFlag(f schema.FlagSchema, span Span, strategy string, confidence float64) Flag {
	return Flag{FlagSchema: f, Span: span, Strategy: strategy, Confidence: Clamp(confidence)}
}

// CanonicalKey returns the long form, else the short form.
func (f *Flag) CanonicalKey() string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

// Subcommand is a provisional subcommand extraction.
type Subcommand struct {
	schema.SubcommandSchema
	Span       Span
	Strategy   string
	Confidence float64
}

// NewSubcommand wraps a subcommand schema with provenance.
func NewSubcommand(s schema.SubcommandSchema, span Span, strategy string, confidence float64) Subcommand {
	return Subcommand{SubcommandSchema: s, Span: span, Strategy: strategy, Confidence: Clamp(confidence)}
}

// CanonicalKey is the lowercase subcommand name.
func (s *Subcommand) CanonicalKey() string {
	return strings.ToLower(s.Name)
}

// Arg is a provisional positional-argument extraction.
type Arg struct {
	schema.ArgSchema
	Span       Span
	Strategy   string
	Confidence float64
}

// NewArg wraps an arg schema with provenance.
func NewArg(a schema.ArgSchema, span Span, strategy string, confidence float64) Arg {
	return Arg{ArgSchema: a, Span: span, Strategy: strategy, Confidence: Clamp(confidence)}
}

// CanonicalKey is the lowercase argument name.
func (a *Arg) CanonicalKey() string {
	return strings.ToLower(a.Name)
}

// Clamp bounds a confidence score to [0,1].
func Clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

package parser

import (
	"fmt"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
)

// ParseDiagnostics describes what one parse run saw and recognized.
type ParseDiagnostics struct {
	FormatScores    []FormatScore
	ParsersUsed     []string
	RelevantLines   int
	RecognizedLines int
	UnresolvedLines []string
}

// Coverage is the fraction of relevant input lines a strategy accounted for.
func (d *ParseDiagnostics) Coverage() float64 {
	if d.RelevantLines == 0 {
		return 0
	}
	return float64(d.RecognizedLines) / float64(d.RelevantLines)
}

// candidateDiagnostics collects everything the gate kept out of the schema.
type candidateDiagnostics struct {
	MediumFlags             []candidate.Flag
	DiscardedFlags          []candidate.Flag
	MediumSubcommands       []candidate.Subcommand
	DiscardedSubcommands    []candidate.Subcommand
	MediumArgs              []candidate.Arg
	DiscardedArgs           []candidate.Arg
	FalsePositiveFilterHits int
}

// warnings renders the gate outcome as user-facing warning strings.
func (d *candidateDiagnostics) warnings() []string {
	var warnings []string

	if len(d.MediumFlags) > 0 || len(d.MediumSubcommands) > 0 || len(d.MediumArgs) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Medium-confidence findings kept in diagnostics: %d flags, %d subcommands, %d args",
			len(d.MediumFlags), len(d.MediumSubcommands), len(d.MediumArgs)))
	}

	if len(d.DiscardedFlags) > 0 || len(d.DiscardedSubcommands) > 0 || len(d.DiscardedArgs) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Discarded low-confidence findings: %d flags, %d subcommands, %d args",
			len(d.DiscardedFlags), len(d.DiscardedSubcommands), len(d.DiscardedArgs)))
	}

	if d.FalsePositiveFilterHits > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"False-positive filters matched %d rows", d.FalsePositiveFilterHits))
	}

	return warnings
}

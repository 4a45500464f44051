// Package rendered extracts command-schema candidates from man pages that
// have already been formatted for the terminal, where the roff macros are
// gone and only section headers and indentation remain.
package rendered

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
)

// Extraction holds every candidate recovered from a rendered page.
type Extraction struct {
	Flags       []candidate.Flag
	Subcommands []candidate.Subcommand
	Args        []candidate.Arg
}

// ParseCandidates walks the page section by section and routes each one to
// the matching extractor.
func ParseCandidates(lines []candidate.Line) Extraction {
	normalized := NormalizeLines(lines)
	sections := IdentifySections(normalized)

	var out Extraction
	for i := range sections {
		section := &sections[i]
		switch {
		case section.Name == "OPTIONS":
			out.Flags = append(out.Flags, ParseOptionsSection(section)...)
		case isSecondaryOptionsSection(section.Name):
			if HasOptionLikeLines(section) {
				out.Flags = append(out.Flags, ParseOptionsSectionWith(section,
					"man-rendered-description-options", 0.76)...)
			}
		case strings.Contains(section.Name, "SYNOPSIS"):
			out.Flags = append(out.Flags, ParseSynopsisFlags(section)...)
			out.Args = append(out.Args, ParseSynopsisArgs(section)...)
			out.Subcommands = append(out.Subcommands, ParseSynopsisSubcommands(section)...)
		case strings.Contains(section.Name, "COMMAND"):
			out.Subcommands = append(out.Subcommands, ParseCommandsSection(section)...)
		}
	}
	return out
}

// Secondary sections often hide flag tables, most commonly DESCRIPTION in
// pages that never declare a dedicated OPTIONS section.
func isSecondaryOptionsSection(name string) bool {
	switch name {
	case "DESCRIPTION", "COMMAND OPTIONS", "GLOBAL OPTIONS":
		return true
	}
	return name != "OPTIONS" && strings.Contains(name, "OPTION")
}

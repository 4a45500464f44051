package roff

import (
	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/parser/man/detect"
)

// Extraction collects everything recovered from a raw roff parse.
type Extraction struct {
	Flags       []candidate.Flag
	Subcommands []candidate.Subcommand
	Args        []candidate.Arg
}

// ParseCandidates routes lexed tokens to the parser matching the detected
// macro dialect. Rendered pages carry no macros and yield nothing here.
func ParseCandidates(format detect.Format, tokens []Token) Extraction {
	switch format {
	case detect.FormatMdoc:
		doc := ParseMdoc(tokens)
		return Extraction{
			Flags:       ExtractMdocFlags(doc),
			Subcommands: ExtractMdocSubcommands(doc),
			Args:        ExtractMdocArgs(doc),
		}
	case detect.FormatMan:
		doc := ParseMan(tokens)
		return Extraction{
			Flags:       ExtractManFlags(doc),
			Subcommands: ExtractManSubcommands(doc),
			Args:        ExtractManArgs(doc),
		}
	default:
		return Extraction{}
	}
}

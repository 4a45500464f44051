package parser

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// Strategy confidence levels. Section-scoped extraction is the most
// trustworthy; usage-synopsis reconstruction the least.
const (
	sectionSubcommandConfidence = 0.9
	sectionFlagConfidence       = 0.9
	sectionOptionConfidence     = 0.88
	sectionArgConfidence        = 0.82
	npmCommandConfidence        = 0.85
	denseGridPrimaryConfidence  = 0.9
	denseGridConfidence         = 0.82
	twoColumnConfidence         = 0.8
	namedSettingConfidence      = 0.72
	gnuSectionlessConfidence    = 0.7
	usageFlagConfidence         = 0.75
	usagePositionalConfidence   = 0.72
)

// Strategy extracts candidates from help-output lines. Each implementation
// covers one observed help layout family.
type Strategy interface {
	Name() string
	CollectFlags(lines []candidate.Line) []candidate.Flag
	CollectSubcommands(lines []candidate.Line) []candidate.Subcommand
	CollectArgs(lines []candidate.Line) []candidate.Arg
}

// rankedStrategyNames orders the registered strategies by expected yield for
// the classified format. The man strategy only runs when the document scored
// as a man page; the npm strategy leads only for cobra-style output.
func rankedStrategyNames(scores []FormatScore, manDetected bool) []string {
	var plan []string
	if manDetected {
		plan = append(plan, "man")
	}
	plan = append(plan, "section")
	if len(scores) > 0 && scores[0].Format == schema.FormatCobra {
		plan = append(plan, "npm")
	}
	plan = append(plan, "gnu", "usage")
	return plan
}

type sectionStrategy struct{ p *HelpParser }

func (s *sectionStrategy) Name() string { return "section" }

func (s *sectionStrategy) CollectFlags(lines []candidate.Line) []candidate.Flag {
	buckets := s.p.identifySections(lines)
	flags := s.p.sectionFlagCandidates(buckets.Flags, "section-flags", sectionFlagConfidence)
	return append(flags, s.p.sectionFlagCandidates(buckets.Options, "section-options", sectionOptionConfidence)...)
}

func (s *sectionStrategy) CollectSubcommands(lines []candidate.Line) []candidate.Subcommand {
	buckets := s.p.identifySections(lines)
	return s.p.sectionSubcommandCandidates(buckets.Subcommands)
}

func (s *sectionStrategy) CollectArgs(lines []candidate.Line) []candidate.Arg {
	buckets := s.p.identifySections(lines)
	return s.p.sectionArgCandidates(buckets.Arguments)
}

type npmStrategy struct{ p *HelpParser }

func (s *npmStrategy) Name() string { return "npm" }

func (s *npmStrategy) CollectFlags(lines []candidate.Line) []candidate.Flag { return nil }

func (s *npmStrategy) CollectSubcommands(lines []candidate.Line) []candidate.Subcommand {
	subs, _ := s.p.parseNpmStyleCommands(lines)
	var out []candidate.Subcommand
	for _, sub := range subs {
		out = append(out, candidate.NewSubcommand(sub, candidate.UnknownSpan(), "npm-command-list", npmCommandConfidence))
	}
	return out
}

func (s *npmStrategy) CollectArgs(lines []candidate.Line) []candidate.Arg { return nil }

type gnuStrategy struct{ p *HelpParser }

func (s *gnuStrategy) Name() string { return "gnu" }

func (s *gnuStrategy) CollectFlags(lines []candidate.Line) []candidate.Flag {
	flags, _ := s.p.parseSectionlessFlags(lines)
	var out []candidate.Flag
	for _, flag := range flags {
		out = append(out, candidate.NewFlag(flag, candidate.UnknownSpan(), "gnu-sectionless-flags", gnuSectionlessConfidence))
	}
	return out
}

func (s *gnuStrategy) CollectSubcommands(lines []candidate.Line) []candidate.Subcommand { return nil }

func (s *gnuStrategy) CollectArgs(lines []candidate.Line) []candidate.Arg { return nil }

type usageStrategy struct{ p *HelpParser }

func (s *usageStrategy) Name() string { return "usage" }

func (s *usageStrategy) CollectFlags(lines []candidate.Line) []candidate.Flag {
	var out []candidate.Flag
	for _, flag := range s.p.parseUsageCompactFlags(lines) {
		out = append(out, candidate.NewFlag(flag, candidate.UnknownSpan(), "usage-compact-flags", usageFlagConfidence))
	}
	return out
}

func (s *usageStrategy) CollectSubcommands(lines []candidate.Line) []candidate.Subcommand {
	return nil
}

func (s *usageStrategy) CollectArgs(lines []candidate.Line) []candidate.Arg {
	var out []candidate.Arg
	for _, arg := range s.p.parseUsagePositionals(lines, false) {
		out = append(out, candidate.NewArg(arg, candidate.UnknownSpan(), "usage-positionals", usagePositionalConfidence))
	}
	return out
}

// sectionSubcommandCandidates parses each section entry line on its own so
// every candidate carries the span of the row it came from.
func (p *HelpParser) sectionSubcommandCandidates(entries []sectionEntry) []candidate.Subcommand {
	var out []candidate.Subcommand
	seen := make(map[string]bool)
	for _, entry := range entries {
		for _, sub := range p.parseSubcommands([]string{entry.Text}) {
			if seen[sub.Name] {
				continue
			}
			seen[sub.Name] = true
			out = append(out, candidate.NewSubcommand(sub, candidate.SingleSpan(entry.Index), "section-subcommands", sectionSubcommandConfidence))
		}
	}
	return out
}

func (p *HelpParser) sectionFlagCandidates(entries []sectionEntry, strategy string, confidence float64) []candidate.Flag {
	var out []candidate.Flag
	for _, entry := range entries {
		for _, flag := range p.parseFlagEntriesFromLine(entry.Text) {
			out = append(out, candidate.NewFlag(flag, candidate.SingleSpan(entry.Index), strategy, confidence))
		}
	}
	return out
}

func (p *HelpParser) sectionArgCandidates(entries []sectionEntry) []candidate.Arg {
	var out []candidate.Arg
	seen := make(map[string]bool)
	for _, entry := range entries {
		for _, arg := range p.parseArgumentsSection([]string{entry.Text}) {
			key := strings.ToLower(arg.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, candidate.NewArg(arg, candidate.SingleSpan(entry.Index), "section-arguments", sectionArgConfidence))
		}
	}
	return out
}

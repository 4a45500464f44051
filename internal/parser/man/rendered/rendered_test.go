package rendered

import (
	"strings"
	"testing"

	"github.com/ex1tium/cmdschema/internal/parser/candidate"
)

func toLines(text string) []candidate.Line {
	raw := strings.Split(text, "\n")
	lines := make([]candidate.Line, 0, len(raw))
	for i, t := range raw {
		lines = append(lines, candidate.Line{Index: i, Text: t})
	}
	return lines
}

func sectionFrom(text string) *Section {
	return &Section{Name: "TEST", Lines: toLines(text)}
}

func TestSplitFlagAliases(t *testing.T) {
	got := splitFlagAliases("-h|--help")
	if len(got) != 2 || got[0] != "-h" || got[1] != "--help" {
		t.Fatalf("pipe aliases = %v", got)
	}
	got = splitFlagAliases("-q,--quiet")
	if len(got) != 2 || got[0] != "-q" || got[1] != "--quiet" {
		t.Fatalf("comma aliases = %v", got)
	}
	if got = splitFlagAliases("--only"); len(got) != 1 || got[0] != "--only" {
		t.Fatalf("single alias = %v", got)
	}
	if got = splitFlagAliases("install|remove"); got != nil {
		t.Fatalf("non-flag token should yield nothing, got %v", got)
	}
}

func TestParseOptionsSection(t *testing.T) {
	section := sectionFrom(
		"-v, --verbose\tEnable verbose output\n" +
			"--output=FILE  Write results to FILE\n" +
			"--[no-]progress  Toggle progress display\n" +
			"not a flag row")
	flags := ParseOptionsSection(section)
	if len(flags) != 4 {
		t.Fatalf("flag count = %d, want 4", len(flags))
	}

	byName := map[string]candidate.Flag{}
	for _, f := range flags {
		byName[f.CanonicalKey()] = f
	}

	verbose, ok := byName["--verbose"]
	if !ok {
		t.Fatal("missing --verbose")
	}
	if verbose.Short != "-v" || verbose.TakesValue {
		t.Fatalf("verbose = %+v", verbose.FlagSchema)
	}
	if verbose.Strategy != "man-rendered-options" || verbose.Confidence != 0.88 {
		t.Fatalf("verbose provenance = %s/%v", verbose.Strategy, verbose.Confidence)
	}

	output, ok := byName["--output"]
	if !ok {
		t.Fatal("missing --output")
	}
	if !output.TakesValue {
		t.Fatal("--output should take a value")
	}

	if _, ok := byName["--progress"]; !ok {
		t.Fatal("missing --progress")
	}
	if _, ok := byName["--no-progress"]; !ok {
		t.Fatal("missing --no-progress")
	}
}

func TestParseSynopsisFlags(t *testing.T) {
	section := sectionFrom("git [-v|--version] [--exec-path[=<path>]] [-C <path>]")
	flags := ParseSynopsisFlags(section)

	byName := map[string]candidate.Flag{}
	for _, f := range flags {
		byName[f.CanonicalKey()] = f
	}

	if _, ok := byName["-v"]; !ok {
		t.Fatal("missing -v")
	}
	if _, ok := byName["--version"]; !ok {
		t.Fatal("missing --version")
	}
	execPath, ok := byName["--exec-path"]
	if !ok {
		t.Fatal("missing --exec-path")
	}
	if !execPath.TakesValue {
		t.Fatal("--exec-path should take a value from =<path>")
	}
	c, ok := byName["-C"]
	if !ok {
		t.Fatal("missing -C")
	}
	if !c.TakesValue {
		t.Fatal("-C should take a value from the <path> lookahead")
	}
	if c.Confidence != 0.70 || c.Strategy != "man-rendered-synopsis-flags" {
		t.Fatalf("synopsis flag provenance = %s/%v", c.Strategy, c.Confidence)
	}
}

func TestParseSynopsisArgsSkipsCommandToken(t *testing.T) {
	section := sectionFrom("tar [OPTION...] [FILE]...")
	args := ParseSynopsisArgs(section)
	if len(args) != 2 {
		t.Fatalf("arg count = %d, want 2", len(args))
	}
	for _, a := range args {
		if a.Name == "tar" {
			t.Fatal("leading command token must be skipped")
		}
	}

	file := args[1]
	if file.Name != "file" {
		t.Fatalf("second arg = %q", file.Name)
	}
	if file.Required {
		t.Fatal("[FILE] must be optional")
	}
	if !file.Multiple {
		t.Fatal("[FILE]... must be repeatable")
	}
}

func TestParseSynopsisSubcommandsAptGet(t *testing.T) {
	section := sectionFrom(
		"apt-get [-asqdyfmubV] [-o=config_string] [-c=config_file]\n" +
			"        [-t=target_release] [-a=architecture] {update | upgrade |\n" +
			"        dselect-upgrade | dist-upgrade |\n" +
			"        install pkg [{=pkg_version_number | /target_release}]... |\n" +
			"        remove pkg... | purge pkg... | source pkg... | clean | autoclean |\n" +
			"        check | download pkg... | changelog pkg... | {-v | --version} |\n" +
			"        {-h | --help}}")
	subs := ParseSynopsisSubcommands(section)

	names := map[string]bool{}
	for _, s := range subs {
		names[s.Name] = true
	}
	for _, want := range []string{"update", "upgrade", "install", "remove", "clean", "download"} {
		if !names[want] {
			t.Fatalf("missing subcommand %q in %v", want, names)
		}
	}
	if names["apt-get"] {
		t.Fatal("root command must not become a subcommand")
	}
	if names["pkg"] {
		t.Fatal("operand tokens after the verb must not become subcommands")
	}
}

func TestParseSynopsisSubcommandsNeedsTwoDistinct(t *testing.T) {
	section := sectionFrom("grep [-e pattern | -f file] [file...]")
	if subs := ParseSynopsisSubcommands(section); len(subs) != 0 {
		t.Fatalf("flag-only alternation produced subcommands: %v", subs)
	}
}

func TestParseCommandsSection(t *testing.T) {
	section := sectionFrom(
		"clone\tClone a repository into a new directory\n" +
			"init   Create an empty repository\n" +
			"pull - Fetch and integrate with another repository\n" +
			"-x not a command")
	subs := ParseCommandsSection(section)
	if len(subs) != 3 {
		t.Fatalf("subcommand count = %d, want 3", len(subs))
	}
	if subs[0].Name != "clone" || subs[0].Description != "Clone a repository into a new directory" {
		t.Fatalf("clone row = %+v", subs[0].SubcommandSchema)
	}
	if subs[2].Name != "pull" || subs[2].Description == "" {
		t.Fatalf("dash-separated row = %+v", subs[2].SubcommandSchema)
	}
	if subs[0].Confidence != 0.83 || subs[0].Strategy != "man-rendered-commands" {
		t.Fatalf("commands provenance = %s/%v", subs[0].Strategy, subs[0].Confidence)
	}
}

func TestParseCandidatesDispatch(t *testing.T) {
	page := "GREP(1)                     General Commands Manual\n" +
		"\n" +
		"NAME\n" +
		"       grep - print lines that match patterns\n" +
		"\n" +
		"SYNOPSIS\n" +
		"       grep [OPTION...] PATTERNS [FILE...]\n" +
		"\n" +
		"OPTIONS\n" +
		"       -i, --ignore-case  Ignore case distinctions\n" +
		"       -e PATTERNS, --regexp=PATTERNS\n" +
		"              Use PATTERNS as the patterns\n" +
		"\n" +
		"COMMANDS\n" +
		"       match   Match mode\n" +
		"       count   Count mode\n"

	got := ParseCandidates(toLines(page))

	flagNames := map[string]bool{}
	for _, f := range got.Flags {
		flagNames[f.CanonicalKey()] = true
	}
	if !flagNames["--ignore-case"] || !flagNames["--regexp"] {
		t.Fatalf("flags = %v", flagNames)
	}

	argNames := map[string]bool{}
	for _, a := range got.Args {
		argNames[a.Name] = true
	}
	if !argNames["patterns"] {
		t.Fatalf("args = %v", argNames)
	}

	subNames := map[string]bool{}
	for _, s := range got.Subcommands {
		subNames[s.Name] = true
	}
	if !subNames["match"] || !subNames["count"] {
		t.Fatalf("subcommands = %v", subNames)
	}
}

func TestParseCandidatesDescriptionFallback(t *testing.T) {
	page := "NAME\n" +
		"       thing - does things\n" +
		"\n" +
		"DESCRIPTION\n" +
		"       -a  Process all entries\n" +
		"       -b  Process in batch mode\n"

	got := ParseCandidates(toLines(page))
	if len(got.Flags) != 2 {
		t.Fatalf("flag count = %d, want 2", len(got.Flags))
	}
	for _, f := range got.Flags {
		if f.Strategy != "man-rendered-description-options" || f.Confidence != 0.76 {
			t.Fatalf("fallback provenance = %s/%v", f.Strategy, f.Confidence)
		}
	}
}

package schema

import (
	"encoding/json"
	"testing"
)

func TestFlagCanonicalNamePrefersLong(t *testing.T) {
	flag := BooleanFlag("-v", "--verbose")
	if got := flag.CanonicalName(); got != "--verbose" {
		t.Fatalf("expected --verbose, got %s", got)
	}

	shortOnly := BooleanFlag("-v", "")
	if got := shortOnly.CanonicalName(); got != "-v" {
		t.Fatalf("expected -v, got %s", got)
	}
}

func TestFlagMatches(t *testing.T) {
	flag := BooleanFlag("-v", "--verbose")
	if !flag.Matches("-v") || !flag.Matches("--verbose") {
		t.Fatalf("flag should match both forms")
	}
	if flag.Matches("-x") {
		t.Fatalf("flag should not match -x")
	}
	empty := FlagSchema{}
	if empty.Matches("") {
		t.Fatalf("empty forms must never match")
	}
}

func TestFindSubcommandByNameAndAlias(t *testing.T) {
	cmd := New("git", SourceBootstrap)
	sub := NewSubcommand("commit")
	sub.Aliases = []string{"ci"}
	cmd.Subcommands = append(cmd.Subcommands, sub)

	if cmd.FindSubcommand("commit") == nil {
		t.Fatalf("expected commit to be found")
	}
	if cmd.FindSubcommand("ci") == nil {
		t.Fatalf("expected alias ci to be found")
	}
	if cmd.FindSubcommand("push") != nil {
		t.Fatalf("push should not be found")
	}
}

func TestSubcommandNames(t *testing.T) {
	cmd := New("git", SourceBootstrap)
	cmd.Subcommands = append(cmd.Subcommands, NewSubcommand("commit"), NewSubcommand("push"))

	names := cmd.SubcommandNames()
	if len(names) != 2 || names[0] != "commit" || names[1] != "push" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestFlagsForSubcommandIncludesGlobals(t *testing.T) {
	cmd := New("git", SourceBootstrap)
	cmd.GlobalFlags = append(cmd.GlobalFlags, BooleanFlag("-v", "--verbose"))
	sub := NewSubcommand("commit")
	sub.Flags = append(sub.Flags, ValueFlag("-m", "--message", ValueType{Kind: ValueString}))
	cmd.Subcommands = append(cmd.Subcommands, sub)

	flags := cmd.FlagsForSubcommand("commit")
	if len(flags) != 2 {
		t.Fatalf("expected 2 flags, got %d", len(flags))
	}
}

func TestValueKindJSONRoundTrip(t *testing.T) {
	for kind := ValueAny; kind <= ValueChoice; kind++ {
		raw, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("marshal %v: %v", kind, err)
		}
		var back ValueKind
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if back != kind {
			t.Fatalf("round trip mismatch: %v != %v", back, kind)
		}
	}
}

func TestSourceJSONUsesSnakeCase(t *testing.T) {
	raw, err := json.Marshal(SourceHelpCommand)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"help_command"` {
		t.Fatalf("unexpected encoding: %s", raw)
	}
}

func TestHelpFormatLabels(t *testing.T) {
	labels := map[HelpFormat]string{
		FormatClap:     "clap",
		FormatCobra:    "cobra",
		FormatGnu:      "gnu",
		FormatArgparse: "argparse",
		FormatDocopt:   "docopt",
		FormatBsd:      "bsd",
		FormatMan:      "man",
		FormatUnknown:  "unknown",
	}
	for format, label := range labels {
		if format.String() != label {
			t.Fatalf("format %d: expected %s, got %s", format, label, format.String())
		}
		if ParseHelpFormat(label) != format {
			t.Fatalf("label %s did not round trip", label)
		}
	}
}

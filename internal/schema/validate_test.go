package schema

import (
	"errors"
	"testing"
)

func TestValidateAcceptsWellFormedSchema(t *testing.T) {
	cmd := New("git", SourceBootstrap)
	cmd.GlobalFlags = append(cmd.GlobalFlags, BooleanFlag("-v", "--verbose"))
	cmd.Subcommands = append(cmd.Subcommands, NewSubcommand("commit"))

	if errs := Validate(cmd); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateRejectsEmptyCommandName(t *testing.T) {
	cmd := New("  ", SourceBootstrap)
	errs := Validate(cmd)
	if len(errs) != 1 || !errors.Is(errs[0], ErrEmptyCommandName) {
		t.Fatalf("expected empty-command error, got %v", errs)
	}
}

func TestValidateRejectsBadShortFlag(t *testing.T) {
	cmd := New("git", SourceBootstrap)
	cmd.GlobalFlags = append(cmd.GlobalFlags, FlagSchema{Short: "v", Long: "--verbose"})

	errs := Validate(cmd)
	if len(errs) == 0 || !errors.Is(errs[0], ErrInvalidShortFlag) {
		t.Fatalf("expected invalid-short-flag error, got %v", errs)
	}
}

func TestValidateRejectsDuplicateFlags(t *testing.T) {
	cmd := New("git", SourceBootstrap)
	cmd.GlobalFlags = append(cmd.GlobalFlags,
		BooleanFlag("-v", "--verbose"),
		BooleanFlag("", "--verbose"),
	)

	errs := Validate(cmd)
	if len(errs) == 0 || !errors.Is(errs[0], ErrDuplicateFlag) {
		t.Fatalf("expected duplicate-flag error, got %v", errs)
	}
}

func TestValidateRejectsSubcommandCycle(t *testing.T) {
	cmd := New("git", SourceBootstrap)
	remote := NewSubcommand("remote")
	remote.Subcommands = append(remote.Subcommands, NewSubcommand("git"))
	cmd.Subcommands = append(cmd.Subcommands, remote)

	errs := Validate(cmd)
	if len(errs) == 0 || !errors.Is(errs[0], ErrSubcommandCycle) {
		t.Fatalf("expected cycle error, got %v", errs)
	}
}

func TestHierarchyRejectsSelfEdge(t *testing.T) {
	h := NewHierarchy()
	if err := h.AddEdge("foo", "foo"); !errors.Is(err, ErrSubcommandSelfCycle) {
		t.Fatalf("expected self-cycle error, got %v", err)
	}
}

func TestHierarchyDetectsThreeNodeCycle(t *testing.T) {
	h := NewHierarchy()
	for _, edge := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		if err := h.AddEdge(edge[0], edge[1]); err != nil {
			t.Fatalf("add edge %v: %v", edge, err)
		}
	}
	if err := h.DetectCycle(); !errors.Is(err, ErrSubcommandCycle) {
		t.Fatalf("expected cycle, got %v", err)
	}
}

func TestHierarchyAcceptsTree(t *testing.T) {
	h := NewHierarchy()
	for _, edge := range [][2]string{{"git", "remote"}, {"remote", "add"}, {"git", "commit"}} {
		if err := h.AddEdge(edge[0], edge[1]); err != nil {
			t.Fatalf("add edge %v: %v", edge, err)
		}
	}
	if err := h.DetectCycle(); err != nil {
		t.Fatalf("expected acyclic graph, got %v", err)
	}
}

func TestHierarchyAddTreeWalksSchema(t *testing.T) {
	cmd := New("git", SourceHelpCommand)
	remote := NewSubcommand("remote")
	remote.Subcommands = append(remote.Subcommands, NewSubcommand("add"))
	cmd.Subcommands = append(cmd.Subcommands, remote)

	h := NewHierarchy()
	if err := h.AddTree(cmd); err != nil {
		t.Fatalf("add tree: %v", err)
	}
	if err := h.DetectCycle(); err != nil {
		t.Fatalf("expected acyclic tree, got %v", err)
	}
}

func TestFinalizeSortsEveryLevel(t *testing.T) {
	cmd := New("tool", SourceHelpCommand)
	cmd.GlobalFlags = []FlagSchema{
		BooleanFlag("", "--zeta"),
		BooleanFlag("-a", ""),
		BooleanFlag("", "--beta"),
	}
	cmd.Positional = []ArgSchema{
		OptionalArg("second", ValueType{}),
		OptionalArg("first", ValueType{}),
	}
	sub := NewSubcommand("remote")
	sub.Aliases = []string{"rm", "add"}
	sub.Subcommands = []SubcommandSchema{NewSubcommand("z"), NewSubcommand("a")}
	cmd.Subcommands = []SubcommandSchema{sub, NewSubcommand("commit")}

	Finalize(cmd)

	if cmd.GlobalFlags[0].CanonicalName() != "-a" || cmd.GlobalFlags[2].CanonicalName() != "--zeta" {
		t.Fatalf("flags not sorted: %+v", cmd.GlobalFlags)
	}
	if cmd.Positional[0].Name != "first" {
		t.Fatalf("positional not sorted: %+v", cmd.Positional)
	}
	if cmd.Subcommands[0].Name != "commit" {
		t.Fatalf("subcommands not sorted: %+v", cmd.Subcommands)
	}
	remote := cmd.Subcommands[1]
	if remote.Aliases[0] != "add" || remote.Subcommands[0].Name != "a" {
		t.Fatalf("nested collections not sorted: %+v", remote)
	}
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTwoColumnSubcommandsGenericBlock(t *testing.T) {
	p := New("apt", "")
	text := "Most used commands:\n" +
		"  list - list packages based on package names\n" +
		"  search - search in package descriptions\n" +
		"  install - install packages\n"
	subs, recognized := p.parseTwoColumnSubcommands(ToIndexedLines(NormalizeHelpOutput(text)))
	_ = recognized

	names := subcommandNames(subs)
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "search")
	assert.Contains(t, names, "install")
}

func TestParseTwoColumnSubcommandsRejectsValueTable(t *testing.T) {
	p := New("ls", "")
	text := "Possible values:\n" +
		"  always       colorize unconditionally\n" +
		"  never        do not colorize\n" +
		"  auto         only on terminals\n"
	subs, _ := p.parseTwoColumnSubcommands(ToIndexedLines(NormalizeHelpOutput(text)))
	assert.Empty(t, subs)
}

func TestBlockLooksLikeKeybindingTable(t *testing.T) {
	rows := []string{
		"h  H       Display this help.",
		"q  :q      Exit.",
		"e  ^E      Forward one line.",
		"y  ^Y      Backward one line.",
	}
	assert.True(t, blockLooksLikeKeybindingTable(rows))

	commands := []string{
		"build       compile the project",
		"deploy      push to production",
	}
	assert.False(t, blockLooksLikeKeybindingTable(commands))
}

func TestClassifyDenseCommandGridHeader(t *testing.T) {
	primary, ok := classifyDenseCommandGridHeader("Standard commands")
	assert.True(t, ok)
	assert.True(t, primary)

	primary, ok = classifyDenseCommandGridHeader("Message Digest commands")
	assert.True(t, ok)
	assert.False(t, primary)

	_, ok = classifyDenseCommandGridHeader("Summary of all commands below")
	assert.False(t, ok)

	_, ok = classifyDenseCommandGridHeader("-flags and such")
	assert.False(t, ok)
}

func TestIsNonCommandBlockHeader(t *testing.T) {
	assert.True(t, isNonCommandBlockHeader("Possible values:"))
	assert.True(t, isNonCommandBlockHeader("Environment variables:"))
	assert.True(t, isNonCommandBlockHeader("Summary of commands"))
	assert.False(t, isNonCommandBlockHeader("Most used commands:"))
	assert.False(t, isNonCommandBlockHeader("Actions:"))
}

func TestCollectUsageLikeText(t *testing.T) {
	text := "Usage: tar [OPTION...] [FILE]...\n" +
		"   or: tar --list [OPTION...]\n" +
		"\n" +
		"Main operation mode:\n"
	collected := collectUsageLikeText(ToIndexedLines(NormalizeHelpOutput(text)))
	require.Len(t, collected, 2)
	assert.Contains(t, collected[0], "tar [OPTION...]")
}

func TestUsageIntroPayload(t *testing.T) {
	payload, ok := usageIntroPayload("Usage: zip [options] archive")
	require.True(t, ok)
	assert.Equal(t, "Usage: zip [options] archive", payload)

	payload, ok = usageIntroPayload("zip error: usage is zip [options] archive")
	require.True(t, ok)
	assert.Equal(t, "usage: zip [options] archive", payload)

	_, ok = usageIntroPayload("ordinary prose line")
	assert.False(t, ok)
}

func TestParseUsageCompactFlagsExpandsGroups(t *testing.T) {
	p := New("app", "")
	text := "Usage: app [-abc] [--verbose] [-o FILE] {-V|--version} target\n"
	flags := p.parseUsageCompactFlags(ToIndexedLines(NormalizeHelpOutput(text)))

	shorts := map[string]bool{}
	longs := map[string]bool{}
	for _, f := range flags {
		if f.Short != "" {
			shorts[f.Short] = true
		}
		if f.Long != "" {
			longs[f.Long] = true
		}
	}
	assert.True(t, shorts["-a"])
	assert.True(t, shorts["-b"])
	assert.True(t, shorts["-c"])
	assert.True(t, longs["--verbose"])
	assert.True(t, shorts["-V"])
	assert.True(t, longs["--version"])

	output := findFlag(flags, "-o")
	require.NotNil(t, output)
	assert.True(t, output.TakesValue)
}

func TestParseUsagePositionalsSkipsSubcommandPlaceholder(t *testing.T) {
	p := New("app", "")
	lines := ToIndexedLines(NormalizeHelpOutput("Usage: app COMMAND [ARGS] TARGET\n"))

	withSubs := p.parseUsagePositionals(lines, true)
	names := make([]string, 0, len(withSubs))
	for _, arg := range withSubs {
		names = append(names, arg.Name)
	}
	assert.NotContains(t, names, "COMMAND")
	assert.Contains(t, names, "TARGET")
}

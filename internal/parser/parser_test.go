package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ex1tium/cmdschema/internal/schema"
)

const clapHelp = `myapp 1.2.3
A fast example tool for testing

USAGE:
    myapp [FLAGS] [OPTIONS] <input>

FLAGS:
    -h, --help       Prints help information
    -V, --version    Prints version information
    -v, --verbose    Enables verbose output

OPTIONS:
    -o, --output <FILE>    Write results to FILE

SUBCOMMANDS:
    build    Compile the project
    test     Run the tests
`

const cobraHelp = `A tool for managing widgets

Usage:
  widgets [command]

Available Commands:
  completion  Generate the autocompletion script
  help        Help about any command
  list        List available widgets

Flags:
  -h, --help      help for widgets
      --verbose   enable verbose logging

Use "widgets [command] --help" for more information about a command.
`

const gnuHelp = `Usage: grep [OPTION]... PATTERNS [FILE]...
Search for PATTERNS in each FILE.

  -E, --extended-regexp     PATTERNS are extended regular expressions
  -i, --ignore-case         ignore case distinctions in patterns and data
      --include=GLOB        search only files that match GLOB
  -r, --recursive           search directories recursively
      --help                display this help text and exit
`

const npmHelp = `npm <command>

Usage:

npm install        install all the dependencies in your project
npm test           run this project's tests

All commands:

    access, adduser, audit, bugs, cache, ci, completion
`

const sttyHelp = `Usage: stty [-F DEVICE | --file=DEVICE] [SETTING]...
Print or change terminal characteristics.

Special settings:
   ek            same as setting both erase and kill to default values
   sane          same as cbreak -brkint icrnl imaxbel opost

Combination settings:
   cooked        same as brkint ignpar
   raw           same as -ignbrk -brkint
`

const opensslGridHelp = `Standard commands
asn1parse         ca                ciphers           cms
crl               crl2pkcs7         dgst              dhparam

Message Digest commands (see the dgst command for more details)
blake2b512        blake2s256        md4               md5
`

const lessKeybindingHelp = `               SUMMARY OF LESS COMMANDS

  h  H                 Display this help.
  q  :q  Q  :Q  ZZ     Exit.
  e  ^E  j  ^N  CR  *  Forward  one line.
  y  ^Y  k  ^K  ^P  *  Backward one line.
  f  ^F  ^V  SPACE  *  Forward one window.
  b  ^B  ESC-v      *  Backward one window.
  d  ^D             *  Forward  one half-window.
  u  ^U             *  Backward one half-window.
`

const choiceTableHelp = `Usage: ls [OPTION]... [FILE]...
List information about the FILEs.

  -l                         use a long listing format
      --color[=WHEN]         color the output; WHEN can be used to control it

WHEN is one of the following:
  always        colorize output unconditionally
  auto          only when stdout is a terminal
  never         do not colorize
`

const flagChoiceHintHelp = `Usage: tool [options]

  -D            set debug flags
  -q            quiet operation

Valid arguments for -D:
  all, info, warn, trace
`

func findFlag(flags []schema.FlagSchema, name string) *schema.FlagSchema {
	for i := range flags {
		if flags[i].Short == name || flags[i].Long == name {
			return &flags[i]
		}
	}
	return nil
}

func subcommandNames(subs []schema.SubcommandSchema) []string {
	names := make([]string, 0, len(subs))
	for _, sub := range subs {
		names = append(names, sub.Name)
	}
	return names
}

func TestParseClapStyleHelp(t *testing.T) {
	p := New("myapp", clapHelp)
	result := p.Parse()
	require.NotNil(t, result)

	assert.Equal(t, schema.FormatClap, p.DetectedFormat())
	assert.Equal(t, "1.2.3", result.Version)
	assert.Equal(t, "A fast example tool for testing", result.Description)

	assert.ElementsMatch(t, []string{"build", "test"}, subcommandNames(result.Subcommands))

	output := findFlag(result.GlobalFlags, "--output")
	require.NotNil(t, output)
	assert.Equal(t, "-o", output.Short)
	assert.True(t, output.TakesValue)
	assert.Equal(t, schema.ValueFile, output.ValueType.Kind)

	verbose := findFlag(result.GlobalFlags, "--verbose")
	require.NotNil(t, verbose)
	assert.False(t, verbose.TakesValue)

	require.Len(t, result.Positional, 1)
	assert.Equal(t, "input", result.Positional[0].Name)
	assert.True(t, result.Positional[0].Required)

	// Everything found: subcommands, >3 flags, positional, format, description.
	assert.InDelta(t, 1.0, result.Confidence, 0.001)
}

func TestParseCobraStyleHelp(t *testing.T) {
	p := New("widgets", cobraHelp)
	result := p.Parse()
	require.NotNil(t, result)

	assert.Equal(t, schema.FormatCobra, p.DetectedFormat())
	assert.Equal(t, "A tool for managing widgets", result.Description)
	assert.ElementsMatch(t, []string{"completion", "help", "list"},
		subcommandNames(result.Subcommands))
	assert.NotNil(t, findFlag(result.GlobalFlags, "--help"))
	assert.NotNil(t, findFlag(result.GlobalFlags, "--verbose"))
}

func TestParseGnuSectionlessFlags(t *testing.T) {
	p := New("grep", gnuHelp)
	result := p.Parse()
	require.NotNil(t, result)

	include := findFlag(result.GlobalFlags, "--include")
	require.NotNil(t, include)
	assert.True(t, include.TakesValue)

	ignoreCase := findFlag(result.GlobalFlags, "--ignore-case")
	require.NotNil(t, ignoreCase)
	assert.Equal(t, "-i", ignoreCase.Short)

	// PATTERNS survives; FILE is rejected as a generic placeholder.
	names := make([]string, 0, len(result.Positional))
	for _, arg := range result.Positional {
		names = append(names, arg.Name)
	}
	assert.Contains(t, names, "PATTERNS")
	assert.NotContains(t, names, "FILE")
}

func TestParseNpmCommandList(t *testing.T) {
	p := New("npm", npmHelp)
	result := p.Parse()
	require.NotNil(t, result)

	names := subcommandNames(result.Subcommands)
	assert.Contains(t, names, "access")
	assert.Contains(t, names, "audit")
	assert.Contains(t, names, "completion")
}

func TestParseNamedSettingRowsOnlyForStty(t *testing.T) {
	p := New("stty", sttyHelp)
	result := p.Parse()
	require.NotNil(t, result)

	names := subcommandNames(result.Subcommands)
	assert.Contains(t, names, "ek")
	assert.Contains(t, names, "sane")
	assert.Contains(t, names, "cooked")

	// The same shape under another command name yields no settings.
	other := New("widget", sttyHelp)
	otherResult := other.Parse()
	require.NotNil(t, otherResult)
	assert.NotContains(t, subcommandNames(otherResult.Subcommands), "ek")
}

func TestParseDenseCommandGrid(t *testing.T) {
	p := New("openssl", opensslGridHelp)
	result := p.Parse()
	require.NotNil(t, result)

	names := subcommandNames(result.Subcommands)
	assert.Contains(t, names, "asn1parse")
	assert.Contains(t, names, "dgst")
	assert.Contains(t, names, "dhparam")
}

func TestKeybindingDocumentSkipsSubcommandExtraction(t *testing.T) {
	p := New("less", lessKeybindingHelp)
	result := p.Parse()
	require.NotNil(t, result)

	assert.Empty(t, result.Subcommands)
	assert.Contains(t, p.Diagnostics().ParsersUsed, "generic-two-column-skipped:keybinding-doc")
}

func TestChoiceTableHintAttachesToFlag(t *testing.T) {
	p := New("ls", choiceTableHelp)
	result := p.Parse()
	require.NotNil(t, result)

	color := findFlag(result.GlobalFlags, "--color")
	require.NotNil(t, color)
	assert.True(t, color.TakesValue)
	assert.Equal(t, schema.ValueChoice, color.ValueType.Kind)
	assert.ElementsMatch(t, []string{"always", "auto", "never"}, color.ValueType.Choices)

	// The value rows must not leak into subcommands.
	assert.NotContains(t, subcommandNames(result.Subcommands), "always")
}

func TestInlineFlagChoiceHint(t *testing.T) {
	p := New("tool", flagChoiceHintHelp)
	result := p.Parse()
	require.NotNil(t, result)

	debug := findFlag(result.GlobalFlags, "-D")
	require.NotNil(t, debug)
	assert.True(t, debug.TakesValue)
	assert.ElementsMatch(t, []string{"all", "info", "warn", "trace"}, debug.ValueType.Choices)
}

func TestParseEmptyInput(t *testing.T) {
	p := New("empty", "   \n  ")
	assert.Nil(t, p.Parse())
	assert.Contains(t, p.Warnings(), "Empty help output")
}

func TestSelfCycleWarning(t *testing.T) {
	help := "Commands:\n" +
		"  widget    run the widget\n" +
		"  other     do something else\n"
	p := New("widget", help)
	result := p.Parse()
	require.NotNil(t, result)

	found := false
	for _, warning := range p.Warnings() {
		if strings.HasPrefix(warning, "Subcommand hierarchy validation:") {
			found = true
		}
	}
	assert.True(t, found, "expected hierarchy warning, got %v", p.Warnings())
}

func TestDiagnosticsCoverage(t *testing.T) {
	p := New("myapp", clapHelp)
	require.NotNil(t, p.Parse())

	diag := p.Diagnostics()
	assert.Positive(t, diag.RelevantLines)
	assert.Positive(t, diag.RecognizedLines)
	assert.GreaterOrEqual(t, 1.0, diag.Coverage())
	assert.NotEmpty(t, diag.ParsersUsed)
	assert.Equal(t, "strategy-plan:section+gnu+usage", diag.ParsersUsed[0])
}

func TestExtractVersionFromBanner(t *testing.T) {
	cases := []struct {
		name    string
		command string
		input   string
		want    string
	}{
		{"command banner", "git", "git version 2.39.1\n", "2.39.1"},
		{"version keyword", "tool", "internal tool, version 0.4\n", "0.4"},
		{"plain banner", "zic", "zic 2023c\nUsage: zic [options]\n", ""},
		{"none", "cat", "Usage: cat [FILE]...\n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.command, tc.input)
			assert.Equal(t, tc.want, p.extractVersion(ToIndexedLines(NormalizeHelpOutput(tc.input))))
		})
	}
}

func TestDedupeFlagsMergesForms(t *testing.T) {
	flags := []schema.FlagSchema{
		{Short: "-v", ValueType: schema.ValueType{Kind: schema.ValueBool}},
		{Short: "-v", Long: "--verbose", Description: "enable verbose output",
			ValueType: schema.ValueType{Kind: schema.ValueBool}},
		{Long: "--verbose", TakesValue: true,
			ValueType: schema.ValueType{Kind: schema.ValueNumber}},
	}
	deduped := dedupeFlags(flags)
	require.Len(t, deduped, 1)
	assert.Equal(t, "-v", deduped[0].Short)
	assert.Equal(t, "--verbose", deduped[0].Long)
	assert.True(t, deduped[0].TakesValue)
	assert.Equal(t, schema.ValueNumber, deduped[0].ValueType.Kind)
	assert.Equal(t, "enable verbose output", deduped[0].Description)
}

func TestDedupeArgsUpgradesValueType(t *testing.T) {
	args := []schema.ArgSchema{
		{Name: "target", ValueType: schema.ValueType{Kind: schema.ValueString}},
		{Name: "TARGET", Required: true, ValueType: schema.ValueType{Kind: schema.ValueFile}},
	}
	deduped := dedupeArgs(args)
	require.Len(t, deduped, 1)
	assert.True(t, deduped[0].Required)
	assert.Equal(t, schema.ValueFile, deduped[0].ValueType.Kind)
}

func TestSanitizeDescriptionText(t *testing.T) {
	assert.Equal(t, "print the version",
		sanitizeDescriptionText("...  print   the version"))
	assert.Equal(t, "enable colors",
		sanitizeDescriptionText("enable colors --   see the manual"))
}

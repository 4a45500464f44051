package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
)

const clapHelp = `myapp 1.2.3
A tool for building things

Usage: myapp [OPTIONS] <input>

Arguments:
  <input>  Input file to process

Commands:
  build  Compile the project
  test   Run the test suite

Options:
  -o, --output <FILE>  Write output to FILE
  -v, --verbose        Enable verbose output
  -q, --quiet          Suppress output
  -h, --help           Print help
`

const weakHelp = `Usage: widget [options]

  -q   quiet mode
`

func TestParseStampsContractVersion(t *testing.T) {
	result := Parse("myapp", clapHelp)
	require.True(t, result.Success)
	require.NotNil(t, result.Schema)
	assert.Equal(t, schema.ContractVersion, result.Schema.SchemaVersion)
	assert.Equal(t, "myapp", result.Schema.Command)
	assert.Equal(t, clapHelp, result.RawOutput)
	assert.Equal(t, schema.FormatClap, result.DetectedFormat)
}

func TestParseEmptyInput(t *testing.T) {
	result := Parse("myapp", "   ")
	assert.False(t, result.Success)
	assert.Nil(t, result.Schema)
	assert.Contains(t, result.Warnings, "Empty help output")
}

func TestParseWithReportAcceptsGoodSchema(t *testing.T) {
	run := ParseWithReport("myapp", clapHelp, report.DefaultPolicy())
	assert.True(t, run.Result.Success)
	require.NotNil(t, run.Result.Schema)
	assert.True(t, run.Report.AcceptedForSuggestions)
	assert.Empty(t, run.Report.FailureCode)
	assert.Contains(t,
		[]report.QualityTier{report.TierHigh, report.TierMedium},
		run.Report.QualityTier)
	assert.Equal(t, "clap", run.Report.SelectedFormat)
	assert.NotEmpty(t, run.Report.FormatScores)
	assert.NotEmpty(t, run.Report.ParsersUsed)
	assert.Greater(t, run.Report.Coverage, 0.0)
}

func TestParseWithReportRejectsBelowThreshold(t *testing.T) {
	policy := report.QualityPolicy{MinConfidence: 0.95}
	run := ParseWithReport("widget", weakHelp, policy)
	assert.False(t, run.Result.Success)
	assert.Nil(t, run.Result.Schema)
	assert.False(t, run.Report.AcceptedForSuggestions)
	assert.Equal(t, report.TierLow, run.Report.QualityTier)
	assert.Equal(t, report.FailureQualityRejected, run.Report.FailureCode)

	found := false
	for _, w := range run.Result.Warnings {
		if strings.HasPrefix(w, "Quality gate rejected schema: ") {
			found = true
		}
	}
	assert.True(t, found, "expected quality gate warning, got %v", run.Result.Warnings)
}

func TestParseWithReportLowQualityOverride(t *testing.T) {
	policy := report.QualityPolicy{MinConfidence: 0.95, AllowLowQuality: true}
	run := ParseWithReport("widget", weakHelp, policy)
	assert.True(t, run.Result.Success)
	require.NotNil(t, run.Result.Schema)
	assert.Equal(t, report.TierLow, run.Report.QualityTier)
	assert.Contains(t, run.Report.QualityReasons, "accepted by --allow-low-quality override")
}

func TestParseWithReportEmptyInput(t *testing.T) {
	run := ParseWithReport("myapp", "", report.PermissivePolicy())
	assert.False(t, run.Result.Success)
	assert.Equal(t, report.TierFailed, run.Report.QualityTier)
	assert.Equal(t, report.FailureParseFailed, run.Report.FailureCode)
}

func TestIsParentHelpEcho(t *testing.T) {
	siblings := map[string]bool{"list": true, "install": true, "remove": true, "update": true}
	parsed := &schema.CommandSchema{
		Command: "apt list",
		Subcommands: []schema.SubcommandSchema{
			{Name: "list"}, {Name: "install"}, {Name: "remove"}, {Name: "update"},
		},
	}
	assert.True(t, isParentHelpEcho("list", parsed, siblings))

	// Genuine nested subcommands share no sibling overlap.
	nested := &schema.CommandSchema{
		Command: "git remote",
		Subcommands: []schema.SubcommandSchema{
			{Name: "add"}, {Name: "rename"}, {Name: "remove"},
		},
	}
	assert.False(t, isParentHelpEcho("remote", nested, map[string]bool{"remote": true, "branch": true}))
}

func TestShouldSkipSubcommand(t *testing.T) {
	assert.True(t, shouldSkipSubcommand("help"))
	assert.True(t, shouldSkipSubcommand("completion"))
	assert.False(t, shouldSkipSubcommand("build"))
}

func TestShouldSkipCycleProneProbe(t *testing.T) {
	sttyRow := &schema.SubcommandSchema{Name: "ek", Description: "same as stty sane"}
	assert.True(t, shouldSkipCycleProneProbe("stty", sttyRow))

	tarFormat := &schema.SubcommandSchema{Name: "posix"}
	assert.True(t, shouldSkipCycleProneProbe("tar", tarFormat))

	regular := &schema.SubcommandSchema{Name: "build", Description: "Compile the project"}
	assert.False(t, shouldSkipCycleProneProbe("cargo", regular))
}

func TestExtendUniqueWarnings(t *testing.T) {
	out := extendUniqueWarnings(nil, "a", "b")
	out = extendUniqueWarnings(out, "a", "c")
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

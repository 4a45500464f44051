package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
)

func sampleSchema() *schema.CommandSchema {
	s := schema.New("test", schema.SourceHelpCommand)
	s.GlobalFlags = append(s.GlobalFlags, schema.BooleanFlag("-v", "--verbose"))
	s.Subcommands = append(s.Subcommands, schema.NewSubcommand("build"))
	return s
}

func sampleReport() report.ExtractionReport {
	return report.ExtractionReport{
		Command:                "mycmd",
		Success:                true,
		AcceptedForSuggestions: true,
		QualityTier:            report.TierHigh,
		SelectedFormat:         "gnu",
		ParsersUsed:            []string{"gnu"},
		Confidence:             0.92,
		Coverage:               0.85,
		RelevantLines:          20,
		RecognizedLines:        17,
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, format)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatSchemaJSON(t *testing.T) {
	out, err := FormatSchema(sampleSchema(), FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, out, `"command": "test"`)
}

func TestFormatSchemaYAML(t *testing.T) {
	out, err := FormatSchema(sampleSchema(), FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "command: test")
}

func TestFormatSchemaMarkdown(t *testing.T) {
	out, err := FormatSchema(sampleSchema(), FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, out, "# test")
	assert.Contains(t, out, "--verbose")
	assert.Contains(t, out, "build")
}

func TestFormatSchemaMarkdownWithPositional(t *testing.T) {
	s := sampleSchema()
	arg := schema.RequiredArg("file", schema.ValueType{Kind: schema.ValueFile})
	arg.Description = "Input file"
	s.Positional = append(s.Positional, arg)

	out, err := FormatSchema(s, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, out, "## Arguments")
	assert.Contains(t, out, "`file`")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "Input file")
}

func TestFormatSchemaTable(t *testing.T) {
	s := sampleSchema()
	s.Version = "1.2.3"
	out, err := FormatSchema(s, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "Command: test")
	assert.Contains(t, out, "Version: 1.2.3")
	assert.Contains(t, out, "-v, --verbose")
}

func TestFormatReportJSON(t *testing.T) {
	rep := sampleReport()
	out, err := FormatReport(&rep, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, out, `"command": "mycmd"`)
	assert.Contains(t, out, `"confidence": 0.92`)
}

func TestFormatReportMarkdown(t *testing.T) {
	rep := sampleReport()
	out, err := FormatReport(&rep, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, out, "# Extraction Report: mycmd")
	assert.Contains(t, out, "**Success:** yes")
	assert.Contains(t, out, "**Confidence:** 0.92")
}

func TestFormatReportMarkdownWithFailure(t *testing.T) {
	rep := sampleReport()
	rep.Success = false
	rep.FailureCode = report.FailureParseFailed
	rep.FailureDetail = "could not parse"
	rep.Warnings = []string{"some warning"}

	out, err := FormatReport(&rep, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, out, "**Success:** no")
	assert.Contains(t, out, "**Failure Code:** parse_failed")
	assert.Contains(t, out, "could not parse")
	assert.Contains(t, out, "some warning")
}

func TestFormatReportTable(t *testing.T) {
	rep := sampleReport()
	out, err := FormatReport(&rep, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "mycmd")
	assert.Contains(t, out, "OK")

	rep.Success = false
	rep.FailureCode = report.FailureNotInstalled
	out, err = FormatReport(&rep, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "[not_installed]")
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ex1tium/cmdschema/internal/output"
	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
	"github.com/ex1tium/cmdschema/internal/store"
)

const sampleHelp = `myapp 1.2.3
A sample tool

Usage: myapp [OPTIONS] <COMMAND>

Commands:
  build    Compile the project
  test     Run the test suite

Options:
  -v, --verbose        Enable verbose output
  -o, --output <FILE>  Write results to FILE
  -h, --help           Print help
`

func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand("0.0.0-test")
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseFromStdinEmitsJSONSchema(t *testing.T) {
	stdout, _, err := runCommand(t, sampleHelp, "parse", "--command", "myapp")
	require.NoError(t, err)

	var s schema.CommandSchema
	require.NoError(t, json.Unmarshal([]byte(stdout), &s))
	assert.Equal(t, "myapp", s.Command)
	assert.Equal(t, schema.ContractVersion, s.SchemaVersion)
	assert.NotEmpty(t, s.Subcommands)
}

func TestParseFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "help.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleHelp), 0o644))

	stdout, _, err := runCommand(t, "", "parse", "--command", "myapp", "--input", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"command": "myapp"`)
}

func TestParseEmptyInputFails(t *testing.T) {
	_, _, err := runCommand(t, "", "parse", "--command", "myapp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse help text for 'myapp'")
}

func TestParseWithReportIncludesReport(t *testing.T) {
	stdout, _, err := runCommand(t, sampleHelp, "parse", "--command", "myapp", "--with-report")
	require.NoError(t, err)

	var combined struct {
		Schema *schema.CommandSchema   `json:"schema"`
		Report report.ExtractionReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &combined))
	require.NotNil(t, combined.Schema)
	assert.True(t, combined.Report.Success)
	assert.NotEmpty(t, combined.Report.FormatScores)
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, _, err := runCommand(t, sampleHelp, "parse", "--command", "myapp", "--format", "xml")
	assert.Error(t, err)
}

func TestDiscoverRequiresSource(t *testing.T) {
	_, _, err := runCommand(t, "", "discover", "--output", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one discovery source")
}

func TestDiscoverRejectsBadThresholds(t *testing.T) {
	_, _, err := runCommand(t, "", "discover",
		"--output", t.TempDir(), "--commands", "git", "--min-confidence", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min-confidence")
}

func TestExportWritesStoredSchemas(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schemas.db")
	st, err := store.Open(dbPath, "cs_")
	require.NoError(t, err)
	s := schema.New("fakegit", schema.SourceHelpCommand)
	s.GlobalFlags = []schema.FlagSchema{schema.BooleanFlag("-v", "--verbose")}
	require.NoError(t, st.Save(s))
	require.NoError(t, st.Close())

	outDir := filepath.Join(t.TempDir(), "out")
	stdout, _, err := runCommand(t, "", "export", "--db", dbPath, "--output", outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 1 schema file(s)")

	data, err := os.ReadFile(filepath.Join(outDir, "fakegit.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"command": "fakegit"`)
}

func TestExportFailsForMissingCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schemas.db")
	st, err := store.Open(dbPath, "cs_")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, _, err = runCommand(t, "", "export", "--db", dbPath, "--output", t.TempDir(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stored schema for 'nope'")
}

func TestCacheDirPrintsOverride(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := runCommand(t, "", "cache", "dir", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(stdout))
}

func TestCacheClearOnEmptyDirSucceeds(t *testing.T) {
	stdout, _, err := runCommand(t, "", "cache", "clear", "--cache-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "Cleared extraction cache")
}

func TestParseCSVListTrimsAndDropsEmpty(t *testing.T) {
	assert.Equal(t, []string{"git", "docker", "cargo"}, parseCSVList(" git, docker, ,cargo "))
	assert.Empty(t, parseCSVList(""))
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, "json", formatExtension(output.FormatJSON))
	assert.Equal(t, "yaml", formatExtension(output.FormatYAML))
	assert.Equal(t, "md", formatExtension(output.FormatMarkdown))
	assert.Equal(t, "txt", formatExtension(output.FormatTable))
}

package probe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ex1tium/cmdschema/internal/report"
)

func TestIsHelpOutputAcceptsUsageLine(t *testing.T) {
	assert.True(t, IsHelpOutput("Usage: tool [OPTIONS] <FILE>\n\n  -v  verbose\n"))
}

func TestIsHelpOutputAcceptsStructuredSections(t *testing.T) {
	text := "mytool does things\n\nOptions:\n  -v, --verbose  Verbose output\n"
	assert.True(t, IsHelpOutput(text))
}

func TestIsHelpOutputRejectsTinyOutput(t *testing.T) {
	assert.False(t, IsHelpOutput("ok\n"))
}

func TestIsHelpOutputRejectsCommandNotFound(t *testing.T) {
	assert.False(t, IsHelpOutput("bash: frobnicate: command not found, sorry about that\n"))
}

func TestIsHelpOutputRejectsOptionError(t *testing.T) {
	text := "tool: unrecognized option '--halp'\nTry 'tool --help' for more information is elsewhere\n"
	assert.False(t, IsHelpOutput(text))
}

func TestIsHelpOutputRejectsSuggestionOnlyHint(t *testing.T) {
	text := "flag --frob is unknown, try 'mytool help' for available flags\n"
	assert.False(t, IsHelpOutput(text))
}

func TestIsHelpOutputAcceptsManPage(t *testing.T) {
	text := "LS(1)                    User Commands                    LS(1)\n\nNAME\n       ls - list directory contents\n\nSYNOPSIS\n       ls [OPTION]... [FILE]...\n"
	assert.True(t, IsHelpOutput(text))
}

func TestClassifyRejection(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"sudo: unable to do this: Operation not permitted", "environment-blocked"},
		{"tool: invalid option -- 'z'", "option-error-output"},
		{"zsh: command not found: frob", "not-installed-output"},
		{"some random program output with nothing notable", "not-help-output"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyRejection(tc.text), tc.text)
	}
}

func TestManProbePages(t *testing.T) {
	assert.Equal(t, []string{"git"}, manProbePages([]string{"git"}))
	assert.Equal(t,
		[]string{"git-remote-add", "git-remote"},
		manProbePages([]string{"git", "remote", "add"}))
	assert.Nil(t, manProbePages([]string{"git", "$(rm -rf /)"}))
}

func TestShouldProbeHelpSubcommand(t *testing.T) {
	assert.True(t, shouldProbeHelpSubcommand([]string{"git", "remote"}, nil))
	assert.False(t, shouldProbeHelpSubcommand([]string{"ls"}, nil))

	hinted := []report.ProbeAttemptReport{{
		HelpFlag:      "--help",
		OutputPreview: "unknown flag, try 'kubectl help' for a list of commands",
	}}
	assert.True(t, shouldProbeHelpSubcommand([]string{"kubectl"}, hinted))
}

func TestOutputPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", 400)
	preview := outputPreview("\n\n  " + long)
	assert.Equal(t, 163, len(preview))
	assert.True(t, strings.HasSuffix(preview, "..."))
}

func TestDeriveFailureTimeout(t *testing.T) {
	attempts := []report.ProbeAttemptReport{
		{HelpFlag: "--help", TimedOut: true},
	}
	code, detail := DeriveFailure(attempts)
	assert.Equal(t, report.FailureTimeout, code)
	assert.Equal(t, "All probe attempts timed out", detail)
}

func TestDeriveFailureNotInstalled(t *testing.T) {
	attempts := []report.ProbeAttemptReport{
		{HelpFlag: "--help"},
		{HelpFlag: "-h"},
	}
	code, _ := DeriveFailure(attempts)
	assert.Equal(t, report.FailureNotInstalled, code)
}

func TestDeriveFailureEnvironmentBlocked(t *testing.T) {
	exit := 1
	attempts := []report.ProbeAttemptReport{
		{HelpFlag: "--help", ExitCode: &exit, OutputLen: 40, RejectionReason: "environment-blocked"},
	}
	code, _ := DeriveFailure(attempts)
	assert.Equal(t, report.FailurePermissionBlocked, code)
}

func TestDeriveFailureFallsBackToNotHelpOutput(t *testing.T) {
	exit := 0
	attempts := []report.ProbeAttemptReport{
		{HelpFlag: "--help", ExitCode: &exit, OutputLen: 512, RejectionReason: "not-help-output"},
	}
	code, detail := DeriveFailure(attempts)
	assert.Equal(t, report.FailureNotHelpOutput, code)
	assert.Contains(t, detail, "recognizable help text")
}

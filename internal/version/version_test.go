package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBannerStyle(t *testing.T) {
	assert.Equal(t, "2.39.1", Extract("git version 2.39.1\n", "git"))
}

func TestExtractKeywordAdjacent(t *testing.T) {
	text := "Version: 1.0.0\nUsage: mycmd [options]"
	assert.Equal(t, "1.0.0", Extract(text, "mycmd"))
}

func TestExtractVPrefix(t *testing.T) {
	text := "mycmd v1.2.3-rc1\nUsage: mycmd [options]"
	assert.Equal(t, "1.2.3-rc1", Extract(text, "mycmd"))
}

func TestExtractBuildSuffix(t *testing.T) {
	assert.Equal(t, "3.4.5+build123", Extract("tool version 3.4.5+build123", "tool"))
}

func TestExtractAlphaSuffix(t *testing.T) {
	text := "kubectl v1.28.0-alpha.1\nUsage: kubectl [flags]"
	assert.Equal(t, "1.28.0-alpha.1", Extract(text, "kubectl"))
}

func TestExtractTwoComponent(t *testing.T) {
	text := "docker version 24.0\nUsage: docker [OPTIONS] COMMAND"
	assert.Equal(t, "24.0", Extract(text, "docker"))
}

func TestRejectDatePattern(t *testing.T) {
	text := "Released 2024.01.15\nUsage: tool [options]\nFlags:\n  --help"
	assert.Empty(t, Extract(text, "tool"))
}

func TestRejectIPAddress(t *testing.T) {
	text := "Connecting to 192.168.1.1\nUsage: tool [options]"
	assert.Empty(t, Extract(text, "tool"))
}

func TestRejectPathComponent(t *testing.T) {
	text := "loaded from /usr/lib/python3.11/site-packages\nUsage: tool [options]"
	assert.Empty(t, Extract(text, "tool"))
}

func TestNoVersionInPlainHelp(t *testing.T) {
	text := "Usage: mycmd [options]\n\nOptions:\n  --help  Show help"
	assert.Empty(t, Extract(text, "mycmd"))
}

func TestOnlyScansLeadingLines(t *testing.T) {
	text := "Usage: tool\n\n\n\n\n\n\n\n\n\n\ntool version 9.9.9"
	assert.Empty(t, Extract(text, "tool"))
}

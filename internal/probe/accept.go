package probe

import (
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser/man/detect"
	"github.com/ex1tium/cmdschema/internal/report"
)

// IsHelpOutput reports whether text looks like help output rather than an
// error message or unrelated program output.
func IsHelpOutput(text string) bool {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if len(trimmed) < 20 {
		return false
	}

	hardFailMarkers := []string{
		"command not found",
		"no such file or directory",
		"is not recognized as an internal or external command",
	}
	for _, marker := range hardFailMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	lines := strings.Split(trimmed, "\n")
	hasUsageLine := false
	hasStructuredSections := false
	nonEmptyLines := 0
	for _, line := range lines {
		normalized := strings.ToLower(strings.TrimLeft(line, " \t"))
		if strings.HasPrefix(normalized, "usage:") {
			hasUsageLine = true
		}
		switch {
		case strings.HasPrefix(normalized, "options:"),
			strings.HasPrefix(normalized, "flags:"),
			strings.HasPrefix(normalized, "commands:"),
			strings.HasPrefix(normalized, "arguments:"),
			strings.HasPrefix(normalized, "positional arguments:"):
			hasStructuredSections = true
		}
		if strings.TrimSpace(line) != "" {
			nonEmptyLines++
		}
	}

	// Tiny "unknown option, try X help" hints are error output, not help.
	suggestionOnly := !hasUsageLine && !hasStructuredSections && nonEmptyLines <= 2 &&
		(strings.Contains(lower, " is unknown, try ") ||
			strings.Contains(lower, "unknown argument") ||
			strings.Contains(lower, "unknown option")) &&
		strings.Contains(lower, " help")
	if suggestionOnly {
		return false
	}

	leadingWindow := lines
	if len(leadingWindow) > 3 {
		leadingWindow = leadingWindow[:3]
	}
	leading := strings.ToLower(strings.Join(leadingWindow, "\n"))
	optionErrorMarkers := []string{
		"illegal option",
		"unknown option",
		"unknown argument",
		"invalid option",
		"unrecognized option",
	}
	for _, marker := range optionErrorMarkers {
		if strings.Contains(leading, marker) && !hasUsageLine && !hasStructuredSections {
			return false
		}
	}

	// An explicit usage line is a strong indicator for compact outputs.
	if hasUsageLine {
		return true
	}
	if isManPageOutput(trimmed) {
		return true
	}

	helpIndicators := []string{"usage", "options", "commands", "flags", "arguments", "description"}
	for _, indicator := range helpIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func isManPageOutput(text string) bool {
	titleLines := 0
	sectionHeaders := 0

	lines := strings.Split(text, "\n")
	if len(lines) > 120 {
		lines = lines[:120]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if detect.LooksLikeTitleLine(trimmed) {
			titleLines++
		}
		switch trimmed {
		case "NAME", "SYNOPSIS", "DESCRIPTION", "OPTIONS", "COMMANDS",
			"EXAMPLES", "SEE ALSO", "FILES", "ENVIRONMENT":
			sectionHeaders++
		}
	}

	return sectionHeaders >= 2 || (titleLines >= 1 && sectionHeaders >= 1)
}

// classifyRejection buckets non-help output into a rejection reason.
func classifyRejection(helpText string) string {
	lower := strings.ToLower(helpText)

	environmentBlockedMarkers := []string{
		"operation not permitted",
		"permission denied",
		"no new privileges",
		"cannot open audit interface",
		"unable to initialize netlink socket",
		"can't open display",
		"cannot open display",
	}
	for _, marker := range environmentBlockedMarkers {
		if strings.Contains(lower, marker) {
			return "environment-blocked"
		}
	}

	optionErrorMarkers := []string{
		"illegal option",
		"unknown option",
		"unknown argument",
		"invalid option",
		"unrecognized option",
		" is unknown, try ",
	}
	for _, marker := range optionErrorMarkers {
		if strings.Contains(lower, marker) {
			return "option-error-output"
		}
	}

	notFoundMarkers := []string{
		"command not found",
		"not recognized as an internal or external command",
		"unknown binary",
	}
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return "not-installed-output"
		}
	}

	return "not-help-output"
}

// DeriveFailure maps the attempts of a failed probe to a structured
// failure code and human-readable detail.
func DeriveFailure(attempts []report.ProbeAttemptReport) (report.FailureCode, string) {
	allNotFound := len(attempts) > 0
	for _, a := range attempts {
		spawnFailed := strings.Contains(a.Error, "spawn failed")
		silentMiss := a.ExitCode == nil && a.OutputLen == 0 && a.Error == "" && !a.TimedOut
		if !spawnFailed && !silentMiss {
			allNotFound = false
			break
		}
	}
	if allNotFound {
		return report.FailureNotInstalled, "Command not found on the system"
	}

	for _, a := range attempts {
		if a.TimedOut {
			return report.FailureTimeout, "All probe attempts timed out"
		}
	}
	for _, a := range attempts {
		if a.RejectionReason == "environment-blocked" {
			return report.FailurePermissionBlocked, "Help probing was blocked by environment restrictions"
		}
	}

	notInstalledHits := 0
	for _, a := range attempts {
		if a.RejectionReason == "not-installed-output" {
			notInstalledHits++
		}
	}
	if notInstalledHits >= 2 {
		return report.FailureNotInstalled, "Command appears to be unavailable on the system"
	}

	return report.FailureNotHelpOutput, "Probe output did not contain recognizable help text"
}

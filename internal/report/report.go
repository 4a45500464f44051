// Package report defines structured extraction reports and the quality
// policy that gates schema acceptance.
package report

import (
	"fmt"
	"strings"
)

// FailureCode classifies why an extraction did not produce a usable schema.
type FailureCode string

const (
	// FailureNotInstalled means the command is not installed on the system.
	FailureNotInstalled FailureCode = "not_installed"
	// FailurePermissionBlocked means the probe was blocked by environment
	// permissions.
	FailurePermissionBlocked FailureCode = "permission_blocked"
	// FailureTimeout means the probe timed out before producing output.
	FailureTimeout FailureCode = "timeout"
	// FailureNotHelpOutput means the probe produced output that is not
	// recognizable help text.
	FailureNotHelpOutput FailureCode = "not_help_output"
	// FailureParseFailed means help text was found but parsing produced no
	// schema.
	FailureParseFailed FailureCode = "parse_failed"
	// FailureQualityRejected means a schema was extracted but rejected by
	// the quality policy.
	FailureQualityRejected FailureCode = "quality_rejected"
)

// QualityTier buckets one extraction by how trustworthy its schema is.
type QualityTier string

const (
	TierHigh   QualityTier = "high"
	TierMedium QualityTier = "medium"
	TierLow    QualityTier = "low"
	TierFailed QualityTier = "failed"
)

// FormatScoreReport is one weighted score entry for a detected help format.
type FormatScoreReport struct {
	Format string  `json:"format" yaml:"format"`
	Score  float64 `json:"score" yaml:"score"`
}

// ProbeAttemptReport records one help-flag invocation against a command.
type ProbeAttemptReport struct {
	HelpFlag        string   `json:"help_flag" yaml:"help_flag"`
	Argv            []string `json:"argv" yaml:"argv"`
	ExitCode        *int     `json:"exit_code" yaml:"exit_code"`
	TimedOut        bool     `json:"timed_out" yaml:"timed_out"`
	Error           string   `json:"error,omitempty" yaml:"error,omitempty"`
	RejectionReason string   `json:"rejection_reason,omitempty" yaml:"rejection_reason,omitempty"`
	OutputSource    string   `json:"output_source,omitempty" yaml:"output_source,omitempty"`
	OutputLen       int      `json:"output_len" yaml:"output_len"`
	OutputPreview   string   `json:"output_preview,omitempty" yaml:"output_preview,omitempty"`
	Accepted        bool     `json:"accepted" yaml:"accepted"`
}

// ExtractionReport is the per-command diagnostics record.
type ExtractionReport struct {
	Command string `json:"command" yaml:"command"`
	// Basename of the resolved executable, when available. Only the
	// basename is stored so absolute paths never leak into manifests.
	ResolvedExecutablePath string `json:"resolved_executable_path,omitempty" yaml:"resolved_executable_path,omitempty"`
	// Resolved implementation name (e.g. mawk, gawk, busybox).
	ResolvedImplementation string               `json:"resolved_implementation,omitempty" yaml:"resolved_implementation,omitempty"`
	Success                bool                 `json:"success" yaml:"success"`
	AcceptedForSuggestions bool                 `json:"accepted_for_suggestions" yaml:"accepted_for_suggestions"`
	QualityTier            QualityTier          `json:"quality_tier" yaml:"quality_tier"`
	QualityReasons         []string             `json:"quality_reasons" yaml:"quality_reasons"`
	FailureCode            FailureCode          `json:"failure_code,omitempty" yaml:"failure_code,omitempty"`
	FailureDetail          string               `json:"failure_detail,omitempty" yaml:"failure_detail,omitempty"`
	SelectedFormat         string               `json:"selected_format,omitempty" yaml:"selected_format,omitempty"`
	FormatScores           []FormatScoreReport  `json:"format_scores" yaml:"format_scores"`
	ParsersUsed            []string             `json:"parsers_used" yaml:"parsers_used"`
	Confidence             float64              `json:"confidence" yaml:"confidence"`
	Coverage               float64              `json:"coverage" yaml:"coverage"`
	RelevantLines          int                  `json:"relevant_lines" yaml:"relevant_lines"`
	RecognizedLines        int                  `json:"recognized_lines" yaml:"recognized_lines"`
	UnresolvedLines        []string             `json:"unresolved_lines" yaml:"unresolved_lines"`
	ProbeAttempts          []ProbeAttemptReport `json:"probe_attempts" yaml:"probe_attempts"`
	Warnings               []string             `json:"warnings" yaml:"warnings"`
	ValidationErrors       []string             `json:"validation_errors" yaml:"validation_errors"`
}

// Bundle aggregates the reports of a full discovery run.
type Bundle struct {
	SchemaVersion string             `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	GeneratedAt   string             `json:"generated_at" yaml:"generated_at"`
	Version       string             `json:"version" yaml:"version"`
	Reports       []ExtractionReport `json:"reports" yaml:"reports"`
	Failures      []string           `json:"failures" yaml:"failures"`
}

// Suggested quality thresholds for production runs.
const (
	DefaultMinConfidence = 0.6
	DefaultMinCoverage   = 0.2
)

// QualityPolicy controls extraction acceptance thresholds.
type QualityPolicy struct {
	MinConfidence   float64
	MinCoverage     float64
	AllowLowQuality bool
}

// DefaultPolicy returns the production-grade acceptance thresholds.
func DefaultPolicy() QualityPolicy {
	return QualityPolicy{
		MinConfidence: DefaultMinConfidence,
		MinCoverage:   DefaultMinCoverage,
	}
}

// PermissivePolicy accepts everything. Intended for development and tests.
func PermissivePolicy() QualityPolicy {
	return QualityPolicy{AllowLowQuality: true}
}

// Assessment is the outcome of applying a quality policy to one report.
type Assessment struct {
	Accepted bool
	Tier     QualityTier
	Reasons  []string
}

// Assess grades one extraction against the policy. resultSuccess is the
// success flag of the extraction result the report belongs to.
func Assess(resultSuccess bool, rep *ExtractionReport, policy QualityPolicy) Assessment {
	if !resultSuccess {
		var reasons []string
		switch {
		case len(rep.ValidationErrors) > 0:
			reasons = append(reasons, "Schema validation failed")
		case hasWarningPrefix(rep.Warnings, "Could not get help output for"):
			reasons = append(reasons, "No parseable help output from probe attempts")
		case hasRejectionReason(rep.ProbeAttempts, "environment-blocked"):
			reasons = append(reasons, "Help probing was blocked by environment restrictions")
		case hasRejectionReason(rep.ProbeAttempts, "option-error-output"):
			reasons = append(reasons, "Probe output looked like option-error output rather than help")
		default:
			reasons = append(reasons, "Parsing pipeline did not produce a valid schema")
		}
		return Assessment{Accepted: false, Tier: TierFailed, Reasons: reasons}
	}

	var reasons []string
	if rep.Confidence < policy.MinConfidence {
		reasons = append(reasons, fmt.Sprintf("confidence %.2f below minimum %.2f",
			rep.Confidence, policy.MinConfidence))
	}
	if rep.Coverage < policy.MinCoverage {
		reasons = append(reasons, fmt.Sprintf("coverage %.2f below minimum %.2f",
			rep.Coverage, policy.MinCoverage))
	}

	accepted := len(reasons) == 0 || policy.AllowLowQuality
	tier := TierLow
	if len(reasons) == 0 {
		if rep.Confidence >= 0.85 && rep.Coverage >= 0.6 {
			tier = TierHigh
		} else {
			tier = TierMedium
		}
	}
	if len(reasons) > 0 && policy.AllowLowQuality {
		reasons = append(reasons, "accepted by --allow-low-quality override")
	}

	return Assessment{Accepted: accepted, Tier: tier, Reasons: reasons}
}

func hasWarningPrefix(warnings []string, prefix string) bool {
	for _, w := range warnings {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

func hasRejectionReason(attempts []ProbeAttemptReport, reason string) bool {
	for _, a := range attempts {
		if a.RejectionReason == reason {
			return true
		}
	}
	return false
}

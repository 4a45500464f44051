// Package discovery is the public entry point for command schema
// extraction.
//
// Parse and ParseWithReport work on pre-captured help text without
// executing anything. Extract and ExtractWithReport probe an installed
// command's help output and recursively discover subcommand schemas.
package discovery

import (
	"fmt"
	"strings"

	"github.com/ex1tium/cmdschema/internal/parser"
	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// ExtractionResult is the schema-bearing outcome of one extraction.
type ExtractionResult struct {
	Schema         *schema.CommandSchema `json:"schema" yaml:"schema"`
	RawOutput      string                `json:"raw_output" yaml:"raw_output"`
	DetectedFormat schema.HelpFormat     `json:"detected_format" yaml:"detected_format"`
	Warnings       []string              `json:"warnings" yaml:"warnings"`
	Success        bool                  `json:"success" yaml:"success"`
}

// ExtractionRun pairs an extraction result with its diagnostics report.
type ExtractionRun struct {
	Result ExtractionResult        `json:"result" yaml:"result"`
	Report report.ExtractionReport `json:"report" yaml:"report"`
}

// Parse parses pre-captured help text into a schema without executing any
// commands. The schema is stamped with the contract version.
func Parse(command, helpText string) ExtractionResult {
	p := parser.New(command, helpText)
	s := p.Parse()
	if s != nil {
		s.SchemaVersion = schema.ContractVersion
	}

	return ExtractionResult{
		Schema:         s,
		RawOutput:      helpText,
		DetectedFormat: p.DetectedFormat(),
		Warnings:       p.Warnings(),
		Success:        s != nil,
	}
}

// ParseWithReport parses pre-captured help text, builds a full diagnostics
// report, and applies the quality policy.
func ParseWithReport(command, helpText string, policy report.QualityPolicy) ExtractionRun {
	p := parser.New(command, helpText)
	s := p.Parse()
	if s != nil {
		s.SchemaVersion = schema.ContractVersion
	}
	warnings := p.Warnings()
	diagnostics := p.Diagnostics()

	success := false
	var failureCode report.FailureCode
	var failureDetail string
	switch {
	case s == nil:
		failureCode = report.FailureParseFailed
		failureDetail = "Help text parsing produced no schema"
	case !schemaHasEntities(s):
		failureCode = report.FailureParseFailed
		failureDetail = "Parsed schema contains no entities"
	default:
		success = true
	}

	confidence := 0.0
	selectedFormat := ""
	if s != nil {
		confidence = s.Confidence
		selectedFormat = p.DetectedFormat().String()
	}

	run := ExtractionRun{
		Result: ExtractionResult{
			Schema:         s,
			RawOutput:      helpText,
			DetectedFormat: p.DetectedFormat(),
			Warnings:       warnings,
			Success:        success,
		},
		Report: report.ExtractionReport{
			Command:         command,
			Success:         success,
			QualityTier:     report.TierFailed,
			FailureCode:     failureCode,
			FailureDetail:   failureDetail,
			SelectedFormat:  selectedFormat,
			FormatScores:    toFormatScoreReports(diagnostics.FormatScores),
			ParsersUsed:     diagnostics.ParsersUsed,
			Confidence:      confidence,
			Coverage:        diagnostics.Coverage(),
			RelevantLines:   diagnostics.RelevantLines,
			RecognizedLines: diagnostics.RecognizedLines,
			UnresolvedLines: diagnostics.UnresolvedLines,
			Warnings:        warnings,
		},
	}

	return ApplyQualityPolicy(run, policy)
}

// ApplyQualityPolicy grades the run, records the tier and reasons, and
// strips the schema when the policy rejects it.
func ApplyQualityPolicy(run ExtractionRun, policy report.QualityPolicy) ExtractionRun {
	assessment := report.Assess(run.Result.Success, &run.Report, policy)
	run.Report.AcceptedForSuggestions = assessment.Accepted
	run.Report.QualityTier = assessment.Tier
	run.Report.QualityReasons = assessment.Reasons

	if !assessment.Accepted {
		if run.Result.Success && len(assessment.Reasons) > 0 {
			reason := strings.Join(assessment.Reasons, "; ")
			gateWarning := fmt.Sprintf("Quality gate rejected schema: %s", reason)
			run.Result.Warnings = extendUniqueWarnings(run.Result.Warnings, gateWarning)
			run.Report.Warnings = extendUniqueWarnings(run.Report.Warnings, gateWarning)
			run.Report.FailureCode = report.FailureQualityRejected
			run.Report.FailureDetail = reason
		}
		run.Result.Success = false
		run.Result.Schema = nil
		run.Report.Success = false
	} else {
		run.Report.FailureCode = ""
		run.Report.FailureDetail = ""
	}

	return run
}

func schemaHasEntities(s *schema.CommandSchema) bool {
	return len(s.GlobalFlags) > 0 || len(s.Subcommands) > 0 || len(s.Positional) > 0
}

func toFormatScoreReports(scores []parser.FormatScore) []report.FormatScoreReport {
	out := make([]report.FormatScoreReport, 0, len(scores))
	for _, entry := range scores {
		out = append(out, report.FormatScoreReport{
			Format: entry.Format.String(),
			Score:  entry.Score,
		})
	}
	return out
}

// isCandidateDiagnosticWarning filters parser bookkeeping warnings that are
// useful in reports but too noisy for result warnings.
func isCandidateDiagnosticWarning(message string) bool {
	return strings.HasPrefix(message, "Medium-confidence findings kept in diagnostics:") ||
		strings.HasPrefix(message, "Discarded low-confidence findings:") ||
		strings.HasPrefix(message, "False-positive filters matched")
}

func extendUniqueWarnings(target []string, warnings ...string) []string {
	for _, warning := range warnings {
		seen := false
		for _, existing := range target {
			if existing == warning {
				seen = true
				break
			}
		}
		if !seen {
			target = append(target, warning)
		}
	}
	return target
}

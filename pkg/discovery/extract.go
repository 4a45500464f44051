package discovery

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ex1tium/cmdschema/internal/parser"
	"github.com/ex1tium/cmdschema/internal/probe"
	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
	"github.com/ex1tium/cmdschema/internal/version"
)

// maxRecursiveProbeBudget caps unique command invocations per extraction.
// Depth is intentionally unbounded; this budget is the safety guard.
const maxRecursiveProbeBudget = 4096

// Extractor probes installed commands and extracts their schemas.
type Extractor struct {
	prober *probe.Prober
	logger *zap.Logger
}

// NewExtractor creates an extractor with the default probe timeout.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{prober: probe.New(logger), logger: logger}
}

// Extract probes a command's help output and extracts a schema without
// quality gating.
func (e *Extractor) Extract(ctx context.Context, command string) ExtractionResult {
	return e.ExtractWithReport(ctx, command, report.PermissivePolicy()).Result
}

// ExtractWithReport probes a command, extracts its schema with recursive
// subcommand discovery, and applies the quality policy.
func (e *Extractor) ExtractWithReport(ctx context.Context, command string, policy report.QualityPolicy) ExtractionRun {
	run := e.extractBase(ctx, command)
	return ApplyQualityPolicy(run, policy)
}

func (e *Extractor) extractBase(ctx context.Context, command string) ExtractionRun {
	resolvedPath, resolvedImpl := resolveCommandIdentity(command)
	probeRun := e.prober.Probe(ctx, command)

	if !probeRun.Found() {
		failureWarning := fmt.Sprintf("Could not get help output for '%s'", command)
		failureCode, failureDetail := probe.DeriveFailure(probeRun.Attempts)
		return ExtractionRun{
			Result: ExtractionResult{
				DetectedFormat: schema.FormatUnknown,
				Warnings:       []string{failureWarning},
			},
			Report: report.ExtractionReport{
				Command:                command,
				ResolvedExecutablePath: resolvedPath,
				ResolvedImplementation: resolvedImpl,
				QualityTier:            report.TierFailed,
				FailureCode:            failureCode,
				FailureDetail:          failureDetail,
				ParsersUsed:            []string{"probe-failed"},
				ProbeAttempts:          probeRun.Attempts,
				Warnings:               []string{failureWarning},
			},
		}
	}

	rawOutput := probeRun.HelpOutput
	detectedVersion := version.Extract(rawOutput, command)

	p := parser.NewWithLogger(command, rawOutput, e.logger)
	s := p.Parse()
	if s == nil {
		diagnostics := p.Diagnostics()
		warnings := p.Warnings()
		return ExtractionRun{
			Result: ExtractionResult{
				RawOutput:      rawOutput,
				DetectedFormat: p.DetectedFormat(),
				Warnings:       warnings,
			},
			Report: report.ExtractionReport{
				Command:                command,
				ResolvedExecutablePath: resolvedPath,
				ResolvedImplementation: resolvedImpl,
				QualityTier:            report.TierFailed,
				FailureCode:            report.FailureParseFailed,
				FailureDetail:          "Help text was found but parsing produced no schema",
				SelectedFormat:         p.DetectedFormat().String(),
				FormatScores:           toFormatScoreReports(diagnostics.FormatScores),
				ParsersUsed:            diagnostics.ParsersUsed,
				Coverage:               diagnostics.Coverage(),
				RelevantLines:          diagnostics.RelevantLines,
				RecognizedLines:        diagnostics.RecognizedLines,
				UnresolvedLines:        diagnostics.UnresolvedLines,
				ProbeAttempts:          probeRun.Attempts,
				Warnings:               warnings,
			},
		}
	}

	s.SchemaVersion = schema.ContractVersion
	if s.Version == "" {
		s.Version = detectedVersion
	}

	parserWarnings := p.Warnings()
	reportWarnings := append([]string{}, parserWarnings...)
	var warnings []string
	for _, warning := range parserWarnings {
		if !isCandidateDiagnosticWarning(warning) {
			warnings = extendUniqueWarnings(warnings, warning)
		}
	}

	probed := map[string]bool{}
	warnings = e.probeSubcommands(ctx, command, s.Subcommands, probed, 1, warnings)

	e.logger.Info("extracted command schema",
		zap.String("command", command),
		zap.Int("subcommands", len(s.Subcommands)),
		zap.Int("flags", len(s.GlobalFlags)),
		zap.Float64("confidence", s.Confidence))

	diagnostics := p.Diagnostics()
	var validationErrors []string
	for _, err := range schema.Validate(s) {
		validationErrors = append(validationErrors, err.Error())
	}
	hasEntities := schemaHasEntities(s)
	if !hasEntities {
		warnings = append(warnings, fmt.Sprintf(
			"Extracted schema for '%s' contains no flags, subcommands, or positional arguments", command))
	}
	success := len(validationErrors) == 0 && hasEntities
	reportWarnings = extendUniqueWarnings(reportWarnings, warnings...)

	var failureCode report.FailureCode
	var failureDetail string
	switch {
	case success:
	case len(validationErrors) > 0:
		failureCode = report.FailureParseFailed
		failureDetail = "Schema validation failed: " + strings.Join(validationErrors, "; ")
	default:
		failureCode = report.FailureParseFailed
		failureDetail = "Parsed schema contains no entities"
	}

	result := ExtractionResult{
		RawOutput:      rawOutput,
		DetectedFormat: p.DetectedFormat(),
		Warnings:       warnings,
		Success:        success,
	}
	if success {
		result.Schema = s
	}

	return ExtractionRun{
		Result: result,
		Report: report.ExtractionReport{
			Command:                command,
			ResolvedExecutablePath: resolvedPath,
			ResolvedImplementation: resolvedImpl,
			Success:                success,
			QualityTier:            report.TierFailed,
			FailureCode:            failureCode,
			FailureDetail:          failureDetail,
			SelectedFormat:         p.DetectedFormat().String(),
			FormatScores:           toFormatScoreReports(diagnostics.FormatScores),
			ParsersUsed:            diagnostics.ParsersUsed,
			Confidence:             s.Confidence,
			Coverage:               diagnostics.Coverage(),
			RelevantLines:          diagnostics.RelevantLines,
			RecognizedLines:        diagnostics.RecognizedLines,
			UnresolvedLines:        diagnostics.UnresolvedLines,
			ProbeAttempts:          probeRun.Attempts,
			Warnings:               reportWarnings,
			ValidationErrors:       validationErrors,
		},
	}
}

// probeSubcommands recursively fills in subcommand schemas by probing
// "<base> <sub> --help", with cycle detection and a bounded budget.
func (e *Extractor) probeSubcommands(ctx context.Context, baseCommand string, subcommands []schema.SubcommandSchema, probed map[string]bool, depth int, warnings []string) []string {
	siblingNames := map[string]bool{}
	for _, sub := range subcommands {
		siblingNames[strings.ToLower(sub.Name)] = true
	}

	for i := range subcommands {
		sub := &subcommands[i]
		fullCommand := baseCommand + " " + sub.Name

		if probed[fullCommand] {
			continue
		}
		if len(probed) >= maxRecursiveProbeBudget {
			warnings = extendUniqueWarnings(warnings, fmt.Sprintf(
				"Reached recursive probe budget (%d) while probing '%s'; skipping deeper discovery",
				maxRecursiveProbeBudget, baseCommand))
			break
		}
		probed[fullCommand] = true

		if shouldSkipSubcommand(sub.Name) || shouldSkipCycleProneProbe(baseCommand, sub) {
			continue
		}

		e.logger.Debug("probing subcommand",
			zap.String("command", fullCommand), zap.Int("depth", depth))

		probeRun := e.prober.Probe(ctx, fullCommand)
		if !probeRun.Found() {
			continue
		}
		p := parser.New(fullCommand, probeRun.HelpOutput)
		if subSchema := p.Parse(); subSchema != nil {
			// Some CLIs (notably apt-family) print parent-level help for
			// "<command> <subcommand> --help". Merging that would inject
			// sibling command lists into every subcommand.
			if isParentHelpEcho(sub.Name, subSchema, siblingNames) {
				continue
			}

			sub.Flags = subSchema.GlobalFlags
			sub.Positional = subSchema.Positional
			// Keep the parent help's description; recursive probes often
			// start with generic banners.
			if sub.Description == "" {
				sub.Description = subSchema.Description
			}

			nested := subSchema.Subcommands
			selfCycle := false
			for _, n := range nested {
				if n.Name == sub.Name {
					selfCycle = true
					break
				}
			}
			if selfCycle {
				warnings = append(warnings, fmt.Sprintf(
					"Skipping nested subcommands for '%s' due to detected self-cycle", fullCommand))
				nested = nil
			}
			sub.Subcommands = nested

			if len(sub.Subcommands) > 0 {
				warnings = e.probeSubcommands(ctx, fullCommand, sub.Subcommands, probed, depth+1, warnings)
			}
		}
		for _, warning := range p.Warnings() {
			if !isCandidateDiagnosticWarning(warning) {
				warnings = extendUniqueWarnings(warnings, warning)
			}
		}
	}

	return warnings
}

// isParentHelpEcho reports that a subcommand probe returned the parent's
// help text: the parsed subcommand list contains the probed name plus
// several of its siblings.
func isParentHelpEcho(subcommandName string, parsed *schema.CommandSchema, siblingNames map[string]bool) bool {
	if len(parsed.Subcommands) < 2 {
		return false
	}

	parsedNames := map[string]bool{}
	for _, name := range parsed.SubcommandNames() {
		parsedNames[strings.ToLower(name)] = true
	}
	if !parsedNames[strings.ToLower(subcommandName)] {
		return false
	}

	overlap := 0
	for name := range parsedNames {
		if siblingNames[name] {
			overlap++
		}
	}
	return overlap >= 3
}

// shouldSkipSubcommand skips help-adjacent subcommands that have no
// meaningful help of their own.
func shouldSkipSubcommand(name string) bool {
	switch name {
	case "help", "version", "completion", "completions":
		return true
	}
	return false
}

// shouldSkipCycleProneProbe skips rows known to echo their parent's help
// (stty setting rows, tar format labels).
func shouldSkipCycleProneProbe(baseCommand string, sub *schema.SubcommandSchema) bool {
	base := baseCommand
	if fields := strings.Fields(baseCommand); len(fields) > 0 {
		base = fields[0]
	}
	base = strings.ToLower(base)
	desc := strings.ToLower(sub.Description)

	switch base {
	case "stty":
		return strings.HasPrefix(desc, "same as ") ||
			strings.HasPrefix(desc, "print ") ||
			strings.HasPrefix(desc, "set ")
	case "tar":
		switch sub.Name {
		case "gnu", "oldgnu", "pax", "posix", "ustar", "v7":
			return true
		}
		return strings.HasPrefix(desc, "same as ")
	}
	return false
}

// CommandExists reports whether the command's base binary is on PATH.
func CommandExists(command string) bool {
	base := command
	if fields := strings.Fields(command); len(fields) > 0 {
		base = fields[0]
	}
	_, err := exec.LookPath(base)
	return err == nil
}

// resolveCommandIdentity resolves the base binary through PATH and
// symlinks. Only basenames are returned so absolute paths never leak into
// serialized reports.
func resolveCommandIdentity(command string) (resolvedPath, resolvedImpl string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", ""
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return "", ""
	}
	if canonical, err := filepath.EvalSymlinks(path); err == nil {
		path = canonical
	}
	base := filepath.Base(path)
	return base, base
}

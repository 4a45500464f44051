package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ex1tium/cmdschema/internal/output"
	"github.com/ex1tium/cmdschema/internal/report"
)

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to read --verbose flag: %w", err)
	}
	if !verbose {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func formatFromFlag(cmd *cobra.Command) (output.Format, error) {
	raw, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to read --format flag: %w", err)
	}
	return output.ParseFormat(raw)
}

func policyFromFlags(cmd *cobra.Command) (report.QualityPolicy, error) {
	minConfidence, err := cmd.Flags().GetFloat64("min-confidence")
	if err != nil {
		return report.QualityPolicy{}, fmt.Errorf("failed to read --min-confidence flag: %w", err)
	}
	minCoverage, err := cmd.Flags().GetFloat64("min-coverage")
	if err != nil {
		return report.QualityPolicy{}, fmt.Errorf("failed to read --min-coverage flag: %w", err)
	}
	allowLowQuality, err := cmd.Flags().GetBool("allow-low-quality")
	if err != nil {
		return report.QualityPolicy{}, fmt.Errorf("failed to read --allow-low-quality flag: %w", err)
	}
	if minConfidence < 0 || minConfidence > 1 {
		return report.QualityPolicy{}, fmt.Errorf("--min-confidence must be between 0.0 and 1.0")
	}
	if minCoverage < 0 || minCoverage > 1 {
		return report.QualityPolicy{}, fmt.Errorf("--min-coverage must be between 0.0 and 1.0")
	}
	return report.QualityPolicy{
		MinConfidence:   minConfidence,
		MinCoverage:     minCoverage,
		AllowLowQuality: allowLowQuality,
	}, nil
}

// parseCSVList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func parseCSVList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// formatExtension returns the file extension used for schema and report
// files in the given format.
func formatExtension(format output.Format) string {
	switch format {
	case output.FormatYAML:
		return "yaml"
	case output.FormatMarkdown:
		return "md"
	case output.FormatTable:
		return "txt"
	default:
		return "json"
	}
}

func formatReportBundle(bundle *report.Bundle, format output.Format) (string, error) {
	switch format {
	case output.FormatJSON:
		data, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return "", fmt.Errorf("JSON serialization failed: %w", err)
		}
		return string(data), nil
	case output.FormatYAML:
		data, err := yaml.Marshal(bundle)
		if err != nil {
			return "", fmt.Errorf("YAML serialization failed: %w", err)
		}
		return string(data), nil
	default:
		var out strings.Builder
		for i := range bundle.Reports {
			rendered, err := output.FormatReport(&bundle.Reports[i], format)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
		return out.String(), nil
	}
}

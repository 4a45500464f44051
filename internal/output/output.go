// Package output renders schemas and extraction reports as JSON, YAML,
// Markdown, or aligned plain-text tables.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
)

// Format selects the rendering for schemas and reports.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
)

// ParseFormat maps a user-supplied label to a Format.
func ParseFormat(label string) (Format, error) {
	switch strings.ToLower(label) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "table":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected json, yaml, markdown, or table)", label)
}

// FormatSchema renders a schema in the requested format.
func FormatSchema(s *schema.CommandSchema, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return "", fmt.Errorf("JSON serialization failed: %w", err)
		}
		return string(data), nil
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return "", fmt.Errorf("YAML serialization failed: %w", err)
		}
		return string(data), nil
	case FormatMarkdown:
		return schemaToMarkdown(s), nil
	case FormatTable:
		return schemaToTable(s), nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

// FormatReport renders an extraction report in the requested format.
func FormatReport(rep *report.ExtractionReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return "", fmt.Errorf("JSON serialization failed: %w", err)
		}
		return string(data), nil
	case FormatYAML:
		data, err := yaml.Marshal(rep)
		if err != nil {
			return "", fmt.Errorf("YAML serialization failed: %w", err)
		}
		return string(data), nil
	case FormatMarkdown:
		return reportToMarkdown(rep), nil
	case FormatTable:
		return reportToTable(rep), nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

func flagDisplayName(f *schema.FlagSchema) string {
	switch {
	case f.Short != "" && f.Long != "":
		return f.Short + ", " + f.Long
	case f.Short != "":
		return f.Short
	case f.Long != "":
		return f.Long
	}
	return "?"
}

func schemaToMarkdown(s *schema.CommandSchema) string {
	var out strings.Builder

	fmt.Fprintf(&out, "# %s\n\n", s.Command)
	if s.Description != "" {
		fmt.Fprintf(&out, "%s\n\n", s.Description)
	}
	if s.Version != "" {
		fmt.Fprintf(&out, "**Version:** %s\n\n", s.Version)
	}
	fmt.Fprintf(&out, "**Confidence:** %.0f%%\n\n", s.Confidence*100)

	if len(s.GlobalFlags) > 0 {
		out.WriteString("## Global Flags\n\n")
		out.WriteString("| Flag | Description |\n")
		out.WriteString("|------|-------------|\n")
		for i := range s.GlobalFlags {
			flag := &s.GlobalFlags[i]
			fmt.Fprintf(&out, "| `%s` | %s |\n", flagDisplayName(flag), flag.Description)
		}
		out.WriteString("\n")
	}

	if len(s.Positional) > 0 {
		out.WriteString("## Arguments\n\n")
		out.WriteString("| Argument | Required | Description |\n")
		out.WriteString("|----------|----------|-------------|\n")
		for _, arg := range s.Positional {
			required := "no"
			if arg.Required {
				required = "yes"
			}
			fmt.Fprintf(&out, "| `%s` | %s | %s |\n", arg.Name, required, arg.Description)
		}
		out.WriteString("\n")
	}

	if len(s.Subcommands) > 0 {
		out.WriteString("## Subcommands\n\n")
		out.WriteString("| Subcommand | Description |\n")
		out.WriteString("|------------|-------------|\n")
		for _, sub := range s.Subcommands {
			fmt.Fprintf(&out, "| `%s` | %s |\n", sub.Name, sub.Description)
		}
		out.WriteString("\n")
	}

	return out.String()
}

func schemaToTable(s *schema.CommandSchema) string {
	var out strings.Builder

	fmt.Fprintf(&out, "Command: %s  Confidence: %.0f%%", s.Command, s.Confidence*100)
	if s.Version != "" {
		fmt.Fprintf(&out, "  Version: %s", s.Version)
	}
	out.WriteString("\n")
	if s.Description != "" {
		fmt.Fprintf(&out, "  %s\n", s.Description)
	}

	if len(s.GlobalFlags) > 0 {
		out.WriteString("\nFlags:\n")
		maxName := 4
		for i := range s.GlobalFlags {
			if n := len(flagDisplayName(&s.GlobalFlags[i])); n > maxName {
				maxName = n
			}
		}
		for i := range s.GlobalFlags {
			flag := &s.GlobalFlags[i]
			fmt.Fprintf(&out, "  %-*s  %s\n", maxName, flagDisplayName(flag), flag.Description)
		}
	}

	if len(s.Subcommands) > 0 {
		out.WriteString("\nSubcommands:\n")
		maxName := 4
		for _, sub := range s.Subcommands {
			if len(sub.Name) > maxName {
				maxName = len(sub.Name)
			}
		}
		for _, sub := range s.Subcommands {
			fmt.Fprintf(&out, "  %-*s  %s\n", maxName, sub.Name, sub.Description)
		}
	}

	return out.String()
}

func reportToMarkdown(rep *report.ExtractionReport) string {
	var out strings.Builder

	fmt.Fprintf(&out, "# Extraction Report: %s\n\n", rep.Command)
	success := "no"
	if rep.Success {
		success = "yes"
	}
	fmt.Fprintf(&out, "- **Success:** %s\n", success)
	fmt.Fprintf(&out, "- **Quality Tier:** %s\n", rep.QualityTier)
	fmt.Fprintf(&out, "- **Confidence:** %.2f\n", rep.Confidence)
	fmt.Fprintf(&out, "- **Coverage:** %.2f\n", rep.Coverage)

	if rep.FailureCode != "" {
		fmt.Fprintf(&out, "- **Failure Code:** %s\n", rep.FailureCode)
	}
	if rep.FailureDetail != "" {
		fmt.Fprintf(&out, "- **Failure Detail:** %s\n", rep.FailureDetail)
	}

	if len(rep.Warnings) > 0 {
		out.WriteString("\n## Warnings\n\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&out, "- %s\n", w)
		}
	}

	return out.String()
}

func reportToTable(rep *report.ExtractionReport) string {
	var out strings.Builder
	status := "FAIL"
	if rep.Success {
		status = "OK"
	}
	fmt.Fprintf(&out, "%-20s %-6s %-10s conf=%.2f cov=%.2f",
		rep.Command, status, string(rep.QualityTier), rep.Confidence, rep.Coverage)
	if rep.FailureCode != "" {
		fmt.Fprintf(&out, "  [%s]", rep.FailureCode)
	}
	out.WriteString("\n")
	return out.String()
}

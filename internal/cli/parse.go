package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ex1tium/cmdschema/internal/output"
	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
	"github.com/ex1tium/cmdschema/pkg/discovery"
)

func RunParse(cmd *cobra.Command, args []string) error {
	command, err := cmd.Flags().GetString("command")
	if err != nil {
		return fmt.Errorf("failed to read --command flag: %w", err)
	}
	inputPath, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("failed to read --input flag: %w", err)
	}
	withReport, err := cmd.Flags().GetBool("with-report")
	if err != nil {
		return fmt.Errorf("failed to read --with-report flag: %w", err)
	}
	format, err := formatFromFlag(cmd)
	if err != nil {
		return err
	}

	var helpText string
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read '%s': %w", inputPath, err)
		}
		helpText = string(data)
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		helpText = string(data)
	}

	if !withReport {
		result := discovery.Parse(command, helpText)
		if result.Schema == nil {
			return fmt.Errorf("failed to parse help text for '%s': %s",
				command, strings.Join(result.Warnings, "; "))
		}
		rendered, err := output.FormatSchema(result.Schema, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	}

	run := discovery.ParseWithReport(command, helpText, report.PermissivePolicy())
	if format == output.FormatJSON {
		combined := struct {
			Schema *schema.CommandSchema   `json:"schema,omitempty"`
			Report report.ExtractionReport `json:"report"`
		}{Schema: run.Result.Schema, Report: run.Report}
		data, err := json.MarshalIndent(combined, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if run.Result.Schema != nil {
		rendered, err := output.FormatSchema(run.Result.Schema, format)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
	}
	rendered, err := output.FormatReport(&run.Report, format)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

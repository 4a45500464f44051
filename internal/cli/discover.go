package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ex1tium/cmdschema/internal/cache"
	"github.com/ex1tium/cmdschema/internal/output"
	"github.com/ex1tium/cmdschema/internal/store"
	"github.com/ex1tium/cmdschema/pkg/discovery"
)

func RunDiscover(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	commandsRaw, err := cmd.Flags().GetString("commands")
	if err != nil {
		return fmt.Errorf("failed to read --commands flag: %w", err)
	}
	excludeRaw, err := cmd.Flags().GetString("exclude")
	if err != nil {
		return fmt.Errorf("failed to read --exclude flag: %w", err)
	}
	useAllowlist, err := cmd.Flags().GetBool("allowlist")
	if err != nil {
		return fmt.Errorf("failed to read --allowlist flag: %w", err)
	}
	scanPath, err := cmd.Flags().GetBool("scan-path")
	if err != nil {
		return fmt.Errorf("failed to read --scan-path flag: %w", err)
	}
	installedOnly, err := cmd.Flags().GetBool("installed-only")
	if err != nil {
		return fmt.Errorf("failed to read --installed-only flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to read --jobs flag: %w", err)
	}
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to read --output flag: %w", err)
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to read --cache-dir flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to read --no-cache flag: %w", err)
	}
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to read --db flag: %w", err)
	}
	dbPrefix, err := cmd.Flags().GetString("db-prefix")
	if err != nil {
		return fmt.Errorf("failed to read --db-prefix flag: %w", err)
	}
	policy, err := policyFromFlags(cmd)
	if err != nil {
		return err
	}
	format, err := formatFromFlag(cmd)
	if err != nil {
		return err
	}

	commands := parseCSVList(commandsRaw)
	if len(commands) == 0 && !useAllowlist && !scanPath {
		return fmt.Errorf("specify at least one discovery source: --commands, --allowlist, or --scan-path")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	if noCache {
		cacheDir = ""
	} else if cacheDir == "" {
		cacheDir = cache.DefaultDir()
	}

	cfg := discovery.BatchConfig{
		Commands:         commands,
		UseAllowlist:     useAllowlist,
		ScanPath:         scanPath,
		ExcludedCommands: parseCSVList(excludeRaw),
		Policy:           policy,
		InstalledOnly:    installedOnly,
		Jobs:             jobs,
		CacheDir:         cacheDir,
	}
	outcome := discovery.RunBatch(cmd.Context(), cfg, logger)

	ext := formatExtension(format)
	written := 0
	for _, s := range outcome.Schemas {
		rendered, err := output.FormatSchema(s, format)
		if err != nil {
			return err
		}
		path := filepath.Join(outputDir, fmt.Sprintf("%s.%s", s.Command, ext))
		if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write '%s': %w", path, err)
		}
		written++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Extracted and wrote %d schema file(s).\n", written)

	bundle := discovery.BuildReportBundle(cmd.Root().Version, outcome.Reports, outcome.Failures)
	reportRaw, err := formatReportBundle(&bundle, format)
	if err != nil {
		return err
	}
	reportPath := filepath.Join(outputDir, "extraction-report."+ext)
	if err := os.WriteFile(reportPath, []byte(reportRaw), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", reportPath, err)
	}

	if dbPath != "" && len(outcome.Schemas) > 0 {
		st, err := store.Open(dbPath, dbPrefix)
		if err != nil {
			return err
		}
		defer st.Close()
		for _, s := range outcome.Schemas {
			if err := st.Save(s); err != nil {
				return fmt.Errorf("failed to store schema for '%s': %w", s.Command, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %d schema(s) in '%s'.\n", len(outcome.Schemas), dbPath)
	}

	if len(outcome.Failures) > 0 {
		summary := discovery.FailureCodeSummary(outcome.Reports)
		if len(summary) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d extraction failure(s): %s\n",
				len(outcome.Failures), strings.Join(outcome.Failures, ", "))
		} else {
			breakdown := make([]string, 0, len(summary))
			for _, entry := range summary {
				breakdown = append(breakdown, fmt.Sprintf("%d %s", entry.Count, entry.Code))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d extraction failure(s) (%s): %s\n",
				len(outcome.Failures), strings.Join(breakdown, ", "),
				strings.Join(outcome.Failures, ", "))
		}
	}
	if len(outcome.Warnings) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d warning(s) emitted during extraction.\n", len(outcome.Warnings))
	}
	return nil
}

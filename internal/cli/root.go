package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ex1tium/cmdschema/internal/report"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmdschema",
		Short: "Extract structured schemas from command-line help output",
		Long: `Cmdschema turns the help text of command-line tools into structured
schemas - flags, subcommands, positional arguments, and constraints -
that other programs can consume.

Help text can be parsed offline from stdin or a file, or discovered
live by probing installed commands.`,
		Version: version,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse help text from stdin or a file without executing commands",
		RunE:  RunParse,
	}
	parseCmd.Flags().String("command", "", "Command name for the help text being parsed")
	parseCmd.Flags().String("input", "", "Path to a file containing help text (default: stdin)")
	parseCmd.Flags().Bool("with-report", false, "Output both schema and extraction report")
	parseCmd.Flags().String("format", "json", "Output format: json|yaml|markdown|table")
	parseCmd.MarkFlagRequired("command")

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Probe installed commands and extract their schemas",
		RunE:  RunDiscover,
	}
	discoverCmd.Flags().String("commands", "", "Comma-separated explicit commands (e.g. git,docker,cargo)")
	discoverCmd.Flags().Bool("allowlist", false, "Include installed commands from the curated allowlist")
	discoverCmd.Flags().Bool("scan-path", false, "Include executables discovered on PATH")
	discoverCmd.Flags().String("exclude", "", "Comma-separated commands to exclude")
	discoverCmd.Flags().String("output", "", "Output directory for per-command schema files")
	discoverCmd.Flags().Float64("min-confidence", report.DefaultMinConfidence, "Minimum schema confidence (0.0-1.0) required for acceptance")
	discoverCmd.Flags().Float64("min-coverage", report.DefaultMinCoverage, "Minimum parser coverage (0.0-1.0) required for acceptance")
	discoverCmd.Flags().Bool("allow-low-quality", false, "Keep low-quality schemas instead of rejecting them")
	discoverCmd.Flags().Bool("installed-only", false, "Only extract schemas for commands installed on the system")
	discoverCmd.Flags().Int("jobs", 0, "Number of parallel extraction jobs (default: adaptive)")
	discoverCmd.Flags().String("cache-dir", "", "Directory for caching extraction results")
	discoverCmd.Flags().Bool("no-cache", false, "Disable caching entirely")
	discoverCmd.Flags().String("format", "json", "Output format for schema and report files: json|yaml|markdown|table")
	discoverCmd.Flags().String("db", "", "SQLite database to store accepted schemas in")
	discoverCmd.Flags().String("db-prefix", "cs_", "Table name prefix inside the database")
	discoverCmd.MarkFlagRequired("output")

	exportCmd := &cobra.Command{
		Use:   "export [command...]",
		Short: "Write stored schemas from the database to files",
		RunE:  RunExport,
	}
	exportCmd.Flags().String("db", "", "SQLite database to read schemas from")
	exportCmd.Flags().String("db-prefix", "cs_", "Table name prefix inside the database")
	exportCmd.Flags().String("output", "", "Output directory for schema files")
	exportCmd.Flags().String("format", "json", "Output format: json|yaml|markdown|table")
	exportCmd.MarkFlagRequired("db")
	exportCmd.MarkFlagRequired("output")

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the extraction cache",
	}
	cacheDirCmd := &cobra.Command{
		Use:   "dir",
		Short: "Print the extraction cache directory",
		RunE:  RunCacheDir,
	}
	cacheClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached extraction results",
		RunE:  RunCacheClear,
	}
	for _, sub := range []*cobra.Command{cacheDirCmd, cacheClearCmd} {
		sub.Flags().String("cache-dir", "", "Cache directory (default: per-user cache)")
		cacheCmd.AddCommand(sub)
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cmdschema %s\n", version)
		},
	}

	rootCmd.AddCommand(
		parseCmd,
		discoverCmd,
		exportCmd,
		cacheCmd,
		versionCmd,
	)

	return rootCmd
}

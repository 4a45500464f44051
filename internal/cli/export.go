package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ex1tium/cmdschema/internal/output"
	"github.com/ex1tium/cmdschema/internal/schema"
	"github.com/ex1tium/cmdschema/internal/store"
)

func RunExport(cmd *cobra.Command, args []string) error {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to read --db flag: %w", err)
	}
	dbPrefix, err := cmd.Flags().GetString("db-prefix")
	if err != nil {
		return fmt.Errorf("failed to read --db-prefix flag: %w", err)
	}
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to read --output flag: %w", err)
	}
	format, err := formatFromFlag(cmd)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath, dbPrefix)
	if err != nil {
		return err
	}
	defer st.Close()

	var schemas []*schema.CommandSchema
	if len(args) > 0 {
		for _, name := range args {
			s, err := st.Load(name)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("no stored schema for '%s'", name)
			}
			schemas = append(schemas, s)
		}
	} else {
		schemas, err = st.LoadAll()
		if err != nil {
			return err
		}
	}
	if len(schemas) == 0 {
		return fmt.Errorf("database contains no schemas")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	ext := formatExtension(format)
	for _, s := range schemas {
		rendered, err := output.FormatSchema(s, format)
		if err != nil {
			return err
		}
		path := filepath.Join(outputDir, fmt.Sprintf("%s.%s", s.Command, ext))
		if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write '%s': %w", path, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d schema file(s) to '%s'.\n", len(schemas), outputDir)
	return nil
}

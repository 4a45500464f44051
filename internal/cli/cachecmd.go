package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ex1tium/cmdschema/internal/cache"
)

func resolveCacheDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return "", fmt.Errorf("failed to read --cache-dir flag: %w", err)
	}
	if dir == "" {
		dir = cache.DefaultDir()
	}
	return dir, nil
}

func RunCacheDir(cmd *cobra.Command, args []string) error {
	dir, err := resolveCacheDir(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}

func RunCacheClear(cmd *cobra.Command, args []string) error {
	dir, err := resolveCacheDir(cmd)
	if err != nil {
		return err
	}
	if err := cache.New(dir).Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared extraction cache in '%s'.\n", dir)
	return nil
}

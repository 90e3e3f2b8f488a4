package main

import (
	"fmt"
	"io"
	"os"

	intconfig "dashboard/internal/config"

	"github.com/spf13/cobra"
)

func newViewsCmd() *cobra.Command {
	viewsCmd := &cobra.Command{
		Use:   "views",
		Short: "Manage list view definitions",
	}
	viewsCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in view definitions as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return intconfig.WriteViews(cmd.OutOrStdout(), intconfig.DefaultViews())
			}
			return writeViewsFile(args[0], cmd.OutOrStdout())
		},
	})
	return viewsCmd
}

func writeViewsFile(path string, out io.Writer) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := intconfig.WriteViews(f, intconfig.DefaultViews()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/fliptrack/cmd/flip/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "flip",
		Short:         "FlipTrack offline tools: reports and photo processing",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.ProjectsCmd())
	rootCmd.AddCommand(cmd.ReportCmd())
	rootCmd.AddCommand(cmd.CompressCmd())
	rootCmd.AddCommand(cmd.ThumbnailCmd())
	rootCmd.AddCommand(cmd.ValidateCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

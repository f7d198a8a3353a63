// Package main provides the entry point for the tf2git CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Overridden at build time via -ldflags.
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tf2git",
		Short: "tf2git - replay TFVC changeset history into a git repository",
		Long: `tf2git migrates the changeset history of a TFVC repository into an
equivalent linear git history: one commit per changeset, in ascending
changeset order, with source metadata preserved and case-only renames
reconciled for the move to a case-sensitive system.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "tf2git %s (commit: %s)\n", version, commit)
		},
	}
}

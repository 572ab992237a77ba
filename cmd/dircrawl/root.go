// Package main provides the entry point for the dircrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dircrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dircrawl",
		Short: "Download every page under a directory URL as text files",
		Long: `dircrawl crawls all pages under a directory-scoped URL and saves each
page as a Markdown text file named after its URL path.

The crawl never leaves the target directory: only links on the same host
whose path starts with the directory path are followed. A page budget and
a depth limit keep runs bounded.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

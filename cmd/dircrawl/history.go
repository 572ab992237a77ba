package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/dircrawl/internal/config"
	"github.com/nao1215/dircrawl/internal/crawler"
	"github.com/nao1215/dircrawl/internal/database"
	"github.com/nao1215/dircrawl/internal/model"
	"github.com/nao1215/dircrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects crawl runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [directory-url]",
		Short: "Show crawl history stored in the database",
		Long: `History lists past crawl runs recorded in the local database.

Every 'dircrawl crawl' run is saved automatically. This command shows
when a directory was crawled, how many pages were saved, and whether the
run completed or was cancelled. Individual runs can be printed as full
reports in text, JSON, or Markdown.

Examples:
  # List all crawl runs for a directory
  dircrawl history https://example.com/docs/

  # List only the five most recent runs
  dircrawl history --limit 5 https://example.com/docs/

  # Show the full report of the latest run
  dircrawl history --latest https://example.com/docs/

  # Show the full report of a specific run by ID
  dircrawl history --run-id 12

  # Output a run report as JSON
  dircrawl history --latest --json https://example.com/docs/

  # List all crawled directories in the database
  dircrawl history --list-directories`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list-directories", "L", false,
		"List all crawled directories in the database")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of runs to list (0 = all)")

	// Run selection flags
	cmd.Flags().BoolP("latest", "l", false,
		"Show the full report of the latest run for the directory")
	cmd.Flags().Int64P("run-id", "i", 0,
		"Show the full report of a specific run by ID")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output run report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output run report in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listDirectories, err := cmd.Flags().GetBool("list-directories")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a bad URL does
	// not leave lock files behind
	var directory string
	if !listDirectories && runID == 0 {
		if len(args) == 0 {
			return errors.New("directory URL is required (use --list-directories to see crawled directories)")
		}

		// Normalize to the root URL form runs are stored under
		scope, err := crawler.NewScope(args[0])
		if err != nil {
			return fmt.Errorf("invalid directory URL: %w", err)
		}
		directory = scope.RootURL()
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-directories flag
	if listDirectories {
		return listCrawledDirectories(ctx, db)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	// Handle --run-id flag
	if runID > 0 {
		return showRunByID(ctx, db, runID, jsonOutput, markdownOutput)
	}

	// Handle --latest flag
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	if latest {
		return showLatestRun(ctx, db, directory, jsonOutput, markdownOutput)
	}

	// Default: list run history for the directory
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return listRunHistory(ctx, db, directory, limit)
}

// listCrawledDirectories lists all directories that have crawl runs in the database.
func listCrawledDirectories(ctx context.Context, db *database.CrawlDB) error {
	directories, err := db.ListDirectories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list directories: %w", err)
	}

	if len(directories) == 0 {
		fmt.Println("No crawled directories found in the database.")
		fmt.Println("\nUse 'dircrawl crawl <directory-url>' to crawl a directory.")
		return nil
	}

	fmt.Printf("Crawled directories (%d):\n\n", len(directories))
	for _, directory := range directories {
		fmt.Printf("  • %s\n", directory)
	}
	fmt.Println("\nUse 'dircrawl history <directory-url>' to see runs for a directory.")

	return nil
}

// listRunHistory lists crawl runs for a specific directory.
func listRunHistory(ctx context.Context, db *database.CrawlDB, directory string, limit int) error {
	runs, err := db.ListRuns(ctx, directory, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No crawl history found for %s\n", directory)
		fmt.Println("\nUse 'dircrawl crawl' to crawl this directory.")
		return nil
	}

	fmt.Printf("Crawl history for %s (%d runs):\n\n", directory, len(runs))
	fmt.Printf("  %-6s  %-20s  %-8s  %-8s  %s\n", "ID", "Date", "Saved", "Failed", "Status")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, run := range runs {
		status := "complete"
		if run.Cancelled {
			status = "cancelled"
		}
		fmt.Printf("  %-6d  %-20s  %-8d  %-8d  %s\n",
			run.ID,
			run.Started.Local().Format("2006-01-02 15:04:05"),
			run.SuccessCount,
			run.FailureCount,
			status,
		)
	}

	fmt.Println("\nUse 'dircrawl history --run-id <id>' to see the full report of a run.")

	return nil
}

// showRunByID prints the full report of a specific run.
func showRunByID(ctx context.Context, db *database.CrawlDB, runID int64, jsonOutput, markdownOutput bool) error {
	crawlReport, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	if crawlReport == nil {
		return fmt.Errorf("run with ID %d not found", runID)
	}

	return writeHistoryReport(crawlReport, jsonOutput, markdownOutput)
}

// showLatestRun prints the full report of the latest run for a directory.
func showLatestRun(ctx context.Context, db *database.CrawlDB, directory string, jsonOutput, markdownOutput bool) error {
	crawlReport, err := db.GetLatestRun(ctx, directory)
	if err != nil {
		return fmt.Errorf("failed to get latest run: %w", err)
	}
	if crawlReport == nil {
		return fmt.Errorf("no crawl history found for %s", directory)
	}

	return writeHistoryReport(crawlReport, jsonOutput, markdownOutput)
}

// writeHistoryReport prints a stored report in the requested format.
func writeHistoryReport(crawlReport *model.CrawlReport, jsonOutput, markdownOutput bool) error {
	if jsonOutput {
		_, err := report.NewFullJSONWriter(os.Stdout, getVersion(), report.WithPrettyPrint()).Write(crawlReport)
		return err
	}
	if markdownOutput {
		_, err := report.NewMarkdownWriter(os.Stdout).Write(crawlReport)
		return err
	}
	_, err := report.NewSimpleWriter(os.Stdout).Write(crawlReport)
	return err
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/nao1215/dircrawl/internal/database"
	"github.com/nao1215/dircrawl/internal/model"
)

// openHistoryTestDB creates a database in a temp directory with one saved run.
func openHistoryTestDB(t *testing.T, directory string) *database.CrawlDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	crawlReport := model.NewCrawlReport(directory, 1, 50)
	crawlReport.Append(model.PageRecord{
		URL:           directory,
		Depth:         0,
		Title:         "Index",
		FilePath:      "docs.md",
		ContentLength: 120,
		Success:       true,
	})
	crawlReport.Finish()

	if _, err := db.SaveReport(context.Background(), crawlReport); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	return db
}

// captureStdout runs fn while redirecting stdout and returns what it printed.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	if fnErr != nil {
		t.Fatalf("unexpected error: %v", fnErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	return buf.String()
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [directory-url]" {
			t.Errorf("expected use 'history [directory-url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has list-directories flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-directories")
		if flag == nil {
			t.Fatal("expected list-directories flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})

	t.Run("has latest flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("latest")
		if flag == nil {
			t.Fatal("expected latest flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has run-id flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("run-id")
		if flag == nil {
			t.Fatal("expected run-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has json and markdown flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("json") == nil {
			t.Error("expected json flag")
		}
		if cmd.Flags().Lookup("markdown") == nil {
			t.Error("expected markdown flag")
		}
	})
}

// TestRunHistoryCmdInvalidURL tests argument validation before touching the database.
func TestRunHistoryCmdInvalidURL(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"history", "ftp://example.com/docs/"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for invalid directory URL")
	}
	if !strings.Contains(err.Error(), "invalid directory URL") {
		t.Errorf("expected 'invalid directory URL' error, got: %v", err)
	}
}

// TestListCrawledDirectories tests the directory listing.
func TestListCrawledDirectories(t *testing.T) {
	directory := "https://example.com/docs/"
	db := openHistoryTestDB(t, directory)

	output := captureStdout(t, func() error {
		return listCrawledDirectories(context.Background(), db)
	})

	if !strings.Contains(output, directory) {
		t.Errorf("expected output to contain %q, got %q", directory, output)
	}
}

// TestListRunHistory tests the run history table.
func TestListRunHistory(t *testing.T) {
	directory := "https://example.com/docs/"
	db := openHistoryTestDB(t, directory)

	t.Run("lists runs for a crawled directory", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return listRunHistory(context.Background(), db, directory, 0)
		})

		if !strings.Contains(output, directory) {
			t.Errorf("expected output to contain %q, got %q", directory, output)
		}
		if !strings.Contains(output, "complete") {
			t.Errorf("expected output to contain run status, got %q", output)
		}
	})

	t.Run("reports empty history", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return listRunHistory(context.Background(), db, "https://example.com/never-crawled/", 0)
		})

		if !strings.Contains(output, "No crawl history found") {
			t.Errorf("expected 'No crawl history found', got %q", output)
		}
	})
}

// TestShowRunByID tests printing a stored run report.
func TestShowRunByID(t *testing.T) {
	directory := "https://example.com/docs/"
	db := openHistoryTestDB(t, directory)

	t.Run("prints report for existing run", func(t *testing.T) {
		runs, err := db.ListRuns(context.Background(), directory, 1)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}

		output := captureStdout(t, func() error {
			return showRunByID(context.Background(), db, runs[0].ID, false, false)
		})

		if !strings.Contains(output, directory) {
			t.Errorf("expected output to contain %q, got %q", directory, output)
		}
	})

	t.Run("returns error for missing run", func(t *testing.T) {
		err := showRunByID(context.Background(), db, 9999, false, false)
		if err == nil {
			t.Error("expected error for missing run")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected 'not found' error, got %v", err)
		}
	})
}

// TestShowLatestRun tests printing the latest stored run.
func TestShowLatestRun(t *testing.T) {
	directory := "https://example.com/docs/"
	db := openHistoryTestDB(t, directory)

	t.Run("prints latest run as JSON", func(t *testing.T) {
		output := captureStdout(t, func() error {
			return showLatestRun(context.Background(), db, directory, true, false)
		})

		var decoded struct {
			Report model.CrawlReport `json:"report"`
		}
		if err := json.Unmarshal([]byte(output), &decoded); err != nil {
			t.Fatalf("expected valid JSON output, got error: %v", err)
		}
		if decoded.Report.Directory != directory {
			t.Errorf("expected directory %q, got %q", directory, decoded.Report.Directory)
		}
	})

	t.Run("returns error when no history exists", func(t *testing.T) {
		err := showLatestRun(context.Background(), db, "https://example.com/never-crawled/", false, false)
		if err == nil {
			t.Error("expected error for missing history")
		}
	})
}

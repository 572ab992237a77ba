package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/dircrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      DIRECTORY CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target Directory: %s\n", report.Directory))
	sb.WriteString(fmt.Sprintf("Started:          %s\n", report.Started.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", report.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Max Depth:        %d\n", report.MaxDepth))
	sb.WriteString(fmt.Sprintf("Page Budget:      %d\n", report.MaxPages))
	sb.WriteString(fmt.Sprintf("Status:           %s\n", statusText(report)))
	sb.WriteString("\n")
}

// writeSummary writes the outcome summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  SAVED:  %d\n", report.SuccessCount()))
	sb.WriteString(fmt.Sprintf("  FAILED: %d\n", report.FailureCount()))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:  %d pages\n", report.TotalPages()))
	sb.WriteString("\n")
}

// writePages writes the per-page list of successfully saved pages.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	if report.SuccessCount() == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SAVED PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.SuccessCount() == 0 {
		sb.WriteString("  No pages saved\n")
	} else {
		for _, rec := range report.Records {
			if !rec.Success {
				continue
			}
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", rec.Depth, rec.URL))
			if w.verbose {
				if rec.Title != "" {
					sb.WriteString(fmt.Sprintf("      Title: %s\n", rec.Title))
				}
				if rec.FilePath != "" {
					sb.WriteString(fmt.Sprintf("      File:  %s (%d chars)\n", rec.FilePath, rec.ContentLength))
				}
			}
		}
	}
	sb.WriteString("\n")
}

// writeFailures writes the list of pages whose fetch failed.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.CrawlReport) {
	if report.FailureCount() == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.FailureCount() == 0 {
		sb.WriteString("  No failures\n")
	} else {
		for _, rec := range report.Records {
			if rec.Success {
				continue
			}
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", rec.Depth, rec.URL))
			sb.WriteString(fmt.Sprintf("      Error: %s\n", rec.Error))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by dircrawl\n")
	sb.WriteString("https://github.com/nao1215/dircrawl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

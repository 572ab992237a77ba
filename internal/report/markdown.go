package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/dircrawl/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This is the format of the report file written into the crawl output
// directory, and it also suits documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Directory Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target Directory", "`" + report.Directory + "`"},
			{"Started", report.Started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Max Depth", strconv.Itoa(report.MaxDepth)},
			{"Page Budget", strconv.Itoa(report.MaxPages)},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the success/failure summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"✅ Saved", strconv.Itoa(report.SuccessCount())},
			{"❌ Failed", strconv.Itoa(report.FailureCount())},
			{"**Total**", "**" + strconv.Itoa(report.TotalPages()) + "**"},
		},
	})
	md.PlainText("")

	if report.FailureCount() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of the crawl outcome.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CrawlReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Crawl Outcome"),
		piechart.WithShowData(true),
	)

	if report.SuccessCount() > 0 {
		chart.LabelAndIntValue("Saved", uint64(report.SuccessCount()))
	}
	if report.FailureCount() > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.FailureCount()))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch {
	case report.Cancelled:
		md.Warningf(
			"The crawl was cancelled before completion. %d page(s) were saved before the stop.",
			report.SuccessCount(),
		)
	case report.FailureCount() > 0:
		md.Importantf(
			"%d page(s) could not be fetched. Their URLs are listed below with the error.",
			report.FailureCount(),
		)
	case report.TotalPages() == 0:
		md.Note("No pages were processed.")
	default:
		md.Tip("All discovered pages were fetched and saved.")
	}
	md.PlainText("")
}

// writePages writes the per-page result table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	if report.TotalPages() == 0 {
		md.PlainText("No pages were processed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, report.TotalPages())
	for _, rec := range report.Records {
		status := "✅"
		detail := "`" + rec.FilePath + "` (" + strconv.Itoa(rec.ContentLength) + " chars)"
		if !rec.Success {
			status = "❌"
			detail = truncateString(rec.Error, 60)
		} else if rec.FilePath == "" {
			detail = "not saved"
		}

		rows = append(rows, []string{
			status,
			strconv.Itoa(rec.Depth),
			rec.URL,
			detail,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Depth", "URL", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [dircrawl](https://github.com/nao1215/dircrawl)*")
}

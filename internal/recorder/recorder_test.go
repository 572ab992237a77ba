package recorder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestSafeFileName tests file name derivation from URLs.
func TestSafeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "simple page",
			url:  "https://example.com/docs/install.html",
			want: "docs_install.html.md",
		},
		{
			name: "directory root maps to index",
			url:  "https://example.com/",
			want: "index.md",
		},
		{
			name: "no path maps to index",
			url:  "https://example.com",
			want: "index.md",
		},
		{
			name: "nested path flattens to underscores",
			url:  "https://example.com/docs/guide/advanced/tips.html",
			want: "docs_guide_advanced_tips.html.md",
		},
		{
			name: "query and fragment ignored",
			url:  "https://example.com/docs/page.html?v=2#top",
			want: "docs_page.html.md",
		},
		{
			name: "special characters become underscores",
			url:  "https://example.com/docs/a b(c).html",
			want: "docs_a_b_c_.html.md",
		},
		{
			name: "unicode letters survive",
			url:  "https://example.com/docs/befehlsübersicht.html",
			want: "docs_befehlsübersicht.html.md",
		},
		{
			name: "md extension not doubled",
			url:  "https://example.com/docs/readme.md",
			want: "docs_readme.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SafeFileName(tt.url); got != tt.want {
				t.Errorf("SafeFileName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}

	t.Run("long paths are truncated", func(t *testing.T) {
		t.Parallel()

		long := "https://example.com/" + strings.Repeat("abcdefghij/", 30) + "page.html"
		got := SafeFileName(long)

		if len([]rune(strings.TrimSuffix(got, ".md"))) > 100 {
			t.Errorf("expected at most 100 runes before extension, got %d", len([]rune(got)))
		}
		if !strings.HasSuffix(got, ".md") {
			t.Errorf("expected .md suffix, got %q", got)
		}
	})

	t.Run("composed and decomposed unicode map to same name", func(t *testing.T) {
		t.Parallel()

		composed := SafeFileName("https://example.com/café.html")
		decomposed := SafeFileName("https://example.com/café.html")

		if composed != decomposed {
			t.Errorf("expected identical names, got %q and %q", composed, decomposed)
		}
	})
}

// TestRecorderPersist tests page file writing.
func TestRecorderPersist(t *testing.T) {
	t.Parallel()

	t.Run("writes file with provenance header", func(t *testing.T) {
		t.Parallel()

		rec, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec.now = func() time.Time {
			return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
		}

		path, err := rec.Persist("https://example.com/docs/a.html", 1, "Page A", "Body text here.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read persisted file: %v", err)
		}
		content := string(data)

		for _, want := range []string{
			"# Source: https://example.com/docs/a.html\n",
			"**Title**: Page A\n",
			"**Depth**: 1\n",
			"**Crawled at**: 2026-03-14T09:30:00Z\n",
			"---\n",
			"Body text here.",
		} {
			if !strings.Contains(content, want) {
				t.Errorf("expected file to contain %q, got:\n%s", want, content)
			}
		}
	})

	t.Run("empty text writes placeholder", func(t *testing.T) {
		t.Parallel()

		rec, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		path, err := rec.Persist("https://example.com/docs/empty.html", 0, "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read persisted file: %v", err)
		}
		if !strings.Contains(string(data), "No content") {
			t.Error("expected placeholder for empty content")
		}
		if strings.Contains(string(data), "**Title**") {
			t.Error("expected no title line when title is empty")
		}
	})

	t.Run("creates missing output directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "out")
		rec, err := New(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(dir); err != nil {
			t.Errorf("expected output directory to exist: %v", err)
		}
		if rec.Dir() != dir {
			t.Errorf("expected Dir() %q, got %q", dir, rec.Dir())
		}
		if rec.ReportPath() != filepath.Join(dir, ReportFileName) {
			t.Errorf("unexpected report path %q", rec.ReportPath())
		}
	})
}

// TestDefaultOutputDir tests output directory naming.
func TestDefaultOutputDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "directory path",
			url:  "https://www.runoob.com/git/",
			want: "crawled_www.runoob.com_git",
		},
		{
			name: "nested directory",
			url:  "https://example.com/docs/v2/",
			want: "crawled_example.com_docs_v2",
		},
		{
			name: "host root",
			url:  "https://example.com/",
			want: "crawled_example.com_root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DefaultOutputDir(tt.url); got != tt.want {
				t.Errorf("DefaultOutputDir(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

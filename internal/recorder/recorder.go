package recorder

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// ReportFileName is the name of the crawl report written alongside
	// the page files. The leading underscore sorts it before the pages.
	ReportFileName = "_CRAWL_REPORT.md"

	// maxFileNameRunes bounds generated file names, leaving headroom for
	// the extension under common 255-byte filesystem limits.
	maxFileNameRunes = 100
)

// Recorder writes page files into a single output directory.
type Recorder struct {
	// dir is the output directory. It exists once New returns.
	dir string

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// New creates a Recorder writing into dir, creating it when missing.
func New(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Recorder{dir: dir, now: time.Now}, nil
}

// Dir returns the output directory path.
func (r *Recorder) Dir() string {
	return r.dir
}

// ReportPath returns the path of the crawl report file.
func (r *Recorder) ReportPath() string {
	return filepath.Join(r.dir, ReportFileName)
}

// Persist writes one page's text to a file named after its URL and
// returns the file path. A provenance header precedes the content.
func (r *Recorder) Persist(pageURL string, depth int, title, text string) (string, error) {
	path := filepath.Join(r.dir, SafeFileName(pageURL))

	var b strings.Builder
	b.WriteString("# Source: " + pageURL + "\n")
	if title != "" {
		b.WriteString("**Title**: " + title + "\n")
	}
	fmt.Fprintf(&b, "**Depth**: %d\n", depth)
	b.WriteString("**Crawled at**: " + r.now().Format(time.RFC3339) + "\n\n")
	b.WriteString("---\n\n")
	if text == "" {
		text = "No content"
	}
	b.WriteString(text)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return "", fmt.Errorf("failed to write page file %s: %w", path, err)
	}

	return path, nil
}

// SafeFileName derives a filesystem-safe Markdown file name from a URL.
//
// The URL path is NFC-normalized so visually identical names from
// differently-composed Unicode map to the same file. Slashes become
// underscores, any rune outside letters, digits, '-', '_' and '.' becomes
// an underscore, and the result is truncated to a fixed rune budget. An
// empty path (the directory root) maps to "index.md".
func SafeFileName(pageURL string) string {
	path := ""
	if u, err := url.Parse(pageURL); err == nil {
		path = u.Path
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = "index"
	}

	path = norm.NFC.String(path)
	path = strings.ReplaceAll(path, "/", "_")

	var b strings.Builder
	for _, r := range path {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()

	if runes := []rune(name); len(runes) > maxFileNameRunes {
		name = string(runes[:maxFileNameRunes])
	}

	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}

	return name
}

// DefaultOutputDir derives the output directory name for a target
// directory URL: crawled_<host>_<path with slashes replaced>, or
// crawled_<host>_root when the target is the host root.
func DefaultOutputDir(directoryURL string) string {
	u, err := url.Parse(directoryURL)
	if err != nil {
		return "crawled_output"
	}

	dirName := strings.Trim(u.Path, "/")
	dirName = strings.ReplaceAll(dirName, "/", "_")
	if dirName == "" {
		dirName = "root"
	}

	return fmt.Sprintf("crawled_%s_%s", u.Host, dirName)
}

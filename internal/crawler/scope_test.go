package crawler

import (
	"testing"
)

// TestNewScope tests scope construction from a directory URL.
func TestNewScope(t *testing.T) {
	t.Parallel()

	t.Run("appends trailing slash to path", func(t *testing.T) {
		t.Parallel()

		scope, err := NewScope("https://docs.example.com/guide")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if scope.PathPrefix != "/guide/" {
			t.Errorf("expected path prefix '/guide/', got %q", scope.PathPrefix)
		}
		if scope.RootURL() != "https://docs.example.com/guide/" {
			t.Errorf("unexpected root URL %q", scope.RootURL())
		}
	})

	t.Run("keeps existing trailing slash", func(t *testing.T) {
		t.Parallel()

		scope, err := NewScope("http://example.com/docs/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if scope.PathPrefix != "/docs/" {
			t.Errorf("expected path prefix '/docs/', got %q", scope.PathPrefix)
		}
	})

	t.Run("host root gets single-slash prefix", func(t *testing.T) {
		t.Parallel()

		scope, err := NewScope("https://example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if scope.PathPrefix != "/" {
			t.Errorf("expected path prefix '/', got %q", scope.PathPrefix)
		}
		if scope.RootURL() != "https://example.com/" {
			t.Errorf("unexpected root URL %q", scope.RootURL())
		}
	})

	t.Run("rejects unsupported scheme", func(t *testing.T) {
		t.Parallel()

		if _, err := NewScope("ftp://example.com/pub/"); err == nil {
			t.Error("expected error for ftp scheme, got nil")
		}
	})

	t.Run("rejects URL without host", func(t *testing.T) {
		t.Parallel()

		if _, err := NewScope("https:///docs/"); err == nil {
			t.Error("expected error for missing host, got nil")
		}
	})
}

// TestScopeNormalize tests link canonicalization.
func TestScopeNormalize(t *testing.T) {
	t.Parallel()

	scope, err := NewScope("https://example.com/docs/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := "https://example.com/docs/guide/index.html"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips fragment",
			raw:  "https://example.com/docs/a.html#section-2",
			want: "https://example.com/docs/a.html",
		},
		{
			name: "protocol-relative gets scope scheme",
			raw:  "//example.com/docs/b.html",
			want: "https://example.com/docs/b.html",
		},
		{
			name: "root-relative gets scheme and host",
			raw:  "/docs/c.html",
			want: "https://example.com/docs/c.html",
		},
		{
			name: "relative resolves against base",
			raw:  "setup.html",
			want: "https://example.com/docs/guide/setup.html",
		},
		{
			name: "parent-relative resolves against base",
			raw:  "../api/ref.html",
			want: "https://example.com/docs/api/ref.html",
		},
		{
			name: "absolute passes through",
			raw:  "https://example.com/docs/d.html",
			want: "https://example.com/docs/d.html",
		},
		{
			name: "fragment with root-relative path",
			raw:  "/docs/e.html#top",
			want: "https://example.com/docs/e.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := scope.Normalize(tt.raw, base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}

			// Normalization is idempotent: a second pass is a no-op.
			again, err := scope.Normalize(got, base)
			if err != nil {
				t.Fatalf("unexpected error on second pass: %v", err)
			}
			if again != got {
				t.Errorf("second Normalize changed %q to %q", got, again)
			}
		})
	}
}

// TestScopeContains tests directory membership.
func TestScopeContains(t *testing.T) {
	t.Parallel()

	scope, err := NewScope("https://example.com/git/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "directory root", url: "https://example.com/git/", want: true},
		{name: "page inside directory", url: "https://example.com/git/basics.html", want: true},
		{name: "nested subdirectory", url: "https://example.com/git/advanced/rebase.html", want: true},
		{name: "sibling path sharing prefix characters", url: "https://example.com/gitx/page.html", want: false},
		{name: "parent directory", url: "https://example.com/", want: false},
		{name: "different host", url: "https://other.example.com/git/page.html", want: false},
		{name: "host case differs", url: "https://EXAMPLE.com/git/page.html", want: false},
		{name: "different scheme same tree", url: "http://example.com/git/page.html", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := scope.Contains(tt.url); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

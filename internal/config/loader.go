package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name searched for when no --config flag
// is given. It is a dotfile so a project checkout can carry per-site
// crawl settings without cluttering directory listings.
const DefaultConfigFile = ".dircrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads and decodes one site configuration file.
// A missing file yields ErrConfigNotFound so the caller can decide
// whether that is fatal (explicit --config path) or fine (default
// search came up empty).
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// A file without a sites section decodes with a nil map.
	// Normalize so host lookups never need a nil check.
	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	return &cf, nil
}

// FindConfigFile resolves which configuration file to load.
//
// An explicit configPath wins when the file exists; an explicit path
// that does not exist resolves to "" and the caller reports the error.
// Without an explicit path the first .dircrawl found is used, checking
// the working directory before the home directory so a project-local
// file shadows the user-wide one. Crawl history lives separately under
// the XDG data directory and is not part of this search.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Package config holds every tunable default of the tool in one place.
//
// Values are resolved in three layers: Default(), then an optional TOML
// file, then command-line flags applied by the caller. The resulting Config
// is passed explicitly into the indexing, search and web entry points.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	"file_search_go/models"
)

// Version is the release version, overridden at build time with -ldflags.
var Version = "0.1.0"

// Engines accepted for new stores.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// Config is the root configuration.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Index   IndexConfig   `toml:"index"`
	Search  SearchConfig  `toml:"search"`
	Web     WebConfig     `toml:"web"`
	History HistoryConfig `toml:"history"`
}

// StoreConfig describes store files.
type StoreConfig struct {
	// Driver is the engine used when a new store is created.
	Driver string `toml:"driver"`
	// Suffix identifies store files during discovery.
	Suffix string `toml:"suffix"`
	// DefaultName is the file name used when no store path is given.
	DefaultName string `toml:"default_name"`
}

// IndexConfig holds indexing defaults.
type IndexConfig struct {
	BatchSize    int  `toml:"batch_size"`
	WithMetadata bool `toml:"with_metadata"`
	// Workers bounds concurrent scanner goroutines.
	Workers int `toml:"workers"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Limit         int    `toml:"limit"`
	RootLabel     string `toml:"root_label"`
	Selector      string `toml:"selector"`
	NameOnly      bool   `toml:"name_only"`
	CaseSensitive bool   `toml:"case_sensitive"`
}

// WebConfig holds the HTTP server settings.
type WebConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

// HistoryConfig controls search history persistence.
type HistoryConfig struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:      DriverDuckDB,
			Suffix:      ".fsearch.db",
			DefaultName: ".fsearch.db",
		},
		Index: IndexConfig{
			BatchSize:    5000,
			WithMetadata: true,
			Workers:      runtime.GOMAXPROCS(0) * 4,
		},
		Search: SearchConfig{
			Limit:     2000,
			RootLabel: "Search results",
			Selector:  "all",
		},
		Web: WebConfig{
			Bind: "0.0.0.0",
			Port: 3000,
		},
		History: HistoryConfig{
			Enabled:    true,
			Path:       defaultHistoryPath(),
			MaxEntries: 100,
		},
	}
}

// DefaultPath returns the location of the user config file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".file-search.toml"
	}
	return filepath.Join(dir, "file-search", "config.toml")
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".file-search-history.json"
	}
	return filepath.Join(dir, "file-search", "search_history.json")
}

// Load returns Default() overlaid with the TOML file at path.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// SearchOptions returns the per-invocation search settings derived from c.
func (c *Config) SearchOptions() models.SearchConfig {
	return models.SearchConfig{
		MaxResults:    c.Search.Limit,
		SearchInPath:  !c.Search.NameOnly,
		CaseSensitive: c.Search.CaseSensitive,
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverDuckDB, DriverSQLite:
	default:
		return fmt.Errorf("invalid store driver %q", c.Store.Driver)
	}
	if c.Store.Suffix == "" {
		return errors.New("store suffix must not be empty")
	}
	if c.Index.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.Index.BatchSize)
	}
	if c.Index.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Index.Workers)
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("search limit must be at least 1, got %d", c.Search.Limit)
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Web.Port)
	}
	if c.History.Enabled && c.History.MaxEntries < 1 {
		return fmt.Errorf("history max entries must be at least 1, got %d", c.History.MaxEntries)
	}
	return nil
}

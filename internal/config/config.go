// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and LADDER_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/ladder/internal/domain/category"
)

// DefaultSourceURL is the published sheet endpoint of the TW ranking.
const DefaultSourceURL = "https://script.google.com/macros/s/AKfycbxvB4T6ndgWqRlJIovqKqqdNOHlnfw4uevMhHw35MbBjmDNw_7_beKoy-xQQV5jQXn9/exec"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SourceURL is the sheet JSON endpoint. Ignored when SourceFile is set.
	SourceURL string `koanf:"source_url"`

	// SheetKey names the array in the endpoint payload, and the workbook
	// sheet when reading SourceFile.
	SheetKey string `koanf:"sheet_key"`

	// SourceFile points at an .xlsx export used instead of SourceURL.
	SourceFile string `koanf:"source_file"`

	// FetchTimeoutMS bounds one upstream fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// DefaultViewLimit caps the all-tabs view.
	DefaultViewLimit int `koanf:"default_view_limit"`

	// LoaderWorkers sets the number of loader workers.
	LoaderWorkers int `koanf:"loader_workers"`

	// ReloadQueueSize bounds pending load requests.
	ReloadQueueSize int `koanf:"reload_queue_size"`

	// TopLevelSubGroups lists jobs on the default tab.
	TopLevelSubGroups bool `koanf:"top_level_subgroups"`

	// SubGroupTabs lists tabs split into jobs; empty means all non-zero tabs.
	SubGroupTabs []int `koanf:"subgroup_tabs"`

	// TabLabels overrides tab display labels.
	TabLabels map[int]string `koanf:"tab_labels"`

	// JobOrders overrides the canonical job order per tab.
	JobOrders map[int][]string `koanf:"job_orders"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is currently unused.
func New(_ context.Context) *Config {
	cat := category.DefaultCatalog()
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		SourceURL:         DefaultSourceURL,
		SheetKey:          "tw_data",
		FetchTimeoutMS:    15_000,
		DefaultViewLimit:  100,
		LoaderWorkers:     1,
		ReloadQueueSize:   1,
		TopLevelSubGroups: cat.TopLevelSubGroups,
		SubGroupTabs:      cat.SubGroupTabs,
		TabLabels:         cat.Labels,
		JobOrders:         cat.Orders,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// Catalog builds the category catalog described by c.
func (c *Config) Catalog() category.Catalog {
	return category.Catalog{
		Labels:            c.TabLabels,
		Orders:            c.JobOrders,
		SubGroupTabs:      c.SubGroupTabs,
		TopLevelSubGroups: c.TopLevelSubGroups,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.SourceURL == "" && c.SourceFile == "":
		return fmt.Errorf("one of source_url or source_file is required: %w", ErrInvalidConfig)
	case c.SourceFile == "" && c.SheetKey == "":
		return fmt.Errorf("sheet_key must not be empty: %w", ErrInvalidConfig)
	case c.DefaultViewLimit <= 0:
		return fmt.Errorf("default_view_limit must be positive, got %d: %w", c.DefaultViewLimit, ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("fetch_timeout_ms must be positive, got %d: %w", c.FetchTimeoutMS, ErrInvalidConfig)
	case c.LoaderWorkers < 1:
		return fmt.Errorf("loader_workers must be at least 1, got %d: %w", c.LoaderWorkers, ErrInvalidConfig)
	case c.ReloadQueueSize < 1:
		return fmt.Errorf("reload_queue_size must be at least 1, got %d: %w", c.ReloadQueueSize, ErrInvalidConfig)
	}
	return nil
}

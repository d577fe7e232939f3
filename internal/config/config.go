package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default tuning constants. The title-similarity thresholds are empirically
// tuned defaults, exposed through ExportConfig rather than hard-coded at the
// point of use.
const (
	DefaultLibDir             = "lib"
	DefaultIgnoreFile         = ".webvaultignore"
	DefaultTitleProperty      = "title"
	DefaultTitleSimilarityH1  = 0.80
	DefaultTitleSimilarityH2  = 0.92
	DefaultTitleHeadingWindow = 3
	DefaultWatchDebounce      = 500 * time.Millisecond
)

// Load reads, defaults, normalizes, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Vault.Path == "" {
		c.Vault.Path = "."
	}
	if c.Vault.IgnoreFile == "" {
		c.Vault.IgnoreFile = DefaultIgnoreFile
	}
	if c.Site.TitleProperty == "" {
		c.Site.TitleProperty = DefaultTitleProperty
	}
	if c.Site.VaultName == "" {
		c.Site.VaultName = filepath.Base(absOrSelf(c.Vault.Path))
	}
	if c.Site.Name == "" {
		c.Site.Name = c.Site.VaultName
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "./site"
	}
	if c.Export.Mode == "" {
		c.Export.Mode = OutputModeSite
	}
	if c.Export.AnchorLinks == "" {
		c.Export.AnchorLinks = AnchorLinksRelative
	}
	if c.Export.LibDir == "" {
		c.Export.LibDir = DefaultLibDir
	}
	if c.Export.TitleSimilarityH1 == 0 {
		c.Export.TitleSimilarityH1 = DefaultTitleSimilarityH1
	}
	if c.Export.TitleSimilarityH2 == 0 {
		c.Export.TitleSimilarityH2 = DefaultTitleSimilarityH2
	}
	if c.Export.TitleHeadingWindow == 0 {
		c.Export.TitleHeadingWindow = DefaultTitleHeadingWindow
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = DefaultWatchDebounce.String()
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "webvault.export"
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9477"
	}
}

// Normalize coerces stringly-typed fields into their canonical forms.
func (c *Config) Normalize() {
	c.Export.Mode = OutputMode(strings.ToLower(strings.TrimSpace(string(c.Export.Mode))))
	c.Export.AnchorLinks = AnchorLinkMode(strings.ToLower(strings.TrimSpace(string(c.Export.AnchorLinks))))
	c.Site.BaseURL = strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/")
	c.Export.LibDir = strings.Trim(c.Export.LibDir, "/")
}

// Validate checks invariants that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Export.Mode {
	case OutputModeSite, OutputModeCombined:
	default:
		return fmt.Errorf("invalid export mode %q (want site|combined)", c.Export.Mode)
	}
	switch c.Export.AnchorLinks {
	case AnchorLinksRelative, AnchorLinksAbsolute:
	default:
		return fmt.Errorf("invalid anchor_links %q (want relative|absolute)", c.Export.AnchorLinks)
	}
	if c.Export.TitleSimilarityH1 < 0 || c.Export.TitleSimilarityH1 > 1 {
		return fmt.Errorf("title_similarity_h1 must be within [0,1], got %v", c.Export.TitleSimilarityH1)
	}
	if c.Export.TitleSimilarityH2 < 0 || c.Export.TitleSimilarityH2 > 1 {
		return fmt.Errorf("title_similarity_h2 must be within [0,1], got %v", c.Export.TitleSimilarityH2)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
	}
	if c.Watch.Interval != "" {
		if _, err := time.ParseDuration(c.Watch.Interval); err != nil {
			return fmt.Errorf("invalid watch interval %q: %w", c.Watch.Interval, err)
		}
	}
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("events enabled but nats_url is empty")
	}
	return nil
}

// WatchDebounce returns the parsed debounce duration.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return DefaultWatchDebounce
	}
	return d
}

// WatchInterval returns the parsed scheduling interval, zero when unset.
func (c *Config) WatchInterval() time.Duration {
	if c.Watch.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Watch.Interval)
	if err != nil {
		return 0
	}
	return d
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// WriteStarter writes a commented starter configuration to path. Used by the
// init command; refuses to overwrite unless force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}
	return os.WriteFile(path, []byte(starterYAML), 0o644)
}

const starterYAML = `# webvault configuration
vault:
  path: .
  # include: [notes, projects]
  # git_dates: true
  # respect_publish_flag: true

site:
  name: My Vault
  # base_url: https://notes.example.com
  # description: Published notes
  # title_property: title

export:
  output_dir: ./site
  mode: site # site | combined
  web_style_names: false
  # anchor_links: relative

features:
  search: true
  navigation_tree: true
  graph_view: true
  theme_toggle: true
  backlinks: true
  tags: true
  rss: false
`

package config

// Config is the root configuration for a vault export, loaded from
// webvault.yaml. Zero values trigger sensible defaults (applied in Load).
type Config struct {
	Vault    VaultConfig    `yaml:"vault"`
	Site     SiteConfig     `yaml:"site"`
	Export   ExportConfig   `yaml:"export"`
	Features FeaturesConfig `yaml:"features"`
	Watch    WatchConfig    `yaml:"watch,omitempty"`
	Events   EventsConfig   `yaml:"events,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
}

// VaultConfig describes the source tree being exported.
type VaultConfig struct {
	// Path is the vault root directory. Defaults to the current directory.
	Path string `yaml:"path"`
	// Include restricts the export to specific paths below the root.
	// Empty means the whole vault. The export root is still auto-detected as
	// the deepest common ancestor of the selected files.
	Include []string `yaml:"include,omitempty"`
	// IgnoreFile names the glob-pattern ignore file looked up at the vault
	// root. Defaults to ".webvaultignore".
	IgnoreFile string `yaml:"ignore_file,omitempty"`
	// GitDates, when true and the vault root is a git repository, derives
	// page created/modified timestamps from git history instead of file stat.
	GitDates bool `yaml:"git_dates,omitempty"`
	// RespectPublishFlag skips documents whose frontmatter sets publish: false.
	RespectPublishFlag bool `yaml:"respect_publish_flag,omitempty"`
}

// SiteConfig holds site identity used in page heads, the manifest, and RSS.
type SiteConfig struct {
	Name        string `yaml:"name"`
	VaultName   string `yaml:"vault_name,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
	// TitleProperty selects the frontmatter key consulted first for page
	// titles. Defaults to "title".
	TitleProperty string `yaml:"title_property,omitempty"`
}

// OutputMode selects between many linked files and one combined document.
type OutputMode string

const (
	OutputModeSite     OutputMode = "site"     // one HTML file per page (default)
	OutputModeCombined OutputMode = "combined" // single self-contained HTML document
)

// AnchorLinkMode selects how in-page heading anchors are emitted.
type AnchorLinkMode string

const (
	AnchorLinksRelative AnchorLinkMode = "relative" // #heading, scoped to the current page
	AnchorLinksAbsolute AnchorLinkMode = "absolute" // page.html#heading, globally prefixed
)

// ExportConfig holds the export pipeline knobs.
type ExportConfig struct {
	// OutputDir is the destination directory for the exported site.
	OutputDir string `yaml:"output_dir"`
	// Mode selects multi-file vs combined output. Defaults to site.
	Mode OutputMode `yaml:"mode,omitempty"`
	// WebStyleNames transliterates every target path segment to a lowercase
	// ASCII hyphenated slug. Applied to filenames and directories alike so
	// every reference updates in lock-step.
	WebStyleNames bool `yaml:"web_style_names,omitempty"`
	// InlineAssets embeds CSS/JS into each page instead of linking them.
	InlineAssets bool `yaml:"inline_assets,omitempty"`
	// AnchorLinks selects relative vs absolute in-page anchor links.
	AnchorLinks AnchorLinkMode `yaml:"anchor_links,omitempty"`
	// AutoDisposePages frees built page documents after save, trading memory
	// for a re-render if the page is needed again in the same run.
	AutoDisposePages bool `yaml:"auto_dispose_pages,omitempty"`
	// LibDir is the reserved subfolder for site-wide artifacts (manifest,
	// search index, assets) so they never collide with user content names.
	// Defaults to "lib".
	LibDir string `yaml:"lib_dir,omitempty"`
	// TitleSimilarityH1 and TitleSimilarityH2 are the edit-distance ratio
	// thresholds above which a leading heading is considered "the same" as
	// the derived title and promoted. H2 requires a closer match than H1.
	TitleSimilarityH1 float64 `yaml:"title_similarity_h1,omitempty"`
	TitleSimilarityH2 float64 `yaml:"title_similarity_h2,omitempty"`
	// TitleHeadingWindow is how many leading sibling elements are scanned for
	// a top-level heading to adopt as the page title.
	TitleHeadingWindow int `yaml:"title_heading_window,omitempty"`
}

// FeaturesConfig enables or disables injected site features.
type FeaturesConfig struct {
	Search         bool   `yaml:"search"`
	GraphView      bool   `yaml:"graph_view"`
	NavigationTree bool   `yaml:"navigation_tree"`
	ThemeToggle    bool   `yaml:"theme_toggle"`
	Backlinks      bool   `yaml:"backlinks"`
	Tags           bool   `yaml:"tags"`
	RSS            bool   `yaml:"rss"`
	CustomHeadPath string `yaml:"custom_head_path,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// Debounce is the quiet period after the last file event before a
	// re-export is triggered. Duration string, defaults to "500ms".
	Debounce string `yaml:"debounce,omitempty"`
	// Interval, when non-empty, additionally schedules a full re-export at a
	// fixed period (duration string, e.g. "10m").
	Interval string `yaml:"interval,omitempty"`
}

// EventsConfig configures the optional export-event publisher.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// MetricsConfig configures the optional Prometheus endpoint in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Listen  string `yaml:"listen,omitempty"`
}

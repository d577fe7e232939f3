package index

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ManifestVersion is bumped whenever the persisted manifest layout changes.
const ManifestVersion = 1

// FeatureSnapshot records which injected site features were enabled for the
// run that produced the manifest.
type FeatureSnapshot struct {
	Search         bool `json:"search"`
	GraphView      bool `json:"graph_view"`
	NavigationTree bool `json:"navigation_tree"`
	ThemeToggle    bool `json:"theme_toggle"`
	Backlinks      bool `json:"backlinks"`
	Tags           bool `json:"tags"`
	RSS            bool `json:"rss"`
}

// SiteManifest is the persisted record of one export destination: the
// source-to-target path table, site identity, and run bookkeeping. The
// mapping is bijective and stable across runs, so target paths assigned once
// keep their value until the source file is renamed or removed.
type SiteManifest struct {
	Version         int               `json:"version"`
	RunID           string            `json:"run_id"`
	SiteName        string            `json:"site_name"`
	VaultName       string            `json:"vault_name,omitempty"`
	BaseURL         string            `json:"base_url,omitempty"`
	ExporterVersion string            `json:"exporter_version"`
	CreatedAt       time.Time         `json:"created_at"`
	ModifiedAt      time.Time         `json:"modified_at"`
	Features        FeatureSnapshot   `json:"features"`
	SourceToTarget  map[string]string `json:"source_to_target"`
	Targets         []string          `json:"targets"`
}

// NewSiteManifest starts a manifest for a fresh export destination.
func NewSiteManifest(siteName, vaultName, baseURL, exporterVersion string) *SiteManifest {
	now := time.Now().UTC()
	return &SiteManifest{
		Version:         ManifestVersion,
		RunID:           uuid.New().String(),
		SiteName:        siteName,
		VaultName:       vaultName,
		BaseURL:         baseURL,
		ExporterVersion: exporterVersion,
		CreatedAt:       now,
		ModifiedAt:      now,
		SourceToTarget:  map[string]string{},
	}
}

// TouchRun stamps a new run onto an existing manifest, keeping CreatedAt.
func (m *SiteManifest) TouchRun(exporterVersion string) {
	m.Version = ManifestVersion
	m.RunID = uuid.New().String()
	m.ExporterVersion = exporterVersion
	m.ModifiedAt = time.Now().UTC()
	if m.SourceToTarget == nil {
		m.SourceToTarget = map[string]string{}
	}
}

// SetMapping replaces the persisted path table and rebuilds the sorted
// target list so serialization stays deterministic.
func (m *SiteManifest) SetMapping(sourceToTarget map[string]string) {
	m.SourceToTarget = sourceToTarget
	m.Targets = m.Targets[:0]
	for _, target := range sourceToTarget {
		m.Targets = append(m.Targets, target)
	}
	sort.Strings(m.Targets)
}

// ToJSON serializes the manifest. Map keys and the target list are sorted,
// so two runs over identical sources produce identical bytes apart from the
// run ID and modified timestamp.
func (m *SiteManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// ManifestFromJSON deserializes a persisted manifest.
func ManifestFromJSON(data []byte) (*SiteManifest, error) {
	var m SiteManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if m.Version > ManifestVersion {
		return nil, fmt.Errorf("manifest version %d newer than supported %d", m.Version, ManifestVersion)
	}
	if m.SourceToTarget == nil {
		m.SourceToTarget = map[string]string{}
	}
	return &m, nil
}

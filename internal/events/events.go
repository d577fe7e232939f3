// Package events publishes export lifecycle events to an optional NATS
// subject. When events are not configured the publisher degrades to a no-op,
// so callers never branch on configuration.
package events

import "time"

// Event types published over the run subject.
const (
	TypeRunStarted  = "run_started"
	TypePageBuilt   = "page_built"
	TypeRunFinished = "run_finished"
)

// RunStarted announces a new export run.
type RunStarted struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	SiteName  string    `json:"site_name"`
	VaultPath string    `json:"vault_path"`
	Timestamp time.Time `json:"timestamp"`
}

// PageBuilt announces one (re)built page.
type PageBuilt struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	SourcePath string    `json:"source_path"`
	TargetPath string    `json:"target_path"`
	Title      string    `json:"title"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// RunFinished announces the run summary.
type RunFinished struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	New        int       `json:"new"`
	Updated    int       `json:"updated"`
	Unmodified int       `json:"unmodified"`
	Failed     int       `json:"failed"`
	Warnings   int       `json:"warnings"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits export lifecycle events. Implementations must be safe to
// call from the single assembler task without further coordination.
type Publisher interface {
	PublishRunStarted(e RunStarted) error
	PublishPageBuilt(e PageBuilt) error
	PublishRunFinished(e RunFinished) error
	Close() error
}

// NoopPublisher is the default when events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRunStarted(RunStarted) error   { return nil }
func (NoopPublisher) PublishPageBuilt(PageBuilt) error     { return nil }
func (NoopPublisher) PublishRunFinished(RunFinished) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

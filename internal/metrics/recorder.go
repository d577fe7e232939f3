package metrics

import "time"

// PageOutcome enumerates per-page build results for counters.
type PageOutcome string

const (
	PageBuilt      PageOutcome = "built"
	PageUnmodified PageOutcome = "unmodified"
	PageFailed     PageOutcome = "failed"
)

// RunOutcome enumerates final export run statuses.
type RunOutcome string

const (
	RunSuccess  RunOutcome = "success"
	RunWarning  RunOutcome = "warning"
	RunFailed   RunOutcome = "failed"
	RunCanceled RunOutcome = "canceled"
)

// Recorder defines observability hooks for export runs. Implementations may
// forward to Prometheus or stay silent; all methods tolerate nil receivers so
// the recorder can be injected optionally.
type Recorder interface {
	ObservePageDuration(d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncPageOutcome(outcome PageOutcome)
	IncRunOutcome(outcome RunOutcome)
	IncUnresolvedLinks(n int)
	SetPagesTotal(n int)
}

// NoopRecorder is the default when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObservePageDuration(time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)  {}
func (NoopRecorder) IncPageOutcome(PageOutcome)        {}
func (NoopRecorder) IncRunOutcome(RunOutcome)          {}
func (NoopRecorder) IncUnresolvedLinks(int)            {}
func (NoopRecorder) SetPagesTotal(int)                 {}

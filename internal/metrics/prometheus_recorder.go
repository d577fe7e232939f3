package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	pageDuration    prom.Histogram
	runDuration     prom.Histogram
	pageOutcomes    *prom.CounterVec
	runOutcomes     *prom.CounterVec
	unresolvedLinks prom.Counter
	pagesTotal      prom.Gauge
}

// NewPrometheusRecorder constructs and registers the export metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.pageDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "webvault",
			Name:      "page_build_duration_seconds",
			Help:      "Duration of individual page builds",
			Buckets:   prom.DefBuckets,
		})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "webvault",
			Name:      "export_duration_seconds",
			Help:      "Total export run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.pageOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webvault",
			Name:      "page_outcomes_total",
			Help:      "Per-page build outcomes",
		}, []string{"outcome"})
		pr.runOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "webvault",
			Name:      "export_outcomes_total",
			Help:      "Export run outcomes by final status",
		}, []string{"outcome"})
		pr.unresolvedLinks = prom.NewCounter(prom.CounterOpts{
			Namespace: "webvault",
			Name:      "unresolved_links_total",
			Help:      "Links that resolved to nothing known to the site",
		})
		pr.pagesTotal = prom.NewGauge(prom.GaugeOpts{
			Namespace: "webvault",
			Name:      "pages_total",
			Help:      "Pages known to the site after the last run",
		})
		reg.MustRegister(pr.pageDuration, pr.runDuration, pr.pageOutcomes, pr.runOutcomes, pr.unresolvedLinks, pr.pagesTotal)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil || p.pageDuration == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageOutcome(outcome PageOutcome) {
	if p == nil || p.pageOutcomes == nil {
		return
	}
	p.pageOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcome) {
	if p == nil || p.runOutcomes == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncUnresolvedLinks(n int) {
	if p == nil || p.unresolvedLinks == nil || n <= 0 {
		return
	}
	p.unresolvedLinks.Add(float64(n))
}

func (p *PrometheusRecorder) SetPagesTotal(n int) {
	if p == nil || p.pagesTotal == nil {
		return
	}
	p.pagesTotal.Set(float64(n))
}

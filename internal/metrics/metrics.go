// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so components take it as an optional
// dependency.
type Metrics struct {
	pollsTotal       *prometheus.CounterVec
	scansTotal       *prometheus.CounterVec
	alertsSentTotal  *prometheus.CounterVec
	impactsTotal     *prometheus.CounterVec
	impactDuration   prometheus.Histogram
	usagesScanned    prometheus.Counter
	versionsDetected prometheus.Counter
}

// New creates the collectors and registers them on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "specwatch_polls_total",
			Help: "Poll attempts by result.",
		}, []string{"result"}),
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "specwatch_repository_scans_total",
			Help: "Repository scans by result.",
		}, []string{"result"}),
		alertsSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "specwatch_alerts_sent_total",
			Help: "Alerts dispatched by kind.",
		}, []string{"kind"}),
		impactsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "specwatch_impact_analyses_total",
			Help: "Impact analyses by outcome and severity.",
		}, []string{"has_impact", "severity"}),
		impactDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "specwatch_impact_analysis_duration_seconds",
			Help:    "Wall time of one impact analysis.",
			Buckets: prometheus.DefBuckets,
		}),
		usagesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "specwatch_endpoint_usages_found_total",
			Help: "Endpoint usages produced by repository scans.",
		}),
		versionsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "specwatch_spec_versions_detected_total",
			Help: "New spec versions detected by the poller.",
		}),
	}

	reg.MustRegister(
		m.pollsTotal,
		m.scansTotal,
		m.alertsSentTotal,
		m.impactsTotal,
		m.impactDuration,
		m.usagesScanned,
		m.versionsDetected,
	)
	return m
}

// RecordPoll counts one poll attempt: "changed", "unchanged", or "failed".
func (m *Metrics) RecordPoll(result string) {
	if m == nil {
		return
	}
	m.pollsTotal.WithLabelValues(result).Inc()
}

// RecordScan counts one repository scan: "completed" or "failed".
func (m *Metrics) RecordScan(result string, usagesFound int) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(result).Inc()
	if usagesFound > 0 {
		m.usagesScanned.Add(float64(usagesFound))
	}
}

// RecordAlert counts one dispatched alert by kind.
func (m *Metrics) RecordAlert(kind string) {
	if m == nil {
		return
	}
	m.alertsSentTotal.WithLabelValues(kind).Inc()
}

// RecordImpact counts one completed impact analysis.
func (m *Metrics) RecordImpact(hasImpact bool, severity string, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if hasImpact {
		label = "true"
	}
	m.impactsTotal.WithLabelValues(label, severity).Inc()
	m.impactDuration.Observe(elapsed.Seconds())
}

// RecordVersionDetected counts one new spec version.
func (m *Metrics) RecordVersionDetected() {
	if m == nil {
		return
	}
	m.versionsDetected.Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts branch cache effectiveness.
type Metrics struct {
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheErrors   prometheus.Counter
	UpstreamCalls *prometheus.CounterVec
}

// New registers branch metrics on reg (the default registry when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_branch_cache_hits_total",
			Help: "Branch lookups served from cache",
		}, []string{"op"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_branch_cache_misses_total",
			Help: "Branch lookups not found in cache",
		}, []string{"op"}),
		CacheErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_branch_cache_errors_total",
			Help: "Cache backend failures that fell back to the directory",
		}),
		UpstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_branch_directory_calls_total",
			Help: "Calls made to the upstream branch directory",
		}, []string{"op"}),
	}
}

func (m *Metrics) IncHit(op string) {
	if m != nil {
		m.CacheHits.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IncMiss(op string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IncError() {
	if m != nil {
		m.CacheErrors.Inc()
	}
}

func (m *Metrics) IncUpstream(op string) {
	if m != nil {
		m.UpstreamCalls.WithLabelValues(op).Inc()
	}
}

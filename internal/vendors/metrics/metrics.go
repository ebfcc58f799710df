package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments vendor submission, processing and the worker queue.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	Outcomes         *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	QueueDepth       prometheus.Gauge
	JobsProcessed    *prometheus.CounterVec
	EventsFailed     prometheus.Counter
}

// New registers vendor metrics on reg (the default registry when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_vendor_submissions_total",
			Help: "Vendor creation submissions by result",
		}, []string{"result"}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_vendor_processing_outcomes_total",
			Help: "Terminal processing outcomes by status and error code",
		}, []string{"status", "code"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_vendor_pipeline_duration_seconds",
			Help:    "Time from pipeline start to the terminal write",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "roster_vendor_queue_depth",
			Help: "Vendor creation jobs waiting for a worker",
		}),
		JobsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_vendor_jobs_processed_total",
			Help: "Jobs run by the dispatcher by result",
		}, []string{"result"}),
		EventsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_vendor_events_failed_total",
			Help: "Lifecycle events that could not be published",
		}),
	}
}

func (m *Metrics) IncSubmission(result string) {
	if m != nil {
		m.Submissions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveOutcome(status, code string, start time.Time) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(status, code).Inc()
	m.PipelineDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}

func (m *Metrics) IncJob(result string) {
	if m != nil {
		m.JobsProcessed.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncEventFailed() {
	if m != nil {
		m.EventsFailed.Inc()
	}
}

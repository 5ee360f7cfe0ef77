package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	lastScore   *prometheus.GaugeVec
	scores      prometheus.Histogram
	alerts      *prometheus.CounterVec
}

// New registers the recorder's collectors on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder's collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ara_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ara_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		lastScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ara_last_score",
				Help: "Last composite ARA score per instrument",
			},
			[]string{"instrument"},
		),
		scores: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ara_score",
				Help:    "Distribution of composite ARA scores",
				Buckets: []float64{10, 20, 35, 55, 75, 90, 100},
			},
		),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ara_alerts_total",
				Help: "Evaluations by resulting alert level",
			},
			[]string{"level"},
		),
	}
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordScore(instrument string, score int) {
	r.lastScore.WithLabelValues(instrument).Set(float64(score))
	r.scores.Observe(float64(score))
}

func (r *Recorder) RecordAlert(level string) {
	r.alerts.WithLabelValues(level).Inc()
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordError(string)            {}
func (Noop) RecordLatency(string, float64) {}
func (Noop) RecordScore(string, int)       {}
func (Noop) RecordAlert(string)            {}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	MarketDataLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ara",
			Subsystem: "marketdata",
			Name:      "latency_seconds",
			Help:      "Latency of upstream market-data requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	MarketDataErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ara",
			Subsystem: "marketdata",
			Name:      "errors_total",
			Help:      "Failed upstream market-data requests by source",
		},
		[]string{"source"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ara",
			Subsystem: "marketdata",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// Register adds the market-data collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(MarketDataLatency, MarketDataErrors, BreakerState)
	})
}

package client

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus metrics for the connection manager.
type metrics struct {
	eventsTotal   *prometheus.CounterVec
	decodeErrors  prometheus.Counter
	framesSent    prometheus.Counter
	sendDrops     prometheus.Counter
	reconnects    prometheus.Counter
	forcedLogouts prometheus.Counter
	applyDuration prometheus.Histogram
}

// Metrics register against the default registerer once per process.
var (
	globalMetrics     *metrics
	globalMetricsOnce sync.Once
)

func clientMetrics() *metrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = initMetrics(prometheus.DefaultRegisterer)
	})
	return globalMetrics
}

func initMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "client",
			Name:      "events_total",
			Help:      "Total number of server events applied, by variant",
		}, []string{"event"}),

		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "client",
			Name:      "decode_errors_total",
			Help:      "Total number of inbound frames that failed to decode",
		}),

		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "client",
			Name:      "frames_sent_total",
			Help:      "Total number of client events written to the socket",
		}),

		sendDrops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "client",
			Name:      "send_drops_total",
			Help:      "Total number of client events dropped without transmission",
		}),

		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "client",
			Name:      "reconnects_total",
			Help:      "Total number of reconnect attempts after transport failures",
		}),

		forcedLogouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Subsystem: "client",
			Name:      "forced_logouts_total",
			Help:      "Total number of sessions torn down by the manager",
		}),

		applyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parley",
			Subsystem: "client",
			Name:      "apply_duration_seconds",
			Help:      "Store apply duration per server event in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

package httpx

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics registers on reg; a nil reg gets a private registry so that
// several clients can coexist in tests.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tvbox",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream HTTP requests by host and status (0 = transport failure).",
		}, []string{"host", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tvbox",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
	}
}

func (m *metrics) observe(host string, status int, d time.Duration) {
	m.requests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(host).Observe(d.Seconds())
}

package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencodectl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bencodectl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencodectl",
			Subsystem: "decode",
			Name:      "total",
			Help:      "Decode calls by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	decodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bencodectl",
			Subsystem: "decode",
			Name:      "input_bytes",
			Help:      "Size of decoded inputs in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"source"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bencodectl",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Decode duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	commandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bencodectl",
			Subsystem: "command",
			Name:      "total",
			Help:      "Executed commands by name and success.",
		},
		[]string{"command", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, decodeTotal, decodeBytes, decodeDuration, commandTotal)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode counts one decode. outcome is "ok" or the decode error kind.
func RecordDecode(source, outcome string, size int, duration time.Duration) {
	RegisterMetrics()
	decodeTotal.WithLabelValues(source, outcome).Inc()
	decodeBytes.WithLabelValues(source).Observe(float64(size))
	decodeDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordCommand(command string, success bool) {
	RegisterMetrics()
	commandTotal.WithLabelValues(command, strconv.FormatBool(success)).Inc()
}

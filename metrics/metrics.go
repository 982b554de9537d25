// Package metrics exposes the gateway's prometheus collectors.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lpgateway"

var (
	registerOnce sync.Once

	inboundSubmessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inbound",
			Name:      "submessages_total",
			Help:      "Inbound submessages recorded, by entry kind.",
		},
		[]string{"kind"},
	)
	inboundExecuted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inbound",
			Name:      "executed_total",
			Help:      "Inbound messages released to the handler.",
		},
	)
	inboundRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inbound",
			Name:      "rejected_total",
			Help:      "Inbound deliveries rejected, by reason.",
		},
		[]string{"reason"},
	)
	outboundQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbound",
			Name:      "queued_total",
			Help:      "Outbound router messages queued, by message kind.",
		},
		[]string{"kind"},
	)
	queueProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "processed_total",
			Help:      "Queued gateway messages processed.",
		},
		[]string{"direction", "success"},
	)
	queueDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "process_duration_seconds",
			Help:      "Time spent processing one queued gateway message.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"direction"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			inboundSubmessages, inboundExecuted, inboundRejected,
			outboundQueued,
			queueProcessed, queueDuration,
			httpRequests, httpDuration,
		)
	})
}

func RecordInboundSubmessage(kind string) {
	RegisterMetrics()
	inboundSubmessages.WithLabelValues(kind).Inc()
}

func RecordInboundExecuted() {
	RegisterMetrics()
	inboundExecuted.Inc()
}

func RecordInboundRejected(reason string) {
	RegisterMetrics()
	inboundRejected.WithLabelValues(reason).Inc()
}

func RecordOutboundQueued(kind string) {
	RegisterMetrics()
	outboundQueued.WithLabelValues(kind).Inc()
}

func RecordQueueProcessed(direction string, success bool, duration time.Duration) {
	RegisterMetrics()
	queueProcessed.WithLabelValues(direction, strconv.FormatBool(success)).Inc()
	queueDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

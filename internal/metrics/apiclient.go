package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aiinterview",
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Upstream API round-trip latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	apiRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aiinterview",
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Upstream API call count. Status 0 means a transport failure.",
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveAPIRequest 记录一次上游 API 调用。status 为 0 表示
// 传输层失败、未收到响应。
func ObserveAPIRequest(method, path string, status int, elapsed time.Duration) {
	registerAll()

	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(max(status, 0)),
	}
	apiRequestDuration.With(labels).Observe(elapsed.Seconds())
	apiRequestTotal.With(labels).Inc()
}

// Package metrics registers the Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflix_tmdb_requests_total",
			Help: "Total number of TMDB requests by endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodflix_tmdb_request_duration_seconds",
			Help:    "Duration of TMDB requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflix_http_requests_total",
			Help: "Total number of API requests by route pattern and status code",
		},
		[]string{"route", "status"},
	)

	APIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodflix_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// ObserveUpstream records one TMDB call. Status 0 means the request never
// got a response.
func ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(endpoint, label).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func ObserveAPI(route string, status int, elapsed time.Duration) {
	APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	APIDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}

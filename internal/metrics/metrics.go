package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_upload_attempts_total",
		Help: "Storage upload attempts, including retries",
	})
	UploadTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_upload_timeouts_total",
		Help: "Storage upload attempts that hit the deadline",
	})
	UploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_upload_failures_total",
		Help: "Uploads that failed after exhausting retries",
	})
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_cache_hits_total",
		Help: "Response cache hits",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "caseflow_cache_misses_total",
		Help: "Response cache misses",
	})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

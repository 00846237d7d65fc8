// Package metrics exposes Prometheus collectors for the report service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	httpRequestsInFlight       prometheus.Gauge
	extractionsTotal           *prometheus.CounterVec
	fetchedBytesTotal          *prometheus.CounterVec
	crawlPollsTotal            prometheus.Counter
	crawlJobsTotal             *prometheus.CounterVec
	synthesisTotal             *prometheus.CounterVec
	synthesisDurationSeconds   prometheus.Histogram
	rateLimitDelaysSeconds     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		)

		httpRequestsInFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being served.",
			},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_extractions_total",
				Help: "Direct page extractions, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchedBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_fetched_bytes_total",
				Help: "Total number of bytes fetched by the direct path, labeled by site.",
			},
			[]string{"site"},
		)

		crawlPollsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "report_crawl_polls_total",
				Help: "Total crawl job status polls issued.",
			},
		)

		crawlJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_crawl_jobs_total",
				Help: "Crawl jobs resolved, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		synthesisTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_synthesis_total",
				Help: "Report synthesis calls, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		synthesisDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "report_synthesis_duration_seconds",
				Help:    "Histogram of language-model completion latencies.",
				Buckets: []float64{1, 2, 5, 10, 20, 40, 80},
			},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveExtraction records one direct-path extraction.
func ObserveExtraction(site string, outcome string, bytesFetched int) {
	Init()
	sanitizedSite := SanitizeSite(site)
	extractionsTotal.WithLabelValues(sanitizedSite, outcome).Inc()
	if bytesFetched > 0 {
		fetchedBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// ObserveCrawlPoll counts one crawl status poll.
func ObserveCrawlPoll() {
	Init()
	crawlPollsTotal.Inc()
}

// ObserveCrawlJob records how a crawl job resolved.
func ObserveCrawlJob(outcome string) {
	Init()
	crawlJobsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSynthesis records a completion call and its latency.
func ObserveSynthesis(outcome string, duration time.Duration) {
	Init()
	synthesisTotal.WithLabelValues(outcome).Inc()
	synthesisDurationSeconds.Observe(duration.Seconds())
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

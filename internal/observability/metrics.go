// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	FillsFetched  prometheus.Counter
	FillsStored   prometheus.Counter
	PagesFetched  prometheus.Counter
	FetchErrors   *prometheus.CounterVec
	LiveFillsSeen prometheus.Counter
	VenueDuration *prometheus.HistogramVec

	// Processing metrics
	RefreshRunsTotal  *prometheus.CounterVec
	RefreshDuration   prometheus.Histogram
	TradesBuilt       prometheus.Gauge
	TradesEnriched    prometheus.Counter
	EnrichmentErrors  prometheus.Counter
	CandleCacheWrites prometheus.Counter

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulRefresh prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hl_journal"
	}

	return &Metrics{
		FillsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fills_fetched_total",
			Help:      "Total number of fills fetched from the venue",
		}),
		FillsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fills_stored_total",
			Help:      "Total number of new fills stored to database",
		}),
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pages_fetched_total",
			Help:      "Total number of fill history pages fetched from the venue",
		}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "fetch_errors_total",
			Help:      "Total number of venue fetch errors by operation",
		}, []string{"operation"}),
		LiveFillsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "live_fills_seen_total",
			Help:      "Total number of fills received over the live stream",
		}),

		VenueDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "venue_request_duration_seconds",
			Help:      "Venue API request duration in seconds by request type",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),

		RefreshRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of refresh runs by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Refresh run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		TradesBuilt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "trades_built",
			Help:      "Number of round-trip trades built in the last refresh",
		}),
		TradesEnriched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "trades_enriched_total",
			Help:      "Total number of trades enriched with candle excursions",
		}),
		EnrichmentErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "enrichment_errors_total",
			Help:      "Total number of per-coin enrichment failures",
		}),
		CandleCacheWrites: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "candle_cache_writes_total",
			Help:      "Total number of candles written to the cache",
		}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful refresh",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFillsFetched adds to the fills fetched counter.
func RecordFillsFetched(n int) {
	DefaultMetrics.FillsFetched.Add(float64(n))
}

// RecordFillsStored adds to the fills stored counter.
func RecordFillsStored(n int) {
	DefaultMetrics.FillsStored.Add(float64(n))
}

// RecordVenueRequest records one completed venue API call.
func RecordVenueRequest(requestType string, durationSeconds float64) {
	DefaultMetrics.VenueDuration.WithLabelValues(requestType).Observe(durationSeconds)
}

// RecordFetchError records a venue fetch error.
func RecordFetchError(operation string) {
	DefaultMetrics.FetchErrors.WithLabelValues(operation).Inc()
}

// RecordRefreshRun records a refresh run.
func RecordRefreshRun(status string, durationSeconds float64) {
	DefaultMetrics.RefreshRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RefreshDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route, status string, durationSeconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

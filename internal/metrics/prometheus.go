// Package metrics declares the Prometheus collectors shared by the API server
// and the ingestion CLI.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madness_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "madness_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Store
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madness_db_queries_total",
			Help: "Total number of store queries",
		},
		[]string{"operation", "status"},
	)

	// Differentials and brackets
	DifferentialLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madness_differential_lookups_total",
			Help: "Differential lookups by outcome",
		},
		[]string{"outcome"},
	)

	BracketEnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madness_bracket_enrichment_failures_total",
			Help: "Bracket pairings emitted without statistics, by failure kind",
		},
		[]string{"kind"},
	)

	// Scraping
	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madness_scrape_requests_total",
			Help: "Total number of scrape requests by source and status",
		},
		[]string{"source", "status"},
	)

	ScrapeRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madness_scrape_retries_total",
			Help: "Scrape retries after rate limiting or transient failures",
		},
		[]string{"source"},
	)

	// Ingestion
	RowsLoadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madness_rows_loaded_total",
			Help: "Rows written by the batch loader",
		},
		[]string{"table"},
	)
)

// Middleware records request counts and latency keyed by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Package metrics provides Prometheus instruments for the forecast service
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeStale   = "stale"
)

var (
	// Forecast metrics
	ForecastFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_fetches_total",
			Help: "Total number of forecast fetch cycles by outcome",
		},
		[]string{"outcome"},
	)

	ForecastFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecast_fetch_duration_seconds",
			Help:    "Forecast API call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SelectionEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_selection_events_total",
			Help: "Total number of city selection events by source",
		},
		[]string{"source"},
	)

	// Catalog metrics
	CatalogCities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecast_catalog_cities",
			Help: "Number of cities loaded into the catalog",
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecast_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
)

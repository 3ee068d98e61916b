package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rates_ingest_runs_total",
			Help: "Rate ingestion runs by result",
		},
		[]string{"result"},
	)

	IngestCryptoFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rates_ingest_crypto_fallback_total",
			Help: "Ingestion runs that used the fixed crypto fallback rate",
		},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rates_ingest_duration_seconds",
			Help:    "Duration of a full ingestion run",
			Buckets: prometheus.DefBuckets,
		},
	)

	ProviderRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rates_provider_refresh_total",
			Help: "Rate provider refreshes by winning source and outcome",
		},
		[]string{"source", "outcome"},
	)

	ProviderSourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rates_provider_source_errors_total",
			Help: "Failed fetch attempts per source",
		},
		[]string{"source"},
	)

	ProviderRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rates_provider_refresh_duration_seconds",
			Help:    "Duration of a provider refresh cycle",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	ResultSuccess = "success"
	ResultError   = "error"

	OutcomeFresh   = "fresh"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

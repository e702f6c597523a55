// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_records_parsed_total",
			Help: "Total number of source rows turned into products",
		},
		[]string{"category"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_records_skipped_total",
			Help: "Total number of source rows dropped by the parser",
		},
		[]string{"category", "reason"},
	)

	EnrichmentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_enrichment_outcomes_total",
			Help: "Enrichment results per stage",
		},
		[]string{"stage", "outcome"},
	)

	EnrichmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "catalog_enrichment_call_duration_seconds",
			Help: "Duration of external enrichment calls in seconds",
		},
		[]string{"stage"},
	)

	DocumentsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_documents_upserted_total",
			Help: "Total number of documents written to the search index",
		},
		[]string{"index"},
	)

	UpsertFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_upsert_failures_total",
			Help: "Total number of failed batch upserts",
		},
		[]string{"index", "error_code"},
	)

	StreamFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_stream_frames_total",
			Help: "Stream lines seen by the decoder, by frame kind",
		},
		[]string{"kind"},
	)

	ChatRequestsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_chat_requests_active",
			Help: "Number of chat requests in flight",
		},
	)
)

// Package metrics holds the Prometheus collectors of the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsGenerated counts completed report transactions by source strategy.
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "research_reports_total",
		Help: "Reports generated, by how their source list was derived.",
	}, []string{"strategy"})

	// GenerationFallbacks counts reports that used the fallback template.
	GenerationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "research_generation_fallbacks_total",
		Help: "Reports served from the fallback template, by reason.",
	}, []string{"reason"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "research_generation_duration_seconds",
		Help:    "Latency of language model calls.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}, []string{"backend"})

	CreditsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "research_credits_consumed_total",
		Help: "Mock credits booked across all sessions.",
	})

	IngestWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "research_ingest_warnings_total",
		Help: "Uploaded files that could not be parsed.",
	})

	LiveFeedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "research_live_feed_entries_total",
		Help: "Live feed entries ingested.",
	})
)

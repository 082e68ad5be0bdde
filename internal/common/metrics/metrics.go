package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_cache_hits_total",
			Help: "Total number of memo cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_cache_misses_total",
			Help: "Total number of memo cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_cache_evictions_total",
			Help: "Total number of memo cache entries evicted by capacity",
		},
		[]string{"cache"},
	)

	CacheLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_cache_load_failures_total",
			Help: "Total number of loader failures replaced by the fallback value",
		},
		[]string{"cache"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Total number of retried upstream attempts",
		},
		[]string{"operation"},
	)

	UpstreamFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_fallbacks_total",
			Help: "Total number of upstream calls degraded to their fallback value",
		},
		[]string{"operation"},
	)

	DecksGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decks_generated_total",
			Help: "Total number of lesson decks generated",
		},
		[]string{"enriched"},
	)

	DeckGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "deck_generation_duration_seconds",
			Help: "Duration of lesson deck generation in seconds",
		},
	)
)

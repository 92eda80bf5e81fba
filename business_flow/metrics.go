package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quotes computed, partitioned by transport mode and chargeable basis
	quotesCalculatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freight_quotes_calculated_total",
			Help: "Total number of quote calculations performed",
		},
		[]string{"transport_mode", "basis"},
	)

	quotesPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freight_quotes_persisted_total",
			Help: "Total number of quotes persisted with their items",
		},
	)

	rateVersionsOpenedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freight_rate_versions_opened_total",
			Help: "Total number of rate versions opened by administrators",
		},
	)

	rateConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freight_rate_conflicts_total",
			Help: "Total number of administrative writes rejected by a competing writer",
		},
	)

	weightTiersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freight_weight_tiers_created_total",
			Help: "Total number of weight tiers created",
		},
	)

	weightTiersRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freight_weight_tiers_rejected_total",
			Help: "Total number of weight tiers rejected by interval validation",
		},
	)
)

package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	suggestionRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collab_suggestion_requests_total",
			Help: "Total number of creator suggestion requests",
		},
	)

	suggestionPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collab_suggestion_pool_size",
			Help:    "Number of creators scored per suggestion request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	creatorPoolCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collab_creator_pool_cache_total",
			Help: "Creator pool cache lookups by result",
		},
		[]string{"result"},
	)

	invitationOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collab_invitation_outcomes_total",
			Help: "Invitation outcomes recorded against campaign statistics",
		},
		[]string{"outcome"},
	)

	stageTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collab_stage_transitions_total",
			Help: "Campaign stage transitions by stage and result",
		},
		[]string{"stage", "result"},
	)

	statisticsCorruptionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collab_statistics_corruption_total",
			Help: "Invitation statistics that failed to reconcile",
		},
	)
)

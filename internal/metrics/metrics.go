// Package metrics exposes Prometheus counters for the gap-healing
// pipeline. The promhttp handler is mounted on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DraftsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gapheal_drafts_created_total",
		Help: "FAQ drafts created by heal runs.",
	})

	DraftsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gapheal_drafts_approved_total",
		Help: "Drafts approved and published to the knowledge base.",
	})

	DraftsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gapheal_drafts_rejected_total",
		Help: "Drafts rejected by reviewers.",
	})

	NoiseFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gapheal_noise_filtered_total",
		Help: "Gap questions excluded from clustering as noise.",
	})

	GenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gapheal_generation_failures_total",
		Help: "Clusters skipped because draft generation or parsing failed.",
	})
)

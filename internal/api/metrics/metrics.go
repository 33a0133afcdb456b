// Package metrics defines all custom Prometheus metrics for the staff
// lifecycle service. It is the single source of truth for metric names,
// labels, and help strings; promauto registers everything with the default
// registry at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "staffops"

// StagesTotal counts orchestration stage outcomes.
// Labels:
//   - operation: "onboard" or "offboard"
//   - platform: the platform the stage ran against (e.g. "googleWorkspace")
//   - status: final stage status ("success", "failed", "skipped", "manual_action")
var StagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_stages_total",
		Help:      "Total number of lifecycle orchestration stages, by operation, platform and outcome.",
	},
	[]string{"operation", "platform", "status"},
)

// RunDuration measures a full orchestration run end-to-end.
// Label:
//   - operation: "onboard" or "offboard"
var RunDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lifecycle_run_duration_seconds",
		Help:      "Duration of a full lifecycle run across all selected platforms.",
		Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	},
	[]string{"operation"},
)

// UpstreamErrorsTotal counts non-404 failures from platform APIs.
// Label:
//   - platform: which upstream failed
var UpstreamErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_errors_total",
		Help:      "Total number of upstream platform API failures.",
	},
	[]string{"platform"},
)

// LinkDeletionsTotal counts payment-link deletions by result.
// Label:
//   - result: "deleted" or "error"
var LinkDeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_link_deletions_total",
		Help:      "Total number of payment-link deletion attempts, by result.",
	},
	[]string{"result"},
)

// AnalyticsFallbackTotal counts analytics requests answered from the empty
// fallback because the telephony API was unreachable.
var AnalyticsFallbackTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_fallback_total",
		Help:      "Total number of analytics requests served from the degraded fallback.",
	},
)

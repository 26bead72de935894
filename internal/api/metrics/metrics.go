// Package metrics defines and registers all custom Prometheus metrics for the
// academy admin API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; the /metrics endpoint serves that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "academy_admin"

// ── Authorization gate ───────────────────────────────────────────────────────

// GateDecisionsTotal counts settled authorization checks.
// Label:
//   - state: "unauthenticated", "authenticated_non_admin" or "authorized"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of settled admin authorization checks, by resulting state.",
	},
	[]string{"state"},
)

// GateStaleResultsTotal counts check results discarded because a newer check
// was issued or the watcher was closed.
var GateStaleResultsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_stale_results_total",
		Help:      "Total number of authorization check results discarded as stale.",
	},
)

// SessionStreamsOpen tracks admin shells currently watching their session
// over the event stream.
var SessionStreamsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_streams_open",
		Help:      "Current number of open admin session event streams.",
	},
)

// ProfilesProvisionedTotal counts profiles auto-created for first-seen identities.
var ProfilesProvisionedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profiles_provisioned_total",
		Help:      "Total number of profiles created on first sight of an identity.",
	},
)

// ── Elevation ────────────────────────────────────────────────────────────────

// ElevationsTotal counts elevation attempts.
// Label:
//   - outcome: "created", "updated", "invalid", "already_admin", "email_taken", "error"
var ElevationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "elevations_total",
		Help:      "Total number of admin elevation attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ElevationConflictFallbacksTotal counts profile upserts that hit a uniqueness
// conflict and were retried as an update.
var ElevationConflictFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "elevation_conflict_fallbacks_total",
		Help:      "Total number of elevation upserts recovered through update-by-id.",
	},
)

// ── Content ──────────────────────────────────────────────────────────────────

// ContentWritesTotal counts successful content writes.
// Labels:
//   - kind: "courses", "workshops", "electronics" or "projects"
//   - op: "create", "update" or "delete"
var ContentWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_writes_total",
		Help:      "Total number of site content writes, by kind and operation.",
	},
	[]string{"kind", "op"},
)

// ── Notifications ────────────────────────────────────────────────────────────

// NotificationSourceErrorsTotal counts source fetches that failed and were
// skipped during aggregation.
// Label:
//   - kind: "contact", "workshop" or "course"
var NotificationSourceErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_source_errors_total",
		Help:      "Total number of notification source fetches that failed, by kind.",
	},
	[]string{"kind"},
)

// NotificationJoinMissesTotal counts referenced rows that could not be found
// and were replaced by a placeholder.
// Label:
//   - collection: "workshops", "courses" or "profiles"
var NotificationJoinMissesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_join_misses_total",
		Help:      "Total number of joined references that fell back to a placeholder label.",
	},
	[]string{"collection"},
)

// NotificationListDuration measures one aggregation call end-to-end.
// Label:
//   - filter: "all", "contact", "workshop" or "course"
var NotificationListDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_list_duration_seconds",
		Help:      "Duration of notification aggregation from first fetch to sorted result.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"filter"},
)

// ── Session events ───────────────────────────────────────────────────────────

// SessionEventsDispatchedTotal counts session events delivered to local listeners.
// Label:
//   - kind: "SIGNED_IN", "SIGNED_OUT", "TOKEN_REFRESHED" or "USER_UPDATED"
var SessionEventsDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_dispatched_total",
		Help:      "Total number of session events dispatched to local listeners, by kind.",
	},
	[]string{"kind"},
)

// SessionEventsQueueDepth tracks the number of events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var SessionEventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_events_queue_depth",
		Help:      "Current number of session events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

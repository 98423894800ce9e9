package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redis Operations Metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)
)

// Ledger Metrics
var (
	// PostsCharged tracks posts charged against quota or token balance
	PostsCharged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "limits_posts_charged_total",
			Help: "Posts charged, labelled by whether a token was spent",
		},
		[]string{"paid"},
	)

	// RewardsIssued tracks reward tokens granted on threshold crossings
	RewardsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "limits_rewards_issued_total",
			Help: "Reward tokens issued on upward threshold crossings",
		},
	)

	// RewardsRevoked tracks reward tokens revoked on downward crossings
	RewardsRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "limits_rewards_revoked_total",
			Help: "Reward tokens revoked on downward threshold crossings",
		},
	)

	// VoteLockouts tracks users locked out by the vote spam limiter
	VoteLockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "limits_vote_lockouts_total",
			Help: "Vote spam lockouts triggered",
		},
	)

	// EventsProcessed tracks inbound events by type and outcome
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "limits_events_processed_total",
			Help: "Inbound events processed by event type and status",
		},
		[]string{"event", "status"},
	)

	// NotificationsFailed tracks notifications that could not be published
	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "limits_notifications_failed_total",
			Help: "User notifications that failed to publish",
		},
	)

	// ZeroBalancesSwept tracks token records garbage-collected by the sweeper
	ZeroBalancesSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "limits_zero_balances_swept_total",
			Help: "Zero-balance token records removed by the window sweep",
		},
	)
)

// Package metrics exposes Prometheus counters for the auth and toggle
// paths. Registration happens at init via promauto; the router mounts the
// /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures counts rejected requests by reason: missing, invalid,
	// expired, unknown_user.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidstream_auth_failures_total",
		Help: "Authentication failures by reason.",
	}, []string{"reason"})

	// TokenRefreshes counts refresh attempts by outcome (rotated, rejected).
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidstream_token_refreshes_total",
		Help: "Refresh token exchanges by outcome.",
	}, []string{"outcome"})

	// Toggles counts toggle operations by target kind and resulting state.
	Toggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidstream_toggles_total",
		Help: "Toggle operations by kind and state.",
	}, []string{"kind", "state"})
)

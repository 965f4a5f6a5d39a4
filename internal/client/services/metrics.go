package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	refreshValid      = "valid"
	refreshRejected   = "rejected"
	refreshExpired    = "expired"
	refreshNoToken    = "no_token"
	refreshSuperseded = "superseded"
	refreshCanceled   = "canceled"

	outcomeFulfilled   = "fulfilled"
	outcomeFailed      = "failed"
	outcomeUnsupported = "unsupported"
	outcomeReplayed    = "replayed"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verifynow_client",
			Name:      "submissions_total",
			Help:      "Submissions by kind and terminal outcome.",
		},
		[]string{"kind", "outcome"},
	)

	sessionRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verifynow_client",
			Name:      "session_refresh_total",
			Help:      "Session re-validations by result.",
		},
		[]string{"result"},
	)
)

// Package metrics exposes prometheus counters for the core workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthorizationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safetydesk",
		Name:      "authorization_decisions_total",
		Help:      "Authorization decisions by outcome.",
	}, []string{"outcome"})

	ReportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safetydesk",
		Name:      "report_transitions_total",
		Help:      "Report state transitions by target state.",
	}, []string{"to_state"})

	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safetydesk",
		Name:      "notifications_created_total",
		Help:      "Notification records created by fanout.",
	})
)

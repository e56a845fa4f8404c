package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sluggo_tickets_created_total",
		Help: "Tickets created across all teams.",
	})
	eventsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sluggo_activity_events_total",
		Help: "Activity events appended to the events table.",
	})
	policyDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sluggo_policy_denials_total",
		Help: "Requests rejected by the team access policy.",
	})
)

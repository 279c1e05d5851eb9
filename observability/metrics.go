// Package observability defines the prometheus collectors exposed on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noteboard_notes_stored_total",
		Help: "Number of notes successfully appended to the board.",
	})

	FeesCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noteboard_fees_collected_minor_units_total",
		Help: "Token minor units collected as append fees.",
	})

	FeeChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noteboard_fee_changes_total",
		Help: "Number of owner fee updates.",
	})

	Withdrawals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noteboard_withdrawals_total",
		Help: "Number of owner withdrawals from board custody.",
	})
)

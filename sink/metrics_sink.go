package sink

import (
	"context"
	"math/big"

	"noteboard/domain/event"
	"noteboard/observability"
)

// MetricsSink feeds the prometheus counters from board notifications.
type MetricsSink struct{}

func NewMetricsSink() MetricsSink {
	return MetricsSink{}
}

func (MetricsSink) Consume(_ context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.NoteStored:
		observability.NotesStored.Inc()
		fee, _ := new(big.Float).SetInt(evt.Fee).Float64()
		observability.FeesCollected.Add(fee)
	case event.FeeChanged:
		observability.FeeChanges.Inc()
	case event.Withdrawal:
		observability.Withdrawals.Inc()
	}
	return nil
}

package sink

import (
	"context"
	"log/slog"

	"noteboard/domain/event"
)

// LogSink writes one structured line per board notification.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(_ context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.NoteStored:
		s.log.Info("Note stored",
			"id", evt.ID,
			"sender", evt.Sender.String(),
			"at", evt.At,
			"fee", evt.Fee.String(),
		)
	case event.FeeChanged:
		s.log.Info("Fee changed", "old", evt.OldFee.String(), "new", evt.NewFee.String())
	case event.Withdrawal:
		s.log.Info("Withdrawal", "to", evt.To.String(), "amount", evt.Amount.String())
	default:
		s.log.Debug("Unhandled event", "kind", e.Kind())
	}
	return nil
}

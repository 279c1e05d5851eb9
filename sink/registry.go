// Package sink contains the consumers of board notifications.
package sink

import (
	"context"
	"log/slog"

	"noteboard/contract"
	"noteboard/domain/event"
)

// Registry fans a committed event out to every registered sink, in
// registration order. A failing sink is logged and skipped: the state change
// is already durable, so observers never veto it.
type Registry struct {
	log   *slog.Logger
	sinks []contract.EventSink
}

func NewRegistry(log *slog.Logger, sinks ...contract.EventSink) *Registry {
	return &Registry{log: log, sinks: sinks}
}

func (r *Registry) Register(sinks ...contract.EventSink) {
	r.sinks = append(r.sinks, sinks...)
}

func (r *Registry) Publish(ctx context.Context, e event.Event) {
	for _, s := range r.sinks {
		if err := s.Consume(ctx, e); err != nil {
			r.log.Warn("Sink failed to consume event", "kind", e.Kind(), "error", err)
		}
	}
}

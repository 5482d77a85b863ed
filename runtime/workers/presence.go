package workers

import (
	"context"
	"log/slog"

	"dm-lab/contract"
	"dm-lab/domain/event"
)

// PresenceWorker is the single owner of presence fan-out.
//
// It drains the registry's coalescing change channel and pushes the full
// online snapshot to every live connection. No filtering, no delta encoding:
// every broadcast carries the complete set of connected user ids, so all
// clients converge within one broadcast round.
type PresenceWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	changed  <-chan struct{}
}

func NewPresenceWorker(log *slog.Logger, registry contract.IRegistry, changed <-chan struct{}) *PresenceWorker {
	return &PresenceWorker{log: log, registry: registry, changed: changed}
}

func (w *PresenceWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping presence broadcast")
			return nil
		case <-w.changed:
			w.Broadcast(ctx)
		}
	}
}

// Broadcast snapshots the registry and fans the snapshot out to every sink.
func (w *PresenceWorker) Broadcast(ctx context.Context) {
	snapshot := event.PresenceChanged{Online: w.registry.OnlineUsers()}
	for _, sink := range w.registry.Sinks() {
		if err := sink.Consume(ctx, snapshot); err != nil {
			w.log.Debug("Presence snapshot lost for one connection", "error", err)
		}
	}
}

package runtime

import (
	"context"
	"log/slog"

	"dm-lab/contract"
	"dm-lab/domain"
	"dm-lab/domain/event"
	"dm-lab/observability"
)

// Router pushes persisted messages to live connections.
//
// Delivery is at-most-once and best-effort: the caller persists first, then
// routes. A receiver without a live sink is not an error, the message simply
// waits in the store for the next history fetch. There is no retry queue.
type Router struct {
	log      *slog.Logger
	registry contract.IRegistry
	monitor  *observability.Monitor
}

func NewRouter(log *slog.Logger, registry contract.IRegistry, monitor *observability.Monitor) *Router {
	return &Router{log: log, registry: registry, monitor: monitor}
}

// Route pushes a freshly persisted message to the receiver's connection,
// if there is one. Must only be called after persistence succeeded, so push
// order per receiver matches persistence order.
func (r *Router) Route(ctx context.Context, msg domain.Message) {
	sink, ok := r.registry.Lookup(msg.ReceiverID)
	if !ok {
		r.log.Debug("Receiver offline, message waits in store",
			"message_id", msg.ID, "receiver_id", msg.ReceiverID)
		return
	}
	if err := sink.Consume(ctx, event.MessageCreated{Message: msg}); err != nil {
		r.log.Warn("Dropped real-time push",
			"message_id", msg.ID, "receiver_id", msg.ReceiverID, "error", err)
		return
	}
	r.monitor.IncrMessagesPushed()
}

// NotifySender pushes an updated receipt record back to the original sender
// so its receipt icon can update without a poll.
func (r *Router) NotifySender(ctx context.Context, msg domain.Message) {
	sink, ok := r.registry.Lookup(msg.SenderID)
	if !ok {
		return
	}
	if err := sink.Consume(ctx, event.ReceiptUpdated{Message: msg}); err != nil {
		r.log.Warn("Dropped receipt notification",
			"message_id", msg.ID, "sender_id", msg.SenderID, "error", err)
	}
}

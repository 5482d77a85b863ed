package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dm-lab/domain"
	"dm-lab/domain/event"
	"dm-lab/internal"
	"dm-lab/observability"
)

func TestRouter_Route_ConnectedReceiver(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given bob is connected
	registry := NewRegistry()
	bob := &stubSink{}
	registry.Register("bob", bob)
	router := NewRouter(log, registry, observability.NewMonitor())

	// When a persisted message for bob is routed
	msg := domain.Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	router.Route(context.Background(), msg)

	// Then bob's sink got exactly one MessageCreated event
	events := bob.Events()
	req.Len(events, 1)
	created, ok := events[0].(event.MessageCreated)
	req.True(ok)
	req.Equal(msg.ID, created.Message.ID)
}

func TestRouter_Route_OfflineReceiverIsNotAnError(t *testing.T) {
	log := internal.GetLoggerFromString("ERROR")

	// Given nobody is connected
	registry := NewRegistry()
	router := NewRouter(log, registry, observability.NewMonitor())

	// When a message for an offline user is routed, nothing blows up;
	// the message simply waits in the store for the next history fetch
	router.Route(context.Background(), domain.Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Text: "hi"})
}

func TestRouter_Route_DoesNotLeakToSender(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given both parties are connected
	registry := NewRegistry()
	alice := &stubSink{}
	bob := &stubSink{}
	registry.Register("alice", alice)
	registry.Register("bob", bob)
	router := NewRouter(log, registry, observability.NewMonitor())

	// When alice's message is routed
	router.Route(context.Background(), domain.Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Text: "hi"})

	// Then only bob receives it
	req.Len(bob.Events(), 1)
	req.Empty(alice.Events())
}

func TestRouter_NotifySender(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given the original sender is connected
	registry := NewRegistry()
	alice := &stubSink{}
	registry.Register("alice", alice)
	router := NewRouter(log, registry, observability.NewMonitor())

	// When a receipt update on their message is pushed back
	msg := domain.Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Text: "hi"}
	router.NotifySender(context.Background(), msg)

	// Then the sender got a ReceiptUpdated event
	events := alice.Events()
	req.Len(events, 1)
	updated, ok := events[0].(event.ReceiptUpdated)
	req.True(ok)
	req.Equal(msg.ID, updated.Message.ID)
}

func TestRouter_FailingSinkIsDropped(t *testing.T) {
	log := internal.GetLoggerFromString("ERROR")

	// Given a receiver whose connection refuses the push
	registry := NewRegistry()
	registry.Register("bob", &stubSink{fail: true})
	router := NewRouter(log, registry, observability.NewMonitor())

	// When routing, the failure is logged and swallowed: delivery is
	// at-most-once with no retry queue
	router.Route(context.Background(), domain.Message{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Text: "hi"})
}

package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dm-lab/domain/event"
	"dm-lab/internal"
	"dm-lab/runtime"
)

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) snapshots() []event.PresenceChanged {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.PresenceChanged
	for _, e := range s.events {
		if p, ok := e.(event.PresenceChanged); ok {
			out = append(out, p)
		}
	}
	return out
}

func TestPresenceWorker_BroadcastReachesEveryConnection(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given three connected users
	registry := runtime.NewRegistry()
	alice := &recordingSink{}
	bob := &recordingSink{}
	carol := &recordingSink{}
	registry.Register("alice", alice)
	registry.Register("bob", bob)
	registry.Register("carol", carol)

	// When a broadcast fires
	worker := NewPresenceWorker(log, registry, registry.Changed())
	worker.Broadcast(context.Background())

	// Then every connection got the same full snapshot
	expected := []string{"alice", "bob", "carol"}
	for _, sink := range []*recordingSink{alice, bob, carol} {
		snaps := sink.snapshots()
		req.Len(snaps, 1)
		req.Equal(expected, snaps[0].Online)
	}
}

func TestPresenceWorker_RunReactsToRegistryChanges(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	registry := runtime.NewRegistry()
	worker := NewPresenceWorker(log, registry, registry.Changed())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	// When a user connects
	alice := &recordingSink{}
	registry.Register("alice", alice)

	// Then the worker drains the change signal and pushes a snapshot
	req.Eventually(func() bool {
		return len(alice.snapshots()) >= 1
	}, time.Second, 5*time.Millisecond)
	req.Equal([]string{"alice"}, alice.snapshots()[0].Online)

	// And it stops cleanly with the context
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("worker did not stop on context cancellation")
	}
}

func TestPresenceWorker_DisconnectShrinksSnapshot(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given two connected users
	registry := runtime.NewRegistry()
	alice := &recordingSink{}
	bob := &recordingSink{}
	registry.Register("alice", alice)
	registry.Register("bob", bob)

	// When bob disconnects and a broadcast fires
	registry.Unregister("bob", bob)
	worker := NewPresenceWorker(log, registry, registry.Changed())
	worker.Broadcast(context.Background())

	// Then the remaining connection sees the shrunken set
	snaps := alice.snapshots()
	req.Len(snaps, 1)
	req.Equal([]string{"alice"}, snaps[0].Online)
}

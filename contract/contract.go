package contract

import (
	"context"
	"reflect"

	"dm-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ConnectionSink is the live end of one user's connection.
// Consume must not block indefinitely: a slow or full connection drops the
// event rather than stalling the caller.
type ConnectionSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps a user id to its single live connection sink.
type IRegistry interface {
	Register(userID string, sink ConnectionSink)
	Unregister(userID string, sink ConnectionSink)
	Lookup(userID string) (ConnectionSink, bool)
	OnlineUsers() []string
	Sinks() []ConnectionSink
}

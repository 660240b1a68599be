//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-pulse/domain"
	"chat-pulse/protocol"
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

// SessionSink is the delivery end of one live connection. Deliver must be
// non-blocking and must preserve the order of calls for a single sink.
type SessionSink interface {
	Deliver(env protocol.Envelope)
}

// IPresence maps authenticated identities to their live session sinks.
type IPresence interface {
	Register(id domain.UserID, sink SessionSink)
	Unregister(id domain.UserID, sink SessionSink)
	Get(id domain.UserID) (SessionSink, bool)
	IsLive(id domain.UserID) bool
	Snapshot() []domain.UserID
	Sinks() []SessionSink
}

// IRouter fans events out to the sessions that must receive them.
type IRouter interface {
	BroadcastToChatMembers(ctx context.Context, chatID domain.ChatID, env protocol.Envelope)
	BroadcastStatus(id domain.UserID, status domain.Status)
}

// Package runtime handles liveness tracking and event propagation for the
// messaging core. It orchestrates delivery without containing business logic
// or domain rules.
package runtime

import (
	"sync"

	"chat-pulse/contract"
	"chat-pulse/domain"
)

// Presence maps authenticated identities to their live session sinks.
// At most one live session per identity: a second authentication for the
// same identity replaces the entry, the superseded session is NOT closed,
// but its eventual cleanup cannot evict the newer entry because Unregister
// is guarded by the sink value.
//
// Backed by sync.Map so sessions for distinct identities never contend on
// a single lock.
type Presence struct {
	entries sync.Map // domain.UserID -> contract.SessionSink
}

func NewPresence() *Presence {
	return &Presence{}
}

// Register records the identity as live, overwriting any prior entry.
func (p *Presence) Register(id domain.UserID, sink contract.SessionSink) {
	p.entries.Store(id, sink)
}

// Unregister removes the entry only if it still points at the calling
// session. A stale close from a superseded session is a no-op.
func (p *Presence) Unregister(id domain.UserID, sink contract.SessionSink) {
	p.entries.CompareAndDelete(id, sink)
}

func (p *Presence) Get(id domain.UserID) (contract.SessionSink, bool) {
	value, ok := p.entries.Load(id)
	if !ok {
		return nil, false
	}
	return value.(contract.SessionSink), true
}

func (p *Presence) IsLive(id domain.UserID) bool {
	_, ok := p.entries.Load(id)
	return ok
}

// Snapshot returns the identities currently live. The result is a copy,
// concurrent registrations after the call are not reflected.
func (p *Presence) Snapshot() []domain.UserID {
	var ids []domain.UserID
	p.entries.Range(func(key, _ any) bool {
		ids = append(ids, key.(domain.UserID))
		return true
	})
	return ids
}

// Sinks returns every live sink, for system-wide broadcasts.
func (p *Presence) Sinks() []contract.SessionSink {
	var sinks []contract.SessionSink
	p.entries.Range(func(_, value any) bool {
		sinks = append(sinks, value.(contract.SessionSink))
		return true
	})
	return sinks
}

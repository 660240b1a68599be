package runtime

import (
	"testing"

	"chat-pulse/domain"
	"chat-pulse/protocol"

	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	delivered []protocol.Envelope
}

func (s *fakeSink) Deliver(env protocol.Envelope) {
	s.delivered = append(s.delivered, env)
}

func TestPresence_Register_Then_IsLive(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sink := &fakeSink{}

	// Given nobody is connected
	req.False(presence.IsLive(7))

	// When identity 7 registers
	presence.Register(7, sink)

	// Then it is live and resolvable
	req.True(presence.IsLive(7))
	got, ok := presence.Get(7)
	req.True(ok)
	req.Same(sink, got.(*fakeSink))
}

func TestPresence_Unregister_By_Owning_Session(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	sink := &fakeSink{}

	presence.Register(7, sink)
	presence.Unregister(7, sink)

	req.False(presence.IsLive(7))
	req.Empty(presence.Snapshot())
}

func TestPresence_Second_Auth_Supersedes(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	first := &fakeSink{}
	second := &fakeSink{}

	// Given identity 7 is live on a first session
	presence.Register(7, first)

	// When a second session authenticates for the same identity
	presence.Register(7, second)

	// Then the registry points at the latest session
	got, ok := presence.Get(7)
	req.True(ok)
	req.Same(second, got.(*fakeSink))
}

func TestPresence_Stale_Close_Cannot_Evict_Newer_Session(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()
	first := &fakeSink{}
	second := &fakeSink{}

	presence.Register(7, first)
	presence.Register(7, second)

	// When the superseded session cleans up late
	presence.Unregister(7, first)

	// Then identity 7 is still live on the newer session
	req.True(presence.IsLive(7))
	got, _ := presence.Get(7)
	req.Same(second, got.(*fakeSink))
}

func TestPresence_Snapshot_Lists_Distinct_Identities(t *testing.T) {
	req := require.New(t)
	presence := NewPresence()

	presence.Register(7, &fakeSink{})
	presence.Register(9, &fakeSink{})
	presence.Register(11, &fakeSink{})
	presence.Unregister(11, &fakeSink{}) // wrong session, must not evict

	req.ElementsMatch([]domain.UserID{7, 9, 11}, presence.Snapshot())
}

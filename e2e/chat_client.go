package e2e

import (
	"fmt"
	"time"

	"chat-pulse/client"
	"chat-pulse/domain"
	"chat-pulse/protocol"
)

// chatClient wraps a client engine and records everything the server pushes,
// so scenarios can assert on delivery (and on absence of delivery).
type chatClient struct {
	suite  *BaseChatSuite
	engine *client.Engine
	user   domain.User
	inbox  chan protocol.Envelope
	stop   func()
}

func (s *BaseChatSuite) NewChatClient(user domain.User) *chatClient {
	c := &chatClient{
		suite: s,
		user:  user,
		inbox: make(chan protocol.Envelope, 64),
	}
	c.engine = client.NewEngine(s.wsURL, client.NewDialer(), client.Options{
		ConnectTimeout: 3 * time.Second,
		AuthTimeout:    3 * time.Second,
		BackoffBase:    100 * time.Millisecond,
		DrainInterval:  10 * time.Millisecond,
		MaxAttempts:    5,
	}, testLogger())

	unsubscribes := make([]func(), 0, len(recordedTypes))
	for _, t := range recordedTypes {
		unsubscribes = append(unsubscribes, c.engine.On(t, c.record))
	}
	c.stop = func() {
		for _, u := range unsubscribes {
			u()
		}
		c.engine.Disconnect()
	}

	// Registering via s.T().Cleanup here would tie teardown to the Step
	// subtest that created the client; the suite stops clients after the
	// whole test method instead.
	s.clientStops = append(s.clientStops, c.stop)
	return c
}

var recordedTypes = []protocol.Type{
	protocol.TypeNewMessage,
	protocol.TypeMessageSent,
	protocol.TypeMessageReaction,
	protocol.TypeReactionAdded,
	protocol.TypeUserStatus,
	protocol.TypeError,
}

func (c *chatClient) record(env protocol.Envelope) {
	if c.suite.Config.DebugJSON {
		data, _ := env.Encode()
		c.suite.T().Logf("user %d <- %s", c.user.ID, data)
	}
	select {
	case c.inbox <- env:
	default:
		// A full inbox means the scenario is not consuming, fail loudly
		c.suite.T().Errorf("inbox overflow for user %d", c.user.ID)
	}
}

// Connect authenticates and blocks until the session is ready.
func (c *chatClient) Connect() {
	c.engine.Connect(c.user.ID)
	c.suite.Require().Eventually(func() bool {
		return c.engine.State() == client.StateReady
	}, stepTimeout, 20*time.Millisecond, "user %d never reached ready", c.user.ID)
}

func (c *chatClient) Disconnect() {
	c.engine.Disconnect()
}

func (c *chatClient) SendMessage(chatID domain.ChatID, text string) {
	err := c.engine.Send(protocol.New(protocol.TypeMessage, protocol.MessageIntent{
		ChatID: chatID,
		Text:   text,
	}))
	c.suite.Require().NoError(err)
}

func (c *chatClient) SendReaction(messageID domain.MessageID, reaction string) {
	err := c.engine.Send(protocol.New(protocol.TypeReaction, protocol.ReactionIntent{
		MessageID: messageID,
		Reaction:  reaction,
	}))
	c.suite.Require().NoError(err)
}

// WaitFor pops envelopes until one of the wanted type satisfies the
// predicate. Envelopes of other types are discarded along the way.
func WaitFor[T any](c *chatClient, want protocol.Type, accept func(T) bool) T {
	deadline := time.After(stepTimeout)
	for {
		select {
		case env := <-c.inbox:
			if env.Type != want {
				continue
			}
			payload, err := protocol.PayloadAs[T](env)
			c.suite.Require().NoError(err)
			if accept == nil || accept(payload) {
				return payload
			}
		case <-deadline:
			c.suite.Require().FailNow(fmt.Sprintf("user %d never received %s", c.user.ID, want))
			var zero T
			return zero
		}
	}
}

// ExpectSilence asserts that no envelope of the given type arrives within
// the window.
func (c *chatClient) ExpectSilence(forbidden protocol.Type, window time.Duration) {
	deadline := time.After(window)
	for {
		select {
		case env := <-c.inbox:
			c.suite.Require().NotEqual(forbidden, env.Type,
				"user %d received %s while none was expected", c.user.ID, forbidden)
		case <-deadline:
			return
		}
	}
}

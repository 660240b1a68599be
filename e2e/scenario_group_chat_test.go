package e2e

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chat-pulse/domain"
	"chat-pulse/protocol"
)

type testGroupChatSuite struct {
	BaseChatSuite
}

func TestGroupChatSuite(t *testing.T) {
	suite.Run(t, &testGroupChatSuite{})
}

func (s *testGroupChatSuite) TestFullGroupChatFlow() {
	var (
		alice, bob, mallory *chatClient
		chat                domain.Chat
		firstMessageID      domain.MessageID
	)

	// --- STEP 0: ACCOUNTS & CHAT SETUP OVER REST ---
	s.Step("Step 0: Register accounts and create the chat", func() {
		aliceUser, aliceToken := s.RegisterUser("alice_e2e")
		bobUser, _ := s.RegisterUser("bob_e2e")
		malloryUser, _ := s.RegisterUser("mallory_e2e")

		chat = s.CreateChat(aliceToken, "ops", []domain.UserID{bobUser.ID})

		alice = s.NewChatClient(aliceUser)
		bob = s.NewChatClient(bobUser)
		mallory = s.NewChatClient(malloryUser)
	})

	// --- STEP 1: LIVE SESSIONS ---
	s.Step("Step 1: Connect every client and reach ready", func() {
		bob.Connect()
		alice.Connect()
		mallory.Connect()

		// Bob was already live, so Alice coming online reaches him
		WaitFor(bob, protocol.TypeUserStatus, func(p protocol.UserStatus) bool {
			return p.UserID == alice.user.ID && p.Status == domain.StatusOnline
		})
	})

	// --- STEP 2: MESSAGE FAN-OUT ---
	s.Step("Step 2: Message reaches members, not outsiders", func() {
		alice.SendMessage(chat.ID, "the idiot build is green again")

		sent := WaitFor[protocol.MessageSent](alice, protocol.TypeMessageSent, nil)
		firstMessageID = sent.MessageID

		// Moderated text: the dictionary word is starred out
		received := WaitFor(bob, protocol.TypeNewMessage, func(p protocol.NewMessage) bool {
			return p.Message.ID == firstMessageID
		})
		s.Require().Equal("the ***** build is green again", received.Message.Text)

		// Sender gets the fan-out copy too
		WaitFor(alice, protocol.TypeNewMessage, func(p protocol.NewMessage) bool {
			return p.Message.ID == firstMessageID
		})

		// Mallory is not a member and must hear nothing
		mallory.ExpectSilence(protocol.TypeNewMessage, 300*time.Millisecond)
	})

	// --- STEP 3: REACTIONS ACCUMULATE ---
	s.Step("Step 3: Reactions accumulate across members", func() {
		bob.SendReaction(firstMessageID, "🔥")
		first := WaitFor(alice, protocol.TypeMessageReaction, func(p protocol.MessageReaction) bool {
			return p.MessageID == firstMessageID
		})
		s.Require().Equal(1, first.UpdatedReactions["🔥"])

		alice.SendReaction(firstMessageID, "🔥")
		second := WaitFor(bob, protocol.TypeMessageReaction, func(p protocol.MessageReaction) bool {
			return p.MessageID == firstMessageID && p.UpdatedReactions["🔥"] == 2
		})
		s.Require().Equal(alice.user.ID, second.UserID)
	})

	// --- STEP 4: PRESENCE ON DISCONNECT ---
	s.Step("Step 4: Disconnect broadcasts offline to the rest", func() {
		alice.Disconnect()

		WaitFor(bob, protocol.TypeUserStatus, func(p protocol.UserStatus) bool {
			return p.UserID == alice.user.ID && p.Status == domain.StatusOffline
		})
	})
}

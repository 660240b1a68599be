package runtime

import (
	"context"
	"testing"

	"chat-pulse/domain"
	"chat-pulse/observability"
	"chat-pulse/protocol"
	"chat-pulse/repositories"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*Router, *Presence, *repositories.Memory) {
	t.Helper()
	storage := repositories.NewMemory()
	presence := NewPresence()
	router := NewRouter(logs.GetLoggerFromString("error"), storage, presence, observability.NewStats())
	return router, presence, storage
}

func seedChat(t *testing.T, storage *repositories.Memory, members ...domain.UserID) domain.ChatID {
	t.Helper()
	ctx := context.Background()
	chat, err := storage.CreateChat(ctx, repositories.CreateChatInput{Name: "team", IsGroup: true, CreatedBy: members[0]})
	require.NoError(t, err)
	for _, member := range members {
		require.NoError(t, storage.AddChatMember(ctx, chat.ID, member, false))
	}
	return chat.ID
}

func TestRouter_Delivers_Only_To_Live_Members(t *testing.T) {
	req := require.New(t)
	router, presence, storage := newTestRouter(t)

	// Given a chat with members 7 and 9, and a live outsider 11
	chatID := seedChat(t, storage, 7, 9)
	seven := &fakeSink{}
	eleven := &fakeSink{}
	presence.Register(7, seven)
	presence.Register(11, eleven)
	// 9 is a member but offline

	// When an event is broadcast to the chat
	env := protocol.New(protocol.TypeNewMessage, protocol.NewMessage{ChatID: chatID})
	router.BroadcastToChatMembers(context.Background(), chatID, env)

	// Then only the live member receives it
	req.Len(seven.delivered, 1)
	req.Empty(eleven.delivered)
}

func TestRouter_Never_Delivers_Twice_Per_Call(t *testing.T) {
	req := require.New(t)
	router, presence, storage := newTestRouter(t)

	chatID := seedChat(t, storage, 7)
	sink := &fakeSink{}
	presence.Register(7, sink)

	router.BroadcastToChatMembers(context.Background(), chatID, protocol.New(protocol.TypePing, protocol.Ping{}))

	req.Len(sink.delivered, 1)
}

func TestRouter_Preserves_Call_Order_Per_Session(t *testing.T) {
	req := require.New(t)
	router, presence, storage := newTestRouter(t)

	chatID := seedChat(t, storage, 7)
	sink := &fakeSink{}
	presence.Register(7, sink)

	first := protocol.New(protocol.TypeNewMessage, protocol.NewMessage{ChatID: chatID, Message: domain.Message{ID: 1}})
	second := protocol.New(protocol.TypeNewMessage, protocol.NewMessage{ChatID: chatID, Message: domain.Message{ID: 2}})
	router.BroadcastToChatMembers(context.Background(), chatID, first)
	router.BroadcastToChatMembers(context.Background(), chatID, second)

	req.Len(sink.delivered, 2)
	req.Equal(first.Payload, sink.delivered[0].Payload)
	req.Equal(second.Payload, sink.delivered[1].Payload)
}

func TestRouter_BroadcastStatus_Reaches_All_Live_Sessions(t *testing.T) {
	req := require.New(t)
	router, presence, _ := newTestRouter(t)

	seven := &fakeSink{}
	nine := &fakeSink{}
	presence.Register(7, seven)
	presence.Register(9, nine)

	// When identity 7 goes offline
	router.BroadcastStatus(7, domain.StatusOffline)

	// Then every live session hears about it, chat membership is irrelevant
	req.Len(seven.delivered, 1)
	req.Len(nine.delivered, 1)

	status, err := protocol.PayloadAs[protocol.UserStatus](nine.delivered[0])
	req.NoError(err)
	req.Equal(domain.UserID(7), status.UserID)
	req.Equal(domain.StatusOffline, status.Status)
}

package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/mocks"
	"chat-pulse/moderation"
	"chat-pulse/observability"
	"chat-pulse/repositories"
	"chat-pulse/search"
)

func newChatService(t *testing.T, storage repositories.Storage) (*ChatService, *search.MessageIndex) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)

	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	require.NoError(t, err)

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = writer.Close()
	})
	index := search.NewMessageIndex(writer, log)

	return NewChatService(storage, &moderator, index, observability.NewStats(), log), index
}

func TestChatService_PostMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	svc, index := newChatService(t, mockStorage)
	ctx := context.Background()

	t.Run("should censor text before persisting", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			CreateMessage(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input repositories.CreateMessageInput) (domain.Message, error) {
				req.Equal("the ****** is loose", input.Text)
				return domain.Message{
					ID:        1,
					ChatID:    input.ChatID,
					UserID:    input.UserID,
					Text:      input.Text,
					CreatedAt: time.Now().UTC(),
				}, nil
			})

		msg, err := svc.PostMessage(ctx, PostMessageCommand{
			UserID: 7,
			ChatID: 42,
			Text:   "the badger is loose",
		})

		req.NoError(err)
		req.Equal(domain.MessageID(1), msg.ID)

		// And the persisted text is searchable
		hits, err := index.Search(ctx, "loose", 42, 10)
		req.NoError(err)
		req.Len(hits, 1)
		req.Equal(domain.MessageID(1), hits[0].MessageID)
	})

	t.Run("should accept media only messages", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			CreateMessage(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input repositories.CreateMessageInput) (domain.Message, error) {
				req.Empty(input.Text)
				req.Equal("/media/cat.png", input.MediaURL)
				return domain.Message{ID: 2, ChatID: input.ChatID, MediaURL: input.MediaURL}, nil
			})

		_, err := svc.PostMessage(ctx, PostMessageCommand{
			UserID:    7,
			ChatID:    42,
			MediaURL:  "/media/cat.png",
			MediaType: "image/png",
		})
		req.NoError(err)
	})

	t.Run("should reject empty intents without touching storage", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.PostMessage(ctx, PostMessageCommand{UserID: 7, ChatID: 42})

		req.ErrorIs(err, errors.ErrInvalidPayload)
	})
}

func TestChatService_AddReaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	svc, _ := newChatService(t, mockStorage)
	ctx := context.Background()

	t.Run("should return the updated reaction counters", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			AddReaction(ctx, domain.MessageID(1), domain.UserID(9), "🔥").
			Return(domain.Message{ID: 1, Reactions: map[string]int{"🔥": 2}}, nil)

		msg, err := svc.AddReaction(ctx, 9, 1, "🔥")

		req.NoError(err)
		req.Equal(2, msg.Reactions["🔥"])
	})

	t.Run("should reject empty reactions", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().AddReaction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.AddReaction(ctx, 9, 1, "")

		req.ErrorIs(err, errors.ErrInvalidPayload)
	})

	t.Run("should surface unknown messages", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().
			AddReaction(ctx, domain.MessageID(404), domain.UserID(9), "👍").
			Return(domain.Message{}, errors.ErrNotFound)

		_, err := svc.AddReaction(ctx, 9, 404, "👍")

		req.ErrorIs(err, errors.ErrNotFound)
	})
}

func TestChatService_Stories(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockStorage(ctrl)
	svc, _ := newChatService(t, mockStorage)
	ctx := context.Background()

	t.Run("should reject stories without media", func(t *testing.T) {
		req := require.New(t)

		mockStorage.EXPECT().CreateStory(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.PostStory(ctx, repositories.CreateStoryInput{UserID: 7, Caption: "no media"})

		req.ErrorIs(err, errors.ErrInvalidPayload)
	})

	t.Run("should persist stories with media", func(t *testing.T) {
		req := require.New(t)
		expires := time.Now().Add(24 * time.Hour)

		mockStorage.EXPECT().
			CreateStory(ctx, gomock.Any()).
			Return(domain.Story{ID: 1, UserID: 7, MediaURL: "/media/sunset.jpg", ExpiresAt: expires}, nil)

		story, err := svc.PostStory(ctx, repositories.CreateStoryInput{
			UserID:    7,
			MediaURL:  "/media/sunset.jpg",
			MediaType: "image/jpeg",
			ExpiresAt: expires,
		})

		req.NoError(err)
		req.Equal(domain.StoryID(1), story.ID)
	})
}

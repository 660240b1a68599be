package services

import (
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"chat-pulse/domain"
	"chat-pulse/errors"
	"chat-pulse/moderation"
	"chat-pulse/observability"
	"chat-pulse/repositories"
	"chat-pulse/search"
)

type IChatService interface {
	PostMessage(ctx context.Context, cmd PostMessageCommand) (domain.Message, error)
	AddReaction(ctx context.Context, userID domain.UserID, messageID domain.MessageID, reaction string) (domain.Message, error)
	History(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error)
	PostStory(ctx context.Context, input repositories.CreateStoryInput) (domain.Story, error)
	ActiveStories(ctx context.Context) ([]domain.Story, error)
}

// ChatService is the write path of the messaging core. Every message goes
// through moderation and language detection before persistence, then into
// the search index. Fan-out to live sessions is the caller's concern.
type ChatService struct {
	storage   repositories.Storage
	moderator *moderation.Moderator
	index     *search.MessageIndex
	stats     *observability.Stats
	log       *slog.Logger
}

type PostMessageCommand struct {
	UserID    domain.UserID
	ChatID    domain.ChatID
	Text      string
	MediaURL  string
	MediaType string
}

func NewChatService(storage repositories.Storage, moderator *moderation.Moderator,
	index *search.MessageIndex, stats *observability.Stats, log *slog.Logger) *ChatService {
	return &ChatService{
		storage:   storage,
		moderator: moderator,
		index:     index,
		stats:     stats,
		log:       log,
	}
}

func (s *ChatService) PostMessage(ctx context.Context, cmd PostMessageCommand) (domain.Message, error) {
	if cmd.Text == "" && cmd.MediaURL == "" {
		return domain.Message{}, errors.ErrInvalidPayload
	}

	text := cmd.Text
	lang := ""
	if text != "" {
		censored, found := s.moderator.Censor(text)
		if len(found) > 0 {
			s.log.Info("message censored", "chat_id", cmd.ChatID, "user_id", cmd.UserID, "words", len(found))
		}
		text = censored

		if info := whatlanggo.Detect(cmd.Text); info.IsReliable() {
			lang = info.Lang.Iso6391()
		}
	}

	msg, err := s.storage.CreateMessage(ctx, repositories.CreateMessageInput{
		ChatID:    cmd.ChatID,
		UserID:    cmd.UserID,
		Text:      text,
		MediaURL:  cmd.MediaURL,
		MediaType: cmd.MediaType,
		Lang:      lang,
	})
	if err != nil {
		return domain.Message{}, err
	}

	if msg.Text != "" {
		if err := s.index.Index(msg); err != nil {
			// The message is already durable, a missing index entry only
			// degrades search.
			s.log.Warn("failed to index message", "message_id", msg.ID, "error", err)
		}
	}

	s.stats.IncrMessagesPosted()
	return msg, nil
}

func (s *ChatService) AddReaction(ctx context.Context, userID domain.UserID,
	messageID domain.MessageID, reaction string) (domain.Message, error) {
	if reaction == "" {
		return domain.Message{}, errors.ErrInvalidPayload
	}

	msg, err := s.storage.AddReaction(ctx, messageID, userID, reaction)
	if err != nil {
		return domain.Message{}, err
	}

	s.stats.IncrReactionsAdded()
	return msg, nil
}

func (s *ChatService) History(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	return s.storage.GetMessages(ctx, chatID)
}

func (s *ChatService) PostStory(ctx context.Context, input repositories.CreateStoryInput) (domain.Story, error) {
	if input.MediaURL == "" {
		return domain.Story{}, errors.ErrInvalidPayload
	}
	return s.storage.CreateStory(ctx, input)
}

func (s *ChatService) ActiveStories(ctx context.Context) ([]domain.Story, error) {
	return s.storage.ActiveStories(ctx)
}

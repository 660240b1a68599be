package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"chat-pulse/domain"
	"chat-pulse/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

func chatKey(id domain.ChatID) string {
	return fmt.Sprintf("chat:%09d", id)
}

func memberKey(chatID domain.ChatID, userID domain.UserID) string {
	return fmt.Sprintf("member:%09d:%09d", chatID, userID)
}

// memberOfKey is the reverse index, it lets GetChatsForUser avoid a full
// membership scan.
func memberOfKey(userID domain.UserID, chatID domain.ChatID) string {
	return fmt.Sprintf("memberof:%09d:%09d", userID, chatID)
}

func (s *BadgerStorage) CreateChat(_ context.Context, input CreateChatInput) (domain.Chat, error) {
	id, err := s.nextID(s.chatSeq)
	if err != nil {
		return domain.Chat{}, err
	}

	now := time.Now().UTC()
	chat := domain.Chat{
		ID:        domain.ChatID(id),
		Name:      input.Name,
		Avatar:    input.Avatar,
		IsGroup:   input.IsGroup,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.setJSON(chatKey(chat.ID), chat); err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (s *BadgerStorage) GetChat(_ context.Context, id domain.ChatID) (domain.Chat, error) {
	var chat domain.Chat
	if err := s.getJSON(chatKey(id), &chat); err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return domain.Chat{}, fmt.Errorf("chat %d: %w", id, errors.ErrNotFound)
		}
		return domain.Chat{}, err
	}
	return chat, nil
}

func (s *BadgerStorage) AddChatMember(ctx context.Context, chatID domain.ChatID, userID domain.UserID, admin bool) error {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return err
	}
	member := domain.ChatMember{
		ChatID:   chatID,
		UserID:   userID,
		IsAdmin:  admin,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.setJSON(memberKey(chatID, userID), member); err != nil {
		return err
	}
	return s.setJSON(memberOfKey(userID, chatID), member)
}

func (s *BadgerStorage) GetChatMembers(_ context.Context, chatID domain.ChatID) ([]domain.UserID, error) {
	var members []domain.UserID
	prefix := fmt.Sprintf("member:%09d:", chatID)
	err := scanJSON(s.db, prefix, func(m domain.ChatMember) error {
		members = append(members, m.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Uniq(members), nil
}

func (s *BadgerStorage) GetChatsForUser(ctx context.Context, id domain.UserID) ([]domain.Chat, error) {
	var chatIDs []domain.ChatID
	prefix := fmt.Sprintf("memberof:%09d:", id)
	err := scanJSON(s.db, prefix, func(m domain.ChatMember) error {
		chatIDs = append(chatIDs, m.ChatID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	chats := make([]domain.Chat, 0, len(chatIDs))
	for _, chatID := range chatIDs {
		chat, err := s.GetChat(ctx, chatID)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

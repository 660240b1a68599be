package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chat-pulse/domain"
	"chat-pulse/errors"
)

// Memory is the in-process Storage double used by tests. Same contract as
// BadgerStorage, no durability.
type Memory struct {
	mu       sync.RWMutex
	users    map[domain.UserID]diskUser
	chats    map[domain.ChatID]domain.Chat
	members  map[domain.ChatID][]domain.ChatMember
	messages map[domain.MessageID]*domain.Message
	byChat   map[domain.ChatID][]domain.MessageID
	stories  map[domain.StoryID]domain.Story

	nextUser    int
	nextChat    int
	nextMessage int
	nextStory   int
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[domain.UserID]diskUser),
		chats:    make(map[domain.ChatID]domain.Chat),
		members:  make(map[domain.ChatID][]domain.ChatMember),
		messages: make(map[domain.MessageID]*domain.Message),
		byChat:   make(map[domain.ChatID][]domain.MessageID),
		stories:  make(map[domain.StoryID]domain.Story),
	}
}

func (m *Memory) CreateAccount(_ context.Context, input CreateUserInput) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextUser++
	now := time.Now().UTC()
	user := domain.User{
		ID:        domain.UserID(m.nextUser),
		Username:  input.Username,
		Avatar:    input.Avatar,
		Bio:       input.Bio,
		Guest:     input.Guest,
		CreatedAt: now,
		LastSeen:  now,
	}
	m.users[user.ID] = diskUser{User: user, PasswordHash: input.PasswordHash}
	return user, nil
}

func (m *Memory) GetAccount(_ context.Context, id domain.UserID) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, errors.ErrNotFound)
	}
	return stored.User, nil
}

func (m *Memory) GetCredentials(_ context.Context, id domain.UserID) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.users[id]
	if !ok {
		return Credentials{}, fmt.Errorf("user %d: %w", id, errors.ErrNotFound)
	}
	return Credentials{UserID: stored.ID, PasswordHash: stored.PasswordHash}, nil
}

func (m *Memory) TouchLastSeen(_ context.Context, id domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, errors.ErrNotFound)
	}
	stored.LastSeen = time.Now().UTC()
	m.users[id] = stored
	return nil
}

func (m *Memory) CreateChat(_ context.Context, input CreateChatInput) (domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextChat++
	now := time.Now().UTC()
	chat := domain.Chat{
		ID:        domain.ChatID(m.nextChat),
		Name:      input.Name,
		Avatar:    input.Avatar,
		IsGroup:   input.IsGroup,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.chats[chat.ID] = chat
	return chat, nil
}

func (m *Memory) GetChat(_ context.Context, id domain.ChatID) (domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chat, ok := m.chats[id]
	if !ok {
		return domain.Chat{}, fmt.Errorf("chat %d: %w", id, errors.ErrNotFound)
	}
	return chat, nil
}

func (m *Memory) AddChatMember(_ context.Context, chatID domain.ChatID, userID domain.UserID, admin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[chatID]; !ok {
		return fmt.Errorf("chat %d: %w", chatID, errors.ErrNotFound)
	}
	for _, member := range m.members[chatID] {
		if member.UserID == userID {
			return nil
		}
	}
	m.members[chatID] = append(m.members[chatID], domain.ChatMember{
		ChatID:   chatID,
		UserID:   userID,
		IsAdmin:  admin,
		JoinedAt: time.Now().UTC(),
	})
	return nil
}

func (m *Memory) GetChatMembers(_ context.Context, chatID domain.ChatID) ([]domain.UserID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := make([]domain.UserID, 0, len(m.members[chatID]))
	for _, member := range m.members[chatID] {
		members = append(members, member.UserID)
	}
	return members, nil
}

func (m *Memory) GetChatsForUser(_ context.Context, id domain.UserID) ([]domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var chats []domain.Chat
	for chatID, members := range m.members {
		for _, member := range members {
			if member.UserID == id {
				chats = append(chats, m.chats[chatID])
				break
			}
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })
	return chats, nil
}

func (m *Memory) CreateMessage(_ context.Context, input CreateMessageInput) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextMessage++
	message := domain.Message{
		ID:        domain.MessageID(m.nextMessage),
		ChatID:    input.ChatID,
		UserID:    input.UserID,
		Text:      input.Text,
		MediaURL:  input.MediaURL,
		MediaType: input.MediaType,
		Lang:      input.Lang,
		Reactions: map[string]int{},
		CreatedAt: time.Now().UTC(),
	}
	m.messages[message.ID] = &message
	m.byChat[message.ChatID] = append(m.byChat[message.ChatID], message.ID)
	return message, nil
}

func (m *Memory) GetMessage(_ context.Context, id domain.MessageID) (domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	message, ok := m.messages[id]
	if !ok {
		return domain.Message{}, fmt.Errorf("message %d: %w", id, errors.ErrNotFound)
	}
	return *message, nil
}

func (m *Memory) GetMessages(_ context.Context, chatID domain.ChatID) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := make([]domain.Message, 0, len(m.byChat[chatID]))
	for _, id := range m.byChat[chatID] {
		messages = append(messages, *m.messages[id])
	}
	return messages, nil
}

func (m *Memory) AddReaction(_ context.Context, messageID domain.MessageID, _ domain.UserID, reaction string) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	message, ok := m.messages[messageID]
	if !ok {
		return domain.Message{}, fmt.Errorf("message %d: %w", messageID, errors.ErrNotFound)
	}
	if message.Reactions == nil {
		message.Reactions = map[string]int{}
	}
	message.Reactions[reaction]++
	return *message, nil
}

func (m *Memory) CreateStory(_ context.Context, input CreateStoryInput) (domain.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextStory++
	story := domain.Story{
		ID:        domain.StoryID(m.nextStory),
		UserID:    input.UserID,
		MediaURL:  input.MediaURL,
		MediaType: input.MediaType,
		Caption:   input.Caption,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: input.ExpiresAt,
	}
	m.stories[story.ID] = story
	return story, nil
}

func (m *Memory) ActiveStories(_ context.Context) ([]domain.Story, error) {
	return m.filterStories(func(domain.Story) bool { return true })
}

func (m *Memory) StoriesForUser(_ context.Context, id domain.UserID) ([]domain.Story, error) {
	return m.filterStories(func(s domain.Story) bool { return s.UserID == id })
}

func (m *Memory) PurgeExpiredStories(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	purged := 0
	for id, story := range m.stories {
		if story.Expired(now) {
			delete(m.stories, id)
			purged++
		}
	}
	return purged, nil
}

func (m *Memory) filterStories(keep func(domain.Story) bool) ([]domain.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now().UTC()
	var stories []domain.Story
	for _, story := range m.stories {
		if keep(story) && !story.Expired(now) {
			stories = append(stories, story)
		}
	}
	sort.Slice(stories, func(i, j int) bool { return stories[i].ID < stories[j].ID })
	return stories, nil
}

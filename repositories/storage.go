//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks
package repositories

import (
	"context"
	"time"

	"chat-pulse/domain"
)

// Storage is the persistence collaborator consumed by the messaging core.
// The core only issues point reads and point writes, no multi-step
// transaction spans this boundary. Implementations must be safe for
// concurrent calls.
type Storage interface {
	GetAccount(ctx context.Context, id domain.UserID) (domain.User, error)
	GetCredentials(ctx context.Context, id domain.UserID) (Credentials, error)
	CreateAccount(ctx context.Context, input CreateUserInput) (domain.User, error)
	TouchLastSeen(ctx context.Context, id domain.UserID) error

	GetChat(ctx context.Context, id domain.ChatID) (domain.Chat, error)
	CreateChat(ctx context.Context, input CreateChatInput) (domain.Chat, error)
	GetChatsForUser(ctx context.Context, id domain.UserID) ([]domain.Chat, error)
	AddChatMember(ctx context.Context, chatID domain.ChatID, userID domain.UserID, admin bool) error
	GetChatMembers(ctx context.Context, chatID domain.ChatID) ([]domain.UserID, error)

	CreateMessage(ctx context.Context, input CreateMessageInput) (domain.Message, error)
	GetMessage(ctx context.Context, id domain.MessageID) (domain.Message, error)
	GetMessages(ctx context.Context, chatID domain.ChatID) ([]domain.Message, error)
	AddReaction(ctx context.Context, messageID domain.MessageID, userID domain.UserID, reaction string) (domain.Message, error)

	CreateStory(ctx context.Context, input CreateStoryInput) (domain.Story, error)
	ActiveStories(ctx context.Context) ([]domain.Story, error)
	StoriesForUser(ctx context.Context, id domain.UserID) ([]domain.Story, error)
}

// Credentials stays in the repository layer, the domain User never carries
// the password hash.
type Credentials struct {
	UserID       domain.UserID
	PasswordHash string
}

type CreateUserInput struct {
	Username     string
	Avatar       string
	Bio          string
	Guest        bool
	PasswordHash string
}

type CreateChatInput struct {
	Name      string
	Avatar    string
	IsGroup   bool
	CreatedBy domain.UserID
}

type CreateMessageInput struct {
	ChatID    domain.ChatID
	UserID    domain.UserID
	Text      string
	MediaURL  string
	MediaType string
	Lang      string
}

type CreateStoryInput struct {
	UserID    domain.UserID
	MediaURL  string
	MediaType string
	Caption   string
	ExpiresAt time.Time
}

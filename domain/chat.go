package domain

import "time"

type ChatID int

type Chat struct {
	ID        ChatID    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	IsGroup   bool      `json:"isGroup"`
	CreatedBy UserID    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatMember links an account to a chat. Membership is read-only for the
// messaging core, it is only consulted to resolve fan-out targets.
type ChatMember struct {
	ChatID   ChatID    `json:"chatId"`
	UserID   UserID    `json:"userId"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Package domain contains core concepts of the messaging system.
// This file defines Message and related rules.
// Messages are immutable once persisted, except for reaction counters.
package domain

import "time"

type MessageID int

// Message represents a persisted chat message. Reactions accumulate counts
// per distinct reaction string across all users.
type Message struct {
	ID        MessageID      `json:"id"`
	ChatID    ChatID         `json:"chatId"`
	UserID    UserID         `json:"userId"`
	Text      string         `json:"text,omitempty"`
	MediaURL  string         `json:"mediaUrl,omitempty"`
	MediaType string         `json:"mediaType,omitempty"`
	Lang      string         `json:"lang,omitempty"`
	Reactions map[string]int `json:"reactions,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// HasContent reports whether the message carries anything deliverable.
// A message intent with neither text nor media is rejected before persistence.
func (m Message) HasContent() bool {
	return m.Text != "" || m.MediaURL != ""
}

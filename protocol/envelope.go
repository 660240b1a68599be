// Package protocol defines the wire unit exchanged between clients and the
// server: a single envelope carrying a discriminating type tag and a typed
// payload. Both directions use the same shape.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"chat-pulse/domain"
	"chat-pulse/errors"
)

type Type string

const (
	TypeConnectionEstablished Type = "connection_established"
	TypeAuth                  Type = "auth"
	TypeAuthConfirmed         Type = "auth_confirmed"
	TypeAuthError             Type = "auth_error"
	TypePing                  Type = "ping"
	TypePong                  Type = "pong"
	TypeMessage               Type = "message"
	TypeMessageSent           Type = "message_sent"
	TypeNewMessage            Type = "new_message"
	TypeReaction              Type = "reaction"
	TypeReactionAdded         Type = "reaction_added"
	TypeMessageReaction       Type = "message_reaction"
	TypeUserStatus            Type = "user_status"
	TypeError                 Type = "error"
)

var known = map[Type]struct{}{
	TypeConnectionEstablished: {},
	TypeAuth:                  {},
	TypeAuthConfirmed:         {},
	TypeAuthError:             {},
	TypePing:                  {},
	TypePong:                  {},
	TypeMessage:               {},
	TypeMessageSent:           {},
	TypeNewMessage:            {},
	TypeReaction:              {},
	TypeReactionAdded:         {},
	TypeMessageReaction:       {},
	TypeUserStatus:            {},
	TypeError:                 {},
}

// Known reports whether the tag belongs to the protocol. Decoding never
// fails on an unrecognized tag, callers check Known and answer with an
// error envelope instead of dropping the connection.
func (t Type) Known() bool {
	_, ok := known[t]
	return ok
}

// Envelope is the uniform wire unit. The payload stays raw until the
// handler for the tag decodes it into its typed struct.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return e, nil
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// New builds an envelope from a typed payload. It panics only on
// unmarshalable payloads, which would be a programming error.
func New(t Type, payload any) Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("protocol: unmarshalable payload for %s: %v", t, err))
	}
	return Envelope{Type: t, Payload: raw}
}

// PayloadAs decodes the raw payload into the variant struct for the tag.
func PayloadAs[T any](e Envelope) (T, error) {
	var p T
	if len(e.Payload) == 0 {
		return p, fmt.Errorf("%w: empty payload for %s", errors.ErrInvalidPayload, e.Type)
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return p, nil
}

type ConnectionEstablished struct {
	Timestamp time.Time `json:"timestamp"`
}

type Auth struct {
	UserID domain.UserID `json:"userId"`
}

type AuthConfirmed struct {
	UserID    domain.UserID `json:"userId"`
	Timestamp time.Time     `json:"timestamp"`
	User      domain.User   `json:"user"`
}

type AuthError struct {
	Message string `json:"message"`
}

type Ping struct {
	Timestamp time.Time `json:"timestamp"`
}

type Pong struct {
	Timestamp time.Time `json:"timestamp"`
}

// MessageIntent is the client-side intent to post a message.
type MessageIntent struct {
	ChatID    domain.ChatID `json:"chatId" validate:"required"`
	Text      string        `json:"text,omitempty"`
	MediaURL  string        `json:"mediaUrl,omitempty"`
	MediaType string        `json:"mediaType,omitempty"`
}

type MessageSent struct {
	MessageID domain.MessageID `json:"messageId"`
	Timestamp time.Time        `json:"timestamp"`
}

type NewMessage struct {
	ChatID  domain.ChatID  `json:"chatId"`
	Message domain.Message `json:"message"`
}

type ReactionIntent struct {
	MessageID domain.MessageID `json:"messageId" validate:"required"`
	Reaction  string           `json:"reaction" validate:"required"`
}

type ReactionAdded struct {
	MessageID domain.MessageID `json:"messageId"`
	Reaction  string           `json:"reaction"`
	Timestamp time.Time        `json:"timestamp"`
}

type MessageReaction struct {
	MessageID        domain.MessageID `json:"messageId"`
	UserID           domain.UserID    `json:"userId"`
	Reaction         string           `json:"reaction"`
	UpdatedReactions map[string]int   `json:"updatedReactions"`
}

type UserStatus struct {
	UserID   domain.UserID `json:"userId"`
	Status   domain.Status `json:"status"`
	LastSeen *time.Time    `json:"lastSeen,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}

// Package domain contains core concepts of the messaging system.
// This file defines user accounts and presence status.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// UserID is the opaque identity key of an account. The messaging core never
// creates identities, it only resolves and routes on them.
type UserID int

type User struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Guest     bool      `json:"guest"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

package domain

import "time"

type StoryID int

// Story is an ephemeral media post. Expired stories are filtered on read,
// never deleted eagerly.
type Story struct {
	ID        StoryID   `json:"id"`
	UserID    UserID    `json:"userId"`
	MediaURL  string    `json:"mediaUrl"`
	MediaType string    `json:"mediaType"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Story) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

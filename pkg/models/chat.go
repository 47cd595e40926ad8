package models

import (
	"time"
)

// Chat is a one-to-one thread between exactly two users. Its ID is the
// deterministic join of the sorted participant pair, so at most one chat can
// exist per unordered pair. A self-chat (both participants the same user) is a
// permitted degenerate case with a single repeated id.
type Chat struct {
	ID               string             `json:"id" db:"id"`
	ParticipantIDs   []string           `json:"participant_ids" db:"participant_ids"`
	ParticipantsInfo map[string]Profile `json:"participants_info" db:"participants_info"`
	LastMessage      *LastMessage       `json:"last_message,omitempty" db:"last_message"`
	LastActivity     time.Time          `json:"last_activity" db:"last_activity"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	UnreadCount      int                `json:"unread_count,omitempty" db:"-"`
}

// LastMessage mirrors the newest message of a chat so the chat list renders
// without a per-chat message query. It is written in the same transaction as
// the message it mirrors.
type LastMessage struct {
	Text     string    `json:"text"`
	SenderID string    `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
	IsRead   bool      `json:"is_read"`
}

// OtherParticipant returns the participant that is not self. For a self-chat
// it returns self, which is the correct peer to display.
func (c *Chat) OtherParticipant(selfID string) string {
	for _, id := range c.ParticipantIDs {
		if id != selfID {
			return id
		}
	}
	return selfID
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type ChatRequest struct {
	OtherUserID string `json:"other_user_id"`
}

type ChatResponse struct {
	Chat  Chat   `json:"chat"`
	Users []User `json:"users,omitempty"`
}

type ChatListResponse struct {
	Chats []Chat `json:"chats"`
	Total int    `json:"total"`
}

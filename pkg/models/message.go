package models

import (
	"time"
)

// DeletedPlaceholder replaces the text of a soft-deleted message.
const DeletedPlaceholder = "This message was deleted"

type Message struct {
	ID          string    `json:"id" db:"id"`
	ChatID      string    `json:"chat_id" db:"chat_id"`
	SenderID    string    `json:"sender_id" db:"sender_id"`
	Text        string    `json:"text" db:"content"`
	SentAt      time.Time `json:"sent_at" db:"sent_at"`
	Seq         int64     `json:"-" db:"seq"`
	IsRead      bool      `json:"is_read" db:"is_read"`
	IsDeleted   bool      `json:"is_deleted,omitempty" db:"is_deleted"`
	IsForwarded bool      `json:"is_forwarded,omitempty" db:"is_forwarded"`
	Reactions   Reactions `json:"reactions,omitempty" db:"reactions"`
}

// Reactions maps a reaction symbol to the set of user ids that chose it.
// A user appears under at most one symbol per message.
type Reactions map[string][]string

// Toggle applies one user's reaction choice. Picking the symbol the user
// already holds removes it; picking a different one moves the user there.
// Symbols with no users left are dropped.
func (r Reactions) Toggle(userID, symbol string) {
	// Exclusivity: remove the user from every other symbol first.
	for sym, uids := range r {
		if sym == symbol {
			continue
		}
		if filtered, removed := removeUser(uids, userID); removed {
			if len(filtered) == 0 {
				delete(r, sym)
			} else {
				r[sym] = filtered
			}
		}
	}

	if filtered, removed := removeUser(r[symbol], userID); removed {
		// Toggle off.
		if len(filtered) == 0 {
			delete(r, symbol)
		} else {
			r[symbol] = filtered
		}
		return
	}

	r[symbol] = append(r[symbol], userID)
}

// Has reports whether the user currently holds the given symbol.
func (r Reactions) Has(userID, symbol string) bool {
	for _, uid := range r[symbol] {
		if uid == userID {
			return true
		}
	}
	return false
}

func removeUser(uids []string, userID string) ([]string, bool) {
	for i, uid := range uids {
		if uid == userID {
			return append(uids[:i:i], uids[i+1:]...), true
		}
	}
	return uids, false
}

type MessageRequest struct {
	Text string `json:"text"`
}

type ReactionRequest struct {
	Symbol string `json:"symbol"`
}

type ForwardRequest struct {
	ChatID     string   `json:"chat_id"`
	MessageID  string   `json:"message_id"`
	ContactIDs []string `json:"contact_ids"`
}

type ForwardResponse struct {
	Forwarded int `json:"forwarded"`
}

// MessageListResponse is one page of a chat's messages. Count is the size of
// this page, not the chat's total; a page shorter than Limit is the last one.
type MessageListResponse struct {
	Messages []Message `json:"messages"`
	Count    int       `json:"count"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
}

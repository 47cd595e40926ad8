package models

import (
	"encoding/json"
)

type EventType string

const (
	EventMessage  EventType = "message"
	EventRead     EventType = "read"
	EventReaction EventType = "reaction"
	EventDelete   EventType = "delete"

	// EventTyping is transient: relayed to connected subscribers, never
	// persisted.
	EventTyping EventType = "typing"
)

// ChatEvent is the wire format for change notifications pushed to
// subscribers of a chat. Payload depends on the type: a Message for
// "message", a ReadSweep for "read", a ReactionUpdate for "reaction" and a
// Message for "delete".
type ChatEvent struct {
	Type     EventType       `json:"type"`
	ChatID   string          `json:"chat_id"`
	SenderID string          `json:"sender_id"`
	Payload  json.RawMessage `json:"payload"`
}

func NewChatEvent(eventType EventType, chatID, senderID string, payload interface{}) (*ChatEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &ChatEvent{
		Type:     eventType,
		ChatID:   chatID,
		SenderID: senderID,
		Payload:  data,
	}, nil
}

// ReadSweep reports which messages a reader flipped to read.
type ReadSweep struct {
	ChatID     string   `json:"chat_id"`
	ReaderID   string   `json:"reader_id"`
	MessageIDs []string `json:"message_ids"`
}

// ReactionUpdate carries the full post-merge reaction state of a message.
type ReactionUpdate struct {
	ChatID    string    `json:"chat_id"`
	MessageID string    `json:"message_id"`
	Reactions Reactions `json:"reactions"`
}

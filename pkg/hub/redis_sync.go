package hub

import (
	"context"
	"encoding/json"

	"github.com/amikchat/amik-chat/pkg/chatid"
	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/amikchat/amik-chat/pkg/store"
)

// ListenToRedis relays events published by the store (and typing signals
// republished by hubs) to the local clients subscribed to each chat. It is
// the single delivery path, so every instance sharing the Redis sees the
// same stream. Blocks until ctx is cancelled.
func (h *Hub) ListenToRedis(ctx context.Context) {
	pubsub := h.Storage.RDB.Subscribe(ctx, store.EventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	h.logger.Info("Listening for chat events", "channel", store.EventChannel)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.ChatEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Warn("Malformed chat event", "error", err)
				continue
			}
			h.relayEvent(event)
		}
	}
}

func (h *Hub) relayEvent(event models.ChatEvent) {
	// A message in a brand-new chat arrives before anyone subscribed to
	// its room. Participants are recoverable from the chat id, so pull
	// their connections in first.
	if event.Type == models.EventMessage {
		h.ensureRoomMembers(event.ChatID)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	// Typing signals skip the sender's own devices; durable events go to
	// everyone, the sender's other devices need them too.
	skipSender := event.Type == models.EventTyping

	var full []*Client
	h.mu.RLock()
	for client := range h.ChatRooms[event.ChatID] {
		if skipSender && client.UserID == event.SenderID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			full = append(full, client)
		}
	}
	h.mu.RUnlock()

	if len(full) > 0 {
		h.mu.Lock()
		for _, client := range full {
			h.dropLocked(client)
		}
		h.mu.Unlock()
		h.logger.Warn("Dropped slow clients", "chat_id", event.ChatID, "count", len(full))
	}
}

// ensureRoomMembers joins every online participant of the chat to its room.
func (h *Hub) ensureRoomMembers(chatID string) {
	participants, ok := chatid.Split(chatID)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, userID := range participants {
		for client := range h.Clients[userID] {
			if !client.ActiveChats[chatID] {
				h.joinLocked(client, chatID)
			}
		}
	}
}

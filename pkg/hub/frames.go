package hub

import (
	"encoding/json"

	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/amikchat/amik-chat/pkg/store"
)

func (h *Hub) handleFrame(frame Frame) {
	switch frame.Type {
	case FrameSubscribe:
		h.handleSubscribe(frame)
	case FrameUnsubscribe:
		h.handleUnsubscribe(frame)
	case FrameTyping:
		h.handleTyping(frame)
	default:
		h.logger.Warn("Unknown frame type", "type", frame.Type, "user_id", frame.Sender)
	}
}

// handleSubscribe joins every connection of the sender to the room, after
// checking the sender actually participates in the chat.
func (h *Hub) handleSubscribe(frame Frame) {
	chat, err := h.Storage.GetChat(frame.ChatID)
	if err != nil {
		h.logger.Error("Subscribe: failed to get chat", "error", err, "chat_id", frame.ChatID)
		return
	}
	if chat == nil || !chat.HasParticipant(frame.Sender) {
		h.logger.Warn("Subscribe rejected", "chat_id", frame.ChatID, "user_id", frame.Sender)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.Clients[frame.Sender] {
		h.joinLocked(client, chat.ID)
	}
}

func (h *Hub) handleUnsubscribe(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.Clients[frame.Sender] {
		h.leaveLocked(client, frame.ChatID)
	}
}

// handleTyping republishes the signal on the shared event channel instead
// of broadcasting locally, so every instance (this one included) delivers
// it through the same relay path as durable events.
func (h *Hub) handleTyping(frame Frame) {
	h.mu.RLock()
	_, inRoom := h.ChatRooms[frame.ChatID]
	h.mu.RUnlock()
	if !inRoom {
		return
	}

	event, err := models.NewChatEvent(models.EventTyping, frame.ChatID, frame.Sender, frame.Payload)
	if err != nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := h.Storage.RDB.Publish(h.Storage.Ctx, store.EventChannel, payload).Err(); err != nil {
		h.logger.Warn("Failed to publish typing event", "error", err, "chat_id", frame.ChatID)
	}
}

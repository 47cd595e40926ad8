package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/amikchat/amik-chat/pkg/store"
)

type MessageHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewMessageHandler(store *store.Store, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{store: store, logger: logger}
}

// GetMessages godoc
// @Summary Page through a chat's messages in send order
// @Tags messages
// @Router /api/chats/{id}/messages [get]
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	chat := loadAuthorizedChat(w, h.store, h.logger, r.PathValue("id"), userID)
	if chat == nil {
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := h.store.GetMessages(chat.ID, offset, limit)
	if err != nil {
		h.logger.Error("GetMessages: failed to get messages", "error", err, "chat_id", chat.ID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to get messages")
		return
	}

	writeJSON(w, http.StatusOK, models.MessageListResponse{
		Messages: messages,
		Count:    len(messages),
		Offset:   offset,
		Limit:    limit,
	})
}

// SendMessage godoc
// @Summary Append a message to a chat
// @Description The append and the chat's last-message preview update land
// in one transaction.
// @Tags messages
// @Router /api/chats/{id}/messages [post]
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	chat := loadAuthorizedChat(w, h.store, h.logger, r.PathValue("id"), userID)
	if chat == nil {
		return
	}

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "Message text cannot be empty")
		return
	}

	message, err := h.store.SaveMessage(chat.ID, userID, text, false)
	if err != nil {
		h.logger.Error("SendMessage: failed to save message", "error", err, "chat_id", chat.ID, "sender_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to send message")
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

// DeleteMessage godoc
// @Summary Soft delete an own message
// @Description The message body is replaced by a placeholder and its
// reactions are cleared. The chat's last-message preview is left as is.
// @Tags messages
// @Router /api/chats/{id}/messages/{messageId} [delete]
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	chat := loadAuthorizedChat(w, h.store, h.logger, r.PathValue("id"), userID)
	if chat == nil {
		return
	}

	messageID := r.PathValue("messageId")
	message, err := h.store.GetMessage(chat.ID, messageID)
	if err != nil {
		h.logger.Error("DeleteMessage: failed to get message", "error", err, "chat_id", chat.ID, "message_id", messageID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if message == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "Message not found")
		return
	}
	if message.SenderID != userID {
		writeError(w, http.StatusForbidden, codePermission, "You can only delete your own messages")
		return
	}

	deleted, err := h.store.SoftDeleteMessage(chat.ID, messageID)
	if err != nil {
		h.logger.Error("DeleteMessage: failed to delete message", "error", err, "chat_id", chat.ID, "message_id", messageID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to delete message")
		return
	}

	writeJSON(w, http.StatusOK, deleted)
}

// ToggleReaction godoc
// @Summary Toggle the caller's reaction on a message
// @Description A user holds at most one reaction per message. Reacting
// with the held symbol removes it; a different symbol replaces it.
// @Tags messages
// @Router /api/chats/{id}/messages/{messageId}/reactions [post]
func (h *MessageHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	chat := loadAuthorizedChat(w, h.store, h.logger, r.PathValue("id"), userID)
	if chat == nil {
		return
	}

	var req models.ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "Reaction symbol is required")
		return
	}

	messageID := r.PathValue("messageId")
	update, err := h.store.ToggleReaction(chat.ID, messageID, userID, req.Symbol)
	if err != nil {
		h.logger.Error("ToggleReaction: failed to toggle reaction", "error", err, "chat_id", chat.ID, "message_id", messageID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to toggle reaction")
		return
	}
	if update == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "Message not found")
		return
	}

	writeJSON(w, http.StatusOK, update)
}

// ForwardMessage godoc
// @Summary Forward a message to several contacts at once
// @Description Destinations that cannot be resolved are skipped before any
// write happens; the deliveries that do happen land in one transaction.
// @Tags messages
// @Router /api/messages/forward [post]
func (h *MessageHandler) ForwardMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	var req models.ForwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if len(req.ContactIDs) == 0 {
		writeError(w, http.StatusBadRequest, codeValidation, "At least one destination contact is required")
		return
	}

	chat := loadAuthorizedChat(w, h.store, h.logger, req.ChatID, userID)
	if chat == nil {
		return
	}

	source, err := h.store.GetMessage(chat.ID, req.MessageID)
	if err != nil {
		h.logger.Error("ForwardMessage: failed to get source message", "error", err, "chat_id", chat.ID, "message_id", req.MessageID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if source == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "Message not found")
		return
	}
	if source.IsDeleted {
		writeError(w, http.StatusBadRequest, codeValidation, "Deleted messages cannot be forwarded")
		return
	}

	sender, err := h.store.GetUserByID(userID)
	if err != nil || sender == nil {
		h.logger.Error("ForwardMessage: failed to load sender", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	forwarded, err := h.store.ForwardMessage(userID, sender.Profile(), source.Text, req.ContactIDs)
	if err != nil {
		h.logger.Error("ForwardMessage: fanout failed", "error", err, "sender_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to forward message")
		return
	}

	writeJSON(w, http.StatusOK, models.ForwardResponse{Forwarded: forwarded})
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/amikchat/amik-chat/pkg/store"
)

type ChatHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewChatHandler(store *store.Store, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{store: store, logger: logger}
}

// EnsureChat godoc
// @Summary Open (creating if needed) the one-to-one chat with another user
// @Description Idempotent: both participants racing to create the chat end
// up with the same single thread.
// @Tags chats
// @Router /api/chats [post]
func (h *ChatHandler) EnsureChat(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("EnsureChat: invalid request body", "user_id", userID, "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	otherID := strings.TrimSpace(req.OtherUserID)
	if otherID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "other_user_id is required")
		return
	}

	current, err := h.store.GetUserByID(userID)
	if err != nil || current == nil {
		h.logger.Error("EnsureChat: failed to load current user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	// Self-chat is permitted; the thread id degenerates to the repeated id.
	other := current
	if otherID != userID {
		other, err = h.store.GetUserByID(otherID)
		if err != nil {
			h.logger.Error("EnsureChat: failed to load other user", "error", err, "other_id", otherID)
			writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
			return
		}
		if other == nil {
			writeError(w, http.StatusNotFound, codeNotFound, "User not found")
			return
		}
	}

	chatID, err := h.store.EnsureChat(userID, current.Profile(), other)
	if err != nil {
		h.logger.Error("EnsureChat: failed to ensure chat", "error", err, "user_id", userID, "other_id", otherID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to open chat")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ChatID string `json:"chat_id"`
	}{ChatID: chatID})
}

// GetChats godoc
// @Summary List the caller's chats, most recent activity first
// @Tags chats
// @Router /api/chats [get]
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	chats, err := h.store.GetUserChats(userID)
	if err != nil {
		h.logger.Error("GetChats: failed to get chats", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to get chats")
		return
	}

	writeJSON(w, http.StatusOK, models.ChatListResponse{Chats: chats, Total: len(chats)})
}

// GetChat godoc
// @Summary Get a chat the caller participates in
// @Tags chats
// @Router /api/chats/{id} [get]
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	chat := loadAuthorizedChat(w, h.store, h.logger, r.PathValue("id"), userID)
	if chat == nil {
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Chat: *chat})
}

// MarkChatRead godoc
// @Summary Sweep the chat's unread messages from the other participant
// @Description Triggered on thread open. Messages authored by the reader
// stay untouched; with nothing unread the sweep writes nothing.
// @Tags chats
// @Router /api/chats/{id}/read [post]
func (h *ChatHandler) MarkChatRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	chat := loadAuthorizedChat(w, h.store, h.logger, r.PathValue("id"), userID)
	if chat == nil {
		return
	}

	flipped, err := h.store.MarkChatRead(chat.ID, userID)
	if err != nil {
		h.logger.Error("MarkChatRead: sweep failed", "error", err, "chat_id", chat.ID, "reader_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to mark chat as read")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Read int `json:"read"`
	}{Read: flipped})
}

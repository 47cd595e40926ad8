package handlers

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/amikchat/amik-chat/pkg/store"
)

// Error codes surfaced to clients. ReauthRequired is distinct from a plain
// permission failure so the client can prompt for re-login instead of a
// blind retry.
const (
	codeNotFound   = "not_found"
	codeValidation = "validation"
	codePermission = "permission_denied"
	codeReauth     = "reauth_required"
	codeInternal   = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// loadAuthorizedChat fetches the chat and enforces that the caller is a
// participant, writing the error response itself when not.
func loadAuthorizedChat(w http.ResponseWriter, s *store.Store, logger *slog.Logger, chatID, userID string) *models.Chat {
	chat, err := s.GetChat(chatID)
	if err != nil {
		logger.Error("Failed to get chat", "error", err, "chat_id", chatID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return nil
	}
	if chat == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "Chat not found")
		return nil
	}
	if !chat.HasParticipant(userID) {
		logger.Warn("User is not a chat participant", "chat_id", chatID, "user_id", userID)
		writeError(w, http.StatusForbidden, codePermission, "You are not a participant of this chat")
		return nil
	}
	return chat
}

func getIPAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/amikchat/amik-chat/config"
	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/hub"
)

// HandleWS authenticates via a token query parameter, browsers cannot set
// an Authorization header on a WebSocket handshake.
func HandleWS(h *hub.Hub, cfg *config.Config, logger *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins for development
			// In production, specify allowed origins
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, codePermission, "Token required")
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, codePermission, "Invalid token")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade failed", "error", err, "ip", getIPAddress(r))
			return
		}

		client := &hub.Client{
			Hub:         h,
			UserID:      claims.UserID,
			SessionID:   claims.SessionID,
			Conn:        conn,
			Send:        make(chan []byte, 256),
			ActiveChats: make(map[string]bool),
		}

		h.Register <- client

		go client.WritePump()
		go client.ReadPump()

		logger.Info("WebSocket connection established", "user_id", claims.UserID, "session_id", claims.SessionID)
	}
}

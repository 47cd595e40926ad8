package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/amikchat/amik-chat/pkg/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Hub tracks connected clients and the chat rooms they listen to. Writes
// never go through the socket; clients only manage subscriptions and send
// transient typing signals. Everything durable arrives via the Redis event
// channel the store publishes to.
type Hub struct {
	Storage *store.Store

	// Connected clients by userID, multiple devices per user.
	Clients map[string]map[*Client]bool

	// Room membership by chat id.
	ChatRooms map[string]map[*Client]bool

	// Control frames from client read pumps.
	Frames chan Frame

	Register   chan *Client
	Unregister chan *Client

	logger *slog.Logger
	mu     sync.RWMutex
}

// Frame is a client-to-server control frame. Sender is stamped by the read
// pump, never trusted from the wire.
type Frame struct {
	Type    string          `json:"type"`
	ChatID  string          `json:"chat_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Sender  string          `json:"-"`
}

const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FrameTyping      = "typing"
)

func NewHub(s *store.Store, logger *slog.Logger) *Hub {
	return &Hub{
		Storage:    s,
		Clients:    make(map[string]map[*Client]bool),
		ChatRooms:  make(map[string]map[*Client]bool),
		Frames:     make(chan Frame),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.handleRegister(client)

		case client := <-h.Unregister:
			h.handleUnregister(client)

		case frame := <-h.Frames:
			h.handleFrame(frame)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.Clients[client.UserID] == nil {
		h.Clients[client.UserID] = make(map[*Client]bool)
	}
	h.Clients[client.UserID][client] = true

	// A fresh connection listens to every chat the user is in. Chats
	// created later are picked up by ensureRoomMembers on their first
	// event, or by an explicit subscribe frame.
	chats, err := h.Storage.GetUserChats(client.UserID)
	if err != nil {
		h.logger.Error("Failed to load chats on register", "error", err, "user_id", client.UserID)
	} else {
		for _, chat := range chats {
			h.joinLocked(client, chat.ID)
		}
	}

	// Keep the session out of the idle-cleanup window while connected.
	go h.Storage.TouchUserSession(client.SessionID)

	h.logger.Info("Client registered", "user_id", client.UserID, "session_id", client.SessionID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.Clients[client.UserID]; ok {
		if _, present := userClients[client]; !present {
			return
		}
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.Clients, client.UserID)
		}
	} else {
		return
	}

	for chatID := range client.ActiveChats {
		h.leaveLocked(client, chatID)
	}

	close(client.Send)
	h.logger.Info("Client unregistered", "user_id", client.UserID, "session_id", client.SessionID)
}

// joinLocked and leaveLocked require h.mu held for writing.
func (h *Hub) joinLocked(client *Client, chatID string) {
	if h.ChatRooms[chatID] == nil {
		h.ChatRooms[chatID] = make(map[*Client]bool)
	}
	h.ChatRooms[chatID][client] = true
	client.ActiveChats[chatID] = true
}

func (h *Hub) leaveLocked(client *Client, chatID string) {
	if room, ok := h.ChatRooms[chatID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.ChatRooms, chatID)
		}
	}
	delete(client.ActiveChats, chatID)
}

// dropLocked disconnects a client whose send buffer is full. Requires h.mu
// held for writing.
func (h *Hub) dropLocked(client *Client) {
	userClients, ok := h.Clients[client.UserID]
	if !ok {
		return
	}
	if _, present := userClients[client]; !present {
		return
	}
	delete(userClients, client)
	if len(userClients) == 0 {
		delete(h.Clients, client.UserID)
	}
	for chatID := range client.ActiveChats {
		h.leaveLocked(client, chatID)
	}
	close(client.Send)
}

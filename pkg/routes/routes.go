package routes

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/amikchat/amik-chat/config"
	"github.com/amikchat/amik-chat/pkg/ai"
	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/handlers"
	"github.com/amikchat/amik-chat/pkg/hub"
	"github.com/amikchat/amik-chat/pkg/store"
)

func NewRouter(h *hub.Hub, s *store.Store, aiClient *ai.Client, cfg *config.Config, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	authHandler := handlers.NewAuthHandler(s, logger, cfg)
	userHandler := handlers.NewUserHandler(s, logger)
	chatHandler := handlers.NewChatHandler(s, logger)
	messageHandler := handlers.NewMessageHandler(s, logger)
	aiHandler := handlers.NewAIHandler(aiClient, logger)

	// Authentication endpoints (no auth required)
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// WebSocket endpoint, token is carried as a query parameter
	mux.HandleFunc("/ws", handlers.HandleWS(h, cfg, logger))

	// API docs
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// API endpoints behind authentication middleware
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	// User endpoints
	apiRouter.HandleFunc("GET /api/users/me", userHandler.GetCurrentUser)
	apiRouter.HandleFunc("PUT /api/users/me", userHandler.UpdateUser)
	apiRouter.HandleFunc("PATCH /api/users/me", userHandler.UpdateUser)
	apiRouter.HandleFunc("GET /api/users/me/qr", userHandler.GetContactQR)
	apiRouter.HandleFunc("GET /api/users/{id}", userHandler.GetUser)

	// Contact endpoints
	apiRouter.HandleFunc("GET /api/contacts", userHandler.GetContacts)
	apiRouter.HandleFunc("POST /api/contacts", userHandler.AddContact)

	// Chat endpoints
	apiRouter.HandleFunc("GET /api/chats", chatHandler.GetChats)
	apiRouter.HandleFunc("POST /api/chats", chatHandler.EnsureChat)
	apiRouter.HandleFunc("GET /api/chats/{id}", chatHandler.GetChat)
	apiRouter.HandleFunc("POST /api/chats/{id}/read", chatHandler.MarkChatRead)

	// Message endpoints
	apiRouter.HandleFunc("GET /api/chats/{id}/messages", messageHandler.GetMessages)
	apiRouter.HandleFunc("POST /api/chats/{id}/messages", messageHandler.SendMessage)
	apiRouter.HandleFunc("DELETE /api/chats/{id}/messages/{messageId}", messageHandler.DeleteMessage)
	apiRouter.HandleFunc("POST /api/chats/{id}/messages/{messageId}/reactions", messageHandler.ToggleReaction)
	apiRouter.HandleFunc("POST /api/messages/forward", messageHandler.ForwardMessage)

	// Text service endpoints
	apiRouter.HandleFunc("POST /api/ai/translate", aiHandler.Translate)
	apiRouter.HandleFunc("POST /api/ai/suggest-contacts", aiHandler.SuggestContacts)

	mux.Handle("/api/", auth.AuthMiddleware(apiRouter))

	return mux
}

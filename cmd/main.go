package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/amikchat/amik-chat/config"
	"github.com/amikchat/amik-chat/pkg/ai"
	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/hub"
	"github.com/amikchat/amik-chat/pkg/routes"
	"github.com/amikchat/amik-chat/pkg/store"

	_ "github.com/amikchat/amik-chat/docs"
)

// @title Amik Chat API
// @version 1.0
// @description Messaging backend: one-to-one chats, reactions, forwarding and live updates.
// @BasePath /
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if loaded := config.LoadDotEnv(); len(loaded) > 0 {
		logger.Info("Loaded env files", "files", loaded)
	}
	cfg := config.Load()

	logger.Info("Starting Amik Chat server", "port", cfg.Server.Port, "env", cfg.Server.Env)

	storage, err := store.NewStore(ctx, cfg.Database.URL, cfg.Redis.URL, logger)
	if err != nil {
		logger.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	storage.DB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	storage.DB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	storage.DB.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	if err := storage.InitSchema(); err != nil {
		logger.Error("Failed to initialize schema", "error", err)
		os.Exit(1)
	}

	go storage.StartCleanupWorker(1*time.Hour, 30*24*time.Hour)

	auth.InitJWT(cfg.JWT.Secret, cfg.JWT.Expiration)

	wsHub := hub.NewHub(storage, logger)
	go wsHub.Run()
	go wsHub.ListenToRedis(ctx)

	aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Timeout)

	router := routes.NewRouter(wsHub, storage, aiClient, cfg, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("Server is ready to accept connections", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

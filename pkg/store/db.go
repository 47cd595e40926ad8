package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
)

type Store struct {
	DB     *sql.DB
	RDB    *redis.Client
	Ctx    context.Context
	logger *slog.Logger
}

func NewStore(ctx context.Context, pgConnStr, redisURL string, logger *slog.Logger) (*Store, error) {
	var db *sql.DB
	var err error

	logger.Info("Initializing store", "redis_url", redisURL)

	// Retry Postgres connection 5 times
	for i := 0; i < 5; i++ {
		db, err = sql.Open("postgres", pgConnStr)
		if err == nil {
			err = db.Ping()
			if err == nil {
				logger.Info("PostgreSQL connection successful", "attempt", i+1)
				break
			}
		}
		logger.Warn("Waiting for PostgreSQL...", "attempt", i+1, "max_attempts", 5, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", "error", err)
		return nil, err
	}

	// Pool sizing is applied by the caller from config.
	db.SetConnMaxLifetime(5 * time.Minute)

	rdb, err := InitRedis(redisURL, logger)
	if err != nil {
		return nil, err
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to ping Redis", "error", err)
		return nil, err
	}

	logger.Info("Successfully connected to PostgreSQL and Redis")

	return &Store{
		DB:     db,
		RDB:    rdb,
		Ctx:    ctx,
		logger: logger,
	}, nil
}

func (s *Store) InitSchema() error {
	s.logger.Info("Initializing database schema")

	schema := `
		-- Users table
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		-- User sessions
		CREATE TABLE IF NOT EXISTS user_sessions (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			session_id UUID PRIMARY KEY,
			device_info TEXT,
			ip_address TEXT,
			last_active TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE
		);

		-- Contacts: directional, owner -> contact, never mutated after insert
		CREATE TABLE IF NOT EXISTS contacts (
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			contact_id UUID REFERENCES users(id) ON DELETE CASCADE,
			added_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, contact_id)
		);

		CREATE INDEX IF NOT EXISTS idx_contacts_user_id ON contacts(user_id);

		-- Chats: id is the deterministic join of the sorted participant pair,
		-- so the primary key enforces one chat per unordered pair.
		CREATE TABLE IF NOT EXISTS chats (
			id TEXT PRIMARY KEY,
			participant_ids TEXT[] NOT NULL,
			participants_info JSONB NOT NULL,
			last_message JSONB,
			last_activity TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_chats_participant_ids ON chats USING GIN(participant_ids);
		CREATE INDEX IF NOT EXISTS idx_chats_last_activity ON chats(last_activity);

		-- Messages: seq breaks sent_at ties so display order is always total.
		CREATE TABLE IF NOT EXISTS messages (
			seq BIGSERIAL,
			id UUID PRIMARY KEY,
			chat_id TEXT REFERENCES chats(id) ON DELETE CASCADE,
			sender_id UUID REFERENCES users(id),
			content TEXT NOT NULL,
			sent_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			is_read BOOLEAN DEFAULT FALSE,
			is_deleted BOOLEAN DEFAULT FALSE,
			is_forwarded BOOLEAN DEFAULT FALSE,
			reactions JSONB NOT NULL DEFAULT '{}'
		);

		CREATE INDEX IF NOT EXISTS idx_messages_chat_id_sent_at ON messages(chat_id, sent_at, seq);
		CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(chat_id) WHERE is_read = FALSE;
	`

	_, err := s.DB.Exec(schema)
	if err != nil {
		s.logger.Error("Failed to initialize schema", "error", err)
		return err
	}

	s.logger.Info("Database schema initialized successfully")
	return nil
}

func (s *Store) Close() error {
	s.logger.Info("Closing store connections")

	var errs []error

	if err := s.DB.Close(); err != nil {
		s.logger.Error("Failed to close PostgreSQL connection", "error", err)
		errs = append(errs, fmt.Errorf("postgres close error: %w", err))
	}

	if err := s.RDB.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", "error", err)
		errs = append(errs, fmt.Errorf("redis close error: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing store: %v", errs)
	}

	s.logger.Info("Store connections closed successfully")
	return nil
}

// StartCleanupWorker periodically deactivates sessions idle past maxAge.
func (s *Store) StartCleanupWorker(interval, maxAge time.Duration) {
	s.logger.Info("Starting cleanup worker", "interval", interval, "max_age", maxAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		result, err := s.DB.Exec(`
			UPDATE user_sessions
			SET is_active = FALSE
			WHERE is_active = TRUE AND last_active < NOW() - make_interval(secs => $1)
		`, maxAge.Seconds())
		if err != nil {
			s.logger.Error("Error cleaning up sessions", "error", err)
			continue
		}
		if rows, _ := result.RowsAffected(); rows > 0 {
			s.logger.Debug("Deactivated stale sessions", "updated_rows", rows)
		}
	}
}

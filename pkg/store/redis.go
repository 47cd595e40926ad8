package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/go-redis/redis/v8"
)

// EventChannel is the Redis pub/sub channel carrying chat change events to
// every hub instance.
const EventChannel = "chat_events"

func InitRedis(url string, logger *slog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Error("Failed to parse Redis URL", "error", err)
		return nil, err
	}

	opt.PoolSize = 100
	opt.MinIdleConns = 10
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second

	return redis.NewClient(opt), nil
}

// Redis cache keys
func userChatsKey(userID string) string {
	return fmt.Sprintf("chats:%s", userID)
}

func chatMessagesKey(chatID string) string {
	return fmt.Sprintf("messages:%s", chatID)
}

// Cache helpers
func (s *Store) CacheUserChats(userID string, chats []models.Chat) error {
	data, err := json.Marshal(chats)
	if err != nil {
		return err
	}
	return s.RDB.Set(s.Ctx, userChatsKey(userID), data, 10*time.Minute).Err()
}

func (s *Store) GetCachedUserChats(userID string) ([]models.Chat, error) {
	data, err := s.RDB.Get(s.Ctx, userChatsKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var chats []models.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *Store) InvalidateUserChatsCache(userID string) error {
	return s.RDB.Del(s.Ctx, userChatsKey(userID)).Err()
}

func (s *Store) CacheChatMessages(chatID string, messages []models.Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return s.RDB.Set(s.Ctx, chatMessagesKey(chatID), data, 5*time.Minute).Err()
}

func (s *Store) GetCachedChatMessages(chatID string) ([]models.Message, error) {
	data, err := s.RDB.Get(s.Ctx, chatMessagesKey(chatID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Store) InvalidateChatMessagesCache(chatID string) error {
	return s.RDB.Del(s.Ctx, chatMessagesKey(chatID)).Err()
}

// publishEvent fans a chat change out to every hub instance. Delivery is
// best-effort: the write already committed, a dropped event only delays the
// next render until refresh.
func (s *Store) publishEvent(eventType models.EventType, chatID, senderID string, payload interface{}) {
	event, err := models.NewChatEvent(eventType, chatID, senderID, payload)
	if err != nil {
		s.logger.Error("Failed to build chat event", "error", err, "type", eventType, "chat_id", chatID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal chat event", "error", err, "type", eventType, "chat_id", chatID)
		return
	}

	if err := s.RDB.Publish(s.Ctx, EventChannel, data).Err(); err != nil {
		s.logger.Error("Failed to publish chat event", "error", err, "type", eventType, "chat_id", chatID)
	}
}

// invalidateChatCaches drops the message cache for the chat and the chat-list
// cache of every participant. Called after a committed write.
func (s *Store) invalidateChatCaches(chatID string, participantIDs []string) {
	if err := s.InvalidateChatMessagesCache(chatID); err != nil {
		s.logger.Debug("Failed to invalidate message cache", "error", err, "chat_id", chatID)
	}
	for _, userID := range participantIDs {
		if err := s.InvalidateUserChatsCache(userID); err != nil {
			s.logger.Debug("Failed to invalidate chat-list cache", "error", err, "user_id", userID)
		}
	}
}

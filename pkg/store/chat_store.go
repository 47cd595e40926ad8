package store

import (
	"database/sql"
	"encoding/json"

	"github.com/amikchat/amik-chat/pkg/chatid"
	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/lib/pq"
)

// EnsureChat creates the one-to-one chat for the pair if it does not exist
// and returns its id. Both participants racing to create the same chat hit
// the same primary key; ON CONFLICT DO NOTHING turns the loser into a no-op,
// so exactly one chat document ever exists per pair.
func (s *Store) EnsureChat(currentUserID string, currentProfile models.Profile, other *models.User) (string, error) {
	chatID := chatid.ThreadID(currentUserID, other.ID)

	s.logger.Debug("Ensuring chat", "chat_id", chatID, "user_id", currentUserID, "other_id", other.ID)

	info := map[string]models.Profile{
		currentUserID: currentProfile,
		other.ID:      other.Profile(),
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		s.logger.Error("Failed to marshal participants info", "error", err, "chat_id", chatID)
		return "", err
	}

	participants := chatid.Participants(currentUserID, other.ID)

	result, err := s.DB.Exec(`
		INSERT INTO chats (id, participant_ids, participants_info)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		chatID, pq.Array(participants), infoJSON,
	)
	if err != nil {
		s.logger.Error("Failed to ensure chat", "error", err, "chat_id", chatID)
		return "", err
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		s.logger.Info("Chat created", "chat_id", chatID, "user_id", currentUserID, "other_id", other.ID)
		s.invalidateChatCaches(chatID, participants)
	}

	return chatID, nil
}

func (s *Store) GetChat(chatID string) (*models.Chat, error) {
	s.logger.Debug("Getting chat", "chat_id", chatID)

	query := `
		SELECT id, participant_ids, participants_info, last_message, last_activity, created_at
		FROM chats WHERE id = $1`

	chat, err := scanChat(s.DB.QueryRow(query, chatID))
	if err == sql.ErrNoRows {
		s.logger.Debug("Chat not found", "chat_id", chatID)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to get chat", "error", err, "chat_id", chatID)
		return nil, err
	}

	return chat, nil
}

// GetUserChats lists the user's chats ordered by most recent activity, each
// with its unread count from the other participant's perspective.
func (s *Store) GetUserChats(userID string) ([]models.Chat, error) {
	s.logger.Debug("Getting user chats", "user_id", userID)

	// Try cache first
	if cached, err := s.GetCachedUserChats(userID); err == nil && cached != nil {
		s.logger.Debug("Retrieved user chats from cache", "user_id", userID, "chat_count", len(cached))
		return cached, nil
	}

	query := `
		SELECT c.id, c.participant_ids, c.participants_info, c.last_message, c.last_activity, c.created_at,
		       (SELECT COUNT(*) FROM messages m
		        WHERE m.chat_id = c.id AND m.is_read = FALSE AND m.sender_id <> $1) AS unread_count
		FROM chats c
		WHERE $1 = ANY(c.participant_ids)
		ORDER BY c.last_activity DESC`

	rows, err := s.DB.Query(query, userID)
	if err != nil {
		s.logger.Error("Failed to query user chats", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		var participantIDs pq.StringArray
		var infoJSON []byte
		var lastMessageJSON []byte

		err := rows.Scan(
			&chat.ID, &participantIDs, &infoJSON, &lastMessageJSON,
			&chat.LastActivity, &chat.CreatedAt, &chat.UnreadCount,
		)
		if err != nil {
			s.logger.Error("Failed to scan chat row", "error", err, "user_id", userID)
			return nil, err
		}

		chat.ParticipantIDs = participantIDs
		if err := json.Unmarshal(infoJSON, &chat.ParticipantsInfo); err != nil {
			s.logger.Error("Failed to decode participants info", "error", err, "chat_id", chat.ID)
			return nil, err
		}
		if len(lastMessageJSON) > 0 {
			if err := json.Unmarshal(lastMessageJSON, &chat.LastMessage); err != nil {
				s.logger.Error("Failed to decode last message", "error", err, "chat_id", chat.ID)
				return nil, err
			}
		}

		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("Retrieved user chats from database", "user_id", userID, "chat_count", len(chats))

	// Cache the result
	go s.CacheUserChats(userID, chats)

	return chats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChat(row rowScanner) (*models.Chat, error) {
	chat := &models.Chat{}
	var participantIDs pq.StringArray
	var infoJSON []byte
	var lastMessageJSON []byte

	err := row.Scan(
		&chat.ID, &participantIDs, &infoJSON, &lastMessageJSON,
		&chat.LastActivity, &chat.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	chat.ParticipantIDs = participantIDs
	if err := json.Unmarshal(infoJSON, &chat.ParticipantsInfo); err != nil {
		return nil, err
	}
	if len(lastMessageJSON) > 0 {
		if err := json.Unmarshal(lastMessageJSON, &chat.LastMessage); err != nil {
			return nil, err
		}
	}

	return chat, nil
}

package store

import (
	"database/sql"
	"encoding/json"

	"github.com/amikchat/amik-chat/pkg/chatid"
	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SaveMessage appends a message to a chat and mirrors it into the chat's
// last_message summary. Both writes ride one transaction: there is no
// observable state with the message present and the summary stale.
func (s *Store) SaveMessage(chatID, senderID, text string, forwarded bool) (*models.Message, error) {
	s.logger.Info("Saving message", "chat_id", chatID, "sender_id", senderID, "forwarded", forwarded)

	tx, err := s.DB.Begin()
	if err != nil {
		s.logger.Error("Failed to begin transaction for SaveMessage", "error", err)
		return nil, err
	}
	defer tx.Rollback()

	message, err := appendMessage(tx, chatID, senderID, text, forwarded)
	if err != nil {
		s.logger.Error("Failed to insert message", "error", err, "chat_id", chatID, "sender_id", senderID)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction for SaveMessage", "error", err)
		return nil, err
	}

	participants, _ := chatid.Split(chatID)
	s.invalidateChatCaches(chatID, participants)
	s.publishEvent(models.EventMessage, chatID, senderID, message)

	s.logger.Info("Message saved successfully", "message_id", message.ID, "chat_id", chatID)
	return message, nil
}

// appendMessage inserts a message row and overwrites the owning chat's
// last_message inside the caller's transaction. The timestamp is
// server-assigned; seq breaks ties so ordering stays total.
func appendMessage(tx *sql.Tx, chatID, senderID, text string, forwarded bool) (*models.Message, error) {
	message := &models.Message{
		ID:          uuid.New().String(),
		ChatID:      chatID,
		SenderID:    senderID,
		Text:        text,
		IsRead:      false,
		IsForwarded: forwarded,
		Reactions:   models.Reactions{},
	}

	err := tx.QueryRow(`
		INSERT INTO messages (id, chat_id, sender_id, content, is_forwarded)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING sent_at, seq`,
		message.ID, chatID, senderID, text, forwarded,
	).Scan(&message.SentAt, &message.Seq)
	if err != nil {
		return nil, err
	}

	summary := models.LastMessage{
		Text:     text,
		SenderID: senderID,
		SentAt:   message.SentAt,
		IsRead:   false,
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		UPDATE chats SET last_message = $2, last_activity = $3 WHERE id = $1`,
		chatID, summaryJSON, message.SentAt,
	)
	if err != nil {
		return nil, err
	}

	return message, nil
}

func (s *Store) GetMessage(chatID, messageID string) (*models.Message, error) {
	s.logger.Debug("Getting message", "chat_id", chatID, "message_id", messageID)

	query := `
		SELECT id, chat_id, sender_id, content, sent_at, seq, is_read, is_deleted, is_forwarded, reactions
		FROM messages WHERE id = $1 AND chat_id = $2`

	message, err := scanMessage(s.DB.QueryRow(query, messageID, chatID))
	if err == sql.ErrNoRows {
		s.logger.Debug("Message not found", "chat_id", chatID, "message_id", messageID)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to get message", "error", err, "message_id", messageID)
		return nil, err
	}

	return message, nil
}

// GetMessages returns a chat's messages in display order: ascending
// timestamp, insertion order breaking ties.
func (s *Store) GetMessages(chatID string, offset, limit int) ([]models.Message, error) {
	s.logger.Debug("Getting messages", "chat_id", chatID, "offset", offset, "limit", limit)

	// Try cache first
	if offset == 0 {
		if cached, err := s.GetCachedChatMessages(chatID); err == nil && cached != nil && len(cached) <= limit {
			s.logger.Debug("Retrieved messages from cache", "chat_id", chatID, "message_count", len(cached))
			return cached, nil
		}
	}

	query := `
		SELECT id, chat_id, sender_id, content, sent_at, seq, is_read, is_deleted, is_forwarded, reactions
		FROM messages
		WHERE chat_id = $1
		ORDER BY sent_at ASC, seq ASC
		LIMIT $2 OFFSET $3`

	rows, err := s.DB.Query(query, chatID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to query messages", "error", err, "chat_id", chatID)
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			s.logger.Error("Failed to scan message row", "error", err, "chat_id", chatID)
			return nil, err
		}
		messages = append(messages, *message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("Retrieved messages from database", "chat_id", chatID, "message_count", len(messages))

	// Cache first page
	if offset == 0 {
		go s.CacheChatMessages(chatID, messages)
	}

	return messages, nil
}

// SoftDeleteMessage replaces the message text with the fixed placeholder,
// marks it deleted and clears its reactions. Idempotent: repeating it
// produces the same state. The chat's last_message preview is deliberately
// left untouched.
func (s *Store) SoftDeleteMessage(chatID, messageID string) (*models.Message, error) {
	s.logger.Info("Soft-deleting message", "chat_id", chatID, "message_id", messageID)

	query := `
		UPDATE messages
		SET content = $3, is_deleted = TRUE, reactions = '{}'
		WHERE id = $1 AND chat_id = $2
		RETURNING id, chat_id, sender_id, content, sent_at, seq, is_read, is_deleted, is_forwarded, reactions`

	message, err := scanMessage(s.DB.QueryRow(query, messageID, chatID, models.DeletedPlaceholder))
	if err == sql.ErrNoRows {
		s.logger.Debug("Message not found for delete", "chat_id", chatID, "message_id", messageID)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to soft-delete message", "error", err, "message_id", messageID)
		return nil, err
	}

	if err := s.InvalidateChatMessagesCache(chatID); err != nil {
		s.logger.Debug("Failed to invalidate message cache", "error", err, "chat_id", chatID)
	}
	s.publishEvent(models.EventDelete, chatID, message.SenderID, message)

	s.logger.Info("Message soft-deleted", "chat_id", chatID, "message_id", messageID)
	return message, nil
}

// MarkChatRead flips every unread message not authored by the reader, and if
// anything flipped also flips the last_message mirror when it was authored by
// the other participant. A chat with nothing unread performs no writes.
// Returns the number of messages flipped.
func (s *Store) MarkChatRead(chatID, readerID string) (int, error) {
	s.logger.Debug("Marking chat as read", "chat_id", chatID, "reader_id", readerID)

	tx, err := s.DB.Begin()
	if err != nil {
		s.logger.Error("Failed to begin transaction for MarkChatRead", "error", err)
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		UPDATE messages
		SET is_read = TRUE
		WHERE chat_id = $1 AND is_read = FALSE AND sender_id <> $2
		RETURNING id`,
		chatID, readerID,
	)
	if err != nil {
		s.logger.Error("Failed to sweep unread messages", "error", err, "chat_id", chatID, "reader_id", readerID)
		return 0, err
	}

	var flipped []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		flipped = append(flipped, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(flipped) == 0 {
		// Nothing unread: short-circuit without touching the summary.
		return 0, nil
	}

	_, err = tx.Exec(`
		UPDATE chats
		SET last_message = jsonb_set(last_message, '{is_read}', 'true'::jsonb)
		WHERE id = $1 AND last_message IS NOT NULL AND last_message->>'sender_id' <> $2`,
		chatID, readerID,
	)
	if err != nil {
		s.logger.Error("Failed to flip last message read flag", "error", err, "chat_id", chatID)
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction for MarkChatRead", "error", err)
		return 0, err
	}

	participants, _ := chatid.Split(chatID)
	s.invalidateChatCaches(chatID, participants)
	s.publishEvent(models.EventRead, chatID, readerID, models.ReadSweep{
		ChatID:     chatID,
		ReaderID:   readerID,
		MessageIDs: flipped,
	})

	s.logger.Info("Chat marked as read", "chat_id", chatID, "reader_id", readerID, "flipped", len(flipped))
	return len(flipped), nil
}

// ToggleReaction applies one user's reaction to a message and stores the
// merged map. Read-modify-write without row locking: two concurrent toggles
// on the same message are last-write-wins.
func (s *Store) ToggleReaction(chatID, messageID, userID, symbol string) (*models.ReactionUpdate, error) {
	s.logger.Debug("Toggling reaction",
		"chat_id", chatID, "message_id", messageID, "user_id", userID, "symbol", symbol)

	// Deleted messages had their reactions cleared; treat them as gone so a
	// late toggle cannot repopulate the map.
	var reactionsJSON []byte
	err := s.DB.QueryRow(`
		SELECT reactions FROM messages WHERE id = $1 AND chat_id = $2 AND is_deleted = FALSE`,
		messageID, chatID,
	).Scan(&reactionsJSON)
	if err == sql.ErrNoRows {
		s.logger.Debug("Message not found for reaction", "chat_id", chatID, "message_id", messageID)
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to read reactions", "error", err, "message_id", messageID)
		return nil, err
	}

	reactions := models.Reactions{}
	if len(reactionsJSON) > 0 {
		if err := json.Unmarshal(reactionsJSON, &reactions); err != nil {
			s.logger.Error("Failed to decode reactions", "error", err, "message_id", messageID)
			return nil, err
		}
	}

	reactions.Toggle(userID, symbol)

	merged, err := json.Marshal(reactions)
	if err != nil {
		return nil, err
	}

	// Same guard on the write: a delete landing between the read and this
	// update must win.
	_, err = s.DB.Exec(`
		UPDATE messages SET reactions = $3 WHERE id = $1 AND chat_id = $2 AND is_deleted = FALSE`,
		messageID, chatID, merged,
	)
	if err != nil {
		s.logger.Error("Failed to write reactions", "error", err, "message_id", messageID)
		return nil, err
	}

	if err := s.InvalidateChatMessagesCache(chatID); err != nil {
		s.logger.Debug("Failed to invalidate message cache", "error", err, "chat_id", chatID)
	}

	update := &models.ReactionUpdate{
		ChatID:    chatID,
		MessageID: messageID,
		Reactions: reactions,
	}
	s.publishEvent(models.EventReaction, chatID, userID, update)

	s.logger.Info("Reaction toggled",
		"chat_id", chatID, "message_id", messageID, "user_id", userID, "symbol", symbol)
	return update, nil
}

// ForwardMessage fans a message's text out to the given destinations.
// Unresolvable destinations are dropped up front; for the survivors every
// thread creation, message copy and summary update commits in one
// transaction. Reactions are not copied. Returns the number of destinations
// targeted.
func (s *Store) ForwardMessage(senderID string, senderProfile models.Profile, text string, destinationIDs []string) (int, error) {
	s.logger.Info("Forwarding message", "sender_id", senderID, "destinations", len(destinationIDs))

	// Pre-batch filter: resolve every destination before any write.
	resolved, err := s.GetUsersByIDs(destinationIDs)
	if err != nil {
		return 0, err
	}
	byID := make(map[string]models.User, len(resolved))
	for _, u := range resolved {
		byID[u.ID] = u
	}

	var destinations []models.User
	seen := make(map[string]bool, len(destinationIDs))
	for _, destID := range destinationIDs {
		if seen[destID] {
			continue
		}
		seen[destID] = true
		dest, ok := byID[destID]
		if !ok {
			s.logger.Warn("Skipping unresolvable forward destination", "sender_id", senderID, "dest_id", destID)
			continue
		}
		destinations = append(destinations, dest)
	}

	if len(destinations) == 0 {
		return 0, nil
	}

	tx, err := s.DB.Begin()
	if err != nil {
		s.logger.Error("Failed to begin transaction for ForwardMessage", "error", err)
		return 0, err
	}
	defer tx.Rollback()

	type delivery struct {
		chatID  string
		message *models.Message
	}
	deliveries := make([]delivery, 0, len(destinations))

	for _, dest := range destinations {
		chatID := chatid.ThreadID(senderID, dest.ID)

		info := map[string]models.Profile{
			senderID: senderProfile,
			dest.ID:  dest.Profile(),
		}
		infoJSON, err := json.Marshal(info)
		if err != nil {
			return 0, err
		}

		_, err = tx.Exec(`
			INSERT INTO chats (id, participant_ids, participants_info)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING`,
			chatID, pq.Array(chatid.Participants(senderID, dest.ID)), infoJSON,
		)
		if err != nil {
			s.logger.Error("Failed to ensure chat for forward", "error", err, "chat_id", chatID)
			return 0, err
		}

		message, err := appendMessage(tx, chatID, senderID, text, true)
		if err != nil {
			s.logger.Error("Failed to append forwarded message", "error", err, "chat_id", chatID)
			return 0, err
		}

		deliveries = append(deliveries, delivery{chatID: chatID, message: message})
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction for ForwardMessage", "error", err)
		return 0, err
	}

	for _, d := range deliveries {
		participants, _ := chatid.Split(d.chatID)
		s.invalidateChatCaches(d.chatID, participants)
		s.publishEvent(models.EventMessage, d.chatID, senderID, d.message)
	}

	s.logger.Info("Message forwarded", "sender_id", senderID, "delivered", len(deliveries))
	return len(deliveries), nil
}

func scanMessage(row rowScanner) (*models.Message, error) {
	message := &models.Message{}
	var reactionsJSON []byte

	err := row.Scan(
		&message.ID, &message.ChatID, &message.SenderID, &message.Text,
		&message.SentAt, &message.Seq, &message.IsRead, &message.IsDeleted,
		&message.IsForwarded, &reactionsJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(reactionsJSON) > 0 {
		if err := json.Unmarshal(reactionsJSON, &message.Reactions); err != nil {
			return nil, err
		}
	}
	if message.Reactions == nil {
		message.Reactions = models.Reactions{}
	}

	return message, nil
}

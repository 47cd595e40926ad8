package store

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amikchat/amik-chat/pkg/models"
)

// newTestStore backs the store with a mocked database. The Redis client
// points at a closed port, so cache and event calls fail fast and are
// swallowed as the best-effort paths they are.
func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Store{
		DB:     db,
		RDB:    redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1}),
		Ctx:    context.Background(),
		logger: slog.New(slog.DiscardHandler),
	}, mock
}

func messageColumns() []string {
	return []string{"id", "chat_id", "sender_id", "content", "sent_at", "seq", "is_read", "is_deleted", "is_forwarded", "reactions"}
}

func TestMarkChatReadSkipsReaderOwnMessages(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	// The sweep predicate must exclude the reader's own messages.
	mock.ExpectQuery(regexp.QuoteMeta("is_read = FALSE AND sender_id <> $2")).
		WithArgs("a_b", "a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m1").AddRow("m2"))
	// The summary flip is guarded on the other participant being the author.
	mock.ExpectExec(regexp.QuoteMeta("last_message IS NOT NULL AND last_message->>'sender_id' <> $2")).
		WithArgs("a_b", "a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	flipped, err := s.MarkChatRead("a_b", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, flipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkChatReadNothingUnreadWritesNothing(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("is_read = FALSE AND sender_id <> $2")).
		WithArgs("a_b", "a").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// No summary update, no commit: the transaction rolls back untouched.
	mock.ExpectRollback()

	flipped, err := s.MarkChatRead("a_b", "a")
	require.NoError(t, err)
	assert.Equal(t, 0, flipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteMessageIsIdempotent(t *testing.T) {
	s, mock := newTestStore(t)

	sentAt := time.Now()
	deletedRow := func() *sqlmock.Rows {
		return sqlmock.NewRows(messageColumns()).
			AddRow("m1", "a_b", "a", models.DeletedPlaceholder, sentAt, int64(7), true, true, false, []byte(`{}`))
	}

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("SET content = $3, is_deleted = TRUE, reactions = '{}'")).
			WithArgs("m1", "a_b", models.DeletedPlaceholder).
			WillReturnRows(deletedRow())
	}

	first, err := s.SoftDeleteMessage("a_b", "m1")
	require.NoError(t, err)
	second, err := s.SoftDeleteMessage("a_b", "m1")
	require.NoError(t, err)

	for _, message := range []*models.Message{first, second} {
		assert.Equal(t, models.DeletedPlaceholder, message.Text)
		assert.True(t, message.IsDeleted)
		assert.Empty(t, message.Reactions)
	}
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForwardMessageSkipsUnresolvableDestinations(t *testing.T) {
	s, mock := newTestStore(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "avatar_url", "created_at", "updated_at"}).
			AddRow("b", "b@example.com", "Bee", "", now, now))

	// Only the resolvable destination reaches the transaction.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chats")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO messages")).
		WillReturnRows(sqlmock.NewRows([]string{"sent_at", "seq"}).AddRow(now, int64(1)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE chats SET last_message")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	forwarded, err := s.ForwardMessage("a", models.Profile{Name: "Aye"}, "hello", []string{"b", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 1, forwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForwardMessageAllUnresolvableWritesNothing(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "avatar_url", "created_at", "updated_at"}))

	forwarded, err := s.ForwardMessage("a", models.Profile{Name: "Aye"}, "hello", []string{"ghost"})
	require.NoError(t, err)
	assert.Equal(t, 0, forwarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleReactionRejectsDeletedMessage(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT reactions FROM messages WHERE id = $1 AND chat_id = $2 AND is_deleted = FALSE")).
		WithArgs("m1", "a_b").
		WillReturnError(sql.ErrNoRows)

	update, err := s.ToggleReaction("a_b", "m1", "a", "👍")
	require.NoError(t, err)
	assert.Nil(t, update)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleReactionMergesAndWritesBack(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT reactions FROM messages")).
		WithArgs("m1", "a_b").
		WillReturnRows(sqlmock.NewRows([]string{"reactions"}).AddRow([]byte(`{"👍":["b"]}`)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET reactions = $3 WHERE id = $1 AND chat_id = $2 AND is_deleted = FALSE")).
		WithArgs("m1", "a_b", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	update, err := s.ToggleReaction("a_b", "m1", "a", "👍")
	require.NoError(t, err)
	require.NotNil(t, update)
	assert.ElementsMatch(t, []string{"a", "b"}, update.Reactions["👍"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

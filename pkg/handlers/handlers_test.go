package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/qr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// authedRequest builds a request carrying a valid token for userID and runs
// it through the real middleware into the handler.
func authedRequest(t *testing.T, handler http.HandlerFunc, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	auth.InitJWT("test-secret", time.Hour)
	token, _, err := auth.GenerateJWT(userID, "test-session")
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	auth.AuthMiddleware(handler).ServeHTTP(rec, req)
	return rec
}

func TestEndpointsRejectMissingToken(t *testing.T) {
	chatHandler := NewChatHandler(nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
	rec := httptest.NewRecorder()
	auth.AuthMiddleware(http.HandlerFunc(chatHandler.GetChats)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnsureChatRequiresOtherUser(t *testing.T) {
	chatHandler := NewChatHandler(nil, testLogger())

	rec := authedRequest(t, chatHandler.EnsureChat, http.MethodPost, "/api/chats", "user1", `{"other_user_id":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestForwardRequiresDestinations(t *testing.T) {
	messageHandler := NewMessageHandler(nil, testLogger())

	rec := authedRequest(t, messageHandler.ForwardMessage, http.MethodPost, "/api/messages/forward",
		"user1", `{"chat_id":"a_b","message_id":"m1","contact_ids":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddContactRejectsBadQRPayload(t *testing.T) {
	userHandler := NewUserHandler(nil, testLogger())

	rec := authedRequest(t, userHandler.AddContact, http.MethodPost, "/api/contacts",
		"user1", `{"qr_payload":"https://example.com/user/42"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestAddContactRejectsSelf(t *testing.T) {
	userHandler := NewUserHandler(nil, testLogger())

	rec := authedRequest(t, userHandler.AddContact, http.MethodPost, "/api/contacts",
		"user1", `{"contact_id":"user1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "yourself")
}

func TestGetContactQRReturnsScannablePayload(t *testing.T) {
	userHandler := NewUserHandler(nil, testLogger())

	rec := authedRequest(t, userHandler.GetContactQR, http.MethodGet, "/api/users/me/qr", "user42", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), qr.Encode("user42"))
}

func TestTranslateValidatesInput(t *testing.T) {
	aiHandler := NewAIHandler(nil, testLogger())

	rec := authedRequest(t, aiHandler.Translate, http.MethodPost, "/api/ai/translate",
		"user1", `{"text":"","target_language":"ur"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Text)
		assert.Equal(t, "ur", req.TargetLanguage)

		json.NewEncoder(w).Encode(translateResponse{TranslatedText: "سلام"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", time.Second)
	got, err := client.Translate(context.Background(), "hello", "ur")
	require.NoError(t, err)
	assert.Equal(t, "سلام", got)
}

func TestTranslateServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	_, err := client.Translate(context.Background(), "hello", "ur")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSuggestContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suggest-contacts", r.URL.Path)
		json.NewEncoder(w).Encode(suggestResponse{
			Suggestions: []ContactSuggestion{{Name: "Ali", Reason: "shares your study group"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	got, err := client.SuggestContacts(context.Background(), "people from my class")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ali", got[0].Name)
}

func TestTranslateContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, "", time.Second)
	_, err := client.Translate(ctx, "hello", "ur")
	require.Error(t, err)
}

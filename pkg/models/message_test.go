package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionsToggleOnOff(t *testing.T) {
	r := Reactions{}

	r.Toggle("u1", "👍")
	assert.Equal(t, Reactions{"👍": {"u1"}}, r)

	// Same symbol again toggles off, and the empty set is dropped.
	r.Toggle("u1", "👍")
	assert.Empty(t, r)
	assert.NotContains(t, r, "👍")
}

func TestReactionsExclusivePerUser(t *testing.T) {
	r := Reactions{}

	r.Toggle("u1", "👍")
	r.Toggle("u1", "❤️")

	assert.False(t, r.Has("u1", "👍"))
	assert.True(t, r.Has("u1", "❤️"))
	assert.Equal(t, Reactions{"❤️": {"u1"}}, r)
}

func TestReactionsMultipleUsersSameSymbol(t *testing.T) {
	r := Reactions{}

	r.Toggle("u1", "👍")
	r.Toggle("u2", "👍")
	assert.ElementsMatch(t, []string{"u1", "u2"}, r["👍"])

	// u1 leaving keeps u2 in place.
	r.Toggle("u1", "👍")
	assert.Equal(t, []string{"u2"}, r["👍"])
}

func TestReactionsSwitchKeepsOthers(t *testing.T) {
	r := Reactions{
		"👍": {"u1", "u2"},
		"😂": {"u3"},
	}

	r.Toggle("u1", "😂")

	assert.Equal(t, []string{"u2"}, r["👍"])
	assert.ElementsMatch(t, []string{"u3", "u1"}, r["😂"])
}

func TestChatOtherParticipant(t *testing.T) {
	chat := &Chat{ParticipantIDs: []string{"u1", "u2"}}
	assert.Equal(t, "u2", chat.OtherParticipant("u1"))
	assert.Equal(t, "u1", chat.OtherParticipant("u2"))

	selfChat := &Chat{ParticipantIDs: []string{"u1", "u1"}}
	assert.Equal(t, "u1", selfChat.OtherParticipant("u1"))
}

func TestChatHasParticipant(t *testing.T) {
	chat := &Chat{ParticipantIDs: []string{"u1", "u2"}}
	assert.True(t, chat.HasParticipant("u1"))
	assert.False(t, chat.HasParticipant("u3"))
}

func TestMessageListResponseCarriesPagingWindow(t *testing.T) {
	resp := MessageListResponse{
		Messages: []Message{{ID: "m1"}},
		Count:    1,
		Offset:   50,
		Limit:    50,
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Count is the page size; clients detect the last page by comparing it
	// against limit, so the window fields must survive serialization.
	for _, key := range []string{"messages", "count", "offset", "limit"} {
		assert.Contains(t, decoded, key)
	}
}

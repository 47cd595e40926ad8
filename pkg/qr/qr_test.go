package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	payload := Encode("3f1c2d9e")
	assert.Equal(t, "amik-chat-user://3f1c2d9e", payload)

	userID, err := Parse(payload)
	assert.NoError(t, err)
	assert.Equal(t, "3f1c2d9e", userID)
}

func TestParseRejectsWrongScheme(t *testing.T) {
	_, err := Parse("https://example.com/u/3f1c2d9e")
	assert.ErrorIs(t, err, ErrInvalidScheme)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrInvalidScheme)
}

func TestParseRejectsEmptyUserID(t *testing.T) {
	_, err := Parse("amik-chat-user://")
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, err = Parse("amik-chat-user://   ")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

// Package qr encodes and decodes the contact QR payload. Rendering and
// camera scanning happen on the client; the server only understands the
// payload format.
package qr

import (
	"errors"
	"strings"
)

// Scheme prefixes every contact QR payload.
const Scheme = "amik-chat-user://"

var (
	ErrInvalidScheme = errors.New("qr: payload does not start with " + Scheme)
	ErrEmptyUserID   = errors.New("qr: payload carries no user id")
)

// Encode builds the QR payload for a user id.
func Encode(userID string) string {
	return Scheme + userID
}

// Parse validates a scanned payload and extracts the user id.
func Parse(payload string) (string, error) {
	if !strings.HasPrefix(payload, Scheme) {
		return "", ErrInvalidScheme
	}
	userID := strings.TrimSpace(strings.TrimPrefix(payload, Scheme))
	if userID == "" {
		return "", ErrEmptyUserID
	}
	return userID, nil
}

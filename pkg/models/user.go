package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the subset of a user embedded into chat documents. It is a
// snapshot taken at chat creation and is not re-synced on later profile edits.
type Profile struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (u *User) Profile() Profile {
	return Profile{Name: u.Name, AvatarURL: u.AvatarURL}
}

// Contact is a directional relation: the owner added the contact. The reverse
// relation only exists if the other user adds the owner back.
type Contact struct {
	UserID    string    `json:"user_id" db:"user_id"`
	ContactID string    `json:"contact_id" db:"contact_id"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type UserUpdateRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type ContactRequest struct {
	ContactID string `json:"contact_id,omitempty"`
	QRPayload string `json:"qr_payload,omitempty"`
}

type ContactResponse struct {
	Contact Contact `json:"contact"`
	User    User    `json:"user"`
}

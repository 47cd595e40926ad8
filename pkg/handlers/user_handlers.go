package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/amikchat/amik-chat/pkg/qr"
	"github.com/amikchat/amik-chat/pkg/store"
)

type UserHandler struct {
	store  *store.Store
	logger *slog.Logger
}

func NewUserHandler(store *store.Store, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: store, logger: logger}
}

// GetCurrentUser godoc
// @Summary Get the caller's profile
// @Tags users
// @Router /api/users/me [get]
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil {
		h.logger.Error("GetCurrentUser: failed to get user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update the caller's profile
// @Description Profile edits do not rewrite the snapshots embedded in
// existing chats; those stay frozen at chat creation.
// @Tags users
// @Router /api/users/me [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	var req models.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("UpdateUser: invalid request body", "user_id", userID, "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "Name cannot be empty")
		return
	}

	if err := h.store.UpdateUser(userID, &req); err != nil {
		h.logger.Error("UpdateUser: failed to update", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to update user")
		return
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to load updated user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetUser godoc
// @Summary Get a user's public profile
// @Tags users
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	targetID := r.PathValue("id")
	user, err := h.store.GetUserByID(targetID)
	if err != nil {
		h.logger.Error("GetUser: failed to get user", "error", err, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// GetContacts godoc
// @Summary List the caller's contacts
// @Tags contacts
// @Router /api/contacts [get]
func (h *UserHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	contacts, err := h.store.GetContacts(userID)
	if err != nil {
		h.logger.Error("GetContacts: failed to get contacts", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to get contacts")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Contacts []models.ContactResponse `json:"contacts"`
		Total    int                      `json:"total"`
	}{Contacts: contacts, Total: len(contacts)})
}

// AddContact godoc
// @Summary Add a contact by id or scanned QR payload
// @Description Validation failures (self-add, empty id, malformed payload)
// are rejected before any lookup.
// @Tags contacts
// @Router /api/contacts [post]
func (h *UserHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("AddContact: invalid request body", "user_id", userID, "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	contactID := strings.TrimSpace(req.ContactID)
	if req.QRPayload != "" {
		decoded, err := qr.Parse(req.QRPayload)
		if err != nil {
			h.logger.Warn("AddContact: invalid QR payload", "user_id", userID, "error", err)
			writeError(w, http.StatusBadRequest, codeValidation, "Not a valid contact QR code")
			return
		}
		contactID = decoded
	}

	if contactID == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "Contact id is required")
		return
	}
	if contactID == userID {
		writeError(w, http.StatusBadRequest, codeValidation, "You cannot add yourself as a contact")
		return
	}

	contact, err := h.store.GetUserByID(contactID)
	if err != nil {
		h.logger.Error("AddContact: failed to look up contact", "error", err, "contact_id", contactID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if contact == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "No user exists with this id")
		return
	}

	added, err := h.store.AddContact(userID, contactID)
	if err != nil {
		h.logger.Error("AddContact: failed to add contact", "error", err, "user_id", userID, "contact_id", contactID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to add contact")
		return
	}

	status := http.StatusCreated
	if !added {
		// Already present: no write happened, report the existing contact.
		status = http.StatusOK
	}

	writeJSON(w, status, struct {
		Added bool        `json:"added"`
		User  models.User `json:"user"`
	}{Added: added, User: *contact})
}

// GetContactQR godoc
// @Summary Get the caller's contact QR payload
// @Tags contacts
// @Router /api/users/me/qr [get]
func (h *UserHandler) GetContactQR(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Payload string `json:"payload"`
	}{Payload: qr.Encode(userID)})
}

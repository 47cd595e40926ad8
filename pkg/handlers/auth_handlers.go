package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amikchat/amik-chat/config"
	"github.com/amikchat/amik-chat/pkg/auth"
	"github.com/amikchat/amik-chat/pkg/models"
	"github.com/amikchat/amik-chat/pkg/store"
	"github.com/google/uuid"
)

type AuthHandler struct {
	store            *store.Store
	logger           *slog.Logger
	recentAuthWindow time.Duration
}

func NewAuthHandler(store *store.Store, logger *slog.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		store:            store,
		logger:           logger,
		recentAuthWindow: cfg.JWT.RecentAuthWindow,
	}
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Signup: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		h.logger.Warn("Signup: invalid email", "email", req.Email)
		writeError(w, http.StatusBadRequest, codeValidation, "A valid email is required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, codeValidation, "Password must be at least 6 characters")
		return
	}
	if req.Name == "" {
		// Fall back to the email local part, like the first-login bootstrap.
		req.Name = strings.SplitN(req.Email, "@", 2)[0]
	}

	existing, _, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		h.logger.Error("Signup: failed to check existing user", "error", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, codeValidation, "An account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Signup: failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	user := &models.User{
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: placeholderAvatar(req.Name),
	}
	if err := h.store.CreateUser(user, hash); err != nil {
		h.logger.Error("Signup: failed to create user", "error", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to create user")
		return
	}

	h.issueSession(w, r, user, "Signup")
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Login: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, hash, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		h.logger.Error("Login: failed to get user", "error", err, "email", req.Email)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}
	if user == nil || !auth.VerifyPassword(hash, req.Password) {
		h.logger.Warn("Login: invalid credentials", "email", req.Email)
		writeError(w, http.StatusUnauthorized, codePermission, "Invalid email or password")
		return
	}

	h.issueSession(w, r, user, "Login")
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Description Requires a recently issued session; older sessions get a
// distinct reauth_required error instead of a generic failure.
// @Tags auth
// @Router /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	claims := auth.GetClaims(r.Context())
	if claims == nil || !claims.IssuedWithin(h.recentAuthWindow) {
		h.logger.Warn("ChangePassword: session too old", "user_id", userID)
		writeError(w, http.StatusForbidden, codeReauth, "Recent authentication required, please sign in again")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 6 {
		writeError(w, http.StatusBadRequest, codeValidation, "Password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("ChangePassword: failed to hash password", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
		return
	}

	if err := h.store.UpdatePassword(userID, hash); err != nil {
		h.logger.Error("ChangePassword: failed to update password", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to change password")
		return
	}

	h.logger.Info("ChangePassword: successful", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, user *models.User, op string) {
	sessionID := uuid.New().String()

	if err := h.store.CreateUserSession(user.ID, sessionID, r.UserAgent(), getIPAddress(r)); err != nil {
		h.logger.Error(op+": failed to create session", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to create session")
		return
	}

	token, expiresAt, err := auth.GenerateJWT(user.ID, sessionID)
	if err != nil {
		h.logger.Error(op+": failed to generate JWT", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, codeInternal, "Failed to generate token")
		return
	}

	h.logger.Info(op+": successful", "user_id", user.ID, "session_id", sessionID)

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Token:     token,
		User:      *user,
		ExpiresAt: expiresAt,
	})
}

func placeholderAvatar(name string) string {
	initial := "U"
	if runes := []rune(name); len(runes) > 0 {
		initial = strings.ToUpper(string(runes[0]))
	}
	return fmt.Sprintf("https://placehold.co/100x100.png?text=%s", initial)
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amikchat/amik-chat/pkg/ai"
	"github.com/amikchat/amik-chat/pkg/auth"
)

type AIHandler struct {
	client *ai.Client
	logger *slog.Logger
}

func NewAIHandler(client *ai.Client, logger *slog.Logger) *AIHandler {
	return &AIHandler{client: client, logger: logger}
}

// Translate godoc
// @Summary Translate a piece of text into a target language
// @Tags ai
// @Router /api/ai/translate [post]
func (h *AIHandler) Translate(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	var req struct {
		Text           string `json:"text"`
		TargetLanguage string `json:"target_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.TargetLanguage) == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "text and target_language are required")
		return
	}

	translated, err := h.client.Translate(r.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		h.logger.Warn("Translation failed", "error", err, "user_id", userID)
		writeError(w, http.StatusBadGateway, codeInternal, "Translation is unavailable right now")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		TranslatedText string `json:"translated_text"`
	}{TranslatedText: translated})
}

// SuggestContacts godoc
// @Summary Suggest people to talk to from a free-form description
// @Tags ai
// @Router /api/ai/suggest-contacts [post]
func (h *AIHandler) SuggestContacts(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codePermission, "Unauthorized")
		return
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "description is required")
		return
	}

	suggestions, err := h.client.SuggestContacts(r.Context(), req.Description)
	if err != nil {
		h.logger.Warn("Contact suggestion failed", "error", err, "user_id", userID)
		writeError(w, http.StatusBadGateway, codeInternal, "Suggestions are unavailable right now")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Suggestions []ai.ContactSuggestion `json:"suggestions"`
	}{Suggestions: suggestions})
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls the external text service. Both operations are opaque
// request/response calls; a failure is returned to the caller and never
// takes a chat flow down with it.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate returns the text rendered in the target language.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	var resp translateResponse
	err := c.post(ctx, "/translate", translateRequest{
		Text:           text,
		TargetLanguage: targetLanguage,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.TranslatedText, nil
}

type suggestRequest struct {
	Description string `json:"description"`
}

type suggestResponse struct {
	Suggestions []ContactSuggestion `json:"suggestions"`
}

type ContactSuggestion struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SuggestContacts asks the service who the user might want to talk to,
// given a free-form description.
func (c *Client) SuggestContacts(ctx context.Context, description string) ([]ContactSuggestion, error) {
	var resp suggestResponse
	if err := c.post(ctx, "/suggest-contacts", suggestRequest{Description: description}, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("text service %s: status %d: %s", path, resp.StatusCode, snippet)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

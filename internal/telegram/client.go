// Package telegram sends pantry notifications through the Telegram Bot API.
//
// A Client is bound to one bot token and one chat. Messages use Markdown
// parse mode so captions can carry bold text.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 10 * time.Second

const parseMode = "Markdown"

// ErrNotConfigured is returned when the bot token or chat id is missing.
var ErrNotConfigured = errors.New("telegram: bot token or chat id not configured")

// Client posts messages to a single Telegram chat.
type Client struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another Bot API server, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the per-call timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a client for the given bot token and chat.
func NewClient(token, chatID string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendPhotoRequest struct {
	ChatID    string `json:"chat_id"`
	Photo     string `json:"photo"`
	Caption   string `json:"caption"`
	ParseMode string `json:"parse_mode"`
}

// apiResponse is the envelope every Bot API method answers with.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// SendText sends a text message to the configured chat.
func (c *Client) SendText(ctx context.Context, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: parseMode,
	})
}

// SendPhoto sends a photo, referenced by URL, with a caption.
func (c *Client) SendPhoto(ctx context.Context, photoURL, caption string) error {
	return c.call(ctx, "sendPhoto", sendPhotoRequest{
		ChatID:    c.chatID,
		Photo:     photoURL,
		Caption:   caption,
		ParseMode: parseMode,
	})
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	if c.token == "" || c.chatID == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of logs.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var result apiResponse
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && result.Description != "" {
			return fmt.Errorf("telegram %s: %s: %s", method, resp.Status, result.Description)
		}
		return fmt.Errorf("telegram %s: %s", method, resp.Status)
	}
	if decodeErr == nil && !result.OK {
		return fmt.Errorf("telegram %s: %s", method, result.Description)
	}

	return nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is where the server mounts its API when run locally.
const DefaultBaseURL = "http://localhost:8000/api"

// RequestIDHeader carries a per-request id the server can log against.
const RequestIDHeader = "X-Request-ID"

// Client talks to the character chat REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The caller's client is
// used as is; WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a Client rooted at baseURL (for example
// "http://localhost:8000/api"). An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListCharacters returns every character known to the server.
func (c *Client) ListCharacters(ctx context.Context) ([]Character, error) {
	var chars []Character
	if err := c.do(ctx, http.MethodGet, "/characters", nil, &chars); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return chars, nil
}

// CreateCharacter creates a character and returns it with its server id.
func (c *Client) CreateCharacter(ctx context.Context, in CharacterInput) (*Character, error) {
	var char Character
	if err := c.do(ctx, http.MethodPost, "/characters", in, &char); err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	return &char, nil
}

// DeleteCharacter deletes a character together with its sessions.
func (c *Client) DeleteCharacter(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, "/characters/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("delete character %d: %w", id, err)
	}
	return nil
}

// ListSessions returns a character's sessions, most recent first.
func (c *Client) ListSessions(ctx context.Context, characterID int) ([]Session, error) {
	var sessions []Session
	path := "/characters/" + strconv.Itoa(characterID) + "/sessions"
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, fmt.Errorf("list sessions for character %d: %w", characterID, err)
	}
	return sessions, nil
}

// History returns the messages of a session in the order they were sent.
func (c *Client) History(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	path := "/history?session_id=" + url.QueryEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, fmt.Errorf("load history for session %s: %w", sessionID, err)
	}
	return msgs, nil
}

// Chat sends one user message and returns the character's reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &resp, nil
}

// DeleteSession deletes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil, nil); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// ClearSession deletes a session's messages but keeps the session.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	path := "/sessions/" + url.PathEscape(sessionID) + "/messages"
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// Non-2xx responses are returned as *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

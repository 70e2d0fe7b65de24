// Package api is the REST client for the character chat server.
package api

import (
	"bytes"
	"fmt"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxContextMessages is how many prior messages the server is asked to
// feed back into the model on each turn.
const DefaultMaxContextMessages = 12

// Character is a configured chat persona.
type Character struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Personality  *string `json:"personality"`
	Backstory    *string `json:"backstory"`
	TalkingStyle *string `json:"talking_style"`
}

// Info returns personality and backstory joined by a newline, the way the
// profile pane shows them. Missing fields render as empty lines.
func (c Character) Info() string {
	return deref(c.Personality) + "\n" + deref(c.Backstory)
}

// CharacterInput is the create-character payload.
type CharacterInput struct {
	Name         string `json:"name"`
	Personality  string `json:"personality"`
	Backstory    string `json:"backstory"`
	TalkingStyle string `json:"talking_style"`
}

// Session groups a character's message history on the server.
type Session struct {
	ID          string    `json:"id"`
	CharacterID int       `json:"character_id"`
	CreatedAt   Timestamp `json:"created_at"`
}

// Message is a single stored chat message.
type Message struct {
	ID        int       `json:"id,omitempty"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// ChatRequest is the body of POST /chat. A nil SessionID asks the server to
// open a new session.
type ChatRequest struct {
	SessionID          *string `json:"session_id"`
	CharacterID        int     `json:"character_id"`
	Message            string  `json:"message"`
	MaxContextMessages int     `json:"max_context_messages"`
}

// ChatResponse is the server's reply to a chat turn.
type ChatResponse struct {
	SessionID      string   `json:"session_id"`
	Reply          string   `json:"reply"`
	Sentiment      string   `json:"sentiment,omitempty"`
	ExtractedFacts []string `json:"extracted_facts,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// timestampLayouts are tried in order. The server emits naive datetimes
// (no zone) when its database does not store one; those are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a time.Time that also accepts zone-less ISO datetimes.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp: expected string, got %s", data)
	}
	raw := string(data[1 : len(data)-1])
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

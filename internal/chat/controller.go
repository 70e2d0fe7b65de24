// Package chat holds the client-side state of a chat with a character and
// the operations that move it: selecting, creating and deleting characters,
// sending messages, and clearing or deleting sessions.
//
// A Controller owns the active character, the active session id, the
// transcript and the memory panel. Views render from Snapshot and never
// mutate state directly.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/log"
)

// Service is the subset of the REST API the controller needs.
// *api.Client implements it.
type Service interface {
	ListCharacters(ctx context.Context) ([]api.Character, error)
	CreateCharacter(ctx context.Context, in api.CharacterInput) (*api.Character, error)
	DeleteCharacter(ctx context.Context, id int) error
	ListSessions(ctx context.Context, characterID int) ([]api.Session, error)
	History(ctx context.Context, sessionID string) ([]api.Message, error)
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ClearSession(ctx context.Context, sessionID string) error
}

// Validation errors are returned before any network call is made.
var (
	ErrNameRequired = errors.New("character name is required")
	ErrNoCharacter  = errors.New("no character selected")
	ErrNoSession    = errors.New("no active chat session")
)

// IsValidation reports whether err was raised before contacting the server.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrNoCharacter) ||
		errors.Is(err, ErrNoSession)
}

// Bubble is one rendered transcript entry.
type Bubble struct {
	Role      string // api.RoleUser or api.RoleAssistant
	Text      string
	Sentiment string // set on user bubbles once the server classified them
	Failed    bool   // assistant bubble carrying a request error
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Characters []api.Character
	Character  *api.Character
	SessionID  string // "" until the server assigns one
	Transcript []Bubble
	Memory     []string
	Visibility Visibility
}

// Controller holds the state of one chat client: the active character and
// session, the rendered transcript and the remembered facts.
type Controller struct {
	svc        Service
	log        *log.Logger
	maxContext int

	// mu guards the fields below. Network calls run without it, so
	// overlapping operations interleave and the last response wins.
	mu         sync.Mutex
	characters []api.Character
	character  *api.Character
	sessionID  string
	transcript []Bubble
	memory     []string
}

// New creates a Controller. maxContext <= 0 uses api.DefaultMaxContextMessages;
// a nil logger discards events.
func New(svc Service, logger *log.Logger, maxContext int) *Controller {
	if maxContext <= 0 {
		maxContext = api.DefaultMaxContextMessages
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Controller{
		svc:        svc,
		log:        logger,
		maxContext: maxContext,
	}
}

// Snapshot returns a deep copy of the current state with derived visibility.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Characters: append([]api.Character(nil), c.characters...),
		SessionID:  c.sessionID,
		Transcript: append([]Bubble(nil), c.transcript...),
		Memory:     append([]string(nil), c.memory...),
		Visibility: visibility(c.character != nil, c.sessionID != ""),
	}
	if c.character != nil {
		char := *c.character
		snap.Character = &char
	}
	return snap
}

// LoadCharacters fetches the character list and stores it.
func (c *Controller) LoadCharacters(ctx context.Context) error {
	chars, err := c.svc.ListCharacters(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.characters = chars
	c.mu.Unlock()

	c.log.Debug(log.EventCharactersLoaded, log.Count(len(chars)))
	return nil
}

// SelectCharacter makes char the active character and resumes its most
// recent session, replaying that session's messages. Failures while looking
// up sessions are logged and leave the character without a session; the
// server will open one on the first message.
func (c *Controller) SelectCharacter(ctx context.Context, char api.Character) {
	c.mu.Lock()
	c.character = &char
	c.transcript = nil
	c.memory = nil
	c.mu.Unlock()

	c.log.Info(log.EventCharacterSelected, log.Character(char.ID))

	sessions, err := c.svc.ListSessions(ctx, char.ID)
	if err != nil {
		c.log.Warn(log.EventSessionLoadFailed, err, log.Character(char.ID))
		c.setSession("")
		return
	}
	if len(sessions) == 0 {
		c.setSession("")
		return
	}

	// Most recent first.
	sid := sessions[0].ID
	c.setSession(sid)

	msgs, err := c.svc.History(ctx, sid)
	if err != nil {
		c.log.Warn(log.EventSessionLoadFailed, err, log.Character(char.ID), log.Session(sid))
		return
	}

	c.mu.Lock()
	for _, m := range msgs {
		c.transcript = append(c.transcript, Bubble{
			Role:      m.Role,
			Text:      m.Content,
			Sentiment: m.Sentiment,
		})
	}
	c.mu.Unlock()

	c.log.Debug(log.EventHistoryReplayed, log.Session(sid), log.Count(len(msgs)))
}

// CreateCharacter validates and creates a character, then reloads the list.
func (c *Controller) CreateCharacter(ctx context.Context, in api.CharacterInput) (*api.Character, error) {
	in = api.CharacterInput{
		Name:         strings.TrimSpace(in.Name),
		Personality:  strings.TrimSpace(in.Personality),
		Backstory:    strings.TrimSpace(in.Backstory),
		TalkingStyle: strings.TrimSpace(in.TalkingStyle),
	}
	if in.Name == "" {
		return nil, ErrNameRequired
	}

	created, err := c.svc.CreateCharacter(ctx, in)
	if err != nil {
		return nil, withFallback(err, "Failed to create character")
	}
	c.log.Info(log.EventCharacterCreated, log.Character(created.ID))

	if err := c.LoadCharacters(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// SendMessage sends text to the active character. The user bubble is shown
// before the request goes out. A failed request becomes an error bubble in
// the transcript and is also returned. Blank text is ignored.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if c.character == nil {
		c.mu.Unlock()
		return ErrNoCharacter
	}
	if text == "" {
		c.mu.Unlock()
		return nil
	}
	req := api.ChatRequest{
		CharacterID:        c.character.ID,
		Message:            text,
		MaxContextMessages: c.maxContext,
	}
	if c.sessionID != "" {
		sid := c.sessionID
		req.SessionID = &sid
	}
	c.transcript = append(c.transcript, Bubble{Role: api.RoleUser, Text: text})
	c.mu.Unlock()

	resp, err := c.svc.Chat(ctx, req)
	if err != nil {
		c.log.Warn(log.EventChatFailed, err, log.Character(req.CharacterID))
		c.mu.Lock()
		c.transcript = append(c.transcript, Bubble{
			Role:   api.RoleAssistant,
			Text:   "Error: " + ErrorText(err),
			Failed: true,
		})
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.sessionID = resp.SessionID
	c.transcript = append(c.transcript, Bubble{Role: api.RoleAssistant, Text: resp.Reply})
	c.memory = append(c.memory, resp.ExtractedFacts...)
	if resp.Sentiment != "" {
		if i := lastUserBubble(c.transcript); i >= 0 {
			c.transcript[i].Sentiment = resp.Sentiment
		}
	}
	c.mu.Unlock()

	c.log.Info(log.EventMessageSent,
		log.Character(req.CharacterID),
		log.Session(resp.SessionID),
		log.Count(len(resp.ExtractedFacts)))
	return nil
}

// Check reports whether action is currently possible. Views call it before
// asking for confirmation.
func (c *Controller) Check(action Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch action {
	case ActionDeleteCharacter:
		if c.character == nil {
			return &actionError{action: action, err: ErrNoCharacter}
		}
	case ActionClearChat, ActionDeleteChat:
		if c.sessionID == "" {
			return &actionError{action: action, err: ErrNoSession}
		}
	}
	return nil
}

// ClearChat deletes the active session's messages on the server and empties
// the transcript and memory panel. The session id is kept.
func (c *Controller) ClearChat(ctx context.Context) error {
	sid, err := c.activeSession(ActionClearChat)
	if err != nil {
		return err
	}
	if err := c.svc.ClearSession(ctx, sid); err != nil {
		return err
	}

	c.mu.Lock()
	c.transcript = nil
	c.memory = nil
	c.mu.Unlock()

	c.log.Info(log.EventChatCleared, log.Session(sid))
	return nil
}

// DeleteChat deletes the active session and forgets it, so the next message
// starts a new one.
func (c *Controller) DeleteChat(ctx context.Context) error {
	sid, err := c.activeSession(ActionDeleteChat)
	if err != nil {
		return err
	}
	if err := c.svc.DeleteSession(ctx, sid); err != nil {
		return err
	}

	c.mu.Lock()
	c.transcript = nil
	c.memory = nil
	if c.sessionID == sid {
		c.sessionID = ""
	}
	c.mu.Unlock()

	c.log.Info(log.EventChatDeleted, log.Session(sid))
	return nil
}

// DeleteCharacter deletes the active character on the server, resets every
// piece of character and session state, and reloads the character list.
func (c *Controller) DeleteCharacter(ctx context.Context) error {
	c.mu.Lock()
	if c.character == nil {
		c.mu.Unlock()
		return &actionError{action: ActionDeleteCharacter, err: ErrNoCharacter}
	}
	id := c.character.ID
	c.mu.Unlock()

	if err := c.svc.DeleteCharacter(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	c.character = nil
	c.sessionID = ""
	c.transcript = nil
	c.memory = nil
	c.mu.Unlock()

	c.log.Info(log.EventCharacterDeleted, log.Character(id))
	return c.LoadCharacters(ctx)
}

// NewChat drops the active session locally so the next message starts a
// new one. The server is not contacted.
func (c *Controller) NewChat() {
	c.mu.Lock()
	c.sessionID = ""
	c.transcript = nil
	c.memory = nil
	c.mu.Unlock()
}

func (c *Controller) activeSession(action Action) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID == "" {
		return "", &actionError{action: action, err: ErrNoSession}
	}
	return c.sessionID, nil
}

func (c *Controller) setSession(sid string) {
	c.mu.Lock()
	c.sessionID = sid
	c.mu.Unlock()
}

func lastUserBubble(transcript []Bubble) int {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == api.RoleUser {
			return i
		}
	}
	return -1
}

package chat

import (
	"context"
	"sync"
	"time"

	"github.com/charchat/charchat/internal/api"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// stubService answers every call from canned fields and records chat requests.
type stubService struct {
	mu       sync.Mutex
	chatResp *api.ChatResponse
	chatErr  error
	block    chan struct{} // if set, Chat waits for it to close
	lastChat api.ChatRequest
}

func (s *stubService) ListCharacters(context.Context) ([]api.Character, error) {
	return nil, nil
}

func (s *stubService) CreateCharacter(_ context.Context, in api.CharacterInput) (*api.Character, error) {
	return &api.Character{ID: 1, Name: in.Name}, nil
}

func (s *stubService) DeleteCharacter(context.Context, int) error { return nil }

func (s *stubService) ListSessions(context.Context, int) ([]api.Session, error) {
	return nil, nil
}

func (s *stubService) History(context.Context, string) ([]api.Message, error) {
	return nil, nil
}

func (s *stubService) Chat(_ context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastChat = req
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	resp := *s.chatResp
	return &resp, nil
}

func (s *stubService) DeleteSession(context.Context, string) error { return nil }

func (s *stubService) ClearSession(context.Context, string) error { return nil }

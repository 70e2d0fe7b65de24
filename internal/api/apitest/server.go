// Package apitest provides an in-memory character chat server for tests.
// It mirrors the REST contract the client relies on; it is not a server
// implementation.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/charchat/charchat/internal/api"
)

// Failure is a canned error response for one route.
type Failure struct {
	Status int
	Body   string
}

// Server is a fake API backed by maps. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	// Reply produces the assistant reply. Defaults to echoing the message.
	Reply func(c api.Character, message string) string
	// Sentiment classifies a user message. Defaults to "neutral".
	Sentiment func(message string) string
	// Facts extracts facts from a user message. Defaults to none.
	Facts func(message string) []string

	mu         sync.Mutex
	nextCharID int
	nextMsgID  int
	clock      time.Time
	characters map[int]api.Character
	sessions   map[string]api.Session
	messages   map[string][]api.Message
	failures   map[string]Failure
	requests   []string
}

// New starts a fake server. Callers Close it when done.
func New() *Server {
	s := &Server{
		nextCharID: 1,
		nextMsgID:  1,
		clock:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		characters: make(map[int]api.Character),
		sessions:   make(map[string]api.Session),
		messages:   make(map[string][]api.Message),
		failures:   make(map[string]Failure),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// BaseURL is the API root, suitable for api.NewClient.
func (s *Server) BaseURL() string {
	return s.Server.URL + "/api"
}

// Fail makes every request matching method and chi route pattern (for
// example "/characters/{id}/sessions") answer with f until cleared.
func (s *Server) Fail(method, pattern string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+pattern] = f
}

// ClearFailures removes every canned failure.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]Failure)
}

// Requests returns "METHOD /path" for every request served, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// AddCharacter seeds a character directly.
func (s *Server) AddCharacter(in api.CharacterInput) api.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCharacterLocked(in)
}

// AddSession seeds a session with messages for a character and returns its id.
// Later calls produce more recent sessions.
func (s *Server) AddSession(characterID int, msgs ...api.Message) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.newSessionLocked("", characterID)
	for _, m := range msgs {
		s.appendMessageLocked(sess.ID, m.Role, m.Content, m.Sentiment)
	}
	return sess.ID
}

// Messages returns a copy of a session's stored messages.
func (s *Server) Messages(sessionID string) []api.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Message(nil), s.messages[sessionID]...)
}

// HasSession reports whether the session exists.
func (s *Server) HasSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// HasCharacter reports whether the character exists.
func (s *Server) HasCharacter(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.characters[id]
	return ok
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api", func(sub chi.Router) {
		sub.Get("/characters", s.listCharacters)
		sub.Post("/characters", s.createCharacter)
		sub.Delete("/characters/{id}", s.deleteCharacter)
		sub.Get("/characters/{id}/sessions", s.listSessions)
		sub.Get("/history", s.history)
		sub.Post("/chat", s.chat)
		sub.Delete("/sessions/{id}", s.deleteSession)
		sub.Delete("/sessions/{id}/messages", s.clearSession)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// checkFailure writes the canned failure registered for the matched route,
// if any. Handlers call it before touching state.
func (s *Server) checkFailure(w http.ResponseWriter, r *http.Request) bool {
	pattern := strings.TrimPrefix(chi.RouteContext(r.Context()).RoutePattern(), "/api")

	s.mu.Lock()
	f, ok := s.failures[r.Method+" "+pattern]
	s.mu.Unlock()
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.Status)
	_, _ = w.Write([]byte(f.Body))
	return true
}

func (s *Server) listCharacters(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	s.mu.Lock()
	chars := make([]api.Character, 0, len(s.characters))
	for _, c := range s.characters {
		chars = append(chars, c)
	}
	s.mu.Unlock()

	sort.Slice(chars, func(i, j int) bool { return chars[i].ID < chars[j].ID })
	respondJSON(w, http.StatusOK, chars)
}

func (s *Server) createCharacter(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	var in api.CharacterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if in.Name == "" {
		respondDetail(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.characters {
		if c.Name == in.Name {
			respondDetail(w, http.StatusBadRequest, "Character name already exists")
			return
		}
	}
	respondJSON(w, http.StatusOK, s.addCharacterLocked(in))
}

func (s *Server) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid character id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		respondDetail(w, http.StatusNotFound, "Character not found")
		return
	}
	delete(s.characters, id)
	for sid, sess := range s.sessions {
		if sess.CharacterID == id {
			delete(s.sessions, sid)
			delete(s.messages, sid)
		}
	}
	respondDetail(w, http.StatusOK, "character deleted")
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid character id")
		return
	}

	s.mu.Lock()
	sessions := make([]api.Session, 0)
	for _, sess := range s.sessions {
		if sess.CharacterID == id {
			sessions = append(sessions, sess)
		}
	}
	s.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt.Time)
	})
	if len(sessions) > 20 {
		sessions = sessions[:20]
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	sid := r.URL.Query().Get("session_id")
	if sid == "" {
		respondDetail(w, http.StatusUnprocessableEntity, "session_id is required")
		return
	}
	s.mu.Lock()
	msgs := append([]api.Message{}, s.messages[sid]...)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, msgs)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.mu.Lock()
	char, ok := s.characters[req.CharacterID]
	if !ok {
		s.mu.Unlock()
		respondDetail(w, http.StatusNotFound, "Character not found")
		return
	}

	var sid string
	if req.SessionID != nil {
		sid = *req.SessionID
	}
	sess, ok := s.sessions[sid]
	if sid == "" || !ok {
		sess = s.newSessionLocked(sid, req.CharacterID)
	}

	sentiment := "neutral"
	if s.Sentiment != nil {
		sentiment = s.Sentiment(req.Message)
	}
	var facts []string
	if s.Facts != nil {
		facts = s.Facts(req.Message)
	}
	reply := "You said: " + req.Message
	if s.Reply != nil {
		reply = s.Reply(char, req.Message)
	}

	s.appendMessageLocked(sess.ID, api.RoleUser, req.Message, sentiment)
	s.appendMessageLocked(sess.ID, api.RoleAssistant, reply, "")
	s.mu.Unlock()

	if facts == nil {
		facts = []string{}
	}
	respondJSON(w, http.StatusOK, api.ChatResponse{
		SessionID:      sess.ID,
		Reply:          reply,
		Sentiment:      sentiment,
		ExtractedFacts: facts,
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	sid := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sid]; !ok {
		respondDetail(w, http.StatusNotFound, "Session not found")
		return
	}
	delete(s.sessions, sid)
	delete(s.messages, sid)
	respondDetail(w, http.StatusOK, "session deleted")
}

func (s *Server) clearSession(w http.ResponseWriter, r *http.Request) {
	if s.checkFailure(w, r) {
		return
	}
	sid := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sid]; !ok {
		respondDetail(w, http.StatusNotFound, "Session not found")
		return
	}
	delete(s.messages, sid)
	respondDetail(w, http.StatusOK, "session cleared")
}

func (s *Server) addCharacterLocked(in api.CharacterInput) api.Character {
	c := api.Character{
		ID:           s.nextCharID,
		Name:         in.Name,
		Personality:  optional(in.Personality),
		Backstory:    optional(in.Backstory),
		TalkingStyle: optional(in.TalkingStyle),
	}
	s.nextCharID++
	s.characters[c.ID] = c
	return c
}

func (s *Server) newSessionLocked(id string, characterID int) api.Session {
	if id == "" {
		id = uuid.NewString()
	}
	sess := api.Session{
		ID:          id,
		CharacterID: characterID,
		CreatedAt:   api.Timestamp{Time: s.tick()},
	}
	s.sessions[id] = sess
	return sess
}

func (s *Server) appendMessageLocked(sessionID, role, content, sentiment string) {
	s.messages[sessionID] = append(s.messages[sessionID], api.Message{
		ID:        s.nextMsgID,
		Role:      role,
		Content:   content,
		Sentiment: sentiment,
		CreatedAt: api.Timestamp{Time: s.tick()},
	})
	s.nextMsgID++
}

func (s *Server) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(fmt.Sprintf("apitest: encode response: %v", err))
	}
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

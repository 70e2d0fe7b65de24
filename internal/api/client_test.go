package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/api/apitest"
)

func newClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	return api.NewClient(srv.BaseURL()), srv
}

func TestCreateAndListCharacters(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	created, err := client.CreateCharacter(ctx, api.CharacterInput{
		Name:        "Ada",
		Personality: "curious",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", created.Name)
	assert.NotZero(t, created.ID)

	chars, err := client.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, created.ID, chars[0].ID)
	require.NotNil(t, chars[0].Personality)
	assert.Equal(t, "curious", *chars[0].Personality)
	assert.Nil(t, chars[0].Backstory)
}

func TestCreateCharacterDuplicateSurfacesDetail(t *testing.T) {
	client, srv := newClient(t)
	srv.AddCharacter(api.CharacterInput{Name: "Ada"})

	_, err := client.CreateCharacter(context.Background(), api.CharacterInput{Name: "Ada"})
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Character name already exists", apiErr.Message())
}

func TestListSessionsMostRecentFirst(t *testing.T) {
	client, srv := newClient(t)
	c := srv.AddCharacter(api.CharacterInput{Name: "Ada"})
	older := srv.AddSession(c.ID)
	newer := srv.AddSession(c.ID)

	sessions, err := client.ListSessions(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer, sessions[0].ID)
	assert.Equal(t, older, sessions[1].ID)
	assert.False(t, sessions[0].CreatedAt.IsZero())
}

func TestChatCreatesSessionLazily(t *testing.T) {
	client, srv := newClient(t)
	srv.Sentiment = func(string) string { return "positive" }
	srv.Facts = func(msg string) []string { return []string{"I love tea"} }
	c := srv.AddCharacter(api.CharacterInput{Name: "Ada"})

	resp, err := client.Chat(context.Background(), api.ChatRequest{
		CharacterID:        c.ID,
		Message:            "I love tea",
		MaxContextMessages: api.DefaultMaxContextMessages,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "You said: I love tea", resp.Reply)
	assert.Equal(t, "positive", resp.Sentiment)
	assert.Equal(t, []string{"I love tea"}, resp.ExtractedFacts)

	history, err := client.History(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, api.RoleUser, history[0].Role)
	assert.Equal(t, api.RoleAssistant, history[1].Role)
}

func TestChatRequestEncodesNullSession(t *testing.T) {
	data, err := json.Marshal(api.ChatRequest{CharacterID: 3, Message: "hi", MaxContextMessages: 12})
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":null,"character_id":3,"message":"hi","max_context_messages":12}`, string(data))
}

func TestClearAndDeleteSession(t *testing.T) {
	client, srv := newClient(t)
	ctx := context.Background()
	c := srv.AddCharacter(api.CharacterInput{Name: "Ada"})
	sid := srv.AddSession(c.ID, api.Message{Role: api.RoleUser, Content: "hello"})

	require.NoError(t, client.ClearSession(ctx, sid))
	assert.True(t, srv.HasSession(sid))
	assert.Empty(t, srv.Messages(sid))

	require.NoError(t, client.DeleteSession(ctx, sid))
	assert.False(t, srv.HasSession(sid))

	err := client.DeleteSession(ctx, sid)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Session not found", apiErr.Message())
}

func TestDeleteCharacterRemovesSessions(t *testing.T) {
	client, srv := newClient(t)
	c := srv.AddCharacter(api.CharacterInput{Name: "Ada"})
	sid := srv.AddSession(c.ID)

	require.NoError(t, client.DeleteCharacter(context.Background(), c.ID))
	assert.False(t, srv.HasCharacter(c.ID))
	assert.False(t, srv.HasSession(sid))
}

func TestHistoryEscapesSessionID(t *testing.T) {
	client, srv := newClient(t)

	_, err := client.History(context.Background(), "a b&c")
	require.NoError(t, err)

	reqs := srv.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "GET /api/history?session_id=a+b%26c", reqs[len(reqs)-1])
}

func TestRequestsCarryRequestID(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(api.RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	_, err := api.NewClient(ts.URL).ListCharacters(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 36)
}

type countingTransport struct {
	calls int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls++
	return http.DefaultTransport.RoundTrip(r)
}

func TestWithHTTPClientIsUsedUnmodified(t *testing.T) {
	srv := apitest.New()
	t.Cleanup(srv.Close)
	transport := &countingTransport{}
	hc := &http.Client{Transport: transport}

	// Option order must not matter.
	client := api.NewClient(srv.BaseURL(), api.WithTimeout(time.Second), api.WithHTTPClient(hc))
	_, err := client.ListCharacters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, transport.calls)
	assert.Zero(t, hc.Timeout)

	client = api.NewClient(srv.BaseURL(), api.WithHTTPClient(hc), api.WithTimeout(time.Second))
	_, err = client.ListCharacters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, transport.calls)
	assert.Zero(t, hc.Timeout)
}

func TestCannedFailuresCanBeCleared(t *testing.T) {
	client, srv := newClient(t)
	srv.Fail(http.MethodGet, "/characters", apitest.Failure{Status: http.StatusServiceUnavailable})

	_, err := client.ListCharacters(context.Background())
	require.Error(t, err)

	srv.ClearFailures()
	chars, err := client.ListCharacters(context.Background())
	require.NoError(t, err)
	assert.Empty(t, chars)
}

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", 400, `{"detail":"bad name"}`, "bad name"},
		{"list detail", 422, `{"detail":[{"msg":"field required"}]}`, `[{"msg":"field required"}]`},
		{"no detail", 500, `{"error":"boom"}`, `{"error":"boom"}`},
		{"empty body", 503, ``, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := api.NewClient(ts.URL).ListCharacters(context.Background())
			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.want, apiErr.Message())
		})
	}
}

func TestTimestampAcceptsNaiveDatetimes(t *testing.T) {
	var s api.Session
	err := json.Unmarshal([]byte(`{"id":"x","character_id":1,"created_at":"2025-03-04T05:06:07.123456"}`), &s)
	require.NoError(t, err)
	assert.Equal(t, 2025, s.CreatedAt.Year())
	assert.Equal(t, 7, s.CreatedAt.Second())
}

func TestCharacterInfo(t *testing.T) {
	p := "calm"
	assert.Equal(t, "calm\n", api.Character{Personality: &p}.Info())
	assert.Equal(t, "\n", api.Character{}.Info())
}

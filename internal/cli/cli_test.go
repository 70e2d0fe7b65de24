package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charchat/charchat/internal/api"
	"github.com/charchat/charchat/internal/api/apitest"
	"github.com/charchat/charchat/internal/chat"
	"github.com/charchat/charchat/internal/config"
	"github.com/charchat/charchat/internal/log"
	"github.com/charchat/charchat/internal/testutil"
)

// setup runs each test in an empty directory against a fresh fake server.
func setup(t *testing.T) *apitest.Server {
	t.Helper()
	for _, key := range []string{config.EnvAPIURL, config.EnvTimeout, config.EnvMaxContext, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())

	srv := apitest.New()
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the CLI with args, feeding stdin, and returns combined output.
func execute(t *testing.T, srv *apitest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	if srv != nil {
		args = append([]string{"--api-url", srv.BaseURL()}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func sessionFrom(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if sid, ok := strings.CutPrefix(line, "Session: "); ok {
			return sid
		}
	}
	t.Fatalf("no session line in output:\n%s", out)
	return ""
}

func TestInitWritesConfigAndGitignore(t *testing.T) {
	setup(t)

	out, err := execute(t, nil, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "charchat initialized")

	dir, err := os.Getwd()
	require.NoError(t, err)
	cfg, err := config.ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, cfg.API.BaseURL)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".charchat/log.jsonl")
	assert.Contains(t, string(data), ".env")
}

func TestInitAsksBeforeOverwriting(t *testing.T) {
	setup(t)
	_, err := execute(t, nil, "", "init")
	require.NoError(t, err)

	out, err := execute(t, nil, "n\n", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Overwrite?")
	assert.Contains(t, out, "Aborted.")
}

func TestInitGuided(t *testing.T) {
	setup(t)

	out, err := execute(t, nil, "http://chat.example/api\n\n5\n", "init", "--guided")
	require.NoError(t, err)
	assert.Contains(t, out, "--- Guided Configuration ---")

	dir, err := os.Getwd()
	require.NoError(t, err)
	cfg, err := config.ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://chat.example/api", cfg.API.BaseURL)
	assert.Equal(t, 60, cfg.API.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Chat.MaxContextMessages)
}

func TestCharactersCreateAndList(t *testing.T) {
	srv := setup(t)

	out, err := execute(t, srv, "", "characters", "create", "Ada",
		"--personality", "curious", "--talking-style", "precise")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Ada (id 1)")

	out, err = execute(t, srv, "", "characters", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "precise")
}

func TestCharactersListEmpty(t *testing.T) {
	srv := setup(t)

	out, err := execute(t, srv, "", "characters", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No characters yet")
}

func TestCharactersCreateErrors(t *testing.T) {
	srv := setup(t)
	srv.AddCharacter(api.CharacterInput{Name: "Ada"})

	_, err := execute(t, srv, "", "characters", "create", "  ")
	require.Error(t, err)
	assert.Equal(t, "Please enter a character name", err.Error())

	_, err = execute(t, srv, "", "characters", "create", "Ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Character name already exists")
}

func TestCharactersDeleteConfirms(t *testing.T) {
	srv := setup(t)
	ada := srv.AddCharacter(api.CharacterInput{Name: "Ada"})

	out, err := execute(t, srv, "n\n", "characters", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete Ada and all of their chats?")
	assert.Contains(t, out, "Aborted.")
	assert.True(t, srv.HasCharacter(ada.ID))

	out, err = execute(t, srv, "", "characters", "delete", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Ada")
	assert.False(t, srv.HasCharacter(ada.ID))
}

func TestCharactersDeleteUnknown(t *testing.T) {
	srv := setup(t)

	_, err := execute(t, srv, "", "characters", "delete", "42", "--yes")
	require.Error(t, err)
	assert.Equal(t, "character 42 not found", err.Error())

	_, err = execute(t, srv, "", "characters", "delete", "abc", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid character id "abc"`)
}

func TestChatContinuesLatestSession(t *testing.T) {
	srv := setup(t)
	srv.Facts = func(msg string) []string {
		if strings.Contains(msg, "Oslo") {
			return []string{"Lives in Oslo"}
		}
		return nil
	}
	srv.AddCharacter(api.CharacterInput{Name: "Ada"})

	out, err := execute(t, srv, "", "chat", "1", "I", "live", "in", "Oslo")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada: You said: I live in Oslo")
	assert.Contains(t, out, "Mood: neutral")
	assert.Contains(t, out, "• Lives in Oslo")
	sid := sessionFrom(t, out)

	out, err = execute(t, srv, "", "chat", "1", "hello again")
	require.NoError(t, err)
	assert.Equal(t, sid, sessionFrom(t, out))
	assert.NotContains(t, out, "Remembered:")
	assert.Len(t, srv.Messages(sid), 4)
}

func TestChatNewStartsSession(t *testing.T) {
	srv := setup(t)
	ada := srv.AddCharacter(api.CharacterInput{Name: "Ada"})
	old := srv.AddSession(ada.ID, api.Message{Role: api.RoleUser, Content: "earlier"})

	out, err := execute(t, srv, "", "chat", "1", "--new", "hi")
	require.NoError(t, err)
	sid := sessionFrom(t, out)
	assert.NotEqual(t, old, sid)
	assert.Len(t, srv.Messages(old), 1)
}

func TestChatServerFailure(t *testing.T) {
	srv := setup(t)
	srv.AddCharacter(api.CharacterInput{Name: "Ada"})
	srv.Fail("POST", "/chat", apitest.Failure{Status: 500, Body: `{"detail":"model offline"}`})

	_, err := execute(t, srv, "", "chat", "1", "hi")
	require.Error(t, err)
	assert.Equal(t, "model offline", err.Error())
}

func TestChatUnknownCharacter(t *testing.T) {
	srv := setup(t)

	_, err := execute(t, srv, "", "chat", "7", "hi")
	require.Error(t, err)
	assert.Equal(t, "character 7 not found", err.Error())
}

func TestSessionsAndHistory(t *testing.T) {
	srv := setup(t)
	ada := srv.AddCharacter(api.CharacterInput{Name: "Ada"})
	sid := srv.AddSession(ada.ID,
		api.Message{Role: api.RoleUser, Content: "hi", Sentiment: "happy"},
		api.Message{Role: api.RoleAssistant, Content: "hello"},
	)

	out, err := execute(t, srv, "", "sessions", "1")
	require.NoError(t, err)
	assert.Contains(t, out, sid)

	out, err = execute(t, srv, "", "history", sid)
	require.NoError(t, err)
	assert.Contains(t, out, "You: hi")
	assert.Contains(t, out, "Mood: happy")
	assert.Contains(t, out, "Character: hello")
}

func TestSessionsEmpty(t *testing.T) {
	srv := setup(t)
	srv.AddCharacter(api.CharacterInput{Name: "Ada"})

	out, err := execute(t, srv, "", "sessions", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions yet.")
}

func TestClearAndDeleteSession(t *testing.T) {
	srv := setup(t)
	ada := srv.AddCharacter(api.CharacterInput{Name: "Ada"})
	sid := srv.AddSession(ada.ID, api.Message{Role: api.RoleUser, Content: "hi"})

	out, err := execute(t, srv, "n\n", "clear", sid)
	require.NoError(t, err)
	assert.Contains(t, out, chat.Prompt(chat.ActionClearChat, ""))
	assert.Contains(t, out, "Aborted.")
	assert.Len(t, srv.Messages(sid), 1)

	_, err = execute(t, srv, "y\n", "clear", sid)
	require.NoError(t, err)
	assert.True(t, srv.HasSession(sid))
	assert.Empty(t, srv.Messages(sid))

	out, err = execute(t, srv, "n\n", "delete-session", sid)
	require.NoError(t, err)
	assert.Contains(t, out, chat.Prompt(chat.ActionDeleteChat, ""))
	assert.True(t, srv.HasSession(sid))

	_, err = execute(t, srv, "", "delete-session", sid, "--yes")
	require.NoError(t, err)
	assert.False(t, srv.HasSession(sid))

	_, err = execute(t, srv, "", "delete-session", sid, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Session not found")
}

func TestLogShowsEvents(t *testing.T) {
	srv := setup(t)
	srv.AddCharacter(api.CharacterInput{Name: "Ada"})

	out, err := execute(t, nil, "", "log")
	require.NoError(t, err)
	assert.Contains(t, out, "No events logged yet.")

	_, err = execute(t, srv, "", "chat", "1", "hi")
	require.NoError(t, err)

	dir, err := os.Getwd()
	require.NoError(t, err)
	events, err := log.ReadAll(filepath.Join(config.Dir(dir), log.FileName))
	require.NoError(t, err)
	require.NotEmpty(t, events)

	out, err = execute(t, nil, "", "log", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, log.EventMessageSent)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestCleanKeepsRecentEvents(t *testing.T) {
	setup(t)
	now := time.Now()
	dir, err := os.Getwd()
	require.NoError(t, err)
	path := filepath.Join(config.Dir(dir), log.FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(testutil.EventLog(t, log.EventMessageSent,
		now.AddDate(0, 0, -90), now.AddDate(0, 0, -40), now)), 0644))

	out, err := execute(t, nil, "", "clean", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would remove 2 event(s).")

	out, err = execute(t, nil, "", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 event(s).")

	events, err := log.ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	out, err = execute(t, nil, "", "clean", "--keep", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "No events to clean up.")
}

package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestFallbackRunnerPrintsCommands(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFallbackRunner(&buf).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Non-TTY environment detected.") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "charchat chat <character-id> <message>") {
		t.Errorf("missing chat command: %q", out)
	}
}

func TestFocusNextCycles(t *testing.T) {
	got := []Focus{FocusCharacters.Next(), FocusChat.Next(), FocusForm.Next()}
	want := []Focus{FocusChat, FocusForm, FocusCharacters}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Next of %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSentimentStyleRendersText(t *testing.T) {
	for _, s := range []string{"positive", "negative", "neutral", "unknown"} {
		if got := SentimentStyle(s).Render(s); !strings.Contains(got, s) {
			t.Errorf("SentimentStyle(%q) lost the text: %q", s, got)
		}
	}
}

package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{1400 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute + 3*time.Second, "2h5m3s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	got := formatLine("⠋", "Waiting for Ada", 3*time.Second)
	if !strings.HasPrefix(got, "\r\033[2K") {
		t.Errorf("line should clear before drawing: %q", got)
	}
	if !strings.Contains(got, "Waiting for Ada") || !strings.Contains(got, "[3s]") {
		t.Errorf("unexpected line: %q", got)
	}
}

func TestWaiterSilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	w := NewWaiter(&buf, "Waiting")

	w.Start()
	time.Sleep(2 * frameInterval)
	elapsed := w.Stop()

	if buf.Len() != 0 {
		t.Errorf("expected no output off a terminal, got %q", buf.String())
	}
	if elapsed < 2*frameInterval {
		t.Errorf("elapsed %v shorter than the wait", elapsed)
	}
}

func TestWaiterDrawsOnTerminal(t *testing.T) {
	var buf syncBuffer
	w := &Waiter{out: &buf, label: "Waiting", isTTY: true}

	w.Start()
	time.Sleep(frameInterval / 2)
	w.Stop()

	out := buf.String()
	if !strings.Contains(out, "Waiting") {
		t.Errorf("expected indicator output, got %q", out)
	}
	if !strings.HasSuffix(out, "\r\033[2K") {
		t.Errorf("expected the line to be cleared on stop, got %q", out)
	}
}

// syncBuffer is a bytes.Buffer safe for the drawing goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Package ui provides terminal UI components for the charchat CLI.
// This file implements the waiting indicator shown while a reply is pending.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// frames are drawn in turn while waiting.
var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const frameInterval = 100 * time.Millisecond

// Waiter draws a one-line "waiting" indicator that redraws in place. On
// anything but a terminal it stays silent so piped output is clean.
type Waiter struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	isTTY   bool
	started time.Time
	stop    chan struct{}
	done    chan struct{}
}

// NewWaiter creates a Waiter that writes to out.
func NewWaiter(out io.Writer, label string) *Waiter {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &Waiter{out: out, label: label, isTTY: isTTY}
}

// Start begins drawing. It is a no-op when not attached to a terminal.
func (w *Waiter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.started = time.Now()
	if !w.isTTY || w.stop != nil {
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stop, w.done)
}

// Stop erases the indicator and returns how long it ran.
func (w *Waiter) Stop() time.Duration {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	elapsed := time.Since(w.started)
	w.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
		// Clear the line.
		fmt.Fprint(w.out, "\r\033[2K")
	}
	return elapsed
}

func (w *Waiter) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprint(w.out, formatLine(frames[i%len(frames)], w.label, time.Since(w.started)))
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// formatLine renders one frame, overwriting the current line.
func formatLine(frame, label string, elapsed time.Duration) string {
	return fmt.Sprintf("\r\033[2K\033[33m%s\033[0m %s \033[90m[%s]\033[0m", frame, label, formatDuration(elapsed))
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}

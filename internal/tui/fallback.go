// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"fmt"
	"io"
)

// FallbackRunner handles non-TTY execution by guiding users to CLI commands.
type FallbackRunner struct {
	out io.Writer
}

// NewFallbackRunner creates a new FallbackRunner writing to out.
func NewFallbackRunner(out io.Writer) *FallbackRunner {
	return &FallbackRunner{out: out}
}

// Run prints the commands that work without a terminal.
func (f *FallbackRunner) Run() error {
	lines := []string{
		"Non-TTY environment detected.",
		"Use the non-interactive commands instead:",
		"  charchat characters list",
		"  charchat chat <character-id> <message>",
		"  charchat history <session-id>",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.out, line); err != nil {
			return err
		}
	}
	return nil
}

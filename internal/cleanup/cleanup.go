// Package cleanup implements pruning of the client event log.
package cleanup

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

type line struct {
	raw []byte
	ts  time.Time // zero when the line has no readable time
}

// PruneByAge removes events older than maxAgeDays from the log at path.
// Lines without a readable time are kept. If dryRun is true the file is
// not rewritten. Returns the number of events removed.
func PruneByAge(path string, maxAgeDays int, dryRun bool) (int, error) {
	lines, err := readLines(path)
	if err != nil || lines == nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var kept [][]byte
	pruned := 0

	for _, l := range lines {
		if !l.ts.IsZero() && l.ts.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, l.raw)
	}

	if pruned == 0 || dryRun {
		return pruned, nil
	}
	return pruned, writeLines(path, kept)
}

// PruneKeepRecent removes all but the last keep events from the log at
// path. If dryRun is true the file is not rewritten. Returns the number of
// events removed.
func PruneKeepRecent(path string, keep int, dryRun bool) (int, error) {
	lines, err := readLines(path)
	if err != nil || lines == nil {
		return 0, err
	}

	if len(lines) <= keep {
		return 0, nil
	}

	// Events are appended in order, so the tail is the most recent.
	toRemove := len(lines) - keep
	if dryRun {
		return toRemove, nil
	}

	kept := make([][]byte, 0, keep)
	for _, l := range lines[toRemove:] {
		kept = append(kept, l.raw)
	}
	return toRemove, writeLines(path, kept)
}

// readLines returns nil without error when the log does not exist.
func readLines(path string) ([]line, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	var lines []line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var head struct {
			Time time.Time `json:"time"`
		}
		// Unreadable lines keep a zero time.
		_ = json.Unmarshal(raw, &head)
		lines = append(lines, line{raw: append([]byte(nil), raw...), ts: head.Time})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	if lines == nil {
		lines = []line{}
	}
	return lines, nil
}

// writeLines atomically replaces the log via a temp file in the same directory.
func writeLines(path string, lines [][]byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".log-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, l := range lines {
		w.Write(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp log: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing log: %w", err)
	}
	return nil
}

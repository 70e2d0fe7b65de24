// Package testutil provides test helper utilities for charchat tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TempWorkspace creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// ConfigYAML returns a minimal .charchat/config.yaml pointing at baseURL.
func ConfigYAML(baseURL string) string {
	return "version: 1\napi:\n  base_url: " + baseURL + "\n"
}

// EventLog returns log.jsonl contents with one event per timestamp, in order.
func EventLog(t *testing.T, event string, times ...time.Time) string {
	t.Helper()
	var b strings.Builder
	for _, ts := range times {
		line, err := json.Marshal(map[string]any{
			"time":  ts.Format(time.RFC3339Nano),
			"level": "info",
			"event": event,
		})
		if err != nil {
			t.Fatalf("marshalling event: %v", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

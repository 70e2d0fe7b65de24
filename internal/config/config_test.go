package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charchat/charchat/internal/testutil"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://chat.internal:9000/api"
	cfg.Chat.MaxContextMessages = 20

	// Write to disk
	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	// Read back
	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.API.BaseURL != "http://chat.internal:9000/api" {
		t.Errorf("API.BaseURL: got %q, want %q", loaded.API.BaseURL, "http://chat.internal:9000/api")
	}
	if loaded.Chat.MaxContextMessages != 20 {
		t.Errorf("Chat.MaxContextMessages: got %d, want 20", loaded.Chat.MaxContextMessages)
	}
}

func TestDefaultConfigMaxContext(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Chat.MaxContextMessages != 12 {
		t.Errorf("default MaxContextMessages: got %d, want 12", cfg.Chat.MaxContextMessages)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := testutil.TempWorkspace(t, map[string]string{
		".charchat/config.yaml": testutil.ConfigYAML("http://example.test/api"),
	})

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on partial config: %v", err)
	}
	if cfg.API.BaseURL != "http://example.test/api" {
		t.Errorf("API.BaseURL: got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 60 {
		t.Errorf("API.TimeoutSeconds: got %d, want default 60", cfg.API.TimeoutSeconds)
	}
	if cfg.Chat.MaxContextMessages != 12 {
		t.Errorf("Chat.MaxContextMessages: got %d, want default 12", cfg.Chat.MaxContextMessages)
	}
	if cfg.Log.MaxAgeDays != 30 {
		t.Errorf("Log.MaxAgeDays: got %d, want default 30", cfg.Log.MaxAgeDays)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvTimeout, "")
	t.Setenv(EnvMaxContext, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("API.BaseURL: got %q", cfg.API.BaseURL)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://override.test/api")
	t.Setenv(EnvTimeout, "5")
	t.Setenv(EnvMaxContext, "")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://override.test/api" {
		t.Errorf("API.BaseURL: got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Errorf("API.TimeoutSeconds: got %d, want 5", cfg.API.TimeoutSeconds)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q, want debug", cfg.Log.Level)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	// godotenv does not override variables that are already set, so make
	// sure the key is absent rather than empty.
	t.Setenv(EnvMaxContext, "")
	os.Unsetenv(EnvMaxContext)
	t.Cleanup(func() { os.Unsetenv(EnvMaxContext) })

	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(EnvMaxContext+"=30\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chat.MaxContextMessages != 30 {
		t.Errorf("Chat.MaxContextMessages: got %d, want 30", cfg.Chat.MaxContextMessages)
	}
}

func TestLoadRejectsMalformedNumber(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")

	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for malformed CHARCHAT_TIMEOUT")
	}
}

func TestValidateRejectsNegativeMaxAge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.MaxAgeDays = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative log.max_age_days")
	}
}

// Package log provides structured event logging.
// Events are appended as JSON lines to .charchat/log.jsonl through zap.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Event type constants.
const (
	EventCharactersLoaded  = "characters_loaded"
	EventCharacterSelected = "character_selected"
	EventSessionLoadFailed = "session_load_failed"
	EventHistoryReplayed   = "history_replayed"
	EventCharacterCreated  = "character_created"
	EventCharacterDeleted  = "character_deleted"
	EventMessageSent       = "message_sent"
	EventChatFailed        = "chat_failed"
	EventChatCleared       = "chat_cleared"
	EventChatDeleted       = "chat_deleted"
)

// LogEvent is a single parsed line of the log file.
type LogEvent struct {
	Time        time.Time `json:"time"`
	Level       string    `json:"level"`
	Event       string    `json:"event"`
	CharacterID int       `json:"character,omitempty"`
	SessionID   string    `json:"session,omitempty"`
	Count       int       `json:"count,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
type Logger struct {
	path string
	zl   *zap.Logger
	file *os.File
}

// FileName is the log file inside the .charchat directory.
const FileName = "log.jsonl"

// NewLogger creates a Logger that writes to log.jsonl inside dir (the
// .charchat directory), creating dir if needed. Does not truncate an
// existing log file. level is a zap level name; empty means info.
func NewLogger(dir, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		lvl = parsed
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "event",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(f), lvl)

	return &Logger{
		path: path,
		zl:   zap.New(core),
		file: f,
	}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Path returns the log file path, or "" for a no-op logger.
func (l *Logger) Path() string {
	return l.path
}

// Info records a named event.
func (l *Logger) Info(event string, fields ...zap.Field) {
	l.zl.Info(event, fields...)
}

// Debug records a named event at debug level.
func (l *Logger) Debug(event string, fields ...zap.Field) {
	l.zl.Debug(event, fields...)
}

// Warn records a named event that degraded silently.
func (l *Logger) Warn(event string, err error, fields ...zap.Field) {
	l.zl.Warn(event, append(fields, zap.String("error", errString(err)))...)
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	_ = l.zl.Sync()
	return l.file.Close()
}

// Field helpers keep key names consistent with LogEvent.

// Character tags an event with a character id.
func Character(id int) zap.Field { return zap.Int("character", id) }

// Session tags an event with a session id.
func Session(id string) zap.Field { return zap.String("session", id) }

// Count tags an event with a count.
func Count(n int) zap.Field { return zap.Int("count", n) }

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ReadAll reads and parses all events from the log file at path.
// Returns an empty slice (not an error) if the file does not exist.
func ReadAll(path string) ([]LogEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}

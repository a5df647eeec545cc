// Package logging provides a minimal leveled logger with text and JSON output.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents a log severity level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the uppercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Accepts lower, UPPER, or
// Title casing of debug, info, warn/warning, error.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG", "Debug":
		return LevelDebug, nil
	case "info", "INFO", "Info":
		return LevelInfo, nil
	case "warn", "WARN", "Warn", "warning", "WARNING", "Warning":
		return LevelWarn, nil
	case "error", "ERROR", "Error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu     sync.Mutex
	level  = LevelInfo
	format = "text"
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that will be logged.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum log level.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetFormat sets the output format: "text" or "json".
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f == "json" || f == "text" {
		format = f
	}
}

// SetOutput redirects log output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		output = os.Stderr
		return
	}
	output = w
}

type jsonEntry struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
}

func logf(l Level, msg string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	text := fmt.Sprintf(msg, args...)
	if format == "json" {
		entry := jsonEntry{
			Timestamp: time.Now().Format(time.RFC3339),
			Level:     levelLower(l),
			Message:   text,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(output, "[%s] %s\n", l, text)
			return
		}
		fmt.Fprintln(output, string(b))
		return
	}
	fmt.Fprintf(output, "%s [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), l, text)
}

func levelLower(l Level) string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Debug logs a debug-level message.
func Debug(msg string, args ...interface{}) { logf(LevelDebug, msg, args...) }

// Info logs an info-level message.
func Info(msg string, args ...interface{}) { logf(LevelInfo, msg, args...) }

// Warn logs a warn-level message.
func Warn(msg string, args ...interface{}) { logf(LevelWarn, msg, args...) }

// Error logs an error-level message.
func Error(msg string, args ...interface{}) { logf(LevelError, msg, args...) }

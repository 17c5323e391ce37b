// Package logging writes timestamped run logs under .stratum/logs/ so users
// can inspect a failed run after the process exits. Files rotate via
// lumberjack using the limits from the project configuration.

package logging

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kingrea/stratum/internal/config"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Logger appends timestamped, leveled lines to a rotating log file.
type Logger struct {
	out   *lumberjack.Logger
	level Level
}

// New creates (or reuses) the rotating log file for the current project.
func New(cfg *config.Config) *Logger {
	return &Logger{
		out: &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogsDir(), "stratum.log"),
			MaxSize:    cfg.Project.Logs.MaxSizeMB,
			MaxBackups: cfg.Project.Logs.MaxBackups,
		},
		level: ParseLevel(cfg.Project.Logs.Level),
	}
}

// Close releases the underlying file handle.
func (l *Logger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Close()
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) { l.write(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { l.write(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) { l.write(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { l.write(LevelError, format, args...) }

func (l *Logger) write(level Level, format string, args ...any) {
	if l == nil || l.out == nil || level < l.level {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	timestamp := time.Now().Format(time.RFC3339)
	fmt.Fprintf(l.out, "[%s] %-5s %s\n", timestamp, level, line)
}

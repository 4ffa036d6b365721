// Package logger provides the leveled, printf-style logger used across
// zotero-mcp. Output goes to stderr or a log file, never stdout: in stdio mode
// stdout carries MCP frames.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// Level is a logging severity.
type Level int32

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
	FatalLevel: "FATAL",
}

func (l Level) String() string {
	if l < DebugLevel || l > FatalLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a configured level name. Unknown or empty values mean info.
func ParseLevel(name string) Level {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return WarnLevel
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i)
		}
	}
	return InfoLevel
}

// Output destinations accepted in LogConfig.Output.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Logger is the logging interface passed to every component.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	SetLevel(level Level)
}

// LogConfig selects where log lines go and how verbose they are.
type LogConfig struct {
	Output   string // OutputStderr, OutputFile, or empty to pick by environment
	Level    string // debug, info, warn, error, fatal
	FilePath string // used with OutputFile; defaults to DefaultLogFile()
}

// NewLogger builds a logger from cfg, creating the log file and its directory
// when needed.
func NewLogger(cfg LogConfig) (Logger, error) {
	output := cfg.Output
	if output == "" {
		output = defaultOutput()
	}

	var w io.Writer
	switch output {
	case OutputStderr:
		w = os.Stderr
	case OutputFile:
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		w = f
	default:
		return nil, fmt.Errorf("invalid log output: %s (expected '%s' or '%s')", output, OutputFile, OutputStderr)
	}
	return NewWriterLogger(w, ParseLevel(cfg.Level)), nil
}

// NewWriterLogger returns a logger writing timestamped lines to w.
func NewWriterLogger(w io.Writer, level Level) Logger {
	l := &leveledLogger{out: log.New(w, "", log.LstdFlags)}
	l.level.Store(int32(level))
	return l
}

// NewNoOpLogger discards everything. Used in tests.
func NewNoOpLogger() Logger {
	return NewWriterLogger(io.Discard, FatalLevel)
}

// DefaultLogFile is ~/.zotero-mcp/zotero-mcp.log.
func DefaultLogFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".zotero-mcp", "zotero-mcp.log"), nil
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		var err error
		if path, err = DefaultLogFile(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// defaultOutput picks stderr inside containers, where it is collected, and a
// file otherwise, since desktop MCP clients tend to drop a server's stderr.
func defaultOutput() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return OutputStderr
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return OutputStderr
	}
	return OutputFile
}

// leveledLogger is safe for concurrent use; tool calls log from many goroutines.
type leveledLogger struct {
	out   *log.Logger
	level atomic.Int32
}

func (l *leveledLogger) SetLevel(level Level) { l.level.Store(int32(level)) }

func (l *leveledLogger) Debug(format string, v ...any) { l.logf(DebugLevel, format, v...) }
func (l *leveledLogger) Info(format string, v ...any)  { l.logf(InfoLevel, format, v...) }
func (l *leveledLogger) Warn(format string, v ...any)  { l.logf(WarnLevel, format, v...) }
func (l *leveledLogger) Error(format string, v ...any) { l.logf(ErrorLevel, format, v...) }

// Fatal logs regardless of level and exits.
func (l *leveledLogger) Fatal(format string, v ...any) {
	l.out.Printf("[%s] %s", FatalLevel, fmt.Sprintf(format, v...))
	os.Exit(1)
}

func (l *leveledLogger) logf(level Level, format string, v ...any) {
	if level < Level(l.level.Load()) {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, v...))
}

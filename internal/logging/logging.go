// Package logging provides leveled, optionally structured logging for
// costscope. Text output is colorized per level; JSON output emits one
// entry per line for log shippers.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name from a flag or config value.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("invalid log level %q", s)
}

// Format represents the log output format
type Format int

const (
	Text Format = iota
	JSON
)

// ParseFormat converts a format name from a flag or config value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return Text, nil
	case "json":
		return JSON, nil
	}
	return Text, fmt.Errorf("invalid log format %q", s)
}

// Logger handles leveled log output. It is safe for use from multiple
// goroutines.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  Level
	Format Format
}

var (
	defaultLogger = &Logger{
		out:    os.Stdout,
		level:  INFO,
		format: Text,
	}

	debugColor = color.New(color.FgCyan)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

// Configure sets up the default logger
func Configure(config LogConfig) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = config.Level
	defaultLogger.format = config.Format
}

// SetOutput redirects the default logger, primarily for tests and for
// keeping log lines off a terminal owned by an interactive view.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.out = w
}

type logEntry struct {
	Timestamp string      `json:"timestamp"`
	Level     string      `json:"level"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

func (l *Logger) log(level Level, msg string, data interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")

	if l.format == JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   msg,
			Data:      data,
		}
		if err := json.NewEncoder(l.out).Encode(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode log entry: %v\n", err)
		}
		return
	}

	var levelColor *color.Color
	switch level {
	case DEBUG:
		levelColor = debugColor
	case WARN:
		levelColor = warnColor
	case ERROR:
		levelColor = errorColor
	default:
		levelColor = infoColor
	}

	levelStr := levelColor.Sprintf("%-5s", level.String())
	fmt.Fprintf(l.out, "%s %s: %s", timestamp, levelStr, msg)
	if data != nil {
		fmt.Fprintf(l.out, " %+v", data)
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Debug(msg string, data ...interface{}) {
	l.log(DEBUG, msg, firstOrNil(data))
}

func (l *Logger) Info(msg string, data ...interface{}) {
	l.log(INFO, msg, firstOrNil(data))
}

func (l *Logger) Warn(msg string, data ...interface{}) {
	l.log(WARN, msg, firstOrNil(data))
}

func (l *Logger) Error(msg string, err error, data ...interface{}) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.log(ERROR, msg, firstOrNil(data))
}

// firstOrNil returns the first element of data if present, nil otherwise
func firstOrNil(data []interface{}) interface{} {
	if len(data) > 0 {
		return data[0]
	}
	return nil
}

// FetchStart logs the start of a cost fetch for one scope and period.
func (l *Logger) FetchStart(scope, period string) {
	l.Debug("Fetching cost data", map[string]interface{}{
		"scope":  scope,
		"period": period,
	})
}

// FetchComplete logs a resolved cost fetch.
func (l *Logger) FetchComplete(scope, period string, apps int, elapsed time.Duration) {
	l.Info("Cost data fetched", map[string]interface{}{
		"scope":      scope,
		"period":     period,
		"apps":       apps,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

// FetchFailed logs a failed cost fetch. The failure stays local to its
// scope and period; callers continue with the other cells.
func (l *Logger) FetchFailed(scope, period string, err error) {
	l.Error("Cost data fetch failed", err, map[string]interface{}{
		"scope":  scope,
		"period": period,
	})
}

// ExportStart logs the beginning of a report export.
func (l *Logger) ExportStart(format, period string, teams, projects int) {
	l.Info("Starting cost export", map[string]interface{}{
		"format":   format,
		"period":   period,
		"teams":    teams,
		"projects": projects,
	})
}

// ExportComplete logs a finished report export.
func (l *Logger) ExportComplete(location string, rows int, elapsed time.Duration) {
	l.Info("Cost export complete", map[string]interface{}{
		"location":   location,
		"rows":       rows,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

// Default logger methods
func Debug(msg string, data ...interface{}) {
	defaultLogger.Debug(msg, data...)
}

func Info(msg string, data ...interface{}) {
	defaultLogger.Info(msg, data...)
}

func Warn(msg string, data ...interface{}) {
	defaultLogger.Warn(msg, data...)
}

func Error(msg string, err error, data ...interface{}) {
	defaultLogger.Error(msg, err, data...)
}

func FetchStart(scope, period string) {
	defaultLogger.FetchStart(scope, period)
}

func FetchComplete(scope, period string, apps int, elapsed time.Duration) {
	defaultLogger.FetchComplete(scope, period, apps, elapsed)
}

func FetchFailed(scope, period string, err error) {
	defaultLogger.FetchFailed(scope, period, err)
}

func ExportStart(format, period string, teams, projects int) {
	defaultLogger.ExportStart(format, period, teams, projects)
}

func ExportComplete(location string, rows int, elapsed time.Duration) {
	defaultLogger.ExportComplete(location, rows, elapsed)
}

// Package log provides structured logging for texdup.
// Entries carry a level, a category and key=value fields. Logging is enabled
// via the --debug flag or the TEXDUP_DEBUG env var.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/texdup/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

// ParseLevel maps a config string to a Level. Unknown values yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatSegment Category = "segment" // Paragraph segmentation
	CatDetect  Category = "detect"  // Detector runs and match filtering
	CatAnalyze Category = "analyze" // Incremental analysis passes
	CatConfig  Category = "config"  // Configuration loading/saving
	CatWatcher Category = "watcher" // File watcher events
	CatMonitor Category = "monitor" // Scheduler ticks and triggers
	CatRender  Category = "render"  // Result rendering
	CatMCP     Category = "mcp"     // MCP server and protocol communication
	CatCache   Category = "cache"   // cache operations
)

// Field is one key=value pair of an entry.
type Field struct {
	Key   string
	Value any
}

// Entry is one log record.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	Fields   []Field
}

// String formats e as a log line without the trailing newline:
// 2006-01-02T15:04:05 [LEVEL] [category] message key=value ...
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", e.Time.Format("2006-01-02T15:04:05"), e.Level, e.Category, e.Message)
	for _, f := range e.Fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}

// Value returns the value of the first field named key.
func (e Entry) Value(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// pairs turns alternating keys and values into fields. A trailing key
// without a value gets "<missing>".
func pairs(kv []any) []Field {
	fields := make([]Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		f := Field{Key: fmt.Sprint(kv[i]), Value: "<missing>"}
		if i+1 < len(kv) {
			f.Value = kv[i+1]
		}
		fields = append(fields, f)
	}
	return fields
}

// Logger writes entries and publishes them to listeners.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[Entry]
}

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

func install(l *Logger) {
	mu.Lock()
	prev := defaultLogger
	defaultLogger = l
	mu.Unlock()
	if prev != nil {
		prev.broker.Close()
	}
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Init makes path the destination of every entry, replacing any previous
// logger. The returned cleanup closes the file and disables logging.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := newLogger(f)
	install(l)
	return func() {
		if current() == l {
			install(nil)
		}
		_ = f.Close()
	}, nil
}

// InitWriter sends every entry to w. The MCP server logs to stderr since
// stdout carries the protocol.
func InitWriter(w io.Writer) {
	install(newLogger(w))
}

func newLogger(w io.Writer) *Logger {
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[Entry](),
	}
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := Entry{Time: time.Now(), Level: level, Category: cat, Message: msg, Fields: pairs(fields)}
	_, _ = io.WriteString(l.writer, entry.String()+"\n")
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// LogListener tails log entries.
type LogListener = pubsub.Listener[Entry]

// NewListener tails entries logged after the call. It returns nil when
// logging is not initialized.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewListener(ctx, l.broker, pubsub.LoggedEvent)
}

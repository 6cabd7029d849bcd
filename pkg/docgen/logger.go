package docgen

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "OFF"}

func (l LogLevel) String() string {
	if l < LogDebug || l > LogOff {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// parseLogLevel maps a config value to a level; unknown names mean info.
func parseLogLevel(name string) LogLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == name {
			return LogLevel(i)
		}
	}
	return LogInfo
}

type Fields map[string]interface{}

// Logger writes one line per message: timestamp, level, message and the
// sorted fields. Loggers derived with WithField share the sink of their
// parent, so SetLevel on either affects both.
type Logger struct {
	sink   *logSink
	fields Fields
}

type logSink struct {
	mu    sync.Mutex
	w     io.Writer
	level LogLevel
}

var (
	globalLogger     *Logger
	globalLoggerOnce sync.Once
	globalLoggerMu   sync.RWMutex
)

func NewLogger(w io.Writer, level LogLevel) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{sink: &logSink{w: w, level: level}}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level LogLevel) bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level != LogOff && level >= l.sink.level
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Fields{key: value})
}

func (l *Logger) WithFields(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{sink: l.sink, fields: merged}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.write(LogDebug, format, args) }
func (l *Logger) Info(format string, args ...interface{})  { l.write(LogInfo, format, args) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write(LogWarn, format, args) }
func (l *Logger) Error(format string, args ...interface{}) { l.write(LogError, format, args) }

// DebugCommand logs a template command and what it evaluated to.
func (l *Logger) DebugCommand(command string, result interface{}) {
	if l.Enabled(LogDebug) {
		l.write(LogDebug, "command {%s} -> %v", []interface{}{command, result})
	}
}

func (l *Logger) write(level LogLevel, format string, args []interface{}) {
	if !l.Enabled(level) {
		return
	}

	line := fmt.Sprintf("%s [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level, fmt.Sprintf(format, args...))
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, l.fields[k])
		}
	}

	l.sink.mu.Lock()
	fmt.Fprintln(l.sink.w, line)
	l.sink.mu.Unlock()
}

// GetLogger returns the package logger. Its level follows the global config.
func GetLogger() *Logger {
	globalLoggerOnce.Do(func() {
		globalLogger = NewLogger(os.Stderr, parseLogLevel(GetGlobalConfig().LogLevel))
	})
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// SetLogger replaces the package logger used by engines created afterwards.
func SetLogger(logger *Logger) {
	GetLogger()
	globalLoggerMu.Lock()
	globalLogger = logger
	globalLoggerMu.Unlock()
}

// UpdateLoggerFromConfig applies the global config's level to the package logger.
func UpdateLoggerFromConfig() {
	GetLogger().SetLevel(parseLogLevel(GetGlobalConfig().LogLevel))
}

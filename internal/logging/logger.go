package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fadedpez/blackjacktable/internal/types"
	"github.com/sirupsen/logrus"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var logrusLevels = map[Level]logrus.Level{
	DEBUG: logrus.DebugLevel,
	INFO:  logrus.InfoLevel,
	WARN:  logrus.WarnLevel,
	ERROR: logrus.ErrorLevel,
}

// String returns the level name
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a case-insensitive level name to a Level, defaulting to INFO
func ParseLevel(name string) Level {
	for level, levelName := range levelNames {
		if strings.EqualFold(levelName, name) {
			return level
		}
	}
	if strings.EqualFold(name, "warning") {
		return WARN
	}
	return INFO
}

// Logger is a leveled printf-style logger backed by logrus
type Logger struct {
	base  *logrus.Logger
	level Level
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(level Level) *Logger {
	return NewLoggerWithOutput(level, os.Stdout)
}

// NewLoggerWithOutput creates a new logger instance writing to w
func NewLoggerWithOutput(level Level, w io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(logrusLevels[level])
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	return &Logger{
		base:  base,
		level: level,
	}
}

// Level returns the minimum level this logger emits
func (l *Logger) Level() Level {
	return l.level
}

// SetLevel changes the minimum level
func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.base.SetLevel(logrusLevels[level])
}

// WithField returns a structured entry carrying one field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.base.WithField(key, value)
}

// WithFields returns a structured entry carrying the given fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.base.WithFields(fields)
}

// Writer exposes the underlying output, used for HTTP access logs
func (l *Logger) Writer() io.Writer {
	return l.base.Out
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level <= DEBUG {
		l.base.Debugf(format, v...)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	if l.level <= INFO {
		l.base.Infof(format, v...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	if l.level <= WARN {
		l.base.Warnf(format, v...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	if l.level <= ERROR {
		l.base.Errorf(format, v...)
	}
}

// LogError logs a GameError with its code and cause as fields
func (l *Logger) LogError(err error) {
	var gameErr *types.GameError
	if types.As(err, &gameErr) {
		fields := logrus.Fields{
			"code":    string(gameErr.Code),
			"message": gameErr.Message,
		}
		if gameErr.Err != nil {
			fields["cause"] = gameErr.Err.Error()
		}
		l.base.WithFields(fields).Error("Game error occurred")
	} else {
		l.Error("Unexpected error: %v", err)
	}
}

// Default logger instance
var Default = NewLogger(INFO)

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the component-scoped logging shape used across the server.
// Component names are short tags like "http" or "static".
type Logger interface {
	Debugf(component string, format string, args ...interface{})
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Debugf(component, format string, args ...interface{}) {}
func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

const (
	FormatText = "text"
	FormatJSON = "json"
)

// LogrusLogger adapts a logrus.Logger to Logger, putting the component
// into a "component" field.
type LogrusLogger struct {
	log *logrus.Logger
}

// New builds a LogrusLogger writing to w.
// level is one of debug, info, warn, error; format is text or json.
func New(w io.Writer, level, format string) (*LogrusLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
	}

	return &LogrusLogger{log: l}, nil
}

// ParseLevel accepts an empty string as info.
func ParseLevel(level string) (logrus.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return logrus.InfoLevel, nil
	}
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return logrus.ParseLevel(level)
	default:
		return logrus.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func (l *LogrusLogger) Debugf(component string, format string, args ...interface{}) {
	l.log.WithField("component", component).Debugf(format, args...)
}

func (l *LogrusLogger) Infof(component string, format string, args ...interface{}) {
	l.log.WithField("component", component).Infof(format, args...)
}

func (l *LogrusLogger) Errorf(component string, format string, args ...interface{}) {
	l.log.WithField("component", component).Errorf(format, args...)
}

// Infow logs msg at info level with structured fields.
func (l *LogrusLogger) Infow(component string, msg string, fields map[string]interface{}) {
	l.log.WithField("component", component).WithFields(logrus.Fields(fields)).Info(msg)
}

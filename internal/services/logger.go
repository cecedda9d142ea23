package services

import (
	"io"
	"log"
	"log/slog"
	"strings"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ProductionLogger writes structured records through log/slog.
type ProductionLogger struct {
	logger  *slog.Logger
	service string
}

// NewProductionLogger creates a logger writing to w. JSON output is used when
// structured is true, logfmt-style text otherwise.
func NewProductionLogger(w io.Writer, service string, level slog.Level, structured bool) *ProductionLogger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if structured {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &ProductionLogger{
		logger:  slog.New(handler).With("service", service),
		service: service,
	}
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.logger.Info(msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.logger.Error(msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.logger.Debug(msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.logger.Warn(msg, keysAndValues...)
}

// With returns a child logger carrying extra fields.
func (p *ProductionLogger) With(keysAndValues ...interface{}) *ProductionLogger {
	return &ProductionLogger{logger: p.logger.With(keysAndValues...), service: p.service}
}

// Slog exposes the underlying logger.
func (p *ProductionLogger) Slog() *slog.Logger {
	return p.logger
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// ParseLogLevel maps LOG_LEVEL values onto slog levels. Unknown values mean INFO.
func ParseLogLevel(value string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InstallDefault routes the standard library logger (used by the
// repositories) and slog's default through the given logger.
func InstallDefault(l Logger) {
	p, ok := l.(*ProductionLogger)
	if !ok {
		return
	}
	slog.SetDefault(p.Slog())
	log.SetFlags(0)
}

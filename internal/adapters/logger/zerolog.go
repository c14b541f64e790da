// Package logger provides the zerolog-backed implementation of
// ports.Logger.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the logger output.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// ZeroLogger implements ports.Logger on top of zerolog.
type ZeroLogger struct {
	zl zerolog.Logger
}

// New builds a logger writing to stderr. An unknown level is an error
// rather than a silent default.
func New(cfg Config) (*ZeroLogger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var output io.Writer = os.Stderr
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZeroLogger{zl: zl}, nil
}

func addFields(event *zerolog.Event, fields []map[string]interface{}) *zerolog.Event {
	for _, m := range fields {
		for k, v := range m {
			event = event.Interface(k, v)
		}
	}
	return event
}

func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	addFields(l.zl.Debug(), fields).Msg(msg)
}

func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	addFields(l.zl.Info(), fields).Msg(msg)
}

func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	addFields(l.zl.Warn(), fields).Msg(msg)
}

func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	addFields(l.zl.Error().Err(err), fields).Msg(msg)
}

// Package logging wraps zerolog with the small structured-logging surface
// the simulation core's ambient concerns need: one Logger type, JSON or
// console output, and child loggers scoped to a patch or worker.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level is the minimum severity a Logger emits.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects how log lines are rendered.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Config configures a new Logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger is a structured logger scoped to one component (the orchestrator,
// a patch worker, the collector, the dashboard).
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger from cfg, defaulting to info level, JSON output to
// stdout when fields are left zero.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	output := cfg.Output
	if cfg.Format == FormatConsole {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(output).With().Timestamp().Logger().Level(level(cfg.Level))
	return &Logger{zl: zl}
}

func level(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithPatch returns a child logger tagged with a patch id, for a worker's
// whole lifetime.
func (l *Logger) WithPatch(patchID int) *Logger {
	return &Logger{zl: l.zl.With().Int("patch_id", patchID).Logger()}
}

// WithTick returns a child logger additionally tagged with a tick number.
func (l *Logger) WithTick(tick int) *Logger {
	return &Logger{zl: l.zl.With().Int("tick", tick).Logger()}
}

func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }

// Error logs msg with err attached, when err is non-nil.
func (l *Logger) Error(msg string, err error) {
	l.zl.Error().Err(err).Msg(msg)
}

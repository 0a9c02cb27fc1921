package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the push-gate logging handle over zerolog.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger writing to stderr. Stdout belongs to the push report.
func New(level, format string) *Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level, format string) *Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.WarnLevel
	}

	output := w
	if format == "text" {
		output = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}

	logger := zerolog.New(output).Level(logLevel).With().Timestamp().Logger()

	return &Logger{logger: logger}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Info and Infof report progress; hidden at the default warn level.
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

// Error attaches err as the "error" field.
func (l *Logger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// Warnf is used for findings that do not change the gate decision.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

// With returns a child logger carrying key on every event.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

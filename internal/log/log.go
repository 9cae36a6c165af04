// Package log provides structured, colored logging for tokencore.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers for different parts of the system.
var (
	Fee     zerolog.Logger
	Airdrop zerolog.Logger
	Message zerolog.Logger
	CLI     zerolog.Logger
)

// logFile is the file sink opened by Init, if any, and console the writer
// logging falls back to once it is closed.
var (
	logFile *os.File
	console io.Writer
)

// Levels accepted by Init.
var Levels = []string{"debug", "info", "warn", "error"}

func init() {
	// Command output goes to stdout, so logs default to stderr.
	Logger = NewConsoleLogger(os.Stderr, "info")
	initComponentLoggers()
}

// Init initializes the logger writing to w with the given configuration.
// When file is non-empty, logs are written to both w (colored or JSON
// depending on jsonOutput) and the file (always JSON for machine parsing).
// A file opened by an earlier Init is closed.
func Init(w io.Writer, level string, jsonOutput bool, file string) error {
	if err := Close(); err != nil {
		return err
	}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		logFile = f

		console = w
		if !jsonOutput {
			console = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
		}

		multi := zerolog.MultiLevelWriter(console, f)
		Logger = zerolog.New(multi).
			Level(parseLevel(level)).
			With().
			Timestamp().
			Logger()
	} else if jsonOutput {
		Logger = NewJSONLogger(w, level)
	} else {
		Logger = NewConsoleLogger(w, level)
	}

	initComponentLoggers()
	return nil
}

// Close closes the log file opened by Init; logging continues on the
// console. It is safe to call when no file is open.
func Close() error {
	if logFile == nil {
		return nil
	}
	f := logFile
	logFile = nil
	Logger = Logger.Output(console)
	initComponentLoggers()
	return f.Close()
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(output).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ValidLevel reports whether level is one of Levels.
func ValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func initComponentLoggers() {
	Fee = WithComponent("fee")
	Airdrop = WithComponent("airdrop")
	Message = WithComponent("message")
	CLI = WithComponent("cli")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Timed logs the duration of an operation at debug level when the returned
// func is called. Key derivation is the slow path it is meant for.
func Timed(logger zerolog.Logger, name string) func() {
	start := time.Now()
	return func() {
		logger.Debug().
			Str("operation", name).
			Dur("duration", time.Since(start)).
			Msg("Operation finished")
	}
}

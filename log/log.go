// Package log is a thin wrapper over zerolog with a printf style and a
// key-value style API shared by the rest of the module.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/vocdoni/dao-z-sandbox/config"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// logTestWriterName selects logTestWriter as output, used by benchmarks.
	logTestWriterName = "log_test_writer"
)

var (
	log zerolog.Logger

	logTestWriter io.Writer

	// panicOnInvalidChars makes any log line with invalid UTF-8 panic, it
	// is enabled with LOG_PANIC_ON_INVALIDCHARS=true.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

func init() {
	Init(config.LogLevel, config.DefaultLogOutput, nil)
}

// invalidCharChecker scans every encoded line for the replacement
// sequence zerolog writes in place of invalid UTF-8.
type invalidCharChecker struct {
	out io.Writer
}

func (w *invalidCharChecker) Write(p []byte) (int, error) {
	if panicOnInvalidChars && bytes.Contains(p, []byte(`\ufffd`)) {
		panic(fmt.Sprintf("log line contains invalid chars: %q", p))
	}
	return w.out.Write(p)
}

// errorLevelWriter forwards only error and higher levels.
type errorLevelWriter struct {
	io.Writer
}

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.ErrorLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Init configures the global logger. Output can be stdout, stderr or a file
// path. If errorOutput is not nil, error lines are also copied there.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}
	case "stderr":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339Nano}
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	out = &invalidCharChecker{out: out}
	if errorOutput != nil {
		out = zerolog.MultiLevelWriter(out, &errorLevelWriter{errorOutput})
	}
	l := zerolog.New(out).With().Timestamp().Logger()
	switch level {
	case LogLevelDebug:
		l = l.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		l = l.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		l = l.Level(zerolog.WarnLevel)
	case LogLevelError:
		l = l.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}
	log = l
}

// Logger returns the underlying zerolog logger, to be handed to libraries
// that accept one.
func Logger() zerolog.Logger {
	return log
}

// Level returns the current log level.
func Level() string {
	return log.GetLevel().String()
}

func Debug(args ...any) {
	log.Debug().Msg(fmt.Sprint(args...))
}

func Info(args ...any) {
	log.Info().Msg(fmt.Sprint(args...))
}

func Warn(args ...any) {
	log.Warn().Msg(fmt.Sprint(args...))
}

func Error(args ...any) {
	log.Error().Msg(fmt.Sprint(args...))
}

func Debugf(template string, args ...any) {
	log.Debug().Msgf(template, args...)
}

func Infof(template string, args ...any) {
	log.Info().Msgf(template, args...)
}

func Warnf(template string, args ...any) {
	log.Warn().Msgf(template, args...)
}

func Errorf(template string, args ...any) {
	log.Error().Msgf(template, args...)
}

// Fatalf logs the message and exits the process.
func Fatalf(template string, args ...any) {
	log.Fatal().Msgf(template, args...)
}

// Debugw logs msg with the key-value pairs provided.
func Debugw(msg string, keyvalues ...any) {
	log.Debug().Fields(keyvalues).Msg(msg)
}

// Infow logs msg with the key-value pairs provided.
func Infow(msg string, keyvalues ...any) {
	log.Info().Fields(keyvalues).Msg(msg)
}

// Warnw logs msg with the key-value pairs provided.
func Warnw(msg string, keyvalues ...any) {
	log.Warn().Fields(keyvalues).Msg(msg)
}

// Errorw logs msg along with err and the key-value pairs provided.
func Errorw(err error, msg string, keyvalues ...any) {
	log.Error().Err(err).Fields(keyvalues).Msg(msg)
}

// Package log provides structured logging for pipeline runs.
//
// Logging goes through log/slog with a JSON handler; a wrapping handler pulls
// stack traces out of cockroachdb/errors values so fatal failures carry their
// origin. Non-fatal pipeline warnings are routed through a zerolog sink so
// that structured warning objects keep their fields.
package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	"github.com/modelpipe/modelpipe/pkg/errors"
)

// SetupLogger installs the default slog logger for the process.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))

	setupWarningSink()
}

// setupWarningSink routes pkg/errors warnings through zerolog so structured
// warning objects (algorithm skips, plot failures) keep their fields.
func setupWarningSink() {
	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	errors.SetZerologWarnFunc(func(w error) {
		evt := zl.Warn()
		if obj, ok := w.(zerolog.LogObjectMarshaler); ok {
			evt = evt.EmbedObject(obj)
		}
		evt.Msg(w.Error())
	})
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

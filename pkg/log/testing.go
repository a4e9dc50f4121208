// Testing helpers for capturing log output. Pipeline tests use these to
// assert that recoverable skips are logged rather than raised.

package log

import (
	"bytes"
	"log/slog"
)

// NewTestLogger returns a logger writing JSON records into the returned
// buffer. Tests inspect the buffer to verify skips and stage transitions.
func NewTestLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buffer, &slog.HandlerOptions{Level: level})
	return slog.New(WrapByErrFmtHandler(handler)), buffer
}

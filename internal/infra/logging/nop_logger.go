package logging

import (
	"io"
	"log/slog"
)

// NewNopLogger creates a logger that discards all output.
// Used before Configure is called and in tests.
func NewNopLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelError + 1}))
}

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const loggerKey = "logger"

const (
	ansiCodeReset     = "\033[0m"
	ansiCodeRed       = "\033[31m"
	ansiCodeGreen     = "\033[32m"
	ansiCodeYellow    = "\033[33m"
	ansiCodeCyan      = "\033[36m"
	ansiCodeGray      = "\033[90m"
	ansiCodeUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var ansiCodeMap = map[slog.Level]string{
	slog.LevelDebug: ansiCodeCyan,
	slog.LevelInfo:  ansiCodeGreen,
	slog.LevelWarn:  ansiCodeYellow,
	slog.LevelError: ansiCodeRed,
}

// ConsoleHandler implements slog.Handler with compact human-readable lines.
// ANSI colors are only emitted when Color is set, which GetLogger does for terminals.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps logger names (dot separated prefixes) to minimum log levels
	PkgLevels map[string]slog.Level
	// Color enables ANSI escape codes
	Color bool
	// AddSource appends the calling function and file
	AddSource bool

	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

var _ slog.Handler = (*ConsoleHandler)(nil)

func (h *ConsoleHandler) paint(code, s string) string {
	if !h.Color || code == "" {
		return s
	}

	return code + s + ansiCodeReset
}

// levelFor returns the minimum level for a logger name, using the longest
// matching dot-separated prefix in PkgLevels and falling back to Level.
func (h *ConsoleHandler) levelFor(name string) slog.Level {
	parts := strings.Split(name, ".")

	for i := len(parts); i > 0; i-- {
		if level, ok := h.PkgLevels[strings.Join(parts[:i], ".")]; ok {
			return level
		}
	}

	return h.Level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	var name string

	for _, attr := range attrs {
		if attr.Key == loggerKey {
			name = attr.Value.String()

			break
		}
	}

	if r.Level < h.levelFor(name) {
		return nil
	}

	var line strings.Builder

	line.WriteString(h.paint(ansiCodeGray, r.Time.Format("15:04:05.000")))
	line.WriteString(" " + h.paint(ansiCodeMap[r.Level], "["+r.Level.String()+"]"))
	line.WriteString(" " + r.Message)

	var prefix string

	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		line.WriteString(" " + h.paint(ansiCodeGray, "|"))
		h.renderAttrs(&line, prefix, attrs)
	}

	if h.AddSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		fn := strings.Split(f.Function, string(os.PathSeparator))

		line.WriteString("\n-> " + h.paint(ansiCodeGray, fn[len(fn)-1]+"()"))
		line.WriteString(" in " + h.paint(ansiCodeUnderline, f.File+":"+strconv.Itoa(f.Line)))
	}

	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}

	if _, err := fmt.Fprintln(h.Output, line.String()); err != nil {
		return fmt.Errorf("write log line: %w", err)
	}

	return nil
}

func (h *ConsoleHandler) renderAttrs(out *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			h.renderAttrs(out, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		out.WriteString(" " + prefix + attr.Key)
		out.WriteString("=" + h.paint(ansiCodeGray, attr.Value.String()))
	}
}

func (h *ConsoleHandler) clone() *ConsoleHandler {
	mu := h.mu
	if mu == nil {
		mu = new(sync.Mutex)
	}

	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		Color:     h.Color,
		AddSource: h.AddSource,
		attrs:     h.attrs[:len(h.attrs):len(h.attrs)],
		groups:    h.groups[:len(h.groups):len(h.groups)],
		mu:        mu,
	}
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	c := h.clone()
	c.groups = append(c.groups, name)

	return c
}

// Enabled implements slog.Handler.Enabled. A package override may lower the
// threshold below Level, so the final decision is made in Handle.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := h.Level.Level()

	for _, l := range h.PkgLevels {
		minLevel = min(minLevel, l)
	}

	return level >= minLevel
}

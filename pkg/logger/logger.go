package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// ANSI colour codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// Formats accepted by Config.Format
const (
	FormatText = "text"
	FormatJSON = "json"
)

// persistPrefixes mark store-write messages, highlighted in green.
var persistPrefixes = []string{"Persisting", "Persisted", "Deleting", "Deleted"}

// ColorHandler is a text slog.Handler that colours whole lines by level.
// Store-write messages are green, warnings yellow and errors red.
type ColorHandler struct {
	text  slog.Handler
	buf   *lineBuffer
	out   io.Writer
	mu    *sync.Mutex
	color bool
}

// lineBuffer collects the output of the wrapped text handler for one
// record at a time.
type lineBuffer struct {
	b []byte
}

func (l *lineBuffer) Write(p []byte) (int, error) {
	l.b = append(l.b, p...)
	return len(p), nil
}

// NewColorHandler creates a ColorHandler writing to w. Colours are only
// emitted when w is a terminal.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	buf := &lineBuffer{}
	return &ColorHandler{
		text:  slog.NewTextHandler(buf, opts),
		buf:   buf,
		out:   w,
		mu:    &sync.Mutex{},
		color: isTerminal(w),
	}
}

// Enabled implements slog.Handler
func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.b = h.buf.b[:0]
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}

	line := h.buf.b
	if code := h.colorFor(r); code != "" {
		trimmed := strings.TrimSuffix(string(line), "\n")
		_, err := fmt.Fprintf(h.out, "%s%s%s\n", code, trimmed, colorReset)
		return err
	}
	_, err := h.out.Write(line)
	return err
}

func (h *ColorHandler) colorFor(r slog.Record) string {
	if !h.color {
		return ""
	}
	switch {
	case r.Level >= slog.LevelError:
		return colorRed
	case r.Level >= slog.LevelWarn:
		return colorYellow
	case isPersistMessage(r.Message):
		return colorGreen
	default:
		return ""
	}
}

// WithAttrs implements slog.Handler
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorHandler{text: h.text.WithAttrs(attrs), buf: h.buf, out: h.out, mu: h.mu, color: h.color}
}

// WithGroup implements slog.Handler
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return &ColorHandler{text: h.text.WithGroup(name), buf: h.buf, out: h.out, mu: h.mu, color: h.color}
}

func isPersistMessage(msg string) bool {
	for _, p := range persistPrefixes {
		if strings.HasPrefix(msg, p) {
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// NewDefaultLogger returns a coloured logger on stderr at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Config selects the level, format and destination of a logger.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger from cfg. The text format uses ColorHandler.
func New(cfg Config) (*slog.Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		return slog.New(NewColorHandler(out, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}
}

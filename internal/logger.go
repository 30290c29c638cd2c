package internal

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

// ParseLogLevel converts a textual log level to a slog.Level. Unknown values map to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLoggingHandler initializes a slog.Handler that writes to stderr.
func GetLoggingHandler(level string, pretty, json bool) slog.Handler {
	// send everything to stderr as suggested in https://www.gnu.org/software/libc/manual/html_node/Standard-Streams.html
	return NewLoggingHandler(os.Stderr, level, pretty, json)
}

// NewLoggingHandler initializes a slog.Handler for the given writer. JSON output wins over pretty output.
func NewLoggingHandler(output io.Writer, level string, pretty, json bool) slog.Handler {
	logLevel := new(slog.LevelVar)
	logLevel.Set(ParseLogLevel(level))

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	switch {
	case json:
		return slog.NewJSONHandler(output, opts)
	case pretty:
		return NewPrettyHandler(output, opts)
	default:
		return slog.NewTextHandler(output, opts)
	}
}

// SetupLogging initializes the global logger with the given level and format
func SetupLogging(level string, pretty, json bool) {
	slog.SetDefault(slog.New(GetLoggingHandler(level, pretty, json)))
}

// PrettyHandler is a slog.Handler that formats log records in a human-readable way,
// similar to the output of the standard log package.
type PrettyHandler struct {
	opts       slog.HandlerOptions
	prefix     string // preformatted group names followed by a dot
	preformat  string // preformatted Attrs, with an initial space
	timeFormat string

	mu *sync.Mutex
	w  io.Writer
}

// NewPrettyHandler creates a new PrettyHandler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{w: w, mu: &sync.Mutex{}, timeFormat: "2006/01/02 15:04:05"}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.ReplaceAttr == nil {
		h.opts.ReplaceAttr = func(_ []string, a slog.Attr) slog.Attr { return a }
	}

	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		opts:       h.opts,
		prefix:     h.prefix,
		preformat:  h.preformat,
		timeFormat: h.timeFormat,
		mu:         h.mu,
		w:          h.w,
	}
}

// WithGroup returns a new Handler that qualifies all following attributes with the group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	c := h.clone()
	c.prefix = h.prefix + name + "."
	return c
}

// WithAttrs returns a new Handler that always appends the given attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf []byte
	for _, a := range attrs {
		buf = h.appendAttr(buf, h.prefix, a)
	}
	c := h.clone()
	c.preformat = h.preformat + string(buf)
	return c
}

// Handle formats its argument Record as a single line of text ending in a newline.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	if !r.Time.IsZero() {
		buf = r.Time.AppendFormat(buf, h.timeFormat)
		buf = append(buf, ' ')
	}

	// pad to the length of the longest level name
	levText := (r.Level.String() + " ")[0:5]

	buf = append(buf, levText...)
	buf = append(buf, ' ')
	if h.opts.AddSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		buf = append(buf, f.File...)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(f.Line), 10)
		buf = append(buf, ' ')
	}
	buf = append(buf, r.Message...)
	buf = append(buf, h.preformat...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *PrettyHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a = h.opts.ReplaceAttr(nil, a)
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() != slog.KindGroup {
		buf = append(buf, ' ')
		buf = append(buf, prefix...)
		buf = append(buf, a.Key...)
		buf = append(buf, '=')
		return fmt.Appendf(buf, "%v", a.Value.Any())
	}
	if a.Key != "" {
		prefix += a.Key + "."
	}
	for _, ga := range a.Value.Group() {
		buf = h.appendAttr(buf, prefix, ga)
	}
	return buf
}

// Package logger renders slog records for the server console.
//
// The console format puts the fields operators scan for first: the request
// id, then the request line (method, path, status, latency) for access logs,
// then the message and the remaining attributes. Errors and auth outcomes are
// colored when color is on.
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	purple = "\033[35m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
	bold   = "\033[1m"
)

// Attribute keys with a dedicated place in the console line.
const (
	KeyRequestID = "request_id"
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyRoute     = "route"
	KeyStatus    = "status"
	KeyDuration  = "duration_ms"
	KeyOutcome   = "outcome"
	KeyError     = "error"
	KeyStack     = "stack"
)

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// requestIDWidth is how much of a request id the console shows.
const requestIDWidth = 8

type Options struct {
	Level  slog.Leveler
	Format string
	Color  bool
}

// New returns the handler selected by opts.Format. Anything other than json
// gets the console handler.
func New(w io.Writer, opts Options) slog.Handler {
	if strings.EqualFold(opts.Format, FormatJSON) {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	}
	return NewConsoleHandler(w, opts)
}

// ParseLevel maps a LOG_LEVEL value onto a slog level, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

type ConsoleHandler struct {
	level  slog.Leveler
	color  bool
	w      io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

func NewConsoleHandler(w io.Writer, opts Options) *ConsoleHandler {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &ConsoleHandler{level: level, color: opts.Color, w: w, mu: &sync.Mutex{}}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// line collects the pieces of one record before they are laid out.
type line struct {
	requestID string
	method    string
	path      string
	status    int64
	duration  string
	outcome   string
	stack     string
	rest      []slog.Attr
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var l line
	for _, a := range h.attrs {
		h.collect(&l, a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		h.collect(&l, a, h.prefix)
		return true
	})

	var buf bytes.Buffer
	buf.WriteString(h.paint(gray, r.Time.Format("15:04:05.000")))
	buf.WriteByte(' ')
	buf.WriteString(h.paint(levelColor(r.Level), fmt.Sprintf("%-5s", r.Level.String())))

	if l.requestID != "" {
		buf.WriteString(" [" + h.paint(purple, shorten(l.requestID, requestIDWidth)) + "]")
	}
	if l.method != "" || l.path != "" {
		buf.WriteString(" " + h.paint(bold, strings.TrimSpace(l.method+" "+l.path)))
	}
	if l.status != 0 {
		buf.WriteString(" " + h.paint(statusColor(l.status), strconv.FormatInt(l.status, 10)))
	}
	if l.duration != "" {
		buf.WriteString(" " + h.paint(gray, l.duration))
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	if l.outcome != "" {
		color := red
		if l.outcome == "valid" {
			color = green
		}
		buf.WriteString(" " + h.paint(cyan, KeyOutcome) + "=" + h.paint(color, l.outcome))
	}
	for _, a := range l.rest {
		h.writeAttr(&buf, a)
	}
	buf.WriteByte('\n')

	if l.stack != "" {
		for _, frame := range strings.Split(strings.TrimRight(l.stack, "\n"), "\n") {
			buf.WriteString("    " + h.paint(gray, frame) + "\n")
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// collect files a into its slot on l. Groups are flattened with dotted keys.
func (h *ConsoleHandler) collect(l *line, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, member := range a.Value.Group() {
			h.collect(l, member, groupPrefix)
		}
		return
	}

	if prefix == "" {
		switch a.Key {
		case KeyRequestID:
			l.requestID = a.Value.String()
			return
		case KeyMethod:
			l.method = a.Value.String()
			return
		case KeyPath, KeyRoute:
			if l.path == "" {
				l.path = a.Value.String()
				return
			}
		case KeyStatus:
			if status, ok := intValue(a.Value); ok {
				l.status = status
				return
			}
		case KeyDuration:
			if ms, ok := intValue(a.Value); ok {
				l.duration = strconv.FormatInt(ms, 10) + "ms"
				return
			}
		case KeyOutcome:
			l.outcome = a.Value.String()
			return
		case KeyStack:
			l.stack = a.Value.String()
			return
		}
	}

	a.Key = prefix + a.Key
	l.rest = append(l.rest, a)
}

func (h *ConsoleHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	var val string
	switch a.Value.Kind() {
	case slog.KindTime:
		val = a.Value.Time().Format(time.RFC3339)
	case slog.KindDuration:
		val = a.Value.Duration().String()
	case slog.KindString:
		val = a.Value.String()
		if val == "" || strings.ContainsAny(val, " =\"") {
			val = strconv.Quote(val)
		}
	default:
		val = fmt.Sprint(a.Value.Any())
	}

	if a.Key == KeyError {
		val = h.paint(red, val)
	}
	buf.WriteString(" " + h.paint(cyan, a.Key) + "=" + val)
}

func (h *ConsoleHandler) paint(color, s string) string {
	if !h.color {
		return s
	}
	return color + s + reset
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return red
	case level >= slog.LevelWarn:
		return yellow
	case level >= slog.LevelInfo:
		return green
	default:
		return purple
	}
}

func statusColor(status int64) string {
	switch {
	case status >= 500:
		return red
	case status >= 400:
		return yellow
	default:
		return green
	}
}

func intValue(v slog.Value) (int64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		return int64(v.Uint64()), true
	default:
		return 0, false
	}
}

func shorten(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width]
}

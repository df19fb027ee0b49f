package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one line per record:
//
//	2026-01-02T15:04:05Z INFO orderer #42 [req-1]: position updated position=3
//
// The component, episode id and correlation id are lifted into the line
// header; everything else trails as key=value pairs.
type consoleHandler struct {
	out       *lockedWriter
	level     slog.Leveler
	addSource bool

	header header
	// attrs holds " key=value" pairs already rendered by WithAttrs.
	attrs  []byte
	prefix string
}

type header struct {
	component string
	episode   string
	request   string
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.w.Write(p)
	return err
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	hdr := h.header
	var tail []byte
	record.Attrs(func(attr slog.Attr) bool {
		tail = appendAttr(tail, &hdr, h.prefix, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	buf := make([]byte, 0, 96+len(h.attrs)+len(tail))
	buf = ts.UTC().AppendFormat(buf, time.RFC3339)
	buf = append(buf, ' ')
	buf = append(buf, levelLabel(record.Level)...)
	buf = append(buf, ' ')
	buf = hdr.append(buf)

	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf = append(buf, msg...)

	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			buf = append(buf, " ["...)
			buf = append(buf, filepath.Base(src.File)...)
			buf = append(buf, ':')
			buf = strconv.AppendInt(buf, int64(src.Line), 10)
			buf = append(buf, ']')
		}
	}
	buf = append(buf, h.attrs...)
	buf = append(buf, tail...)
	buf = append(buf, '\n')
	return h.out.write(buf)
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = append([]byte(nil), h.attrs...)
	for _, attr := range attrs {
		clone.attrs = appendAttr(clone.attrs, &clone.header, h.prefix, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (hdr header) append(buf []byte) []byte {
	if hdr.component == "" && hdr.episode == "" && hdr.request == "" {
		return buf
	}
	start := len(buf)
	if hdr.component != "" {
		buf = append(buf, hdr.component...)
	}
	if hdr.episode != "" {
		if len(buf) > start {
			buf = append(buf, ' ')
		}
		buf = append(buf, '#')
		buf = append(buf, hdr.episode...)
	}
	if hdr.request != "" {
		if len(buf) > start {
			buf = append(buf, ' ')
		}
		buf = append(buf, '[')
		buf = append(buf, hdr.request...)
		buf = append(buf, ']')
	}
	return append(buf, ": "...)
}

// appendAttr renders attr as " key=value", or records it in hdr when it is
// one of the ungrouped header fields.
func appendAttr(buf []byte, hdr *header, prefix string, attr slog.Attr) []byte {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return buf
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = prefix + attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			buf = appendAttr(buf, hdr, inner, child)
		}
		return buf
	}
	if prefix == "" {
		switch attr.Key {
		case FieldComponent:
			hdr.component = attr.Value.String()
			return buf
		case FieldEpisodeID:
			hdr.episode = attr.Value.String()
			return buf
		case FieldCorrelationID:
			hdr.request = attr.Value.String()
			return buf
		}
	}
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, attr.Key...)
	buf = append(buf, '=')
	return appendValue(buf, attr.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindDuration:
		s = v.Duration().Round(time.Microsecond).String()
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

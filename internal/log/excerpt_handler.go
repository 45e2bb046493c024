package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultExcerptRunes is the number of runes kept from a long string value.
const DefaultExcerptRunes = 80

// excerptKeys are attribute keys whose values are document text. They are
// always flattened to one line, even when short.
var excerptKeys = map[string]bool{
	"source":  true,
	"content": true,
	"html":    true,
	"text":    true,
}

// ExcerptHandler wraps an slog.Handler and shortens long string values.
// Values of document text keys also have their line breaks escaped.
type ExcerptHandler struct {
	handler slog.Handler
	limit   int
}

// NewExcerptHandler creates a new ExcerptHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used. A limit of zero or
// less selects DefaultExcerptRunes.
func NewExcerptHandler(handler slog.Handler, limit int) *ExcerptHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if limit <= 0 {
		limit = DefaultExcerptRunes
	}
	return &ExcerptHandler{handler: handler, limit: limit}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ExcerptHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle shortens the record's attributes and passes it on.
func (h *ExcerptHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.shorten(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *ExcerptHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	short := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		short[i] = h.shorten(a)
	}
	return &ExcerptHandler{handler: h.handler.WithAttrs(short), limit: h.limit}
}

// WithGroup returns a new handler with the given group name.
func (h *ExcerptHandler) WithGroup(name string) slog.Handler {
	return &ExcerptHandler{handler: h.handler.WithGroup(name), limit: h.limit}
}

func (h *ExcerptHandler) shorten(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		short := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			short[i] = h.shorten(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(short...)}
	case slog.KindString:
		s := v.String()
		if excerptKeys[strings.ToLower(a.Key)] {
			s = oneLine(s)
		}
		return slog.String(a.Key, Excerpt(s, h.limit))
	}
	return slog.Attr{Key: a.Key, Value: v}
}

var lineEscaper = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func oneLine(s string) string {
	return lineEscaper.Replace(s)
}

// Excerpt returns s cut to limit runes. A cut string ends with "..." and
// the number of runes dropped.
func Excerpt(s string, limit int) string {
	n := utf8.RuneCountInString(s)
	if limit <= 0 || n <= limit {
		return s
	}
	i, kept := 0, 0
	for kept < limit {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		kept++
	}
	return s[:i] + "...(+" + strconv.Itoa(n-limit) + ")"
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger creates a text logger writing to w. Verbose selects the Debug
// level; otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewExcerptHandler(h, DefaultExcerptRunes))
}

// NewJSONLogger creates a JSON logger writing to w, for log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewExcerptHandler(h, DefaultExcerptRunes))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

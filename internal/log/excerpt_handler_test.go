package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestExcerpt tests cutting long strings on rune boundaries.
func TestExcerpt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short string unchanged", in: "hello", limit: 10, want: "hello"},
		{name: "exact length unchanged", in: "hello", limit: 5, want: "hello"},
		{name: "long string cut", in: "hello world", limit: 5, want: "hello...(+6)"},
		{name: "multibyte runes", in: "日本語のテキスト", limit: 3, want: "日本語...(+5)"},
		{name: "zero limit keeps all", in: "hello", limit: 0, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Excerpt(tt.in, tt.limit); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

// TestExcerptHandler_ShortensValues tests the handler on JSON output.
func TestExcerptHandler_ShortensValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewExcerptHandler(slog.NewJSONHandler(&buf, nil), 8))
	logger.Info("render", "file", "a-very-long-file-name.md", "content", "line1\nline2", "count", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec["file"] != "a-very-l...(+16)" {
		t.Errorf("expected shortened file, got %v", rec["file"])
	}
	if rec["content"] != `line1\nl...(+4)` {
		t.Errorf("expected one-line content excerpt, got %v", rec["content"])
	}
	if rec["count"] != float64(3) {
		t.Errorf("expected non-string value untouched, got %v", rec["count"])
	}
}

// TestExcerptHandler_WithAttrs tests shortening of pre-bound attributes.
func TestExcerptHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewExcerptHandler(slog.NewTextHandler(&buf, nil), 4)).With("source", "# Title")
	logger.Info("parsed")

	if !strings.Contains(buf.String(), "source=\"# Ti...(+3)\"") {
		t.Errorf("expected shortened bound attribute, got %q", buf.String())
	}
}

// TestExcerptHandler_WithGroup tests shortening inside groups.
func TestExcerptHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewExcerptHandler(slog.NewJSONHandler(&buf, nil), 3))
	logger.WithGroup("doc").Info("note", slog.Group("note", "text", "abcdef"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	doc, _ := rec["doc"].(map[string]any)
	note, _ := doc["note"].(map[string]any)
	if note["text"] != "abc...(+3)" {
		t.Errorf("expected shortened grouped value, got %v", rec)
	}
}

// TestLoggers_Levels tests the verbose switch of both constructors.
func TestLoggers_Levels(t *testing.T) {
	t.Parallel()

	for _, jsonOut := range []bool{false, true} {
		var quiet, verbose bytes.Buffer
		newLogger := NewLogger
		if jsonOut {
			newLogger = NewJSONLogger
		}

		newLogger(&quiet, false).Debug("hidden")
		newLogger(&quiet, false).Info("hidden")
		newLogger(&quiet, false).Warn("shown")
		newLogger(&verbose, true).Debug("shown")

		if strings.Contains(quiet.String(), "hidden") {
			t.Errorf("json=%v: debug/info logged without verbose: %q", jsonOut, quiet.String())
		}
		if !strings.Contains(quiet.String(), "shown") {
			t.Errorf("json=%v: warning not logged: %q", jsonOut, quiet.String())
		}
		if !strings.Contains(verbose.String(), "shown") {
			t.Errorf("json=%v: debug not logged in verbose mode: %q", jsonOut, verbose.String())
		}
	}
}

// TestNewExcerptHandler_Defaults tests nil handler and limit defaults.
func TestNewExcerptHandler_Defaults(t *testing.T) {
	t.Parallel()

	h := NewExcerptHandler(nil, 0)
	if h.handler == nil {
		t.Error("expected default handler")
	}
	if h.limit != DefaultExcerptRunes {
		t.Errorf("expected limit %d, got %d", DefaultExcerptRunes, h.limit)
	}

	Discard().Error("dropped")
}

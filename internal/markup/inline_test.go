package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestParseLinkLabel tests bracket matching used by links, images and
// extensions.
func TestParseLinkLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		start int
		want  int
	}{
		{name: "simple label", src: "[abc]", start: 0, want: 4},
		{name: "nested brackets", src: "[a[b]c]", start: 0, want: 6},
		{name: "escaped closing bracket", src: `[a\]b]`, start: 0, want: 5},
		{name: "bracket inside code span", src: "[a`]`b]", start: 0, want: 6},
		{name: "unterminated", src: "[abc", start: 0, want: -1},
		{name: "unbalanced nested", src: "[a[b]", start: 0, want: -1},
		{name: "label after caret", src: "^[note] tail", start: 1, want: 6},
		{name: "empty label", src: "[]", start: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newInlineState(tt.src, New(), NewEnv(""))
			got := ParseLinkLabel(s, tt.start, false)
			if got != tt.want {
				t.Errorf("ParseLinkLabel(%q, %d) = %d, want %d", tt.src, tt.start, got, tt.want)
			}
			if s.Pos != 0 {
				t.Errorf("expected Pos to be restored to 0, got %d", s.Pos)
			}
			if len(s.Tokens) != 0 {
				t.Errorf("expected no tokens from a label scan, got %v", s.Tokens)
			}
		})
	}
}

// TestParseInline tests the default inline rule chain.
func TestParseInline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		kinds []Kind
	}{
		{name: "plain text", src: "hello world", kinds: []Kind{KindText}},
		{name: "emphasis", src: "a *b* c", kinds: []Kind{KindText, KindEmOpen, KindText, KindEmClose, KindText}},
		{name: "strong", src: "**b**", kinds: []Kind{KindStrongOpen, KindText, KindStrongClose}},
		{name: "unmatched star stays text", src: "a * b", kinds: []Kind{KindText}},
		{name: "code span", src: "`code`", kinds: []Kind{KindCodeInline}},
		{name: "link", src: "[x](http://example.com)", kinds: []Kind{KindLinkOpen, KindText, KindLinkClose}},
		{name: "image", src: "![alt](i.png)", kinds: []Kind{KindImage}},
		{name: "softbreak", src: "a\nb", kinds: []Kind{KindText, KindSoftbreak, KindText}},
		{name: "hardbreak", src: "a  \nb", kinds: []Kind{KindText, KindHardbreak, KindText}},
		{name: "escape joins with text", src: `a\*b`, kinds: []Kind{KindText}},
		{name: "unsafe link is text", src: "[x](javascript:alert(1))", kinds: []Kind{KindText}},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.ParseInline(tt.src, NewEnv(""))
			if diff := cmp.Diff(tt.kinds, Kinds(got)); diff != "" {
				t.Errorf("ParseInline(%q) kinds mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}

	t.Run("escape content", func(t *testing.T) {
		t.Parallel()
		got := e.ParseInline(`a\*b`, NewEnv(""))
		if got[0].Content != "a*b" {
			t.Errorf("expected content 'a*b', got %q", got[0].Content)
		}
	})

	t.Run("entity is decoded", func(t *testing.T) {
		t.Parallel()
		got := e.ParseInline("fish &amp; chips", NewEnv(""))
		if len(got) != 1 || got[0].Content != "fish & chips" {
			t.Errorf("expected single text 'fish & chips', got %v", got)
		}
	})

	t.Run("unknown entity stays literal", func(t *testing.T) {
		t.Parallel()
		got := e.ParseInline("AT&T", NewEnv(""))
		if len(got) != 1 || got[0].Content != "AT&T" {
			t.Errorf("expected single text 'AT&T', got %v", got)
		}
	})

	t.Run("link attributes", func(t *testing.T) {
		t.Parallel()
		got := e.ParseInline(`[x](http://example.com "Title")`, NewEnv(""))
		href, _ := got[0].Attr("href")
		title, _ := got[0].Attr("title")
		if href != "http://example.com" {
			t.Errorf("expected href 'http://example.com', got %q", href)
		}
		if title != "Title" {
			t.Errorf("expected title 'Title', got %q", title)
		}
	})

	t.Run("levels follow nesting", func(t *testing.T) {
		t.Parallel()
		got := e.ParseInline("*a*", NewEnv(""))
		want := []int{0, 1, 0}
		levels := make([]int, len(got))
		for i, tok := range got {
			levels[i] = tok.Level
		}
		if diff := cmp.Diff(want, levels); diff != "" {
			t.Errorf("levels mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestInlineRuleMustAdvance verifies that a rule claiming a match without
// consuming input is reported instead of looping forever.
func TestInlineRuleMustAdvance(t *testing.T) {
	t.Parallel()

	e := New()
	stuck := func(_ *InlineState, _ bool) bool { return true }
	if err := e.Inline.Before("text", "stuck", stuck); err != nil {
		t.Fatalf("Before failed: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for a rule that does not advance")
		}
	}()
	e.ParseInline("abc", NewEnv(""))
}

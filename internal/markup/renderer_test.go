package markup

import (
	"testing"
)

// TestRenderString tests HTML output of the default rules.
func TestRenderString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "paragraph with emphasis", src: "Hello *world*", want: "<p>Hello <em>world</em></p>\n"},
		{name: "strong", src: "**bold**", want: "<p><strong>bold</strong></p>\n"},
		{name: "heading", src: "## Title ##", want: "<h2>Title</h2>\n"},
		{name: "thematic break", src: "***", want: "<hr>\n"},
		{name: "blockquote", src: "> quoted", want: "<blockquote>\n<p>quoted</p>\n</blockquote>\n"},
		{name: "fence with language", src: "```go\nx < 1\n```", want: "<pre><code class=\"language-go\">x &lt; 1\n</code></pre>\n"},
		{name: "text is escaped", src: `a < b & "c"`, want: "<p>a &lt; b &amp; &quot;c&quot;</p>\n"},
		{name: "code span", src: "use `a<b`", want: "<p>use <code>a&lt;b</code></p>\n"},
		{name: "link", src: "[x](http://example.com)", want: "<p><a href=\"http://example.com\">x</a></p>\n"},
		{name: "image alt from children", src: "![an *alt*](i.png)", want: "<p><img src=\"i.png\" alt=\"an alt\"></p>\n"},
		{name: "hardbreak", src: "a\\\nb", want: "<p>a<br>\nb</p>\n"},
		{name: "softbreak", src: "a\nb", want: "<p>a\nb</p>\n"},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.RenderString(tt.src, NewEnv(""))
			if err != nil {
				t.Fatalf("RenderString failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderString(%q)\n got: %q\nwant: %q", tt.src, got, tt.want)
			}
		})
	}
}

// TestRenderXHTML tests void elements in XHTML mode.
func TestRenderXHTML(t *testing.T) {
	t.Parallel()

	e := New()
	e.Renderer.XHTML = true

	got, err := e.RenderString("![a](i.png)\n\n---", nil)
	if err != nil {
		t.Fatalf("RenderString failed: %v", err)
	}
	want := "<p><img src=\"i.png\" alt=\"a\" /></p>\n<hr />\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestRenderCustomRule verifies that rules replace the generic rendering.
func TestRenderCustomRule(t *testing.T) {
	t.Parallel()

	e := New()
	e.Renderer.Rules[KindEmOpen] = func([]Token, int, *Env, *Renderer) string { return "<i>" }
	e.Renderer.Rules[KindEmClose] = func([]Token, int, *Env, *Renderer) string { return "</i>" }

	got, err := e.RenderString("*x*", nil)
	if err != nil {
		t.Fatalf("RenderString failed: %v", err)
	}
	if got != "<p><i>x</i></p>\n" {
		t.Errorf("got %q", got)
	}
}

// TestEscapeHTML tests attribute and text escaping.
func TestEscapeHTML(t *testing.T) {
	t.Parallel()

	if got := EscapeHTML("plain"); got != "plain" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := EscapeHTML(`<a href="x">&</a>`); got != "&lt;a href=&quot;x&quot;&gt;&amp;&lt;/a&gt;" {
		t.Errorf("unexpected escape result %q", got)
	}
}

package markup

import (
	"strings"
)

// RenderFunc renders the token at idx. r gives access to the other rules
// and to helpers such as RenderInline.
type RenderFunc func(tokens []Token, idx int, env *Env, r *Renderer) string

// Renderer turns a token stream into HTML. Rules override the generic
// tag rendering for individual kinds.
type Renderer struct {
	Rules map[Kind]RenderFunc

	// XHTML closes void elements with " />".
	XHTML bool
}

// NewRenderer returns a Renderer with the default rules installed.
func NewRenderer() *Renderer {
	return &Renderer{
		Rules: map[Kind]RenderFunc{
			KindText:       renderText,
			KindCodeInline: renderCodeInline,
			KindFence:      renderFence,
			KindImage:      renderImage,
			KindHardbreak:  renderHardbreak,
			KindSoftbreak:  renderSoftbreak,
		},
	}
}

// Render renders a block-level token stream.
func (r *Renderer) Render(tokens []Token, env *Env) string {
	var b strings.Builder
	for i, t := range tokens {
		if t.Kind == KindInline {
			b.WriteString(r.RenderInline(t.Children, env))
			continue
		}
		if rule, ok := r.Rules[t.Kind]; ok {
			b.WriteString(rule(tokens, i, env, r))
			continue
		}
		b.WriteString(r.RenderToken(tokens, i))
	}
	return b.String()
}

// RenderInline renders the children of an inline token.
func (r *Renderer) RenderInline(tokens []Token, env *Env) string {
	var b strings.Builder
	for i, t := range tokens {
		if rule, ok := r.Rules[t.Kind]; ok {
			b.WriteString(rule(tokens, i, env, r))
			continue
		}
		b.WriteString(r.RenderToken(tokens, i))
	}
	return b.String()
}

// RenderToken renders a token as a bare HTML tag, adding a line feed after
// block tags unless the next token is inline content or the matching close.
func (r *Renderer) RenderToken(tokens []Token, idx int) string {
	t := tokens[idx]
	if t.Hidden {
		return ""
	}
	var b strings.Builder
	if t.Block && t.Nesting != NestingClose && idx > 0 && tokens[idx-1].Hidden {
		b.WriteByte('\n')
	}
	if t.Nesting == NestingClose {
		b.WriteString("</")
	} else {
		b.WriteByte('<')
	}
	b.WriteString(t.Tag)
	b.WriteString(r.RenderAttrs(t))
	if t.Nesting == NestingSelf && r.XHTML {
		b.WriteString(" /")
	}
	needLF := false
	if t.Block {
		needLF = true
		if t.Nesting == NestingOpen && idx+1 < len(tokens) {
			next := tokens[idx+1]
			if next.Kind == KindInline || next.Hidden {
				needLF = false
			} else if next.Nesting == NestingClose && next.Tag == t.Tag {
				needLF = false
			}
		}
	}
	if needLF {
		b.WriteString(">\n")
	} else {
		b.WriteByte('>')
	}
	return b.String()
}

// RenderAttrs renders the token's attributes with a leading space each.
func (r *Renderer) RenderAttrs(t Token) string {
	var b strings.Builder
	for _, a := range t.Attrs {
		b.WriteByte(' ')
		b.WriteString(EscapeHTML(a.Name))
		b.WriteString(`="`)
		b.WriteString(EscapeHTML(a.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// RenderInlineAsText renders only the textual content of inline tokens,
// as used for image alt text.
func RenderInlineAsText(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case KindText, KindCodeInline:
			b.WriteString(t.Content)
		case KindImage:
			b.WriteString(RenderInlineAsText(t.Children))
		case KindSoftbreak, KindHardbreak:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes &, <, > and ".
func EscapeHTML(s string) string {
	if !strings.ContainsAny(s, `&<>"`) {
		return s
	}
	return htmlEscaper.Replace(s)
}

func renderText(tokens []Token, idx int, _ *Env, _ *Renderer) string {
	return EscapeHTML(tokens[idx].Content)
}

func renderCodeInline(tokens []Token, idx int, _ *Env, r *Renderer) string {
	t := tokens[idx]
	return "<code" + r.RenderAttrs(t) + ">" + EscapeHTML(t.Content) + "</code>"
}

func renderFence(tokens []Token, idx int, _ *Env, r *Renderer) string {
	t := tokens[idx]
	lang := ""
	if fields := strings.Fields(t.Info); len(fields) > 0 {
		lang = fields[0]
	}
	if lang != "" {
		t.Attrs = append([]Attr(nil), t.Attrs...)
		t.SetAttr("class", "language-"+lang)
	}
	return "<pre><code" + r.RenderAttrs(t) + ">" + EscapeHTML(t.Content) + "</code></pre>\n"
}

func renderImage(tokens []Token, idx int, _ *Env, r *Renderer) string {
	t := tokens[idx]
	t.Attrs = append([]Attr(nil), t.Attrs...)
	t.SetAttr("alt", RenderInlineAsText(t.Children))
	return r.RenderToken([]Token{t}, 0)
}

func renderHardbreak(_ []Token, _ int, _ *Env, r *Renderer) string {
	if r.XHTML {
		return "<br />\n"
	}
	return "<br>\n"
}

func renderSoftbreak(_ []Token, _ int, _ *Env, _ *Renderer) string {
	return "\n"
}

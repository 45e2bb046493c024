package markup

import "strings"

// Kind is the type tag of a token. The host defines the kinds it produces;
// extensions declare their own with distinct names.
type Kind string

// Token kinds produced by the host engine.
const (
	KindParagraphOpen   Kind = "paragraph_open"
	KindParagraphClose  Kind = "paragraph_close"
	KindHeadingOpen     Kind = "heading_open"
	KindHeadingClose    Kind = "heading_close"
	KindBlockquoteOpen  Kind = "blockquote_open"
	KindBlockquoteClose Kind = "blockquote_close"
	KindFence           Kind = "fence"
	KindHr              Kind = "hr"
	KindInline          Kind = "inline"

	KindText        Kind = "text"
	KindSoftbreak   Kind = "softbreak"
	KindHardbreak   Kind = "hardbreak"
	KindCodeInline  Kind = "code_inline"
	KindEmOpen      Kind = "em_open"
	KindEmClose     Kind = "em_close"
	KindStrongOpen  Kind = "strong_open"
	KindStrongClose Kind = "strong_close"
	KindLinkOpen    Kind = "link_open"
	KindLinkClose   Kind = "link_close"
	KindImage       Kind = "image"
)

// Nesting values.
const (
	NestingOpen  = 1
	NestingSelf  = 0
	NestingClose = -1
)

// Attr is a single HTML attribute attached to a token.
type Attr struct {
	Name  string
	Value string
}

// Meta is the typed payload an extension attaches to its tokens.
// Each payload type names the token kind it belongs to.
type Meta interface {
	MetaKind() Kind
}

// Token is one unit of the flat token stream.
//
// Block-level tokens form a flat list with explicit open/close pairs.
// Tokens of kind KindInline carry the raw Content of a block and, after
// inline parsing, the parsed Children.
type Token struct {
	Kind     Kind
	Tag      string
	Nesting  int
	Level    int
	Content  string
	Info     string
	Markup   string
	Attrs    []Attr
	Children []Token
	Block    bool
	Hidden   bool
	Meta     Meta
}

// NewToken returns a token with the given kind, tag and nesting.
func NewToken(kind Kind, tag string, nesting int) Token {
	return Token{Kind: kind, Tag: tag, Nesting: nesting}
}

// Attr returns the value of the named attribute.
func (t Token) Attr(name string) (string, bool) {
	for _, a := range t.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces or appends the named attribute.
func (t *Token) SetAttr(name, value string) {
	for i := range t.Attrs {
		if t.Attrs[i].Name == name {
			t.Attrs[i].Value = value
			return
		}
	}
	t.Attrs = append(t.Attrs, Attr{Name: name, Value: value})
}

// String returns a compact debug form such as "paragraph_open(p,+1)".
func (t Token) String() string {
	var b strings.Builder
	b.WriteString(string(t.Kind))
	if t.Tag != "" || t.Nesting != 0 {
		b.WriteByte('(')
		b.WriteString(t.Tag)
		switch t.Nesting {
		case NestingOpen:
			b.WriteString(",+1")
		case NestingClose:
			b.WriteString(",-1")
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Kinds returns the kind of every token in order; handy in tests and logs.
func Kinds(tokens []Token) []Kind {
	kinds := make([]Kind, len(tokens))
	for i, t := range tokens {
		kinds[i] = t.Kind
	}
	return kinds
}

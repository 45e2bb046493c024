package markup

import (
	"strings"
)

// blockParser splits normalized source into block tokens. It recognizes
// ATX headings, fenced code, thematic breaks, blockquotes and paragraphs;
// inline content is left in KindInline tokens for the inline pass.
type blockParser struct {
	maxNesting int
}

func (p blockParser) parse(src string, level int, out []Token) []Token {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	for i := 0; i < len(lines); {
		line := lines[i]
		switch {
		case isBlank(line):
			i++
		case fenceMarker(line) != "":
			var t Token
			t, i = p.fence(lines, i, level)
			out = append(out, t)
		case headingLevel(line) > 0:
			out = p.heading(line, level, out)
			i++
		case isThematicBreak(line):
			t := NewToken(KindHr, "hr", NestingSelf)
			t.Block = true
			t.Level = level
			t.Markup = strings.Repeat(strings.TrimSpace(line)[:1], 3)
			out = append(out, t)
			i++
		case isBlockquote(line) && level < p.maxNesting:
			var body []string
			for i < len(lines) && isBlockquote(lines[i]) {
				body = append(body, stripBlockquote(lines[i]))
				i++
			}
			open := NewToken(KindBlockquoteOpen, "blockquote", NestingOpen)
			open.Block, open.Level, open.Markup = true, level, ">"
			out = append(out, open)
			out = p.parse(strings.Join(body, "\n"), level+1, out)
			closing := NewToken(KindBlockquoteClose, "blockquote", NestingClose)
			closing.Block, closing.Level, closing.Markup = true, level, ">"
			out = append(out, closing)
		default:
			start := i
			i++
			for i < len(lines) && !isBlank(lines[i]) && !interruptsParagraph(lines[i]) {
				i++
			}
			out = paragraph(lines[start:i], level, out)
		}
	}
	return out
}

func paragraph(lines []string, level int, out []Token) []Token {
	trimmed := make([]string, len(lines))
	for i, l := range lines {
		trimmed[i] = strings.TrimLeft(l, " \t")
	}
	open := NewToken(KindParagraphOpen, "p", NestingOpen)
	open.Block, open.Level = true, level

	inline := NewToken(KindInline, "", NestingSelf)
	inline.Block, inline.Level = true, level+1
	inline.Content = strings.TrimSpace(strings.Join(trimmed, "\n"))
	inline.Children = []Token{}

	closing := NewToken(KindParagraphClose, "p", NestingClose)
	closing.Block, closing.Level = true, level
	return append(out, open, inline, closing)
}

func (p blockParser) heading(line string, level int, out []Token) []Token {
	n := headingLevel(line)
	text := strings.TrimSpace(line)[n:]
	text = strings.TrimSpace(text)
	// Optional closing sequence: a run of '#' preceded by a space.
	if trimmed := strings.TrimRight(text, "#"); trimmed != text && (trimmed == "" || strings.HasSuffix(trimmed, " ")) {
		text = strings.TrimSpace(trimmed)
	}
	tag := "h" + string(rune('0'+n))
	markup := strings.Repeat("#", n)

	open := NewToken(KindHeadingOpen, tag, NestingOpen)
	open.Block, open.Level, open.Markup = true, level, markup

	inline := NewToken(KindInline, "", NestingSelf)
	inline.Block, inline.Level = true, level+1
	inline.Content = text
	inline.Children = []Token{}

	closing := NewToken(KindHeadingClose, tag, NestingClose)
	closing.Block, closing.Level, closing.Markup = true, level, markup
	return append(out, open, inline, closing)
}

func (p blockParser) fence(lines []string, start, level int) (Token, int) {
	line := lines[start]
	indent := leadingSpaces(line)
	marker := fenceMarker(line)
	info := strings.TrimSpace(strings.TrimLeft(line[indent:], marker[:1]))

	var body strings.Builder
	i := start + 1
	for ; i < len(lines); i++ {
		l := lines[i]
		if closer := fenceMarker(l); closer != "" && closer[0] == marker[0] && len(closer) >= len(marker) &&
			strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(l), closer[:1])) == "" {
			i++
			break
		}
		// Strip up to the opening fence's indentation from content lines.
		strip := min(indent, leadingSpaces(l))
		body.WriteString(l[strip:])
		body.WriteByte('\n')
	}

	t := NewToken(KindFence, "code", NestingSelf)
	t.Block, t.Level = true, level
	t.Info = info
	t.Markup = marker
	t.Content = body.String()
	return t, i
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// headingLevel returns 1-6 for an ATX heading line, or 0.
func headingLevel(line string) int {
	if leadingSpaces(line) > 3 {
		return 0
	}
	s := strings.TrimLeft(line, " ")
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return 0
	}
	if n < len(s) && s[n] != ' ' && s[n] != '\t' {
		return 0
	}
	return n
}

// fenceMarker returns the opening run of ``` or ~~~ (3 or more), or "".
func fenceMarker(line string) string {
	if leadingSpaces(line) > 3 {
		return ""
	}
	s := strings.TrimLeft(line, " ")
	if len(s) < 3 || (s[0] != '`' && s[0] != '~') {
		return ""
	}
	n := 0
	for n < len(s) && s[n] == s[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	if s[0] == '`' && strings.Contains(s[n:], "`") {
		return ""
	}
	return s[:n]
}

func isThematicBreak(line string) bool {
	if leadingSpaces(line) > 3 {
		return false
	}
	s := strings.TrimSpace(line)
	if len(s) < 3 {
		return false
	}
	marker := s[0]
	if marker != '-' && marker != '*' && marker != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

func isBlockquote(line string) bool {
	return leadingSpaces(line) <= 3 && strings.HasPrefix(strings.TrimLeft(line, " "), ">")
}

func stripBlockquote(line string) string {
	s := strings.TrimLeft(line, " ")[1:]
	return strings.TrimPrefix(s, " ")
}

func interruptsParagraph(line string) bool {
	return fenceMarker(line) != "" || headingLevel(line) > 0 || isThematicBreak(line) || isBlockquote(line)
}

package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// isTerminator reports whether c may start an inline construct; the text
// rule stops at these bytes so other rules get a chance to run.
func isTerminator(c byte) bool {
	switch c {
	case '\n', '!', '#', '$', '%', '&', '*', '+', '-', ':', '<', '=', '>', '@',
		'[', '\\', ']', '^', '_', '`', '{', '}', '~':
		return true
	}
	return false
}

func isASCIIPunct(c byte) bool {
	return '!' <= c && c <= '/' || ':' <= c && c <= '@' || '[' <= c && c <= '`' || '{' <= c && c <= '~'
}

// ruleText consumes a run of bytes that cannot start any other construct.
func ruleText(s *InlineState, silent bool) bool {
	pos := s.Pos
	for pos < s.PosMax && !isTerminator(s.Src[pos]) {
		pos++
	}
	if pos == s.Pos {
		return false
	}
	if !silent {
		s.AppendPending(s.Src[s.Pos:pos])
	}
	s.Pos = pos
	return true
}

// ruleNewline turns a line break into a softbreak, or a hardbreak when the
// line ends with two or more spaces.
func ruleNewline(s *InlineState, silent bool) bool {
	pos := s.Pos
	if s.Src[pos] != '\n' {
		return false
	}
	if !silent {
		pending := s.Pending()
		trimmed := strings.TrimRight(pending, " ")
		if len(pending)-len(trimmed) >= 2 {
			s.setPending(trimmed)
			s.Push(KindHardbreak, "br", NestingSelf)
		} else {
			s.setPending(trimmed)
			s.Push(KindSoftbreak, "br", NestingSelf)
		}
	}
	pos++
	for pos < s.PosMax && (s.Src[pos] == ' ' || s.Src[pos] == '\t') {
		pos++
	}
	s.Pos = pos
	return true
}

// ruleEscape handles backslash escapes of ASCII punctuation and the
// backslash hard line break.
func ruleEscape(s *InlineState, silent bool) bool {
	pos := s.Pos
	if s.Src[pos] != '\\' || pos+1 >= s.PosMax {
		return false
	}
	c := s.Src[pos+1]
	switch {
	case c == '\n':
		if !silent {
			s.Push(KindHardbreak, "br", NestingSelf)
		}
		pos += 2
		for pos < s.PosMax && (s.Src[pos] == ' ' || s.Src[pos] == '\t') {
			pos++
		}
		s.Pos = pos
		return true
	case isASCIIPunct(c):
		if !silent {
			t := s.Push(KindText, "", NestingSelf)
			t.Content = string(c)
			t.Markup = s.Src[pos : pos+2]
		}
		s.Pos = pos + 2
		return true
	}
	return false
}

// ruleBackticks parses a code span. An unmatched backtick run is consumed
// as literal text so shorter runs inside it are not retried.
func ruleBackticks(s *InlineState, silent bool) bool {
	start := s.Pos
	if s.Src[start] != '`' {
		return false
	}
	n := 1
	for start+n < s.PosMax && s.Src[start+n] == '`' {
		n++
	}
	opener := s.Src[start : start+n]
	for end := start + n; end < s.PosMax; {
		if s.Src[end] != '`' {
			end++
			continue
		}
		closeStart := end
		for end < s.PosMax && s.Src[end] == '`' {
			end++
		}
		if end-closeStart != n {
			continue
		}
		if !silent {
			text := strings.ReplaceAll(s.Src[start+n:closeStart], "\n", " ")
			if len(text) >= 2 && text[0] == ' ' && text[len(text)-1] == ' ' && strings.Trim(text, " ") != "" {
				text = text[1 : len(text)-1]
			}
			t := s.Push(KindCodeInline, "code", NestingSelf)
			t.Markup = opener
			t.Content = text
		}
		s.Pos = end
		return true
	}
	if !silent {
		s.AppendPending(opener)
	}
	s.Pos = start + n
	return true
}

// ruleLink parses an inline link [label](destination "title").
func ruleLink(s *InlineState, silent bool) bool {
	start := s.Pos
	max := s.PosMax
	if s.Src[start] != '[' || s.linkLevel > 0 {
		return false
	}
	labelStart := start + 1
	labelEnd := ParseLinkLabel(s, start, true)
	if labelEnd < 0 {
		return false
	}
	href, title, end, ok := parseInlineDestination(s.Src, labelEnd+1, max)
	if !ok || !validateLink(href, false) {
		return false
	}
	if !silent {
		s.Pos = labelStart
		s.PosMax = labelEnd
		t := s.Push(KindLinkOpen, "a", NestingOpen)
		t.SetAttr("href", href)
		if title != "" {
			t.SetAttr("title", title)
		}
		s.linkLevel++
		s.Tokenize()
		s.linkLevel--
		s.Push(KindLinkClose, "a", NestingClose)
	}
	s.Pos = end
	s.PosMax = max
	return true
}

// ruleImage parses ![alt](source "title"). The alt text is parsed as
// inline markup into the image's children.
func ruleImage(s *InlineState, silent bool) bool {
	start := s.Pos
	max := s.PosMax
	if start+1 >= max || s.Src[start] != '!' || s.Src[start+1] != '[' {
		return false
	}
	labelStart := start + 2
	labelEnd := ParseLinkLabel(s, start+1, false)
	if labelEnd < 0 {
		return false
	}
	src, title, end, ok := parseInlineDestination(s.Src, labelEnd+1, max)
	if !ok || !validateLink(src, true) {
		return false
	}
	if !silent {
		content := s.Src[labelStart:labelEnd]
		children := s.Engine.parseInline(content, s.Env, true)
		t := s.Push(KindImage, "img", NestingSelf)
		t.SetAttr("src", src)
		t.SetAttr("alt", "")
		if title != "" {
			t.SetAttr("title", title)
		}
		t.Children = children
		t.Content = content
	}
	s.Pos = end
	s.PosMax = max
	return true
}

var entityPattern = regexp.MustCompile(`^&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[a-zA-Z][a-zA-Z0-9]{1,31});`)

// ruleEntity decodes a named or numeric character reference.
func ruleEntity(s *InlineState, silent bool) bool {
	if s.Src[s.Pos] != '&' {
		return false
	}
	m := entityPattern.FindString(s.Src[s.Pos:s.PosMax])
	if m == "" {
		return false
	}
	decoded := html.UnescapeString(m)
	if decoded == m {
		return false
	}
	if !silent {
		t := s.Push(KindText, "", NestingSelf)
		t.Content = decoded
		t.Markup = m
	}
	s.Pos += len(m)
	return true
}

// parseInlineDestination parses "(dest "title")" starting at pos.
func parseInlineDestination(src string, pos, max int) (dest, title string, end int, ok bool) {
	if pos >= max || src[pos] != '(' {
		return "", "", 0, false
	}
	pos++
	pos = skipSpace(src, pos, max)
	if pos >= max {
		return "", "", 0, false
	}
	if src[pos] == '<' {
		i := pos + 1
		for i < max && src[i] != '>' && src[i] != '\n' && src[i] != '<' {
			if src[i] == '\\' && i+1 < max {
				i++
			}
			i++
		}
		if i >= max || src[i] != '>' {
			return "", "", 0, false
		}
		dest = unescapeBackslashes(src[pos+1 : i])
		pos = i + 1
	} else {
		i := pos
		depth := 0
		for i < max {
			c := src[i]
			if c == ' ' || c == '\n' || c < 0x20 {
				break
			}
			if c == '\\' && i+1 < max && isASCIIPunct(src[i+1]) {
				i += 2
				continue
			}
			if c == '(' {
				depth++
			}
			if c == ')' {
				if depth == 0 {
					break
				}
				depth--
			}
			i++
		}
		if depth != 0 {
			return "", "", 0, false
		}
		dest = unescapeBackslashes(src[pos:i])
		pos = i
	}
	afterDest := pos
	pos = skipSpace(src, pos, max)
	if pos < max && pos != afterDest && (src[pos] == '"' || src[pos] == '\'' || src[pos] == '(') {
		closer := src[pos]
		if closer == '(' {
			closer = ')'
		}
		i := pos + 1
		for i < max && src[i] != closer {
			if src[i] == '\\' && i+1 < max {
				i++
			}
			i++
		}
		if i >= max {
			return "", "", 0, false
		}
		title = unescapeBackslashes(src[pos+1 : i])
		pos = skipSpace(src, i+1, max)
	}
	if pos >= max || src[pos] != ')' {
		return "", "", 0, false
	}
	return dest, title, pos + 1, true
}

func skipSpace(src string, pos, max int) int {
	for pos < max && (src[pos] == ' ' || src[pos] == '\t' || src[pos] == '\n') {
		pos++
	}
	return pos
}

func unescapeBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// validateLink rejects script-capable URL schemes. Inline images may use
// a small set of data: image types.
func validateLink(url string, image bool) bool {
	u := strings.ToLower(strings.TrimSpace(url))
	for _, scheme := range []string{"javascript:", "vbscript:", "file:", "data:"} {
		if !strings.HasPrefix(u, scheme) {
			continue
		}
		if scheme == "data:" && image {
			for _, ok := range []string{"data:image/gif;", "data:image/png;", "data:image/jpeg;", "data:image/webp;"} {
				if strings.HasPrefix(u, ok) {
					return true
				}
			}
		}
		return false
	}
	return true
}

package sidenote

import "github.com/nao1215/sidenote/internal/markup"

// Inline recognizes ^[content] at s.Pos. The label is matched with the
// same rules as link labels; an unmatched bracket leaves the text alone.
//
// In normal mode it registers the sidenote, parses content as inline
// markup in the same document context and pushes a KindRef token in place
// of the marker.
//
// Markers inside image descriptions stay text: the description renders as
// a plain alt attribute with no room for a reference.
func Inline(s *markup.InlineState, silent bool) bool {
	if s.AltText {
		return false
	}
	start := s.Pos
	max := s.PosMax
	if start+2 >= max {
		return false
	}
	if s.Src[start] != '^' || s.Src[start+1] != '[' {
		return false
	}

	labelStart := start + 2
	labelEnd := markup.ParseLinkLabel(s, start+1, false)
	if labelEnd < 0 {
		return false
	}

	if !silent {
		reg := registryFor(s.Env)
		id := reg.reserve()
		content := s.Src[labelStart:labelEnd]
		tokens := s.Engine.ParseInline(content, s.Env)

		t := s.Push(KindRef, "", markup.NestingSelf)
		t.Meta = RefMeta{ID: id}

		reg.fill(id, content, tokens)
	}

	s.Pos = labelEnd + 1
	s.PosMax = max
	return true
}

package markup

import (
	"unicode"
	"unicode/utf8"
)

// ruleEmphasis pushes each '*' or '_' of a delimiter run as a text token
// and records it in the delimiter list; pairing happens after tokenization.
func ruleEmphasis(s *InlineState, silent bool) bool {
	start := s.Pos
	marker := s.Src[start]
	if silent || (marker != '*' && marker != '_') {
		return false
	}
	length, canOpen, canClose := scanDelims(s.Src, start, s.PosMax, marker)
	for i := 0; i < length; i++ {
		t := s.Push(KindText, "", NestingSelf)
		t.Content = string(marker)
		s.Delimiters = append(s.Delimiters, Delimiter{
			Marker: marker,
			Length: length,
			Token:  len(s.Tokens) - 1,
			End:    -1,
			Open:   canOpen,
			Close:  canClose,
		})
	}
	s.Pos += length
	return true
}

// scanDelims measures the delimiter run at start and applies the
// left/right-flanking rules.
func scanDelims(src string, start, max int, marker byte) (length int, canOpen, canClose bool) {
	last := ' '
	if start > 0 {
		last, _ = utf8.DecodeLastRuneInString(src[:start])
	}
	pos := start
	for pos < max && src[pos] == marker {
		pos++
	}
	length = pos - start
	next := ' '
	if pos < max {
		next, _ = utf8.DecodeRuneInString(src[pos:])
	}

	lastPunct := unicode.IsPunct(last) || unicode.IsSymbol(last)
	nextPunct := unicode.IsPunct(next) || unicode.IsSymbol(next)
	lastSpace := unicode.IsSpace(last)
	nextSpace := unicode.IsSpace(next)

	leftFlanking := !nextSpace && (!nextPunct || lastSpace || lastPunct)
	rightFlanking := !lastSpace && (!lastPunct || nextSpace || nextPunct)

	if marker == '_' {
		canOpen = leftFlanking && (!rightFlanking || lastPunct)
		canClose = rightFlanking && (!leftFlanking || nextPunct)
	} else {
		canOpen = leftFlanking
		canClose = rightFlanking
	}
	return length, canOpen, canClose
}

// balancePairs links each closing delimiter to the nearest compatible opener.
func balancePairs(delims []Delimiter) {
	for ci := range delims {
		closer := &delims[ci]
		if !closer.Close {
			continue
		}
		for oi := ci - 1; oi >= 0; oi-- {
			opener := &delims[oi]
			if opener.Marker != closer.Marker || !opener.Open || opener.End >= 0 {
				continue
			}
			if opener.Close || closer.Open {
				if (opener.Length+closer.Length)%3 == 0 && (opener.Length%3 != 0 || closer.Length%3 != 0) {
					continue
				}
			}
			opener.End = ci
			opener.Close = false
			closer.Open = false
			break
		}
	}
}

// postEmphasis pairs delimiters in every scope and converts the matched
// text tokens into em/strong open and close tokens.
func postEmphasis(s *InlineState) {
	scopes := append(s.scopes, s.Delimiters)
	for _, delims := range scopes {
		balancePairs(delims)
		convertEmphasis(s.Tokens, delims)
	}
}

func convertEmphasis(tokens []Token, delims []Delimiter) {
	for i := len(delims) - 1; i >= 0; i-- {
		startDelim := delims[i]
		if startDelim.End < 0 {
			continue
		}
		endDelim := delims[startDelim.End]
		strong := i > 0 &&
			delims[i-1].End == startDelim.End+1 &&
			delims[i-1].Marker == startDelim.Marker &&
			delims[i-1].Token == startDelim.Token-1 &&
			delims[startDelim.End+1].Token == endDelim.Token+1

		marker := string(startDelim.Marker)
		open, closing := &tokens[startDelim.Token], &tokens[endDelim.Token]
		if strong {
			open.Kind, open.Tag, open.Markup = KindStrongOpen, "strong", marker+marker
			closing.Kind, closing.Tag, closing.Markup = KindStrongClose, "strong", marker+marker
			tokens[delims[i-1].Token].Content = ""
			tokens[delims[startDelim.End+1].Token].Content = ""
			i--
		} else {
			open.Kind, open.Tag, open.Markup = KindEmOpen, "em", marker
			closing.Kind, closing.Tag, closing.Markup = KindEmClose, "em", marker
		}
		open.Nesting, open.Content = NestingOpen, ""
		closing.Nesting, closing.Content = NestingClose, ""
	}
}

// postJoinText merges adjacent text tokens, drops the empty ones left
// behind by strong emphasis, and recomputes levels.
func postJoinText(s *InlineState) {
	out := s.Tokens[:0]
	level := 0
	for _, t := range s.Tokens {
		if t.Nesting < 0 {
			level--
		}
		t.Level = level
		if t.Nesting > 0 {
			level++
		}
		if t.Kind == KindText && t.Content == "" {
			continue
		}
		if n := len(out); n > 0 && t.Kind == KindText && out[n-1].Kind == KindText {
			out[n-1].Content += t.Content
			out[n-1].Markup = ""
			continue
		}
		out = append(out, t)
	}
	s.Tokens = out
}

package markup

import (
	"fmt"
	"strings"
)

// InlineRule tries to consume one construct at s.Pos. It returns false and
// leaves s untouched when the construct does not start there. In silent
// mode a rule only reports whether it would match and advances s.Pos; it
// must not push tokens or touch per-document state.
type InlineRule func(s *InlineState, silent bool) bool

// InlinePostRule runs once per inline parse after tokenization,
// e.g. to pair emphasis delimiters.
type InlinePostRule func(s *InlineState)

// Delimiter records a run of emphasis markers pushed as text tokens and
// later paired into open/close tokens.
type Delimiter struct {
	Marker byte
	Length int
	Token  int
	End    int
	Open   bool
	Close  bool
}

// InlineState is the scanning state of one inline parse.
type InlineState struct {
	Src    string
	Pos    int
	PosMax int
	Level  int
	Env    *Env
	Engine *Engine
	Tokens []Token

	// AltText is set while parsing an image description, which renders as
	// plain text. It carries over to nested image descriptions.
	AltText bool

	// Delimiters is the emphasis delimiter list of the current nesting scope.
	Delimiters []Delimiter

	pending    strings.Builder
	cache      map[int]int
	scopes     [][]Delimiter
	prevScopes [][]Delimiter
	linkLevel  int
	rules      []InlineRule
}

func newInlineState(src string, e *Engine, env *Env) *InlineState {
	return &InlineState{
		Src:    src,
		PosMax: len(src),
		Env:    env,
		Engine: e,
		cache:  make(map[int]int),
		rules:  e.Inline.Rules(),
	}
}

// Push flushes pending text and appends a new token, keeping Level in sync
// with the token's nesting. The returned pointer is valid until the next push.
func (s *InlineState) Push(kind Kind, tag string, nesting int) *Token {
	if s.pending.Len() > 0 {
		s.PushPending()
	}
	t := NewToken(kind, tag, nesting)
	if nesting < 0 {
		s.Level--
		s.closeScope()
	}
	t.Level = s.Level
	if nesting > 0 {
		s.Level++
		s.openScope()
	}
	s.Tokens = append(s.Tokens, t)
	return &s.Tokens[len(s.Tokens)-1]
}

// PushPending turns accumulated plain text into a text token.
func (s *InlineState) PushPending() {
	t := NewToken(KindText, "", NestingSelf)
	t.Content = s.pending.String()
	t.Level = s.Level
	s.Tokens = append(s.Tokens, t)
	s.pending.Reset()
}

// Pending returns the plain text accumulated since the last token.
func (s *InlineState) Pending() string {
	return s.pending.String()
}

// AppendPending adds plain text to the pending buffer.
func (s *InlineState) AppendPending(text string) {
	s.pending.WriteString(text)
}

func (s *InlineState) setPending(text string) {
	s.pending.Reset()
	s.pending.WriteString(text)
}

func (s *InlineState) openScope() {
	s.prevScopes = append(s.prevScopes, s.Delimiters)
	s.Delimiters = nil
}

func (s *InlineState) closeScope() {
	if len(s.prevScopes) == 0 {
		return
	}
	s.scopes = append(s.scopes, s.Delimiters)
	s.Delimiters = s.prevScopes[len(s.prevScopes)-1]
	s.prevScopes = s.prevScopes[:len(s.prevScopes)-1]
}

// Tokenize runs the inline rule chain over Src[Pos:PosMax].
func (s *InlineState) Tokenize() {
	end := s.PosMax
	for s.Pos < end {
		prev := s.Pos
		ok := false
		if s.Level < s.Engine.MaxNesting {
			for _, rule := range s.rules {
				if ok = rule(s, false); ok {
					if prev >= s.Pos {
						panic(fmt.Sprintf("markup: inline rule matched without advancing at %d", prev))
					}
					break
				}
			}
		}
		if ok {
			if s.Pos >= end {
				break
			}
			continue
		}
		s.pending.WriteByte(s.Src[s.Pos])
		s.Pos++
	}
	if s.pending.Len() > 0 {
		s.PushPending()
	}
}

// SkipToken advances Pos past the construct starting at Pos, running every
// rule in silent mode. Results are cached per position.
func (s *InlineState) SkipToken() {
	pos := s.Pos
	if end, ok := s.cache[pos]; ok {
		s.Pos = end
		return
	}
	ok := false
	if s.Level < s.Engine.MaxNesting {
		for _, rule := range s.rules {
			s.Level++
			ok = rule(s, true)
			s.Level--
			if ok {
				if pos >= s.Pos {
					panic(fmt.Sprintf("markup: inline rule matched without advancing at %d", pos))
				}
				break
			}
		}
	} else {
		s.Pos = s.PosMax
	}
	if !ok {
		s.Pos++
	}
	s.cache[pos] = s.Pos
}

// ParseLinkLabel finds the closing bracket of the label whose opening
// bracket is at start. Nested brackets and anything consumed by another
// inline rule (escapes, code spans) are skipped. It returns the index of
// the closing bracket, or -1. s.Pos is left unchanged.
func ParseLinkLabel(s *InlineState, start int, disableNested bool) int {
	oldPos := s.Pos
	s.Pos = start + 1
	level := 1
	found := false
	for s.Pos < s.PosMax {
		marker := s.Src[s.Pos]
		if marker == ']' {
			level--
			if level == 0 {
				found = true
				break
			}
		}
		prev := s.Pos
		s.SkipToken()
		if marker == '[' {
			if prev == s.Pos-1 {
				level++
			} else if disableNested {
				s.Pos = oldPos
				return -1
			}
		}
	}
	end := -1
	if found {
		end = s.Pos
	}
	s.Pos = oldPos
	return end
}

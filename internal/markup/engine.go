package markup

import (
	"fmt"
	"strings"
)

// DefaultMaxNesting bounds recursion in both block and inline parsing.
const DefaultMaxNesting = 20

// CoreState is the state of one document moving through the core chain.
type CoreState struct {
	Src    string
	Env    *Env
	Tokens []Token
	Engine *Engine
}

// CoreRule is one whole-document pass. Rules replace s.Tokens rather than
// editing a shared stream, and a returned error aborts the document.
type CoreRule func(s *CoreState) error

// Plugin installs rules into an Engine.
type Plugin func(e *Engine) error

// Engine wires the core, block and inline passes to a renderer.
// Configure it once, then share it: Parse keeps all per-document state in
// the Env and CoreState it creates, so concurrent Parse calls are safe.
type Engine struct {
	Core       Ruler[CoreRule]
	Inline     Ruler[InlineRule]
	InlinePost Ruler[InlinePostRule]
	Renderer   *Renderer
	MaxNesting int
}

// New returns an Engine with the default rule chains.
func New() *Engine {
	e := &Engine{
		Renderer:   NewRenderer(),
		MaxNesting: DefaultMaxNesting,
	}
	mustPush(&e.Core, "normalize", coreNormalize)
	mustPush(&e.Core, "block", coreBlock)
	mustPush(&e.Core, "inline", coreInline)

	mustPush(&e.Inline, "text", ruleText)
	mustPush(&e.Inline, "newline", ruleNewline)
	mustPush(&e.Inline, "escape", ruleEscape)
	mustPush(&e.Inline, "backticks", ruleBackticks)
	mustPush(&e.Inline, "emphasis", ruleEmphasis)
	mustPush(&e.Inline, "link", ruleLink)
	mustPush(&e.Inline, "image", ruleImage)
	mustPush(&e.Inline, "entity", ruleEntity)

	mustPush(&e.InlinePost, "emphasis", postEmphasis)
	mustPush(&e.InlinePost, "text_join", postJoinText)
	return e
}

func mustPush[F any](r *Ruler[F], name string, fn F) {
	if err := r.Push(name, fn); err != nil {
		panic(err)
	}
}

// Use installs plugins in order and stops at the first error.
func (e *Engine) Use(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := p(e); err != nil {
			return fmt.Errorf("install plugin: %w", err)
		}
	}
	return nil
}

// Parse runs the core chain over src. On error no tokens are returned.
func (e *Engine) Parse(src string, env *Env) ([]Token, error) {
	if env == nil {
		env = NewEnv("")
	}
	s := &CoreState{Src: src, Env: env, Engine: e}
	for _, rule := range e.Core.Rules() {
		if err := rule(s); err != nil {
			return nil, err
		}
	}
	return s.Tokens, nil
}

// ParseInline parses src as inline markup in the given document context and
// returns the resulting tokens. Rules see the same Env as the caller, so
// per-document registries are shared with nested parses.
func (e *Engine) ParseInline(src string, env *Env) []Token {
	return e.parseInline(src, env, false)
}

func (e *Engine) parseInline(src string, env *Env, altText bool) []Token {
	s := e.NewInlineState(src, env)
	s.AltText = altText
	s.Tokenize()
	for _, rule := range e.InlinePost.Rules() {
		rule(s)
	}
	return s.Tokens
}

// NewInlineState returns a state positioned at the start of src, for
// running inline rules directly.
func (e *Engine) NewInlineState(src string, env *Env) *InlineState {
	s := newInlineState(src, e, env)
	s.Tokens = []Token{}
	return s
}

// Render renders a parsed token stream.
func (e *Engine) Render(tokens []Token, env *Env) string {
	return e.Renderer.Render(tokens, env)
}

// RenderString parses and renders src in one step.
func (e *Engine) RenderString(src string, env *Env) (string, error) {
	if env == nil {
		env = NewEnv("")
	}
	tokens, err := e.Parse(src, env)
	if err != nil {
		return "", err
	}
	return e.Render(tokens, env), nil
}

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\x00", "\uFFFD")

func coreNormalize(s *CoreState) error {
	s.Src = newlineNormalizer.Replace(s.Src)
	return nil
}

func coreBlock(s *CoreState) error {
	p := blockParser{maxNesting: s.Engine.MaxNesting}
	s.Tokens = p.parse(s.Src, 0, s.Tokens)
	return nil
}

func coreInline(s *CoreState) error {
	for i := range s.Tokens {
		if s.Tokens[i].Kind == KindInline {
			s.Tokens[i].Children = s.Engine.ParseInline(s.Tokens[i].Content, s.Env)
		}
	}
	return nil
}

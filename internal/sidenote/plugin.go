package sidenote

import (
	"fmt"

	"github.com/nao1215/sidenote/internal/markup"
)

// Rule names registered by the plugin.
const (
	RuleInline = "sidenote_inline"
	RuleTail   = "sidenote_tail"
)

// Plugin installs sidenote support with the default renderer.
func Plugin(e *markup.Engine) error {
	return PluginWith(NewRenderer())(e)
}

// PluginWith returns a plugin that installs sidenote support rendered by r.
// The recognizer runs after image parsing and the tail pass after inline
// parsing.
func PluginWith(r *Renderer) markup.Plugin {
	return func(e *markup.Engine) error {
		if err := e.Inline.After("image", RuleInline, Inline); err != nil {
			return fmt.Errorf("register %s: %w", RuleInline, err)
		}
		if err := e.Core.After("inline", RuleTail, Tail); err != nil {
			return fmt.Errorf("register %s: %w", RuleTail, err)
		}
		r.Install(e.Renderer)
		return nil
	}
}

package sidenote

import (
	"fmt"
	"strconv"

	"github.com/nao1215/sidenote/internal/markup"
)

// Renderer holds the HTML rules for sidenote tokens. AnchorName and
// Caption may be replaced to change numbering or element ids.
type Renderer struct {
	// AnchorName returns the element id stem of sidenote id.
	AnchorName func(id int, env *markup.Env) string
	// Caption returns the visible reference text.
	Caption func(id, subID int) string
}

// NewRenderer returns a Renderer using DefaultAnchorName and DefaultCaption.
func NewRenderer() *Renderer {
	return &Renderer{
		AnchorName: DefaultAnchorName,
		Caption:    DefaultCaption,
	}
}

// DefaultAnchorName returns the 1-based number of the sidenote, prefixed
// with "-<docId>-" when the document has an id.
func DefaultAnchorName(id int, env *markup.Env) string {
	n := strconv.Itoa(id + 1)
	if env != nil && env.DocID != "" {
		return "-" + env.DocID + "-" + n
	}
	return n
}

// DefaultCaption returns "[n]", or "[n:sub]" for additional references.
func DefaultCaption(id, subID int) string {
	if subID > 0 {
		return fmt.Sprintf("[%d:%d]", id+1, subID)
	}
	return fmt.Sprintf("[%d]", id+1)
}

// Install registers the sidenote rules on mr.
func (r *Renderer) Install(mr *markup.Renderer) {
	mr.Rules[KindRef] = r.Ref
	mr.Rules[KindOpen] = r.Open
	mr.Rules[KindClose] = r.Close
	mr.Rules[KindAnchor] = r.Anchor
}

func (r *Renderer) name(id int, env *markup.Env) string {
	return markup.EscapeHTML(r.AnchorName(id, env))
}

func withSub(name string, subID int) string {
	if subID > 0 {
		return name + ":" + strconv.Itoa(subID)
	}
	return name
}

// Ref renders the inline reference.
func (r *Renderer) Ref(tokens []markup.Token, idx int, env *markup.Env, _ *markup.Renderer) string {
	id, sub := metaIDs(tokens[idx])
	name := r.name(id, env)
	return fmt.Sprintf(
		"<label aria-describedby=\"fn%[1]s\" role=\"presentation\" class=\"sidelink\" for=\"fn%[1]s-content\">\n"+
			"<a aria-hidden=\"true\" href=\"#fn%[1]s\"><output class=\"highlight fnref\" id=\"fnref%[2]s\">%[3]s\n</output></a></label>",
		name, withSub(name, sub), markup.EscapeHTML(r.Caption(id, sub)))
}

// Open renders the start of a relocated block.
func (r *Renderer) Open(tokens []markup.Token, idx int, env *markup.Env, _ *markup.Renderer) string {
	id, sub := metaIDs(tokens[idx])
	name := withSub(r.name(id, env), sub)
	return fmt.Sprintf(
		"<aside id=\"fn%[1]s\" class=\"sidenote\" role=\"note\">\n"+
			"    <output aria-hidden=\"true\" class=\"highlight\" id=\"fn%[1]s-content\">\n"+
			"    <label role=\"presentation\" for=\"fnref%[1]s\">",
		name)
}

// Close renders the end of a relocated block.
func (r *Renderer) Close([]markup.Token, int, *markup.Env, *markup.Renderer) string {
	return "</label></output></aside>\n"
}

// Anchor renders a back-reference to one reference of the sidenote.
func (r *Renderer) Anchor(tokens []markup.Token, idx int, env *markup.Env, _ *markup.Renderer) string {
	id, sub := metaIDs(tokens[idx])
	name := withSub(r.name(id, env), sub)
	return " <a href=\"#fnref" + name + "\" class=\"sidenote-backref\">\u21a9\ufe0e</a>"
}

package sidenote

import (
	"fmt"

	"github.com/nao1215/sidenote/internal/markup"
)

type registryKey struct{}

// Entry is one recognized sidenote.
type Entry struct {
	// ID is the sequential id in first-occurrence order.
	ID int
	// Content is the raw source text between the brackets.
	Content string
	// Tokens is Content parsed as inline markup.
	Tokens []markup.Token
	// Count is the number of back-references rendered for the entry.
	Count int
	// Label is carried into open and anchor tokens for custom renderers.
	Label string
}

func (e Entry) hasContent() bool {
	return len(e.Tokens) > 0 || e.Content != ""
}

// Registry holds the sidenotes of one document in id order. It lives in
// the document's markup.Env from the first recognized marker until the
// tail pass has relocated every entry.
type Registry struct {
	entries []Entry
}

// FromEnv returns the registry of the document, or nil when no sidenote
// has been recognized.
func FromEnv(env *markup.Env) *Registry {
	r, _ := env.Value(registryKey{}).(*Registry)
	return r
}

func registryFor(env *markup.Env) *Registry {
	if r := FromEnv(env); r != nil {
		return r
	}
	r := &Registry{}
	env.SetValue(registryKey{}, r)
	return r
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Entry returns the entry with the given id.
func (r *Registry) Entry(id int) (Entry, bool) {
	if id < 0 || id >= r.Len() {
		return Entry{}, false
	}
	return r.entries[id], true
}

// Entries returns a copy of all entries in id order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, r.Len())
	if r != nil {
		copy(out, r.entries)
	}
	return out
}

// Repeat records one more back-reference to sidenote id and returns the
// subId for it. Pair it with RefToken(id, subID) to place the reference.
func (r *Registry) Repeat(id int) (int, error) {
	if id < 0 || id >= r.Len() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSidenote, id)
	}
	e := &r.entries[id]
	if e.Count < 1 {
		e.Count = 1
	}
	sub := e.Count
	e.Count++
	return sub, nil
}

// reserve allocates the next id before the entry's content is parsed, so
// markers nested in that content receive later ids.
func (r *Registry) reserve() int {
	id := len(r.entries)
	r.entries = append(r.entries, Entry{ID: id, Count: 1})
	return id
}

func (r *Registry) fill(id int, content string, tokens []markup.Token) {
	r.entries[id].Content = content
	r.entries[id].Tokens = tokens
}

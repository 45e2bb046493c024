package sidenote

import (
	"slices"

	"github.com/nao1215/sidenote/internal/markup"
)

// Note summarizes one relocated sidenote of a reconciled stream.
type Note struct {
	ID      int    `json:"id"`
	Number  int    `json:"number"`
	Label   string `json:"label,omitempty"`
	Content string `json:"content"`
	Anchors int    `json:"anchors"`
}

// Notes lists the sidenote blocks of tokens in id order.
func Notes(tokens []markup.Token) []Note {
	notes := []Note{}
	var open []int
	for _, t := range tokens {
		switch t.Kind {
		case KindOpen:
			id, _ := metaIDs(t)
			n := Note{ID: id, Number: id + 1}
			if m, ok := t.Meta.(NoteMeta); ok {
				n.Label = m.Label
			}
			notes = append(notes, n)
			open = append(open, len(notes)-1)
		case KindClose:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		case KindAnchor:
			if len(open) > 0 {
				notes[open[len(open)-1]].Anchors++
			}
		case markup.KindInline:
			if len(open) > 0 && notes[open[len(open)-1]].Content == "" {
				notes[open[len(open)-1]].Content = t.Content
			}
		}
	}
	slices.SortFunc(notes, func(a, b Note) int { return a.ID - b.ID })
	return notes
}

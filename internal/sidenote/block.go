package sidenote

import "github.com/nao1215/sidenote/internal/markup"

// BuildBlock returns the block-level tokens for entry e:
//
//	sidenote_open
//	  paragraph_open, inline, (anchors...), paragraph_close   when e has content
//	  anchors...                                               otherwise
//	sidenote_close
//
// One anchor is emitted per back-reference (Count, at least one). Anchors
// are placed inside the paragraph so they render inline after the text.
func BuildBlock(e Entry) []markup.Token {
	anchors := max(e.Count, 1)
	tokens := make([]markup.Token, 0, anchors+5)

	open := markup.NewToken(KindOpen, "", markup.NestingOpen)
	open.Block = true
	open.Meta = NoteMeta{ID: e.ID, Label: e.Label}
	tokens = append(tokens, open)

	var trailing []markup.Token
	if e.hasContent() {
		p := markup.NewToken(markup.KindParagraphOpen, "p", markup.NestingOpen)
		p.Block = true
		p.Level = 1

		inline := markup.NewToken(markup.KindInline, "", markup.NestingSelf)
		inline.Block = true
		inline.Level = 2
		inline.Content = e.Content
		inline.Children = e.Tokens

		pc := markup.NewToken(markup.KindParagraphClose, "p", markup.NestingClose)
		pc.Block = true
		pc.Level = 1

		tokens = append(tokens, p, inline)
		trailing = append(trailing, pc)
	}

	for sub := range anchors {
		a := markup.NewToken(KindAnchor, "", markup.NestingSelf)
		a.Meta = AnchorMeta{ID: e.ID, SubID: sub, Label: e.Label}
		tokens = append(tokens, a)
	}
	tokens = append(tokens, trailing...)

	end := markup.NewToken(KindClose, "", markup.NestingClose)
	end.Block = true
	return append(tokens, end)
}

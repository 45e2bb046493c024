// Package sidenote adds ^[...] sidenotes to the markup engine.
//
// A sidenote is written inline, at the point it refers to:
//
//	Bees dance^[The waggle dance encodes direction.] to share food sources.
//
// Recognition happens in two phases. During inline parsing, Inline
// registers the note in a per-document Registry and leaves a reference
// token in its place. After inline parsing, Tail moves every note into a
// block of its own, placed right after the paragraph that references it:
//
//	paragraph_open inline(... sidenote_ref ...) paragraph_close
//	sidenote_open paragraph_open inline sidenote_anchor paragraph_close sidenote_close
//
// Notes may nest. An inner note gets its own block, placed with the blocks
// of its outermost enclosing note: all of them follow that note's paragraph
// close in id order. Ids follow first occurrence, so the outer note is
// numbered before the notes it contains, and in a ^[x ^[y ^[z]] w ^[v]]
// chain the blocks come out as x, y, z, v.
//
// Renderer turns the tokens into accessible HTML: a numbered label at the
// reference, and an aside holding the content with a back-link.
package sidenote

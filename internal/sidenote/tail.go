package sidenote

import (
	"github.com/nao1215/sidenote/internal/markup"
)

// Tail is the core rule that relocates every registered sidenote. It runs
// after inline parsing and drops the registry from the document context
// once it is done, whether or not reconciliation succeeded.
func Tail(s *markup.CoreState) error {
	reg := FromEnv(s.Env)
	if reg == nil {
		return nil
	}
	defer s.Env.Delete(registryKey{})

	tokens, err := Reconcile(s.Tokens, reg)
	if err != nil {
		return err
	}
	s.Tokens = tokens
	return nil
}

// Reconcile returns tokens with the block of every entry in reg inserted
// directly after the paragraph close that follows the entry's reference.
//
// An entry whose reference sits in the content of another entry is placed
// with its outermost enclosing entry. Blocks sharing a paragraph close keep
// id order. tokens is not modified.
//
// A reference missing from the stream, or one not followed by a paragraph
// close, is reported as a *ReconcileError.
func Reconcile(tokens []markup.Token, reg *Registry) ([]markup.Token, error) {
	if reg.Len() == 0 {
		return tokens, nil
	}
	entries := reg.entries
	parent := nesting(entries)
	inlineAt := references(tokens, len(entries))
	closeAfter := paragraphCloses(tokens)

	// Report the highest failing id, as a backward scan would.
	closeAt := make([]int, len(entries))
	for id := len(entries) - 1; id >= 0; id-- {
		if parent[id] >= 0 {
			continue
		}
		inline := inlineAt[id]
		if inline < 0 {
			return nil, &ReconcileError{ID: id, Err: ErrMissingReference}
		}
		if closeAfter[inline] < 0 {
			return nil, &ReconcileError{ID: id, Err: ErrMissingParagraphClose}
		}
		closeAt[id] = closeAfter[inline]
	}

	// A parent id is always lower than its child's, so roots resolve in
	// one pass.
	root := make([]int, len(entries))
	plan := make(map[int][]int)
	size := len(tokens)
	for id := range entries {
		root[id] = id
		if p := parent[id]; p >= 0 {
			root[id] = root[p]
		}
		at := closeAt[root[id]]
		plan[at] = append(plan[at], id)
		size += max(entries[id].Count, 1) + 5
	}

	out := make([]markup.Token, 0, size)
	for i, t := range tokens {
		out = append(out, t)
		for _, id := range plan[i] {
			out = append(out, BuildBlock(entries[id])...)
		}
	}
	return out, nil
}

// nesting maps each entry id to the id of the entry whose content holds
// its first reference, or -1 for references in the document flow.
func nesting(entries []Entry) []int {
	parent := make([]int, len(entries))
	for i := range parent {
		parent[i] = -1
	}
	for _, e := range entries {
		walkRefs(e.Tokens, func(id int) {
			if id > e.ID && id < len(parent) {
				parent[id] = e.ID
			}
		})
	}
	return parent
}

// references maps each entry id to the index of the last inline token of
// the stream that holds its first reference, or -1.
func references(tokens []markup.Token, n int) []int {
	at := make([]int, n)
	for i := range at {
		at[i] = -1
	}
	for i, t := range tokens {
		if t.Kind != markup.KindInline {
			continue
		}
		walkRefs(t.Children, func(id int) {
			if id >= 0 && id < n {
				at[id] = i
			}
		})
	}
	return at
}

// paragraphCloses maps each token index to the index of the first
// paragraph close at or after it, or -1.
func paragraphCloses(tokens []markup.Token) []int {
	next := make([]int, len(tokens))
	at := -1
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind == markup.KindParagraphClose {
			at = i
		}
		next[i] = at
	}
	return next
}

package sidenote

import "github.com/nao1215/sidenote/internal/markup"

// Token kinds introduced by the sidenote extension.
const (
	// KindRef marks the point where a sidenote was referenced.
	KindRef markup.Kind = "sidenote_ref"
	// KindOpen starts a relocated sidenote block.
	KindOpen markup.Kind = "sidenote_open"
	// KindClose ends a relocated sidenote block.
	KindClose markup.Kind = "sidenote_close"
	// KindAnchor is a back-reference from a block to one of its references.
	KindAnchor markup.Kind = "sidenote_anchor"
)

// RefMeta is the payload of a KindRef token.
type RefMeta struct {
	ID    int
	SubID int
}

// MetaKind implements markup.Meta.
func (RefMeta) MetaKind() markup.Kind { return KindRef }

// AnchorMeta is the payload of a KindAnchor token.
type AnchorMeta struct {
	ID    int
	SubID int
	Label string
}

// MetaKind implements markup.Meta.
func (AnchorMeta) MetaKind() markup.Kind { return KindAnchor }

// NoteMeta is the payload of a KindOpen token.
type NoteMeta struct {
	ID    int
	Label string
}

// MetaKind implements markup.Meta.
func (NoteMeta) MetaKind() markup.Kind { return KindOpen }

// RefToken returns a reference token for sidenote id. A subID above zero
// marks an additional reference to a sidenote registered earlier; see
// Registry.Repeat.
func RefToken(id, subID int) markup.Token {
	t := markup.NewToken(KindRef, "", markup.NestingSelf)
	t.Meta = RefMeta{ID: id, SubID: subID}
	return t
}

// metaIDs extracts id and subId from any sidenote payload.
func metaIDs(t markup.Token) (id, subID int) {
	switch m := t.Meta.(type) {
	case RefMeta:
		return m.ID, m.SubID
	case AnchorMeta:
		return m.ID, m.SubID
	case NoteMeta:
		return m.ID, 0
	}
	return 0, 0
}

// walkRefs calls fn with the id of every first reference (subId 0) in
// tokens and their children, in document order.
func walkRefs(tokens []markup.Token, fn func(id int)) {
	for _, t := range tokens {
		if m, ok := t.Meta.(RefMeta); ok && t.Kind == KindRef && m.SubID == 0 {
			fn(m.ID)
		}
		walkRefs(t.Children, fn)
	}
}

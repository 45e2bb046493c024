// Package markup is a small streaming markup engine that produces a flat
// token stream.
//
// Parsing happens in ordered passes kept in named rule chains:
//
//   - Core rules run once per document (normalize, block, inline).
//   - Inline rules run at each scan position of an inline token's content.
//   - Inline post rules run after an inline parse (emphasis pairing,
//     text joining).
//
// Block structure is kept flat: an opening token, its content, and a
// closing token follow each other in the stream. The raw text of each block
// lives in a KindInline token whose Children hold the parsed inline tokens.
//
// Extensions are installed with Engine.Use. They add rules relative to
// existing ones by name, keep per-document state in the Env, and add
// RenderFunc entries for the token kinds they introduce:
//
//	e := markup.New()
//	if err := e.Use(sidenote.Plugin); err != nil {
//	    return err
//	}
//	html, err := e.RenderString(src, markup.NewEnv("chapter-1"))
//
// Only the subset of Markdown needed by the sidenote extension and its
// tests is recognized: paragraphs, ATX headings, fenced code, thematic
// breaks, blockquotes, emphasis, code spans, inline links, images, escapes
// and character references.
package markup

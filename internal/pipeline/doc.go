// Package pipeline runs markdown documents through a sequence of steps:
// reading the source, optional Unicode normalization, rendering with
// sidenotes, optional in-page link checking and writing the HTML.
//
// Each step receives the model.Document being built and records problems
// as findings. A step returns an error only when the document cannot be
// completed.
//
// BatchProcessor runs one pipeline per document with bounded concurrency
// using errgroup.
package pipeline

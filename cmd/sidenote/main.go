// Package main provides the entry point for the sidenote CLI.
//
// sidenote renders markdown with ^[inline sidenotes] into HTML. Each
// sidenote is relocated into an <aside> block placed right after the
// paragraph that references it.
//
// Usage:
//
//	sidenote render post.md
//	sidenote render -o public posts/*.md
//	sidenote list --markdown posts/*.md
//
// See --help for all available options.
package main

func main() {
	Execute()
}

// Package report writes render results in different formats:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured output for tools
//   - MarkdownWriter: a GitHub-flavored summary for pull requests and docs
//
// Writers implement the Writer interface, so they can be used
// interchangeably and combined with MultiWriter.
package report

// Package log provides logging helpers built on top of the standard slog
// package.
//
// Documents and sidenote bodies end up in log attributes when a render
// fails or a link check warns. ExcerptHandler shortens such values so a
// single log line stays readable:
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Warn("dangling fragment link",
//	    "file", "post.md",
//	    "content", body, // cut to DefaultExcerptRunes runes
//	)
//
// The handler wraps any slog.Handler, so the text and JSON loggers share
// the same behavior.
package log

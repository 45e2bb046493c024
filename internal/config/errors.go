package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() to react to a specific problem.
var (
	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidDocID is returned when a document id contains characters that
	// are not allowed in HTML ids and URL fragments.
	ErrInvalidDocID = errors.New("invalid document id: use letters, digits, '-' and '_' only")

	// ErrInvalidMaxNesting is returned when the nesting limit is not positive.
	ErrInvalidMaxNesting = errors.New("invalid max nesting: must be positive")

	// ErrOutputDirRequired is returned when several inputs would be written
	// to stdout.
	ErrOutputDirRequired = errors.New("output directory required when rendering more than one file")
)

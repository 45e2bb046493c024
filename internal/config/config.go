package config

import (
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sidenote"

	// DefaultBatchSize is the number of documents rendered concurrently.
	DefaultBatchSize = 4

	// DefaultMaxNesting bounds recursive inline parsing, which also caps how
	// deeply sidenotes may nest inside each other.
	DefaultMaxNesting = 20

	// DefaultOutputExt is the extension given to rendered files.
	DefaultOutputExt = ".html"
)

var docIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

// Config holds all configuration options for a sidenote run.
// It is populated from CLI flags and passed down explicitly; nothing
// reads configuration from global state.
type Config struct {
	// DocID prefixes every sidenote element id so several documents can
	// share one HTML page. Empty means no prefix.
	DocID string

	// Normalize applies Unicode NFC normalization to the source before
	// parsing.
	Normalize bool

	// XHTML renders void elements as "<br />".
	XHTML bool

	// CheckLinks verifies that every in-page link of the output names an
	// element id that exists.
	CheckLinks bool

	// MaxNesting is the inline nesting limit of the markup engine.
	MaxNesting int

	// OutputDir receives one HTML file per input. When empty, a single
	// input is written to stdout.
	OutputDir string

	// Inputs lists the markdown files to render. Empty means stdin.
	Inputs []string

	// BatchSize is the number of documents processed concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// UseCache enables the SQLite render cache.
	UseCache bool

	// CacheDir is the directory holding the render cache database.
	// Defaults to the XDG cache directory.
	CacheDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sidenote in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Documents holds per-document overrides loaded from the config file.
	Documents *File

	// JSONReport selects the JSON inventory format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown inventory format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file for the inventory report.
	// Directories are created automatically if they don't exist.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxNesting: DefaultMaxNesting,
		BatchSize:  DefaultBatchSize,
		UseCache:   true,
		CacheDir:   XDGCacheDir(),
	}
}

// XDGConfigDir returns the XDG config directory for sidenote.
// On Linux: ~/.config/sidenote
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sidenote.
// On Linux: ~/.cache/sidenote
// On macOS: ~/Library/Caches/sidenote
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxNesting <= 0 {
		return ErrInvalidMaxNesting
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if !ValidDocID(c.DocID) {
		return ErrInvalidDocID
	}
	if len(c.Inputs) > 1 && c.OutputDir == "" {
		return ErrOutputDirRequired
	}
	if c.Documents != nil {
		for _, d := range c.Documents.Documents {
			if !ValidDocID(d.DocID) {
				return ErrInvalidDocID
			}
		}
		if !ValidDocID(c.Documents.Defaults.DocID) {
			return ErrInvalidDocID
		}
	}
	return nil
}

// ValidDocID reports whether id can be embedded in element ids as is.
func ValidDocID(id string) bool {
	return docIDPattern.MatchString(id)
}

// Options are the effective rendering options of one document.
type Options struct {
	DocID      string
	Normalize  bool
	XHTML      bool
	CheckLinks bool
}

// ForDocument resolves the options for the document at path. Values from
// the config file's defaults and then its entry for path take precedence
// over the run-wide settings.
func (c *Config) ForDocument(path string) Options {
	opts := Options{
		DocID:      c.DocID,
		Normalize:  c.Normalize,
		XHTML:      c.XHTML,
		CheckLinks: c.CheckLinks,
	}
	if c.Documents == nil {
		return opts
	}
	dc := c.Documents.GetDocumentConfig(path)
	if dc.DocID != "" {
		opts.DocID = dc.DocID
	}
	if dc.Normalize != nil {
		opts.Normalize = *dc.Normalize
	}
	if dc.XHTML != nil {
		opts.XHTML = *dc.XHTML
	}
	if dc.CheckLinks != nil {
		opts.CheckLinks = *dc.CheckLinks
	}
	return opts
}

package config

import "path/filepath"

// DocumentConfig holds overrides for a single document. Nil pointers leave
// the run-wide value in place.
type DocumentConfig struct {
	// DocID prefixes the sidenote element ids of the document.
	DocID string `yaml:"docId,omitempty"`

	// Normalize overrides NFC normalization.
	Normalize *bool `yaml:"normalize,omitempty"`

	// XHTML overrides void element style.
	XHTML *bool `yaml:"xhtml,omitempty"`

	// CheckLinks overrides in-page link checking.
	CheckLinks *bool `yaml:"checkLinks,omitempty"`
}

// File represents the structure of the .sidenote configuration file.
type File struct {
	// Documents maps document paths to their overrides. Keys are matched
	// against the cleaned input path and then against its base name.
	Documents map[string]DocumentConfig `yaml:"documents,omitempty"`

	// Defaults applies to every document unless overridden.
	Defaults DocumentConfig `yaml:"defaults,omitempty"`
}

// GetDocumentConfig returns the configuration for the document at path,
// merged over the defaults.
func (cf *File) GetDocumentConfig(path string) DocumentConfig {
	result := cf.Defaults

	dc, ok := cf.Documents[filepath.Clean(path)]
	if !ok {
		dc, ok = cf.Documents[filepath.Base(path)]
	}
	if !ok {
		return result
	}

	if dc.DocID != "" {
		result.DocID = dc.DocID
	}
	if dc.Normalize != nil {
		result.Normalize = dc.Normalize
	}
	if dc.XHTML != nil {
		result.XHTML = dc.XHTML
	}
	if dc.CheckLinks != nil {
		result.CheckLinks = dc.CheckLinks
	}
	return result
}

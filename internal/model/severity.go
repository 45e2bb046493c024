package model

// Severity ranks a finding.
type Severity int

const (
	// SeverityInfo marks findings that need no action, such as an empty
	// sidenote.
	SeverityInfo Severity = iota

	// SeverityWarning marks output that renders but is likely wrong, such
	// as an in-page link to an id that does not exist.
	SeverityWarning

	// SeverityError marks a document that could not be rendered.
	SeverityError
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler so reports show names.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FindingInfo contains the severity and an explanation of a finding type.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// Finding types.
const (
	FindingDanglingFragment      = "dangling_fragment"
	FindingDuplicateID           = "duplicate_id"
	FindingEmptySidenote         = "empty_sidenote"
	FindingMissingReference      = "missing_reference"
	FindingMissingParagraphClose = "missing_paragraph_close"
	FindingRenderFailed          = "render_failed"
)

var findingInfoMapping = map[string]FindingInfo{
	FindingDanglingFragment: {
		Severity:       SeverityWarning,
		Impact:         "An in-page link points at an element id that is not in the document.",
		Recommendation: "Check the document id prefix when several documents share one page.",
	},
	FindingDuplicateID: {
		Severity:       SeverityWarning,
		Impact:         "Two elements share one id, so links jump to the first of them.",
		Recommendation: "Give each document on a page its own document id.",
	},
	FindingEmptySidenote: {
		Severity:       SeverityInfo,
		Impact:         "A sidenote has no content and renders only its back-reference.",
		Recommendation: "Fill in or remove the empty ^[] marker.",
	},
	FindingMissingReference: {
		Severity:       SeverityError,
		Impact:         "A registered sidenote has no reference in the token stream.",
		Recommendation: "Report the input; this indicates a parser bug.",
	},
	FindingMissingParagraphClose: {
		Severity:       SeverityError,
		Impact:         "A sidenote is referenced outside any paragraph, so its block has no place.",
		Recommendation: "Move the sidenote out of the heading or add a paragraph after it.",
	},
	FindingRenderFailed: {
		Severity:       SeverityError,
		Impact:         "The document could not be rendered.",
		Recommendation: "See the error message for details.",
	},
}

// GetSeverity returns the severity of a finding type. Unknown types are
// warnings.
func GetSeverity(findingType string) Severity {
	return GetFindingInfo(findingType).Severity
}

// GetFindingInfo returns the metadata of a finding type.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{Severity: SeverityWarning}
}

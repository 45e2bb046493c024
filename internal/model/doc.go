// Package model defines the data structures shared by the pipeline, the
// render cache and the report writers.
//
//   - Document: one rendered input with its sidenote inventory
//   - Sidenote: one relocated sidenote of a document
//   - Finding: a problem found while rendering or checking a document
//
// The types are serializable to JSON for reports and cache storage.
package model

package sidenote

import (
	"errors"
	"fmt"
)

// Reconciliation errors. Both mean the registry and the token stream
// disagree; the document is rejected as a whole.
var (
	// ErrMissingReference is returned when no inline token in the stream
	// holds the reference of a registered sidenote.
	ErrMissingReference = errors.New("sidenote reference not found in token stream")

	// ErrMissingParagraphClose is returned when the paragraph holding a
	// reference is never closed.
	ErrMissingParagraphClose = errors.New("no paragraph close after sidenote reference")
)

// ErrUnknownSidenote is returned by Registry.Repeat for an id that was
// never registered.
var ErrUnknownSidenote = errors.New("unknown sidenote")

// ReconcileError reports which sidenote could not be relocated.
type ReconcileError struct {
	ID  int
	Err error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("sidenote %d: %v", e.ID+1, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

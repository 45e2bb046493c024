package markup

// Env is the per-document context shared by every rule during one
// Parse call. Extensions keep their per-document state in it under
// their own unexported key types, so state never leaks between documents.
type Env struct {
	// DocID namespaces generated element ids when several documents are
	// rendered into one page. Empty means no namespace.
	DocID string

	values map[any]any
}

// NewEnv returns an Env for one document.
func NewEnv(docID string) *Env {
	return &Env{DocID: docID}
}

// Value returns the value stored under key, or nil.
func (e *Env) Value(key any) any {
	if e == nil || e.values == nil {
		return nil
	}
	return e.values[key]
}

// SetValue stores val under key.
func (e *Env) SetValue(key, val any) {
	if e.values == nil {
		e.values = make(map[any]any)
	}
	e.values[key] = val
}

// Delete removes the value stored under key.
func (e *Env) Delete(key any) {
	delete(e.values, key)
}

package motly

import "errors"

// ErrDisposed is returned by every Session method other than Dispose once
// Dispose has been called.
var ErrDisposed = errors.New("motly: session is disposed")

// SessionOption configures a Session at construction, via the usual
// functional-options shape.
type SessionOption func(*Session)

// WithSchema installs a pre-built schema tree at construction time,
// skipping a separate ParseSchema call.
func WithSchema(schema *Node) SessionOption {
	return func(s *Session) { s.schema = schema }
}

// Session owns exactly one value tree and at most one schema tree. It
// is not goroutine-safe; callers serialise their own access.
type Session struct {
	tree     *Node
	schema   *Node
	disposed bool
}

// NewSession returns a session with an empty value tree and no schema.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{tree: newNode()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse applies source to the session's value tree. A
// syntactic failure is caught here and folded into the single-element
// diagnostic list rather than surfaced as a Go error; only a disposed
// session produces an error.
func (s *Session) Parse(source string) ([]Diagnostic, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	stmts, err := ParseSource(source)
	if err != nil {
		return []Diagnostic{parseDiagnostic(err.(*syntaxError))}, nil
	}
	return Interpret(s.tree, stmts), nil
}

// ParseSchema parses source as a schema tree and installs it, replacing
// any previously installed schema.
func (s *Session) ParseSchema(source string) ([]Diagnostic, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	stmts, err := ParseSource(source)
	if err != nil {
		return []Diagnostic{parseDiagnostic(err.(*syntaxError))}, nil
	}
	schema := newNode()
	diags := Interpret(schema, stmts)
	s.schema = schema
	return diags, nil
}

// Reset discards the value tree, keeping the installed schema.
func (s *Session) Reset() error {
	if s.disposed {
		return ErrDisposed
	}
	s.tree = newNode()
	return nil
}

// GetValue returns a deep copy of the value tree, so callers cannot
// mutate the session's own state through it.
func (s *Session) GetValue() (*Node, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	return s.tree.clone(), nil
}

// ValidateSchema runs schema validation against the installed schema. The
// result is nil both when validation found nothing and when no schema is
// installed.
func (s *Session) ValidateSchema() ([]Diagnostic, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	if s.schema == nil {
		return nil, nil
	}
	return ValidateSchema(s.tree, s.schema), nil
}

// ValidateReferences runs the reference-resolution pass over the value
// tree.
func (s *Session) ValidateReferences() ([]Diagnostic, error) {
	if s.disposed {
		return nil, ErrDisposed
	}
	return ValidateReferences(s.tree), nil
}

// Dump renders the session's current value tree as pretty JSON, for
// debugging and for the CLI's --pretty output path.
func (s *Session) Dump() (string, error) {
	if s.disposed {
		return "", ErrDisposed
	}
	b, err := ToJSON(s.tree, true)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Dispose marks the session dead. Idempotent.
func (s *Session) Dispose() error {
	s.disposed = true
	return nil
}

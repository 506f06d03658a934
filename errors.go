package motly

import (
	"fmt"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

// Stable error codes.
const (
	CodeSyntaxError            = "tag-parse-syntax-error"
	CodeUnresolvedCloneRef     = "unresolved-clone-reference"
	CodeCloneRefOutOfScope     = "clone-reference-out-of-scope"
	CodeRefWithProperties      = "ref-with-properties"
	CodeUnresolvedReference    = "unresolved-reference"
	CodeMissingRequired        = "missing-required"
	CodeWrongType              = "wrong-type"
	CodeUnknownProperty        = "unknown-property"
	CodeInvalidSchema          = "invalid-schema"
	CodeInvalidEnumValue       = "invalid-enum-value"
	CodePatternMismatch        = "pattern-mismatch"
)

// Diagnostic is a non-fatal or fatal error surfaced by the pipeline
//. Parse diagnostics carry a Span; semantic diagnostics
// (interpreter, resolver, schema validator) carry a Path.
type Diagnostic struct {
	Code    string
	Message string
	Span    *Span
	Path    []string
}

// Error implements the error interface so a Diagnostic can travel
// through github.com/hashicorp/go-multierror's accumulator alongside
// plain errors.
func (d Diagnostic) Error() string {
	return d.String()
}

func (d Diagnostic) String() string {
	switch {
	case d.Span != nil:
		return fmt.Sprintf("%s: %s (%d:%d)", d.Code, d.Message, d.Span.Begin.Line+1, d.Span.Begin.Column+1)
	case len(d.Path) > 0:
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, strings.Join(d.Path, "."))
	default:
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
}

func parseDiagnostic(se *syntaxError) Diagnostic {
	span := se.span
	return Diagnostic{Code: se.code, Message: se.msg, Span: &span}
}

// diagBag accumulates non-fatal semantic diagnostics without aborting
// the walk that produces them.
// It is grounded on cashier-go-cashier's use of
// *multierror.Error/multierror.Append to gather independent validation
// failures from verifyConfig/setFromVault.
type diagBag struct {
	errs *multierror.Error
}

func (b *diagBag) add(code string, path []string, format string, args ...interface{}) {
	b.errs = multierror.Append(b.errs, Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	})
}

func (b *diagBag) list() []Diagnostic {
	if b.errs == nil {
		return nil
	}
	out := make([]Diagnostic, 0, len(b.errs.Errors))
	for _, e := range b.errs.Errors {
		if d, ok := e.(Diagnostic); ok {
			out = append(out, d)
		}
	}
	return out
}

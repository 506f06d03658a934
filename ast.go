package motly

// stmtKind is the kind of a parsed statement.
type stmtKind int

const (
	stmtSetValue stmtKind = iota
	stmtAssignBoth
	stmtReplaceProperties
	stmtMergeProperties
	stmtDefine
	stmtClearAll
)

// valueKind tags a parsed value literal, prior to interpretation.
type valueKind int

const (
	vkString valueKind = iota
	vkNumber
	vkBool
	vkDate
	vkArray
	vkRef
	vkEnv
	vkNone
)

// value is a parsed value literal: a scalar, an array of nested values,
// a `$`-reference, or an `@env.NAME` placeholder.
type value struct {
	kind valueKind

	str  string
	num  float64
	bool bool
	date string
	elem []*value
	ref  refLit
	env  string

	span Span
}

// statement is one parsed unit of the Statement IR. It is
// ephemeral: the parser produces a []statement, which the interpreter
// consumes and discards.
type statement struct {
	kind stmtKind
	span Span

	path []string // non-empty except for stmtClearAll

	val      *value      // stmtSetValue, stmtAssignBoth
	block    []statement // optional {…} body: merge-props for SetValue,
	hasBlock bool        // replace-then-apply for AssignBoth, the full body
	// for ReplaceProperties/MergeProperties.

	deleted bool // stmtDefine
}

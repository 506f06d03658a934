package motly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionParseAndGetValue(t *testing.T) {
	s := NewSession()
	diags, err := s.Parse(`name = widget`)
	require.NoError(t, err)
	assert.Empty(t, diags)

	tree, err := s.GetValue()
	require.NoError(t, err)
	name, ok := tree.Properties.get("name")
	require.True(t, ok)
	assert.Equal(t, "widget", name.Str)
}

func TestSessionParseSyntaxErrorBecomesDiagnostic(t *testing.T) {
	s := NewSession()
	diags, err := s.Parse(`a = { x = 1 }`)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeSyntaxError, diags[0].Code)
}

func TestSessionResetKeepsSchema(t *testing.T) {
	s := NewSession()
	_, err := s.ParseSchema(`Required { name = string }`)
	require.NoError(t, err)
	_, err = s.Parse(`name = widget`)
	require.NoError(t, err)

	require.NoError(t, s.Reset())

	tree, err := s.GetValue()
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Properties.len())

	diags, err := s.ValidateSchema()
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeMissingRequired, diags[0].Code)
}

func TestSessionWithSchemaOption(t *testing.T) {
	schemaStmts, err := ParseSource(`Required { name = string }`)
	require.NoError(t, err)
	schema := newNode()
	Interpret(schema, schemaStmts)

	s := NewSession(WithSchema(schema))
	_, err = s.Parse(`name = widget`)
	require.NoError(t, err)

	diags, err := s.ValidateSchema()
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestSessionNoSchemaInstalledReturnsNil(t *testing.T) {
	s := NewSession()
	diags, err := s.ValidateSchema()
	require.NoError(t, err)
	assert.Nil(t, diags)
}

func TestSessionValidateReferences(t *testing.T) {
	s := NewSession()
	_, err := s.Parse(`a = $missing`)
	require.NoError(t, err)

	diags, err := s.ValidateReferences()
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeUnresolvedReference, diags[0].Code)
}

func TestSessionDisposeRejectsFurtherCalls(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Dispose())

	_, err := s.Parse(`a = 1`)
	assert.ErrorIs(t, err, ErrDisposed)

	_, err = s.ParseSchema(`Required {}`)
	assert.ErrorIs(t, err, ErrDisposed)

	err = s.Reset()
	assert.ErrorIs(t, err, ErrDisposed)

	_, err = s.GetValue()
	assert.ErrorIs(t, err, ErrDisposed)

	_, err = s.ValidateSchema()
	assert.ErrorIs(t, err, ErrDisposed)

	_, err = s.ValidateReferences()
	assert.ErrorIs(t, err, ErrDisposed)
}

func TestSessionDump(t *testing.T) {
	s := NewSession()
	_, err := s.Parse(`name = widget`)
	require.NoError(t, err)

	out, err := s.Dump()
	require.NoError(t, err)
	assert.Contains(t, out, `"name"`)
	assert.Contains(t, out, "widget")
}

func TestSessionGetValueReturnsDetachedCopy(t *testing.T) {
	s := NewSession()
	_, err := s.Parse(`a = 1`)
	require.NoError(t, err)

	tree, err := s.GetValue()
	require.NoError(t, err)
	a, _ := tree.Properties.get("a")
	a.Num = 999

	tree2, err := s.GetValue()
	require.NoError(t, err)
	a2, _ := tree2.Properties.get("a")
	assert.Equal(t, float64(1), a2.Num)
}

package motly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTree(t *testing.T, src string) *Node {
	t.Helper()
	stmts, err := ParseSource(src)
	require.NoError(t, err)
	root := newNode()
	diags := Interpret(root, stmts)
	require.Empty(t, diags)
	return root
}

func diagCodes(diags []Diagnostic) []string {
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}

// Scenario 6: an array-of named type, an enum reached through a custom
// type, and the default unknown-property rejection of a nested schema,
// run together against one target tree.
func TestValidateSchemaConcretePriorityScenario(t *testing.T) {
	schema := parseTree(t, `
Types { Lv = [debug, info, warn] }
Required { name = string, items = "string[]" }
Optional { level = Lv }
`)
	tree := parseTree(t, `
name = ok
items = [a, 3]
level = trace
extra = 1
`)

	diags := ValidateSchema(tree, schema)
	codes := diagCodes(diags)

	assert.Contains(t, codes, CodeWrongType)
	assert.Contains(t, codes, CodeInvalidEnumValue)
	assert.Contains(t, codes, CodeUnknownProperty)
	assert.Len(t, diags, 3)

	for _, d := range diags {
		switch d.Code {
		case CodeWrongType:
			assert.Equal(t, []string{"items", "[1]"}, d.Path)
		case CodeInvalidEnumValue:
			assert.Equal(t, []string{"level"}, d.Path)
		case CodeUnknownProperty:
			assert.Equal(t, []string{"extra"}, d.Path)
		}
	}
}

func TestValidateSchemaRequiredFlagPresent(t *testing.T) {
	schema := parseTree(t, `Required { enabled = flag }`)
	tree := parseTree(t, `enabled`)

	diags := ValidateSchema(tree, schema)
	assert.Empty(t, diags)
}

func TestValidateSchemaRequiredFlagAbsent(t *testing.T) {
	schema := parseTree(t, `Required { enabled = flag }`)
	tree := parseTree(t, `other = 1`)

	// With no Additional section, `other` is also rejected.
	diags := ValidateSchema(tree, schema)
	require.Len(t, diags, 2)
	assert.Equal(t, CodeMissingRequired, diags[0].Code)
	assert.Equal(t, CodeUnknownProperty, diags[1].Code)
}

func TestValidateSchemaMissingRequired(t *testing.T) {
	schema := parseTree(t, `Required { name = string }`)
	tree := parseTree(t, `other = 1`)

	// With no Additional section, `other` is also rejected.
	diags := ValidateSchema(tree, schema)
	require.Len(t, diags, 2)
	assert.Equal(t, CodeMissingRequired, diags[0].Code)
	assert.Equal(t, CodeUnknownProperty, diags[1].Code)
}

func TestValidateSchemaAdditionalAllow(t *testing.T) {
	schema := parseTree(t, `
Required { name = string }
Additional = allow
`)
	tree := parseTree(t, `name = ok, anything = 1`)

	diags := ValidateSchema(tree, schema)
	assert.Empty(t, diags)
}

func TestValidateSchemaAdditionalValidateAs(t *testing.T) {
	schema := parseTree(t, `
Required { name = string }
Additional = number
`)
	tree := parseTree(t, `name = ok, extra = notanumber`)

	diags := ValidateSchema(tree, schema)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeWrongType, diags[0].Code)
	assert.Equal(t, []string{"extra"}, diags[0].Path)
}

func TestValidateSchemaOneOf(t *testing.T) {
	schema := parseTree(t, `Required { port { oneOf = [number, string] } }`)

	good := parseTree(t, `port = 8080`)
	assert.Empty(t, ValidateSchema(good, schema))

	bad := parseTree(t, `port = @true`)
	diags := ValidateSchema(bad, schema)
	require.Len(t, diags, 1)
	assert.Equal(t, CodeWrongType, diags[0].Code)
}

func TestValidateSchemaPatternMismatch(t *testing.T) {
	schema := parseTree(t, `Required { id { matches = "^[0-9]+$" } }`)
	tree := parseTree(t, `id = abc`)

	diags := ValidateSchema(tree, schema)
	require.Len(t, diags, 1)
	assert.Equal(t, CodePatternMismatch, diags[0].Code)
}

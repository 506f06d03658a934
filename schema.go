package motly

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AdditionalPolicyKind is the disposition for a target property that
// appears in neither a schema's Required nor Optional section. Modelled
// as an explicit enum rather than re-deriving it ad hoc at each call
// site.
type AdditionalPolicyKind int

const (
	AdditionalReject AdditionalPolicyKind = iota
	AdditionalAllow
	AdditionalValidateAs
)

// AdditionalPolicy is the resolved meaning of a schema's Additional
// sub-property.
type AdditionalPolicy struct {
	Kind     AdditionalPolicyKind
	TypeName string // only set when Kind == AdditionalValidateAs
}

// ValidateSchema runs structural validation of tree against schema.
// schema's root is itself a schema spec; its Types sub-property (if
// any) is the sole source of custom type names for the whole walk —
// nested specs never contribute their own Types.
func ValidateSchema(tree *Node, schema *Node) []Diagnostic {
	diags := &diagBag{}
	if schema == nil {
		return nil
	}
	var types *props
	if t, ok := specProp(schema, "Types"); ok {
		types = t.Properties
	}
	validateAgainstSpec(tree, schema, types, nil, diags)
	return diags.list()
}

func specProp(spec *Node, name string) (*Node, bool) {
	if spec == nil {
		return nil, false
	}
	return spec.Properties.get(name)
}

func propsOf(n *Node) *props {
	if n == nil {
		return nil
	}
	return n.Properties
}

// validateAgainstSpec applies the type-spec priority order: union, then
// enum, then pattern, then named type, then (as the fallback shape) a
// nested structural schema.
func validateAgainstSpec(value *Node, spec *Node, types *props, path []string, diags *diagBag) {
	if spec == nil {
		return
	}
	if value == nil {
		value = newNode()
	}

	if oneOf, ok := specProp(spec, "oneOf"); ok {
		validateOneOf(value, oneOf, types, path, diags)
		return
	}
	if spec.Kind == KindArray {
		validateEnum(value, spec, path, diags)
		return
	}
	if matches, ok := specProp(spec, "matches"); ok {
		validatePattern(value, matches, spec, types, path, diags)
		return
	}
	if spec.Kind == KindString {
		validateNamedType(value, spec.Str, types, path, diags)
		return
	}
	validateNestedSchema(value, spec, types, path, diags)
}

// validateOneOf implements the union type spec: the value is valid if it
// satisfies any one listed type name, attempted in listed order.
func validateOneOf(value, oneOf *Node, types *props, path []string, diags *diagBag) {
	if oneOf.Kind != KindArray {
		diags.add(CodeInvalidSchema, path, "oneOf must be an array of type names")
		return
	}
	names := make([]string, 0, len(oneOf.Elem))
	for _, member := range oneOf.Elem {
		names = append(names, member.Str)
		trial := &diagBag{}
		validateNamedType(value, member.Str, types, path, trial)
		if len(trial.list()) == 0 {
			return
		}
	}
	diags.add(CodeWrongType, path, "value does not satisfy any of [%s]", strings.Join(names, ", "))
}

// validateEnum implements the enum type spec: a spec whose own value
// slot is directly an array of allowed scalar values.
func validateEnum(value, spec *Node, path []string, diags *diagBag) {
	for _, candidate := range spec.Elem {
		if valuesEqual(value, candidate) {
			return
		}
	}
	diags.add(CodeInvalidEnumValue, path, "value does not match any allowed value")
}

func valuesEqual(a, b *Node) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindString:
		return a.Str == b.Str
	case KindNumber:
		return a.Num == b.Num
	case KindBool:
		return a.Bool == b.Bool
	case KindDate:
		ea, oka := parseDateEpoch(a.Date)
		eb, okb := parseDateEpoch(b.Date)
		if oka && okb {
			return ea == eb
		}
		return a.Date == b.Date
	default:
		return false
	}
}

// parseDateEpoch best-effort parses a raw MOTLY date literal into a Unix
// epoch for enum comparison. It is
// the one place the core cares about a date's actual instant rather than
// its literal text.
func parseDateEpoch(s string) (int64, bool) {
	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04Z0700",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05.000Z0700",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

// validatePattern implements the pattern type spec: `matches` holds a
// regular expression; the spec's own value slot may co-name a base type
// to check before the pattern is applied.
func validatePattern(value, matches, spec *Node, types *props, path []string, diags *diagBag) {
	if matches.Kind != KindString {
		diags.add(CodeInvalidSchema, path, "matches must be a string")
		return
	}
	re, err := regexp.Compile(matches.Str)
	if err != nil {
		diags.add(CodeInvalidSchema, path, "invalid pattern %q: %s", matches.Str, err)
		return
	}
	if spec.Kind == KindString && spec.Str != "" {
		validateNamedType(value, spec.Str, types, path, diags)
	}
	if value.Kind != KindString {
		diags.add(CodeWrongType, path, "expected string, found %s", value.Kind)
		return
	}
	if !re.MatchString(value.Str) {
		diags.add(CodePatternMismatch, path, "value %q does not match pattern %q", value.Str, matches.Str)
	}
}

// validateNamedType implements the named-type spec: built-ins, the
// array-of form "X[]", or a lookup in the schema root's Types.
func validateNamedType(value *Node, typeName string, types *props, path []string, diags *diagBag) {
	if inner, ok := strings.CutSuffix(typeName, "[]"); ok {
		if value.Kind != KindArray {
			diags.add(CodeWrongType, path, "expected array of %s, found %s", inner, value.Kind)
			return
		}
		for i, e := range value.Elem {
			validateNamedType(e, inner, types, append(append([]string{}, path...), fmt.Sprintf("[%d]", i)), diags)
		}
		return
	}

	switch typeName {
	case "any":
		return
	case "flag":
		return
	case "tag":
		if value.Kind == KindLink {
			diags.add(CodeWrongType, path, "expected a node, found a link")
		}
		return
	}

	if value.Kind == KindLink {
		diags.add(CodeWrongType, path, "expected %s, found a link", typeName)
		return
	}

	switch typeName {
	case "string":
		if value.Kind != KindString {
			diags.add(CodeWrongType, path, "expected string, found %s", value.Kind)
		}
	case "number":
		if value.Kind != KindNumber {
			diags.add(CodeWrongType, path, "expected number, found %s", value.Kind)
		}
	case "boolean":
		if value.Kind != KindBool {
			diags.add(CodeWrongType, path, "expected boolean, found %s", value.Kind)
		}
	case "date":
		if value.Kind != KindDate {
			diags.add(CodeWrongType, path, "expected date, found %s", value.Kind)
		}
	default:
		custom, ok := types.get(typeName)
		if !ok {
			diags.add(CodeInvalidSchema, path, "unknown type %q", typeName)
			return
		}
		validateAgainstSpec(value, custom, types, path, diags)
	}
}

// validateNestedSchema implements the nested-schema fallback: Required,
// Optional, and Additional govern value's own properties.
func validateNestedSchema(value, spec *Node, types *props, path []string, diags *diagBag) {
	requiredNode, _ := specProp(spec, "Required")
	optionalNode, _ := specProp(spec, "Optional")
	additionalNode, _ := specProp(spec, "Additional")

	seen := make(map[string]bool)

	propsOf(requiredNode).each(func(name string, childSpec *Node) {
		seen[name] = true
		child, ok := propsOf(value).get(name)
		childPath := append(append([]string{}, path...), name)
		if !ok {
			diags.add(CodeMissingRequired, childPath, "missing required property %q", name)
			return
		}
		validateAgainstSpec(child, childSpec, types, childPath, diags)
	})

	propsOf(optionalNode).each(func(name string, childSpec *Node) {
		seen[name] = true
		child, ok := propsOf(value).get(name)
		if !ok {
			return
		}
		validateAgainstSpec(child, childSpec, types, append(append([]string{}, path...), name), diags)
	})

	policy := resolveAdditionalPolicy(additionalNode)
	propsOf(value).each(func(name string, child *Node) {
		if seen[name] {
			return
		}
		childPath := append(append([]string{}, path...), name)
		switch policy.Kind {
		case AdditionalReject:
			diags.add(CodeUnknownProperty, childPath, "unknown property %q", name)
		case AdditionalAllow:
		case AdditionalValidateAs:
			validateNamedType(child, policy.TypeName, types, childPath, diags)
		}
	})
}

func resolveAdditionalPolicy(node *Node) AdditionalPolicy {
	if node == nil {
		return AdditionalPolicy{Kind: AdditionalReject}
	}
	if node.Kind != KindString {
		return AdditionalPolicy{Kind: AdditionalAllow}
	}
	switch node.Str {
	case "allow":
		return AdditionalPolicy{Kind: AdditionalAllow}
	case "reject":
		return AdditionalPolicy{Kind: AdditionalReject}
	default:
		return AdditionalPolicy{Kind: AdditionalValidateAs, TypeName: node.Str}
	}
}

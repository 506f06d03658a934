package motly

import "testing"

func TestValidateReferencesAcceptsValidTargets(t *testing.T) {
	root, diags := interpretSrc(t, `
a = 1
b { inner = $^^a, abs = $a }
`)
	if len(diags) != 0 {
		t.Fatalf("interpret diagnostics: %v", diags)
	}
	refDiags := ValidateReferences(root)
	if len(refDiags) != 0 {
		t.Errorf("unexpected reference diagnostics: %v", refDiags)
	}
}

func TestValidateReferencesRejectsClimbPastRoot(t *testing.T) {
	root, diags := interpretSrc(t, `a = $^^^^missing`)
	if len(diags) != 0 {
		t.Fatalf("interpret diagnostics: %v", diags)
	}
	refDiags := ValidateReferences(root)
	if len(refDiags) == 0 {
		t.Fatal("expected a diagnostic for climbing past the root")
	}
	if refDiags[0].Code != CodeUnresolvedReference {
		t.Errorf("code = %q, want %q", refDiags[0].Code, CodeUnresolvedReference)
	}
}

func TestValidateReferencesRejectsThroughAnotherLink(t *testing.T) {
	root, diags := interpretSrc(t, `
a = $b
b = 1
c = $a.x
`)
	if len(diags) != 0 {
		t.Fatalf("interpret diagnostics: %v", diags)
	}
	refDiags := ValidateReferences(root)
	if len(refDiags) == 0 {
		t.Fatal("expected a diagnostic for a path passing through another reference")
	}
}

// A `^`-relative reference written inside an array element climbs from
// one level deeper than a reference written directly as a property
// value — array descent must extend the ancestor stack exactly as
// property descent does.
func TestValidateReferencesResolvesThroughArrayElement(t *testing.T) {
	root, diags := interpretSrc(t, `
x = 1
other { arr = [$^^^x] }
`)
	if len(diags) != 0 {
		t.Fatalf("interpret diagnostics: %v", diags)
	}
	refDiags := ValidateReferences(root)
	if len(refDiags) != 0 {
		t.Errorf("unexpected reference diagnostics: %v", refDiags)
	}
}

func TestValidateReferencesRejectsOutOfBoundsIndex(t *testing.T) {
	root, diags := interpretSrc(t, `
a = [1, 2]
b = $a[5]
`)
	if len(diags) != 0 {
		t.Fatalf("interpret diagnostics: %v", diags)
	}
	refDiags := ValidateReferences(root)
	if len(refDiags) == 0 {
		t.Fatal("expected a diagnostic for an out-of-range index")
	}
}

func TestValidateReferencesRejectsMissingProperty(t *testing.T) {
	root, diags := interpretSrc(t, `a = $nope`)
	if len(diags) != 0 {
		t.Fatalf("interpret diagnostics: %v", diags)
	}
	refDiags := ValidateReferences(root)
	if len(refDiags) == 0 {
		t.Fatal("expected a diagnostic for an unresolvable property")
	}
}

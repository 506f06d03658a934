package motly

import "testing"

func mustParse(t *testing.T, src string) []statement {
	t.Helper()
	stmts, err := ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", src, err)
	}
	return stmts
}

func checkKind(t *testing.T, got, want stmtKind, label string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: kind = %v, want %v", label, got, want)
	}
}

func checkPath(t *testing.T, got, want []string, label string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: path = %v, want %v", label, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s: path[%d] = %q, want %q", label, i, got[i], want[i])
		}
	}
}

func TestParseOperatorDispatch(t *testing.T) {
	stmts := mustParse(t, `a = 1
b := 2
c: { x = 1 }
d { y = 2 }
e
-f
-...
`)
	if len(stmts) != 7 {
		t.Fatalf("got %d statements, want 7", len(stmts))
	}
	checkKind(t, stmts[0].kind, stmtSetValue, "a")
	checkKind(t, stmts[1].kind, stmtAssignBoth, "b")
	checkKind(t, stmts[2].kind, stmtReplaceProperties, "c")
	checkKind(t, stmts[3].kind, stmtMergeProperties, "d")
	checkKind(t, stmts[4].kind, stmtDefine, "e")
	if stmts[4].deleted {
		t.Errorf("e: expected deleted=false")
	}
	checkKind(t, stmts[5].kind, stmtDefine, "f")
	if !stmts[5].deleted {
		t.Errorf("f: expected deleted=true")
	}
	checkKind(t, stmts[6].kind, stmtClearAll, "...")
}

func TestParseEqualsBraceIsSyntaxError(t *testing.T) {
	_, err := ParseSource(`a = { x = 1 }`)
	if err == nil {
		t.Fatal("expected a syntax error for '= {'")
	}
	se, ok := err.(*syntaxError)
	if !ok {
		t.Fatalf("error type = %T, want *syntaxError", err)
	}
	if se.code != "tag-parse-syntax-error" {
		t.Errorf("code = %q", se.code)
	}
}

func TestParseDottedPathIsNestedShorthand(t *testing.T) {
	stmts := mustParse(t, `a.b.c = 1`)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements", len(stmts))
	}
	checkPath(t, stmts[0].path, []string{"a", "b", "c"}, "a.b.c")
}

func TestParseArrayRequiresCommasWithTrailingAllowed(t *testing.T) {
	stmts := mustParse(t, `xs = [1, 2, 3,]`)
	v := stmts[0].val
	if v.kind != vkArray || len(v.elem) != 3 {
		t.Fatalf("value = %+v", v)
	}

	_, err := ParseSource(`xs = [1 2]`)
	if err == nil {
		t.Fatal("expected a syntax error for missing comma in array")
	}
}

func TestParseCommasAbsorbedAtStatementList(t *testing.T) {
	stmts := mustParse(t, `a = 1, b = 2`)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
}

func TestParseBacktickSegmentAsPropertyName(t *testing.T) {
	stmts := mustParse(t, "`weird name` = 1")
	checkPath(t, stmts[0].path, []string{"weird name"}, "backtick segment")
}

func TestParseLeadingDotNumberValue(t *testing.T) {
	stmts := mustParse(t, `x = .5`)
	v := stmts[0].val
	if v.kind != vkNumber || v.num != 0.5 {
		t.Fatalf("value = %+v, want number 0.5", v)
	}
}

func TestParseBacktickAsValueIsError(t *testing.T) {
	_, err := ParseSource("a = `x`")
	if err == nil {
		t.Fatal("expected error using a backtick string as a value")
	}
}

package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRunSuccessWritesJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	ok, err := run("", true, strings.NewReader("name = widget\n"), &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ok {
		t.Fatalf("run reported failure, stderr: %s", errOut.String())
	}
	if !strings.Contains(out.String(), `"name"`) {
		t.Errorf("stdout = %q, want it to contain the name property", out.String())
	}
}

func TestRunSyntaxErrorReportsDiagnosticAndFails(t *testing.T) {
	var out, errOut bytes.Buffer
	ok, err := run("", true, strings.NewReader("a = { x = 1 }\n"), &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if ok {
		t.Fatal("run reported success for a syntax error")
	}
	if !strings.Contains(errOut.String(), "tag-parse-syntax-error") {
		t.Errorf("stderr = %q, want the syntax error code", errOut.String())
	}
}

func TestRunSchemaFailureReportsDiagnostic(t *testing.T) {
	schemaFile, err := os.CreateTemp(t.TempDir(), "schema-*.motly")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := schemaFile.WriteString(`Required { name = string }`); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	schemaFile.Close()

	var out, errOut bytes.Buffer
	ok, err := run(schemaFile.Name(), true, strings.NewReader("other = 1\n"), &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if ok {
		t.Fatal("run reported success despite a missing required property")
	}
	if !strings.Contains(errOut.String(), "missing-required") {
		t.Errorf("stderr = %q, want the missing-required code", errOut.String())
	}
}

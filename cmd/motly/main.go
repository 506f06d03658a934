// Command motly reads MOTLY source from stdin, applies an optional
// schema, and writes the resulting tree as JSON to stdout.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/motlylang/motly"
)

func main() {
	schemaPath := flag.String("schema", "", "path to a schema source file")
	pretty := flag.Bool("pretty", true, "pretty-print the JSON tree")
	flag.Parse()

	ok, err := run(*schemaPath, *pretty, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

// run does the real work against injected streams so it can be exercised
// without touching the process's actual stdio.
func run(schemaPath string, pretty bool, in io.Reader, out, errOut io.Writer) (bool, error) {
	src, err := io.ReadAll(in)
	if err != nil {
		return false, errors.Wrap(err, "reading source from stdin")
	}

	sess := motly.NewSession()

	diags, err := sess.Parse(string(src))
	if err != nil {
		return false, errors.Wrap(err, "parsing source")
	}

	if schemaPath != "" {
		schemaSrc, err := os.ReadFile(schemaPath)
		if err != nil {
			return false, errors.Wrapf(err, "reading schema %q", schemaPath)
		}
		schemaDiags, err := sess.ParseSchema(string(schemaSrc))
		if err != nil {
			return false, errors.Wrap(err, "parsing schema")
		}
		diags = append(diags, schemaDiags...)
	}

	refDiags, err := sess.ValidateReferences()
	if err != nil {
		return false, errors.Wrap(err, "validating references")
	}
	diags = append(diags, refDiags...)

	if schemaPath != "" {
		schemaCheckDiags, err := sess.ValidateSchema()
		if err != nil {
			return false, errors.Wrap(err, "validating schema")
		}
		diags = append(diags, schemaCheckDiags...)
	}

	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(errOut, d.String())
		}
		return false, nil
	}

	if pretty {
		dump, err := sess.Dump()
		if err != nil {
			return false, errors.Wrap(err, "rendering value tree")
		}
		fmt.Fprintln(out, dump)
		return true, nil
	}

	tree, err := sess.GetValue()
	if err != nil {
		return false, errors.Wrap(err, "reading value tree")
	}
	b, err := motly.ToJSON(tree, false)
	if err != nil {
		return false, errors.Wrap(err, "encoding JSON")
	}
	fmt.Fprintln(out, string(b))
	return true, nil
}

// Package driver wires the parser and the checker together. Each entry
// point builds a system from a source, runs the checker over it, and
// reports whether the model is free of errors. The annotated system is
// returned for downstream consumers.
package driver

import (
	"os"

	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/checker"
	"github.com/rohitverma007/utap/internal/diagnostic"
	"github.com/rohitverma007/utap/internal/parser"
)

// ParseXTABuffer parses a textual model from a buffer and checks it
func ParseXTABuffer(buffer string, newxta bool, diag *diagnostic.Diagnostics) (*ast.System, bool) {
	p := parser.New(buffer, newxta)
	sys := p.Parse()
	diag.Merge(p.Diagnostics())

	checker.New(diag).CheckSystem(sys)
	return sys, !diag.HasErrors()
}

// ParseXTAFile parses a textual model from a file and checks it
func ParseXTAFile(path string, newxta bool, diag *diagnostic.Diagnostics) (*ast.System, bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		diag.Errorf(0, 0, "cannot read %s: %s", path, err)
		return nil, false
	}
	return ParseXTABuffer(string(source), newxta, diag)
}

// ParseQueriesBuffer parses verification queries against an already
// checked system and re-runs the checker over the whole system so that the
// new properties are annotated and validated. Any diagnostics the model
// itself produces are reported into diag again by this second run.
func ParseQueriesBuffer(buffer string, sys *ast.System, newxta bool, diag *diagnostic.Diagnostics) bool {
	p := parser.New(buffer, newxta)
	p.ParseQueries(sys)
	diag.Merge(p.Diagnostics())

	checker.New(diag).CheckSystem(sys)
	return !diag.HasErrors()
}

// ParseQueriesFile parses verification queries from a file
func ParseQueriesFile(path string, sys *ast.System, newxta bool, diag *diagnostic.Diagnostics) bool {
	source, err := os.ReadFile(path)
	if err != nil {
		diag.Errorf(0, 0, "cannot read %s: %s", path, err)
		return false
	}
	return ParseQueriesBuffer(string(source), sys, newxta, diag)
}

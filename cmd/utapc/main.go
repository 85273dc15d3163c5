package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/diagnostic"
	"github.com/rohitverma007/utap/internal/driver"
)

const usage = `utapc - timed automata model checker frontend

Usage:
  utapc check [options] <model.xta> [queries.q]    Parse and type-check a model

Options:
  --xml       The model file is in the XML document format
  --oldxta    Accept the old textual dialect

The exit status is 0 when the model (and the queries, if given) contain
no errors.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		handleCheck(os.Args[2:])
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func handleCheck(args []string) {
	useXML := false
	newxta := true
	var files []string

	for _, arg := range args {
		switch arg {
		case "--xml":
			useXML = true
		case "--oldxta":
			newxta = false
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				os.Exit(1)
			}
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	modelPath := files[0]
	diag := diagnostic.New()

	var ok bool
	var sys *ast.System
	if useXML {
		sys, ok = driver.ParseXMLFile(modelPath, newxta, diag)
	} else {
		sys, ok = driver.ParseXTAFile(modelPath, newxta, diag)
	}

	if len(files) > 1 && sys != nil {
		ok = driver.ParseQueriesFile(files[1], sys, newxta, diag) && ok
	}

	if diag.Count() > 0 {
		fmt.Fprintln(os.Stderr, diag.Format(modelPath))
	}

	if !ok {
		os.Exit(1)
	}
	fmt.Printf("%s: no errors\n", modelPath)
}

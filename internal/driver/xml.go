package driver

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/diagnostic"
)

// The XML document format stores the same model as the textual dialect,
// with declarations, parameter lists and labels embedded as text. The
// reader decodes the document and reassembles the textual form, so both
// frontends share one grammar. Positions in diagnostics consequently
// refer to the reassembled text.

type xmlNTA struct {
	XMLName       xml.Name      `xml:"nta"`
	Declaration   string        `xml:"declaration"`
	Templates     []xmlTemplate `xml:"template"`
	Instantiation string        `xml:"instantiation"`
	System        string        `xml:"system"`
	Queries       []xmlQuery    `xml:"queries>query"`
}

type xmlTemplate struct {
	Name        string          `xml:"name"`
	Parameter   string          `xml:"parameter"`
	Declaration string          `xml:"declaration"`
	Locations   []xmlLocation   `xml:"location"`
	Init        xmlRef          `xml:"init"`
	Transitions []xmlTransition `xml:"transition"`
}

type xmlLocation struct {
	ID     string     `xml:"id,attr"`
	Name   string     `xml:"name"`
	Labels []xmlLabel `xml:"label"`
}

type xmlLabel struct {
	Kind string `xml:"kind,attr"`
	Text string `xml:",chardata"`
}

type xmlRef struct {
	Ref string `xml:"ref,attr"`
}

type xmlTransition struct {
	Source xmlRef     `xml:"source"`
	Target xmlRef     `xml:"target"`
	Labels []xmlLabel `xml:"label"`
}

type xmlQuery struct {
	Formula string `xml:"formula"`
}

// ParseXMLBuffer parses a model in the XML document format from a buffer
// and checks it
func ParseXMLBuffer(buffer string, newxta bool, diag *diagnostic.Diagnostics) (*ast.System, bool) {
	var doc xmlNTA
	if err := xml.Unmarshal([]byte(buffer), &doc); err != nil {
		diag.Errorf(0, 0, "invalid document: %s", err)
		return nil, false
	}

	source := assembleSource(&doc, diag)
	sys, ok := ParseXTABuffer(source, newxta, diag)
	if sys == nil {
		return nil, ok
	}

	for _, q := range doc.Queries {
		formula := strings.TrimSpace(q.Formula)
		if formula == "" {
			continue
		}
		ok = ParseQueriesBuffer(formula, sys, newxta, diag) && ok
	}
	return sys, !diag.HasErrors()
}

// ParseXMLFile parses a model in the XML document format from a file
func ParseXMLFile(path string, newxta bool, diag *diagnostic.Diagnostics) (*ast.System, bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		diag.Errorf(0, 0, "cannot read %s: %s", path, err)
		return nil, false
	}
	return ParseXMLBuffer(string(source), newxta, diag)
}

func assembleSource(doc *xmlNTA, diag *diagnostic.Diagnostics) string {
	var b strings.Builder
	b.WriteString(doc.Declaration)
	b.WriteString("\n")

	for i := range doc.Templates {
		assembleTemplate(&b, &doc.Templates[i], diag)
	}

	b.WriteString(doc.Instantiation)
	b.WriteString("\n")
	b.WriteString(doc.System)
	b.WriteString("\n")
	return b.String()
}

func assembleTemplate(b *strings.Builder, tpl *xmlTemplate, diag *diagnostic.Diagnostics) {
	name := strings.TrimSpace(tpl.Name)
	if name == "" {
		diag.Errorf(0, 0, "template without a name")
		return
	}

	fmt.Fprintf(b, "process %s(%s) {\n", name, strings.TrimSpace(tpl.Parameter))
	b.WriteString(tpl.Declaration)
	b.WriteString("\n")

	// Locations may be anonymous in the document; give them names
	// derived from their ids so transitions can refer to them.
	names := make(map[string]string)
	b.WriteString("state ")
	for i := range tpl.Locations {
		loc := &tpl.Locations[i]
		locName := strings.TrimSpace(loc.Name)
		if locName == "" {
			locName = "_" + loc.ID
		}
		names[loc.ID] = locName

		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(locName)
		for _, label := range loc.Labels {
			if label.Kind == "invariant" && strings.TrimSpace(label.Text) != "" {
				fmt.Fprintf(b, " { %s }", strings.TrimSpace(label.Text))
			}
		}
	}
	b.WriteString(";\n")

	if tpl.Init.Ref != "" {
		fmt.Fprintf(b, "init %s;\n", names[tpl.Init.Ref])
	}

	for i := range tpl.Transitions {
		tr := &tpl.Transitions[i]
		fmt.Fprintf(b, "trans %s -> %s {", names[tr.Source.Ref], names[tr.Target.Ref])
		for _, label := range tr.Labels {
			text := strings.TrimSpace(label.Text)
			if text == "" {
				continue
			}
			switch label.Kind {
			case "guard":
				fmt.Fprintf(b, " guard %s;", text)
			case "synchronisation":
				fmt.Fprintf(b, " sync %s;", text)
			case "assignment":
				fmt.Fprintf(b, " assign %s;", text)
			}
		}
		b.WriteString(" };\n")
	}

	b.WriteString("}\n")
}

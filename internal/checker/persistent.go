package checker

import "github.com/rohitverma007/utap/internal/ast"

// PersistentVariables collects the symbols that are mutable state visible
// to the runtime: every non-constant declared variable, plus every
// template parameter that is a reference or non-constant. An expression
// depending on any of these cannot be evaluated at analysis time.
type PersistentVariables struct {
	ast.BaseVisitor
	variables map[*ast.Symbol]bool
}

// NewPersistentVariables creates an empty collector
func NewPersistentVariables() *PersistentVariables {
	return &PersistentVariables{variables: make(map[*ast.Symbol]bool)}
}

// VisitVariable records a declared variable unless it is a constant
func (p *PersistentVariables) VisitVariable(variable *ast.Variable) {
	if !variable.Sym.Type().HasPrefix(ast.PrefixConstant) {
		p.variables[variable.Sym] = true
	}
}

// VisitTemplateAfter records the template parameters that denote runtime
// state
func (p *PersistentVariables) VisitTemplateAfter(tpl *ast.Template) {
	for i := 0; i < tpl.Parameters.Size(); i++ {
		param := tpl.Parameters.At(i)
		if param.Type().HasPrefix(ast.PrefixReference) ||
			!param.Type().HasPrefix(ast.PrefixConstant) {
			p.variables[param] = true
		}
	}
}

// Get returns the collected symbol set
func (p *PersistentVariables) Get() map[*ast.Symbol]bool {
	return p.variables
}

// Package checker implements the semantic analysis of a parsed model: it
// annotates every expression with a type and verifies declarations,
// function bodies, automata, template instantiations and verification
// properties. All findings are reported through a diagnostic collector;
// the checker never stops at the first error.
package checker

import (
	"github.com/rohitverma007/utap/internal/ast"
	"github.com/rohitverma007/utap/internal/diagnostic"
	"github.com/rohitverma007/utap/internal/interp"
)

// Checker walks a system and type-checks it. It implements ast.Visitor;
// the deterministic walk order is declarations before uses: variables,
// functions, templates with their states and transitions, instances, and
// finally properties.
type Checker struct {
	diag       *diagnostic.Diagnostics
	system     *ast.System
	persistent map[*ast.Symbol]bool
}

// New creates a checker reporting into the given diagnostics collection
func New(diag *diagnostic.Diagnostics) *Checker {
	return &Checker{diag: diag}
}

// CheckSystem runs the checker over a parsed system. The system's
// expression nodes are annotated in place.
func (c *Checker) CheckSystem(sys *ast.System) {
	sys.Accept(c)
}

func (c *Checker) errorAt(e *ast.Expression, format string, args ...interface{}) {
	c.diag.Errorf(e.Pos.Line, e.Pos.Column, format, args...)
}

func (c *Checker) warningAt(e *ast.Expression, format string, args ...interface{}) {
	c.diag.Warningf(e.Pos.Line, e.Pos.Column, format, args...)
}

// VisitSystemBefore runs the persistent-variable pre-pass before any
// annotation happens
func (c *Checker) VisitSystemBefore(sys *ast.System) {
	c.system = sys
	pv := NewPersistentVariables()
	sys.Accept(pv)
	c.persistent = pv.Get()
}

// VisitSystemAfter implements ast.Visitor
func (c *Checker) VisitSystemAfter(*ast.System) {}

// VisitTemplateBefore implements ast.Visitor
func (c *Checker) VisitTemplateBefore(*ast.Template) {}

// VisitTemplateAfter implements ast.Visitor
func (c *Checker) VisitTemplateAfter(*ast.Template) {}

// VisitConstant checks a constant declaration
func (c *Checker) VisitConstant(constant *ast.Variable) {
	c.checkVariableDeclaration(constant)
}

// VisitVariable checks a variable declaration
func (c *Checker) VisitVariable(variable *ast.Variable) {
	c.checkVariableDeclaration(variable)
}

func (c *Checker) checkVariableDeclaration(variable *ast.Variable) {
	c.checkType(variable.Sym.Type())
	c.checkVariableInitialiser(variable)
}

// VisitState checks that a state invariant is a side-effect free
// invariant expression
func (c *Checker) VisitState(state *ast.State) {
	if state.Invariant == nil {
		return
	}
	c.annotate(state.Invariant)

	if !isInvariant(state.Invariant) {
		c.errorAt(state.Invariant, "Invalid invariant expression")
	}
	if !c.isSideEffectFree(state.Invariant) {
		c.errorAt(state.Invariant, "Invariant must be side effect free")
	}
}

// VisitTransition checks the guard, synchronisation and assignment of a
// transition. Urgent channels and the receiving side of broadcast
// channels must fire without reference to clock values, so clock guards
// are rejected on both.
func (c *Checker) VisitTransition(tr *ast.Transition) {
	c.annotate(tr.Guard)

	if !isGuard(tr.Guard) {
		c.errorAt(tr.Guard, "Invalid guard")
	} else if !c.isSideEffectFree(tr.Guard) {
		c.errorAt(tr.Guard, "Guard must be side effect free")
	}

	if tr.Sync != nil {
		c.annotate(tr.Sync)

		if !c.isSideEffectFree(tr.Sync) {
			c.errorAt(tr.Sync, "Synchronisation must be side effect free")
		}

		channel := tr.Sync.Type()
		if channel.Base() != ast.Channel {
			c.errorAt(tr.Sync, "Invalid synchronisation")
		} else {
			hasClockGuard := tr.Guard != nil && !isInteger(tr.Guard)
			isUrgent := channel.HasPrefix(ast.PrefixUrgent)
			receivesBroadcast := channel.HasPrefix(ast.PrefixBroadcast) &&
				tr.Dir == ast.SyncQue

			if isUrgent && hasClockGuard {
				c.errorAt(tr.Sync, "Clock guards are not allowed on urgent transitions.")
			}

			if receivesBroadcast && hasClockGuard {
				c.errorAt(tr.Sync, "Clock guards are not allowed on broadcast receivers.")
			}
		}
	}

	c.annotate(tr.Assign)
	if !isInteger(tr.Assign) && !isClock(tr.Assign) && !isRecord(tr.Assign) {
		c.errorAt(tr.Assign, "Invalid assignment expression")
	}

	// The parser supplies the literal 1 when no assignment label is
	// given; anything else that changes nothing deserves a warning.
	if !(tr.Assign.Kind == ast.Literal && tr.Assign.Val == 1) &&
		c.isSideEffectFree(tr.Assign) {
		c.warningAt(tr.Assign, "Expression does not have any effect")
	}
}

// VisitInstance checks that each argument of a template instantiation is
// admissible for its formal parameter. Three cases are accepted: a
// constant reference parameter bound to a computable expression, a
// non-constant reference parameter bound to a unique variable reference,
// and a value parameter bound to a computable expression.
func (c *Checker) VisitInstance(inst *ast.Instance) {
	in := interp.New(c.system.ConstantValuation())
	in.AddValuation(inst.Mapping)

	for _, binding := range inst.Mapping {
		parameter := binding.Param.Type()
		argument := binding.Arg

		c.annotate(argument)

		if !c.isSideEffectFree(argument) {
			c.errorAt(argument, "Argument must be side effect free")
			continue
		}

		ref := parameter.HasPrefix(ast.PrefixReference)
		constant := parameter.HasPrefix(ast.PrefixConstant)
		computable := !argument.DependsOn(c.persistent)

		ok := ref && constant && computable
		if !ok {
			if ref {
				ok = c.isUniqueReference(argument)
			} else {
				ok = computable
			}
		}
		if !ok {
			c.errorAt(argument, "Incompatible argument")
			continue
		}

		c.checkParameterCompatible(in, parameter, argument)
	}
}

// VisitProperty checks a verification query: it must be side effect free
// and a constraint; for a leads-to property both operands must be
// constraints.
func (c *Checker) VisitProperty(prop *ast.Property) {
	c.annotate(prop.Expr)

	if !c.isSideEffectFree(prop.Expr) {
		c.errorAt(prop.Expr, "Property must be side effect free")
	}

	if prop.Expr.Kind == ast.LeadsTo {
		if !(isConstraint(prop.Expr.Sub[0]) && isConstraint(prop.Expr.Sub[1])) {
			c.errorAt(prop.Expr, "Property must be a constraint")
		}
	} else if !isConstraint(prop.Expr) {
		c.errorAt(prop.Expr, "Property must be a constraint")
	}
}

// VisitFunction checks the statements of a function body
func (c *Checker) VisitFunction(fn *ast.FunctionDecl) {
	c.checkStatement(fn.Body)
}

// checkAssignmentExpressionInFunction checks an expression evaluated for
// its effect
func (c *Checker) checkAssignmentExpressionInFunction(e *ast.Expression) {
	if e == nil {
		return
	}
	if !isInteger(e) && !isClock(e) && !isRecord(e) {
		c.errorAt(e, "Invalid expression in function")
	}
}

// checkConditionalExpressionInFunction checks a loop or branch condition
func (c *Checker) checkConditionalExpressionInFunction(e *ast.Expression) {
	if e == nil {
		return
	}
	if !isInteger(e) {
		c.errorAt(e, "Boolean expected here")
	}
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.EmptyStatement:

	case *ast.ExprStatement:
		c.annotate(s.Expr)
		c.checkAssignmentExpressionInFunction(s.Expr)

	case *ast.BlockStatement:
		for _, decl := range s.Decls {
			c.checkType(decl.Sym.Type())
			c.annotate(decl.Init)
		}
		for _, sub := range s.Stmts {
			c.checkStatement(sub)
		}

	case *ast.ForStatement:
		c.annotate(s.Init)
		c.annotate(s.Cond)
		c.annotate(s.Step)
		c.checkAssignmentExpressionInFunction(s.Init)
		c.checkConditionalExpressionInFunction(s.Cond)
		c.checkAssignmentExpressionInFunction(s.Step)
		c.checkStatement(s.Body)

	case *ast.WhileStatement:
		c.annotate(s.Cond)
		c.checkConditionalExpressionInFunction(s.Cond)
		c.checkStatement(s.Body)

	case *ast.DoWhileStatement:
		c.annotate(s.Cond)
		c.checkConditionalExpressionInFunction(s.Cond)
		c.checkStatement(s.Body)

	case *ast.IfStatement:
		c.annotate(s.Cond)
		c.checkConditionalExpressionInFunction(s.Cond)
		c.checkStatement(s.Then)
		if s.Else != nil {
			c.checkStatement(s.Else)
		}

	case *ast.SwitchStatement:
		// TODO: check the type of the condition against the cases
		c.annotate(s.Cond)
		for _, sub := range s.Body {
			c.checkStatement(sub)
		}

	case *ast.CaseStatement:
		c.annotate(s.Cond)
		for _, sub := range s.Body {
			c.checkStatement(sub)
		}

	case *ast.DefaultStatement:
		for _, sub := range s.Body {
			c.checkStatement(sub)
		}

	case *ast.BreakStatement:

	case *ast.ContinueStatement:

	case *ast.ReturnStatement:
		c.annotate(s.Value)
	}
}

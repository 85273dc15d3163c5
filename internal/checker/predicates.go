package checker

import "github.com/rohitverma007/utap/internal/ast"

func isInteger(e *ast.Expression) bool {
	base := e.Base()
	return base == ast.Int || base == ast.Bool
}

func isClock(e *ast.Expression) bool {
	return e.Base() == ast.Clock
}

func isDiff(e *ast.Expression) bool {
	return e.Base() == ast.Diff
}

func isRecord(e *ast.Expression) bool {
	return e.Base() == ast.Record
}

// isInvariant returns true iff the expression is a valid invariant: empty,
// an invariant expression, or an integer expression.
func isInvariant(e *ast.Expression) bool {
	return e == nil || e.Base() == ast.Invariant || isInteger(e)
}

// isGuard returns true iff the expression is a valid guard: a valid
// invariant or a guard expression.
func isGuard(e *ast.Expression) bool {
	return e.Base() == ast.Guard || isInvariant(e)
}

// isConstraint returns true iff the expression is a valid constraint: a
// valid guard or a constraint expression.
func isConstraint(e *ast.Expression) bool {
	return e.Base() == ast.Constraint || isGuard(e)
}

// isSideEffectFree returns true if the expression does not modify any
// persistent variable. Variables local to functions do not count.
func (c *Checker) isSideEffectFree(e *ast.Expression) bool {
	return !e.ChangesAnyOf(c.persistent)
}

// isLHSValue returns true if the expression results in a reference to a
// variable. An inline if over integers is only a left-hand side value when
// both results have the same declared range.
func (c *Checker) isLHSValue(e *ast.Expression) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.Identifier:
		return !e.Sym.Type().HasPrefix(ast.PrefixConstant)

	case ast.Dot, ast.Index:
		return c.isLHSValue(e.Sub[0])

	case ast.PreIncrement, ast.PreDecrement:
		return c.isLHSValue(e.Sub[0])

	case ast.InlineIf:
		if !c.isLHSValue(e.Sub[1]) || !c.isLHSValue(e.Sub[2]) {
			return false
		}

		// The annotator ensures the two results are compatible; for
		// integers we additionally require the same syntactic range
		// declaration on the outermost non-array type.
		t := e.Sub[1].Symbol().Type()
		f := e.Sub[2].Symbol().Type()
		for t.Base() == ast.Array {
			t = t.Sub()
		}
		for f.Base() == ast.Array {
			f = f.Sub()
		}
		if t.Base() != ast.Int {
			return true
		}
		tlo, thi := t.RangeExprs()
		flo, fhi := f.RangeExprs()
		return tlo.Equal(flo) && thi.Equal(fhi)

	case ast.Comma:
		return c.isLHSValue(e.Sub[1])

	default:
		if e.Kind.IsAssignment() {
			return c.isLHSValue(e.Sub[0])
		}
		// Functions cannot return references
		return false
	}
}

// isUniqueReference returns true if the expression is a reference to a
// statically determined variable. Like isLHSValue, except that a subscript
// must not depend on persistent variables (distinct runtime indices would
// name distinct variables) and an inline if never qualifies.
func (c *Checker) isUniqueReference(e *ast.Expression) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.Identifier:
		return !e.Type().HasPrefix(ast.PrefixConstant)

	case ast.Dot:
		return c.isUniqueReference(e.Sub[0])

	case ast.Index:
		return c.isUniqueReference(e.Sub[0]) &&
			!e.Sub[1].DependsOn(c.persistent)

	case ast.PreIncrement, ast.PreDecrement:
		return c.isUniqueReference(e.Sub[0])

	case ast.InlineIf:
		return false

	case ast.Comma:
		return c.isUniqueReference(e.Sub[1])

	default:
		if e.Kind.IsAssignment() {
			return c.isUniqueReference(e.Sub[0])
		}
		return false
	}
}
